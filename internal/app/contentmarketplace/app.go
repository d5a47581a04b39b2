// Package contentmarketplace собирает все зависимости основного сервиса
// и управляет жизненным циклом HTTP-сервера.
package contentmarketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/content-marketplace/internal/billingprovider"
	"github.com/magabrotheeeer/content-marketplace/internal/cache"
	"github.com/magabrotheeeer/content-marketplace/internal/config"
	"github.com/magabrotheeeer/content-marketplace/internal/files"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-marketplace/internal/metrics"
	"github.com/magabrotheeeer/content-marketplace/internal/migrations"
	authservice "github.com/magabrotheeeer/content-marketplace/internal/services/auth"
	billingservice "github.com/magabrotheeeer/content-marketplace/internal/services/billing"
	catalogservice "github.com/magabrotheeeer/content-marketplace/internal/services/catalog"
	checkoutservice "github.com/magabrotheeeer/content-marketplace/internal/services/checkout"
	downloadservice "github.com/magabrotheeeer/content-marketplace/internal/services/download"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// App основной сервис маркетплейса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New собирает зависимости: хранилище, кеш, платёжного провайдера,
// файловое хранилище, очередь уведомлений и все бизнес-сервисы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	fileStore, err := files.NewStore(ctx, cfg.S3Storage)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	providerClient := billingprovider.New(cfg.Stripe)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker, logger)
	catalogService := catalogservice.New(db, cacheRedis, logger)
	checkoutService := checkoutservice.New(providerClient, logger)
	billingService := billingservice.New(db, publisher, cfg.Stripe.PriceAnnualID, logger)
	downloadService := downloadservice.New(cacheRedis, db, db, fileStore, logger)

	metrics.MustRegister()

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db,
		authService, catalogService, checkoutService, billingService, downloadService,
		providerClient)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.amqp.Close()
		a.db.DB.Close()
		return err
	}
}
