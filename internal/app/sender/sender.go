// Package sender собирает воркер отправки писем о платёжных событиях.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/content-marketplace/internal/config"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/content-marketplace/internal/services/sender"
)

// App воркер-отправитель уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к очереди и собирает сервис отправки писем.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, newTransport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.BillingQueue, a.senderService.SendBillingNotification)
	if err != nil {
		a.logger.Error("failed to start billing notification consumer", slog.Any("err", err))
		return err
	}

	a.logger.Info("notification sender started", slog.String("queue", rabbitmq.BillingQueue))
	<-ctx.Done()

	a.logger.Info("shutting down notification sender")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	return a.conn.Close()
}
