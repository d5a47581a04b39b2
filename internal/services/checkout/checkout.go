// Package checkout реализует создание checkout-сессий у платёжного
// провайдера для оформления подписки или разовой покупки контента.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/content-marketplace/internal/billingprovider"
)

// Режимы оплаты.
const (
	ModeSubscription = "subscription"
	ModePayment      = "payment"
)

var (
	// ErrInvalidRequest отсутствуют или некорректны обязательные поля запроса.
	ErrInvalidRequest = errors.New("invalid checkout request")
	// ErrUpstream платёжный провайдер недоступен или ответил ошибкой.
	// Повторов нет: пользователь инициирует оплату заново.
	ErrUpstream = errors.New("billing provider unavailable")
)

// Provider контракт клиента платёжного провайдера.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, p billingprovider.SessionParams) (string, string, error)
}

// Request описывает намерение пользователя оплатить продукт.
type Request struct {
	ProductRef string // Прайс тарифа или элемента контента у провайдера
	ContentID  string // Для разовой покупки: какой элемент каталога покупается
	Plan       string // Тариф подписки: monthly или annual
	Email      string
	Mode       string // subscription или payment
	UserUID    string
}

// Session результат создания checkout-сессии.
type Session struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// Service бизнес-логика инициации оплаты.
type Service struct {
	provider Provider
	log      *slog.Logger
}

// New создает Service.
func New(provider Provider, log *slog.Logger) *Service {
	return &Service{
		provider: provider,
		log:      log,
	}
}

// CreateSession валидирует запрос и создает сессию у провайдера.
// UserUID кладется в метаданные сессии, иначе webhook-обработчику
// не с чем будет сопоставить завершенную оплату.
func (s *Service) CreateSession(ctx context.Context, req Request) (*Session, error) {
	const op = "checkout.CreateSession"

	if req.ProductRef == "" || req.Email == "" || req.UserUID == "" {
		return nil, ErrInvalidRequest
	}
	if req.Mode != ModeSubscription && req.Mode != ModePayment {
		return nil, ErrInvalidRequest
	}
	if req.Mode == ModePayment && req.ContentID == "" {
		return nil, ErrInvalidRequest
	}

	sessionID, redirectURL, err := s.provider.CreateCheckoutSession(ctx, billingprovider.SessionParams{
		PriceRef:  req.ProductRef,
		Mode:      req.Mode,
		Plan:      req.Plan,
		Email:     req.Email,
		UserUID:   req.UserUID,
		ContentID: req.ContentID,
	})
	if err != nil {
		s.log.Error("provider session creation failed",
			slog.String("op", op), slog.String("mode", req.Mode))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}
	return &Session{
		SessionID:   sessionID,
		RedirectURL: redirectURL,
	}, nil
}
