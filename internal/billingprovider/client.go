// Package billingprovider оборачивает SDK платёжного провайдера (Stripe):
// создание checkout-сессий и проверка подписи входящих webhook-событий.
// Сетевые вызовы идут с фиксированным таймаутом и без повторов — ошибка
// возвращается вызывающему.
package billingprovider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/magabrotheeeer/content-marketplace/internal/config"
)

// Client клиент платёжного провайдера.
type Client struct {
	sc            *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// SessionParams параметры создаваемой checkout-сессии. UserUID и ContentID
// кладутся в метаданные сессии, чтобы webhook-обработчик мог сопоставить
// событие с профилем и элементом каталога.
type SessionParams struct {
	PriceRef  string
	Mode      string // subscription или payment
	Plan      string // monthly или annual, только для режима подписки
	Email     string
	UserUID   string
	ContentID string
}

// New создаёт клиент с заданным секретным ключом и адресами возврата.
func New(cfg config.Stripe) *Client {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, stripe.NewBackends(&http.Client{Timeout: 15 * time.Second}))
	return &Client{
		sc:            sc,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCheckoutSession создает checkout-сессию и возвращает её идентификатор
// и URL для редиректа пользователя.
func (c *Client) CreateCheckoutSession(ctx context.Context, p SessionParams) (string, string, error) {
	const op = "billingprovider.CreateCheckoutSession"

	metadata := map[string]string{
		"user_uid": p.UserUID,
	}
	if p.ContentID != "" {
		metadata["content_id"] = p.ContentID
	}
	if p.Plan != "" {
		// Тип подписки едет в метаданных: обработчик завершенной оплаты
		// читает его оттуда, повторная доставка не затирает тариф.
		metadata["subscription_type"] = p.Plan
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:    stripe.String(c.successURL),
		CancelURL:     stripe.String(c.cancelURL),
		Mode:          stripe.String(p.Mode),
		CustomerEmail: stripe.String(p.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(p.PriceRef),
			Quantity: stripe.Int64(1),
		}},
		Metadata: metadata,
	}
	if p.Mode == string(stripe.CheckoutSessionModeSubscription) {
		// Метаданные дублируются в объект подписки: события
		// customer.subscription.* приходят без метаданных сессии.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		}
	}
	params.Context = ctx

	sess, err := c.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return sess.ID, sess.URL, nil
}

// VerifyEvent проверяет подпись webhook-события по заголовку Stripe-Signature
// и возвращает разобранный конверт события. Мутации профиля до успешной
// проверки не выполняются.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	const op = "billingprovider.VerifyEvent"

	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}
