// Package billing применяет webhook-события платёжного провайдера
// к профилям пользователей. Все обработчики идемпотентны: скалярные поля
// перезаписываются, множество купленного контента пополняется вставкой
// с ON CONFLICT DO NOTHING, поэтому повторная и неупорядоченная доставка
// событий безопасна. Собственных повторов нет — ошибка обработчика
// возвращается наружу, повторную доставку выполняет провайдер.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	stripe "github.com/stripe/stripe-go/v78"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// EventKind закрытое перечисление обрабатываемых видов событий.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCheckoutCompleted
	EventSubscriptionCreated
	EventSubscriptionUpdated
	EventSubscriptionDeleted
	EventInvoicePaymentSucceeded
	EventInvoicePaymentFailed
)

// KindOf сопоставляет строковый тип события провайдера с EventKind.
// Неизвестные типы дают EventUnknown: такие события подтверждаются
// без обработки, чтобы не провоцировать шторм повторных доставок.
func KindOf(eventType string) EventKind {
	switch eventType {
	case "checkout.session.completed":
		return EventCheckoutCompleted
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	case "invoice.payment_succeeded":
		return EventInvoicePaymentSucceeded
	case "invoice.payment_failed":
		return EventInvoicePaymentFailed
	default:
		return EventUnknown
	}
}

// ProfileRepository контракт хранилища профилей для обработчиков событий.
type ProfileRepository interface {
	EnsureProfile(ctx context.Context, uid, email string) error
	ApplySubscription(ctx context.Context, uid, status, subType, customerRef, subscriptionRef string, periodEnd *time.Time) error
	CancelSubscription(ctx context.Context, uid string, periodEnd *time.Time) error
	AddPurchasedContent(ctx context.Context, uid, contentID, customerRef string) error
	GetProfileByCustomerRef(ctx context.Context, customerRef string) (*models.Profile, error)
}

// Notifier публикует уведомления о платёжных событиях в очередь.
type Notifier interface {
	Publish(msg models.NotificationMessage) error
}

// Service применяет события провайдера к хранилищу профилей.
type Service struct {
	repo          ProfileRepository
	notifier      Notifier
	annualPriceID string
	log           *slog.Logger
}

// New создает Service. annualPriceID — прайс годового тарифа, по нему
// определяется тип подписки из события.
func New(repo ProfileRepository, notifier Notifier, annualPriceID string, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		notifier:      notifier,
		annualPriceID: annualPriceID,
		log:           log,
	}
}

// ApplyEvent диспетчеризует событие по его виду. Для EventUnknown ничего
// не делает и возвращает nil.
func (s *Service) ApplyEvent(ctx context.Context, event stripe.Event) error {
	const op = "billing.ApplyEvent"

	switch KindOf(string(event.Type)) {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applyCheckoutCompleted(ctx, &session)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applySubscriptionUpdate(ctx, &sub)
	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.applySubscriptionDeleted(ctx, &sub)
	case EventInvoicePaymentSucceeded:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return s.notifyInvoice(ctx, &invoice, "payment_succeeded")
	case EventInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		// Доступ при неуплате не отзывается: статус изменит только
		// последующее событие subscription.updated или deleted.
		return s.notifyInvoice(ctx, &invoice, "payment_failed")
	default:
		s.log.Info("ignored billing event", slog.String("type", string(event.Type)))
		return nil
	}
}

func (s *Service) applyCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	const op = "billing.applyCheckoutCompleted"

	userUID := session.Metadata["user_uid"]
	if userUID == "" {
		s.log.Error("checkout session without user_uid metadata",
			slog.String("session_id", session.ID))
		return nil
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}
	if err := s.repo.EnsureProfile(ctx, userUID, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var customerRef string
	if session.Customer != nil {
		customerRef = session.Customer.ID
	}

	switch session.Mode {
	case stripe.CheckoutSessionModeSubscription:
		subType := session.Metadata["subscription_type"]
		if subType == "" {
			subType = models.PlanMonthly
		}
		var subscriptionRef string
		if session.Subscription != nil {
			subscriptionRef = session.Subscription.ID
		}
		if err := s.repo.ApplySubscription(ctx, userUID, models.SubscriptionActive,
			subType, customerRef, subscriptionRef, nil); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case stripe.CheckoutSessionModePayment:
		contentID := session.Metadata["content_id"]
		if contentID == "" {
			s.log.Error("one-time checkout session without content_id metadata",
				slog.String("session_id", session.ID))
			return nil
		}
		if err := s.repo.AddPurchasedContent(ctx, userUID, contentID, customerRef); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (s *Service) applySubscriptionUpdate(ctx context.Context, sub *stripe.Subscription) error {
	const op = "billing.applySubscriptionUpdate"

	userUID := sub.Metadata["user_uid"]
	if userUID == "" {
		s.log.Error("subscription event without user_uid metadata",
			slog.String("subscription_id", sub.ID))
		return nil
	}

	subType := models.PlanMonthly
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil && item.Price.ID == s.annualPriceID {
			subType = models.PlanAnnual
		}
	}

	var customerRef string
	if sub.Customer != nil {
		customerRef = sub.Customer.ID
	}

	periodEnd := periodEndOf(sub)
	if err := s.repo.ApplySubscription(ctx, userUID, mapStatus(sub.Status),
		subType, customerRef, sub.ID, periodEnd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) applySubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	const op = "billing.applySubscriptionDeleted"

	userUID := sub.Metadata["user_uid"]
	if userUID == "" {
		s.log.Error("subscription deleted event without user_uid metadata",
			slog.String("subscription_id", sub.ID))
		return nil
	}

	if err := s.repo.CancelSubscription(ctx, userUID, periodEndOf(sub)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// notifyInvoice не мутирует профиль: публикует сообщение для отправки
// письма пользователю. Сбой публикации логируется и не отдается провайдеру,
// чтобы повторная доставка не продублировала уведомление.
func (s *Service) notifyInvoice(ctx context.Context, invoice *stripe.Invoice, kind string) error {
	if invoice.Customer == nil || invoice.Customer.ID == "" {
		s.log.Info("invoice event without customer", slog.String("invoice_id", invoice.ID))
		return nil
	}

	profile, err := s.repo.GetProfileByCustomerRef(ctx, invoice.Customer.ID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		s.log.Info("invoice for unknown customer",
			slog.String("customer_ref", invoice.Customer.ID),
			slog.String("invoice_id", invoice.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("billing.notifyInvoice: %w", err)
	}

	amount := invoice.AmountPaid
	if kind == "payment_failed" {
		amount = invoice.AmountDue
	}
	msg := models.NotificationMessage{
		Kind:      kind,
		Email:     profile.Email,
		Username:  profile.Username,
		InvoiceID: invoice.ID,
		Amount:    amount,
		Currency:  string(invoice.Currency),
	}
	if err := s.notifier.Publish(msg); err != nil {
		s.log.Error("failed to publish invoice notification", sl.Err(err),
			slog.String("invoice_id", invoice.ID))
	}
	return nil
}

// mapStatus приводит статус провайдера к доменному перечислению.
func mapStatus(status stripe.SubscriptionStatus) string {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionActive
	case stripe.SubscriptionStatusPastDue:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled:
		return models.SubscriptionCancelled
	default:
		return models.SubscriptionNone
	}
}

func periodEndOf(sub *stripe.Subscription) *time.Time {
	if sub.CurrentPeriodEnd == 0 {
		return nil
	}
	t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	return &t
}
