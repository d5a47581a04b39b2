package billing

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/access"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

// fakeRepo воспроизводит контракт хранилища профилей в памяти,
// включая правило "первая запись выигрывает" для billing_customer_ref
// и множество купленного контента.
type fakeRepo struct {
	profiles  map[string]*models.Profile
	purchased map[string]map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:  make(map[string]*models.Profile),
		purchased: make(map[string]map[string]bool),
	}
}

func (f *fakeRepo) EnsureProfile(_ context.Context, uid, email string) error {
	if _, ok := f.profiles[uid]; !ok {
		f.profiles[uid] = &models.Profile{
			UID:                uid,
			Email:              email,
			SubscriptionStatus: models.SubscriptionNone,
			SubscriptionType:   models.PlanNone,
		}
	}
	return nil
}

func (f *fakeRepo) ApplySubscription(_ context.Context, uid, status, subType, customerRef, subscriptionRef string, periodEnd *time.Time) error {
	p, ok := f.profiles[uid]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.SubscriptionStatus = status
	p.SubscriptionType = subType
	if p.BillingCustomerRef == "" {
		p.BillingCustomerRef = customerRef
	}
	p.BillingSubscriptionRef = subscriptionRef
	p.CurrentPeriodEnd = periodEnd
	return nil
}

func (f *fakeRepo) CancelSubscription(_ context.Context, uid string, periodEnd *time.Time) error {
	p, ok := f.profiles[uid]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.SubscriptionStatus = models.SubscriptionCancelled
	if periodEnd != nil {
		p.CurrentPeriodEnd = periodEnd
	}
	return nil
}

func (f *fakeRepo) AddPurchasedContent(_ context.Context, uid, contentID, customerRef string) error {
	if f.purchased[uid] == nil {
		f.purchased[uid] = make(map[string]bool)
	}
	f.purchased[uid][contentID] = true
	if p, ok := f.profiles[uid]; ok && p.BillingCustomerRef == "" {
		p.BillingCustomerRef = customerRef
	}
	return nil
}

func (f *fakeRepo) GetProfileByCustomerRef(_ context.Context, customerRef string) (*models.Profile, error) {
	for _, p := range f.profiles {
		if p.BillingCustomerRef == customerRef {
			return p, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeRepo) purchasedList(uid string) []string {
	var out []string
	for id := range f.purchased[uid] {
		out = append(out, id)
	}
	return out
}

type fakeNotifier struct {
	messages []models.NotificationMessage
}

func (f *fakeNotifier) Publish(msg models.NotificationMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func newService(repo ProfileRepository, notifier Notifier) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(repo, notifier, "price_annual", logger)
}

func event(t *testing.T, eventType string, object string) stripe.Event {
	t.Helper()
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(object)},
	}
}

func TestApplyEvent_OneTimeCheckoutIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeNotifier{})

	ev := event(t, "checkout.session.completed", `{
		"id": "cs_1",
		"mode": "payment",
		"customer": "cus_1",
		"customer_email": "user@example.com",
		"metadata": {"user_uid": "uid-1", "content_id": "X"}
	}`)

	// Повторная доставка того же события не дублирует покупку.
	require.NoError(t, svc.ApplyEvent(context.Background(), ev))
	require.NoError(t, svc.ApplyEvent(context.Background(), ev))

	purchased := repo.purchasedList("uid-1")
	assert.Len(t, purchased, 1)
	assert.Equal(t, []string{"X"}, purchased)

	profile := repo.profiles["uid-1"]
	require.NotNil(t, profile)
	assert.Equal(t, models.SubscriptionNone, profile.SubscriptionStatus)
	assert.Equal(t, "cus_1", profile.BillingCustomerRef)

	assert.True(t, access.Evaluate(profile, purchased, "X"))
	assert.False(t, access.Evaluate(profile, purchased, "Y"))
}

func TestApplyEvent_SubscriptionCheckoutActivates(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeNotifier{})

	ev := event(t, "checkout.session.completed", `{
		"id": "cs_2",
		"mode": "subscription",
		"customer": "cus_2",
		"customer_email": "sub@example.com",
		"subscription": "sub_1",
		"metadata": {"user_uid": "uid-2"}
	}`)
	require.NoError(t, svc.ApplyEvent(context.Background(), ev))

	profile := repo.profiles["uid-2"]
	require.NotNil(t, profile)
	assert.Equal(t, models.SubscriptionActive, profile.SubscriptionStatus)
	assert.Equal(t, models.PlanMonthly, profile.SubscriptionType)
	assert.Equal(t, "sub_1", profile.BillingSubscriptionRef)
	assert.Equal(t, "cus_2", profile.BillingCustomerRef)
}

func TestApplyEvent_AnnualCheckoutRedeliveryKeepsPlan(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeNotifier{})
	ctx := context.Background()

	// Метаданные в точности как их формирует создание сессии:
	// тариф едет в subscription_type.
	checkoutEv := event(t, "checkout.session.completed", `{
		"id": "cs_3",
		"mode": "subscription",
		"customer": "cus_9",
		"customer_email": "annual@example.com",
		"subscription": "sub_9",
		"metadata": {"user_uid": "uid-9", "subscription_type": "annual"}
	}`)
	require.NoError(t, svc.ApplyEvent(ctx, checkoutEv))
	assert.Equal(t, models.PlanAnnual, repo.profiles["uid-9"].SubscriptionType)

	subCreatedEv := event(t, "customer.subscription.created", `{
		"id": "sub_9",
		"status": "active",
		"customer": "cus_9",
		"items": {"data": [{"price": {"id": "price_annual"}}]},
		"metadata": {"user_uid": "uid-9"}
	}`)
	require.NoError(t, svc.ApplyEvent(ctx, subCreatedEv))

	// Повторная доставка события оплаты не понижает тариф до месячного
	require.NoError(t, svc.ApplyEvent(ctx, checkoutEv))
	assert.Equal(t, models.PlanAnnual, repo.profiles["uid-9"].SubscriptionType)
	assert.Equal(t, models.SubscriptionActive, repo.profiles["uid-9"].SubscriptionStatus)
}

func TestApplyEvent_SubscriptionUpdateDerivesAnnualPlan(t *testing.T) {
	repo := newFakeRepo()
	require.NoError(t, repo.EnsureProfile(context.Background(), "uid-3", "a@example.com"))
	svc := newService(repo, &fakeNotifier{})

	ev := event(t, "customer.subscription.updated", `{
		"id": "sub_2",
		"status": "past_due",
		"customer": "cus_3",
		"current_period_end": 1700000000,
		"items": {"data": [{"price": {"id": "price_annual"}}]},
		"metadata": {"user_uid": "uid-3"}
	}`)
	require.NoError(t, svc.ApplyEvent(context.Background(), ev))

	profile := repo.profiles["uid-3"]
	assert.Equal(t, models.SubscriptionPastDue, profile.SubscriptionStatus)
	assert.Equal(t, models.PlanAnnual, profile.SubscriptionType)
	assert.Equal(t, "sub_2", profile.BillingSubscriptionRef)
	require.NotNil(t, profile.CurrentPeriodEnd)
	assert.Equal(t, int64(1700000000), profile.CurrentPeriodEnd.Unix())
}

func TestApplyEvent_SubscriptionDeletedKeepsPurchases(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	require.NoError(t, repo.EnsureProfile(ctx, "uid-4", "b@example.com"))
	require.NoError(t, repo.ApplySubscription(ctx, "uid-4", models.SubscriptionActive,
		models.PlanMonthly, "cus_4", "sub_3", nil))
	require.NoError(t, repo.AddPurchasedContent(ctx, "uid-4", "X", "cus_4"))
	svc := newService(repo, &fakeNotifier{})

	ev := event(t, "customer.subscription.deleted", `{
		"id": "sub_3",
		"status": "canceled",
		"metadata": {"user_uid": "uid-4"}
	}`)
	require.NoError(t, svc.ApplyEvent(ctx, ev))

	profile := repo.profiles["uid-4"]
	assert.Equal(t, models.SubscriptionCancelled, profile.SubscriptionStatus)
	// Купленный контент переживает отмену подписки.
	assert.True(t, access.Evaluate(profile, repo.purchasedList("uid-4"), "X"))
}

func TestApplyEvent_CustomerRefFirstWriterWins(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	require.NoError(t, repo.EnsureProfile(ctx, "uid-5", "c@example.com"))
	svc := newService(repo, &fakeNotifier{})

	first := event(t, "customer.subscription.created", `{
		"id": "sub_4", "status": "active", "customer": "cus_first",
		"metadata": {"user_uid": "uid-5"}
	}`)
	second := event(t, "customer.subscription.updated", `{
		"id": "sub_5", "status": "active", "customer": "cus_second",
		"metadata": {"user_uid": "uid-5"}
	}`)
	require.NoError(t, svc.ApplyEvent(ctx, first))
	require.NoError(t, svc.ApplyEvent(ctx, second))

	profile := repo.profiles["uid-5"]
	assert.Equal(t, "cus_first", profile.BillingCustomerRef)
	// Ссылка на подписку, напротив, заменяется каждым событием.
	assert.Equal(t, "sub_5", profile.BillingSubscriptionRef)
}

func TestApplyEvent_InvoiceFailedNotifiesWithoutMutation(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	require.NoError(t, repo.EnsureProfile(ctx, "uid-6", "d@example.com"))
	require.NoError(t, repo.ApplySubscription(ctx, "uid-6", models.SubscriptionActive,
		models.PlanMonthly, "cus_6", "sub_6", nil))
	notifier := &fakeNotifier{}
	svc := newService(repo, notifier)

	ev := event(t, "invoice.payment_failed", `{
		"id": "in_1", "customer": "cus_6", "amount_due": 999, "currency": "usd"
	}`)
	require.NoError(t, svc.ApplyEvent(ctx, ev))

	// Доступ не отозван, уведомление опубликовано.
	assert.Equal(t, models.SubscriptionActive, repo.profiles["uid-6"].SubscriptionStatus)
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "payment_failed", notifier.messages[0].Kind)
	assert.Equal(t, "d@example.com", notifier.messages[0].Email)
	assert.Equal(t, int64(999), notifier.messages[0].Amount)
}

func TestApplyEvent_UnknownEventIgnored(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, &fakeNotifier{})

	ev := event(t, "charge.refunded", `{"id": "ch_1"}`)
	assert.NoError(t, svc.ApplyEvent(context.Background(), ev))
	assert.Empty(t, repo.profiles)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, EventCheckoutCompleted, KindOf("checkout.session.completed"))
	assert.Equal(t, EventSubscriptionDeleted, KindOf("customer.subscription.deleted"))
	assert.Equal(t, EventUnknown, KindOf("customer.created"))
}
