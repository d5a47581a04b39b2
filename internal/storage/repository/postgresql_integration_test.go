package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

func TestStorage_RegisterAndGetProfile(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.RegisterProfile(ctx, models.Profile{
		Email:              "new@example.com",
		Username:           "newuser",
		PasswordHash:       "hash",
		Role:               "user",
		SubscriptionStatus: models.SubscriptionNone,
		SubscriptionType:   models.PlanNone,
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	got, err := storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "newuser", got.Username)
	assert.Equal(t, models.SubscriptionNone, got.SubscriptionStatus)
	assert.False(t, got.FreeAccess)

	byName, err := storage.GetProfileByUsername(ctx, "newuser")
	require.NoError(t, err)
	assert.Equal(t, uid, byName.UID)

	_, err = storage.GetProfile(ctx, NewUID())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestStorage_ApplySubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := NewUID()
	factory.CreateProfile(t, uid, "testuser", "test@example.com")

	periodEnd := time.Now().AddDate(0, 1, 0).UTC().Truncate(time.Second)
	err := storage.ApplySubscription(ctx, uid, models.SubscriptionActive, models.PlanMonthly,
		"cus_1", "sub_1", &periodEnd)
	require.NoError(t, err)

	got, err := storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, got.SubscriptionStatus)
	assert.Equal(t, models.PlanMonthly, got.SubscriptionType)
	assert.Equal(t, "cus_1", got.BillingCustomerRef)
	assert.Equal(t, "sub_1", got.BillingSubscriptionRef)
	require.NotNil(t, got.CurrentPeriodEnd)

	// Первый записанный customer_ref не перезаписывается
	err = storage.ApplySubscription(ctx, uid, models.SubscriptionActive, models.PlanAnnual,
		"cus_other", "sub_2", &periodEnd)
	require.NoError(t, err)

	got, err = storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", got.BillingCustomerRef)
	assert.Equal(t, models.PlanAnnual, got.SubscriptionType)
	assert.Equal(t, "sub_2", got.BillingSubscriptionRef)

	byRef, err := storage.GetProfileByCustomerRef(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, uid, byRef.UID)
}

func TestStorage_CancelSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := NewUID()
	factory.CreateProfile(t, uid, "testuser", "test@example.com")

	periodEnd := time.Now().AddDate(0, 1, 0)
	require.NoError(t, storage.ApplySubscription(ctx, uid, models.SubscriptionActive,
		models.PlanMonthly, "cus_1", "sub_1", &periodEnd))
	require.NoError(t, storage.CancelSubscription(ctx, uid, &periodEnd))

	got, err := storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, got.SubscriptionStatus)
	// Привязка к плательщику сохраняется для последующих событий
	assert.Equal(t, "cus_1", got.BillingCustomerRef)
}

func TestStorage_PurchasedContent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := NewUID()
	contentID := NewUID()
	factory.CreateProfile(t, uid, "testuser", "test@example.com")
	factory.CreateContentItem(t, contentID, "go-course", "Go Course")

	require.NoError(t, storage.AddPurchasedContent(ctx, uid, contentID, "cus_1"))
	// Повторная доставка того же события не создает дубликат
	require.NoError(t, storage.AddPurchasedContent(ctx, uid, contentID, "cus_1"))

	purchased, err := storage.ListPurchasedContent(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, []string{contentID}, purchased)

	removed, err := storage.RevokePurchasedContent(ctx, uid, contentID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = storage.RevokePurchasedContent(ctx, uid, contentID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	purchased, err = storage.ListPurchasedContent(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, purchased)
}

func TestStorage_EnsureProfile(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	// Профиля еще нет: оплата пришла раньше регистрации
	newUID := NewUID()
	require.NoError(t, storage.EnsureProfile(ctx, newUID, "buyer@example.com"))
	created, err := storage.GetProfile(ctx, newUID)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", created.Email)
	assert.Empty(t, created.Username)
	assert.Equal(t, "user", created.Role)

	uid := NewUID()
	factory.CreateProfile(t, uid, "testuser", "test@example.com")

	// Существующий профиль не перезаписывается
	require.NoError(t, storage.EnsureProfile(ctx, uid, "other@example.com"))
	got, err := storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", got.Email)
}

func TestStorage_SetFreeAccess(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := NewUID()
	factory.CreateProfile(t, uid, "testuser", "test@example.com")

	require.NoError(t, storage.SetFreeAccess(ctx, uid, true))
	got, err := storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.True(t, got.FreeAccess)

	require.NoError(t, storage.SetFreeAccess(ctx, uid, false))
	got, err = storage.GetProfile(ctx, uid)
	require.NoError(t, err)
	assert.False(t, got.FreeAccess)

	err = storage.SetFreeAccess(ctx, NewUID(), true)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestStorage_Content(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	firstID := NewUID()
	secondID := NewUID()
	factory.CreateContentItem(t, firstID, "go-course", "Go Course")
	factory.CreateContentItem(t, secondID, "sql-book", "SQL Book")

	items, err := storage.ListContent(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	item, err := storage.GetContentBySlug(ctx, "go-course")
	require.NoError(t, err)
	assert.Equal(t, firstID, item.ID)
	assert.Equal(t, "price_test", item.StripePriceID)

	require.NoError(t, storage.IncrementViewCount(ctx, firstID))
	item, err = storage.GetContentByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, 1, item.ViewCount)

	_, err = storage.GetContentBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestStorage_CheckDatabaseReady(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, storage.CheckDatabaseReady(context.Background()))
}
