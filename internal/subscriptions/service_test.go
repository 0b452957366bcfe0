package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
)

func TestVerifyResolvesImmediatelyWhenRecordExists(t *testing.T) {
	t.Parallel()

	restaurantID := uuid.New()
	repo := &stubSubRepo{
		latest: &models.Subscription{RestaurantID: restaurantID, Status: enums.SubscriptionStatusActive},
	}
	cacheStore := &stubCache{}
	svc := newTestService(t, repo, cacheStore)

	result, err := svc.VerifyAfterCheckout(context.Background(), restaurantID, "cs_123")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, result.Active)
	assert.Len(t, cacheStore.deleted, 1, "cache is invalidated before the read")
	assert.Zero(t, repo.sessionLookups, "no retry when the record exists")
}

func TestVerifyRetriesUntilWebhookLands(t *testing.T) {
	t.Parallel()

	restaurantID := uuid.New()
	repo := &stubSubRepo{
		sessionHitAfter: 2,
		session:         &models.Subscription{RestaurantID: restaurantID, Status: enums.SubscriptionStatusTrialing},
	}
	svc := newTestService(t, repo, &stubCache{})

	result, err := svc.VerifyAfterCheckout(context.Background(), restaurantID, "cs_123")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, result.Active, "trialing counts as active")
	assert.Equal(t, 2, repo.sessionLookups)
}

func TestVerifyResolvesEvenWhenNothingMaterializes(t *testing.T) {
	t.Parallel()

	repo := &stubSubRepo{}
	svc := newTestService(t, repo, &stubCache{})

	result, err := svc.VerifyAfterCheckout(context.Background(), uuid.New(), "cs_123")
	require.NoError(t, err, "exhausted polling resolves instead of erroring")
	assert.False(t, result.Found)
	assert.False(t, result.Active)
	assert.Equal(t, 3, repo.sessionLookups, "initial try plus two retries")
}

func TestVerifySkipsPollingWithoutSessionID(t *testing.T) {
	t.Parallel()

	repo := &stubSubRepo{}
	svc := newTestService(t, repo, &stubCache{})

	result, err := svc.VerifyAfterCheckout(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Zero(t, repo.sessionLookups)
}

func TestBuildFromStripeMapsFields(t *testing.T) {
	t.Parallel()

	restaurantID := uuid.New()
	stripeSub := &stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_1"},
		Metadata: map[string]string{
			"restaurant_id":       restaurantID.String(),
			"checkout_session_id": "cs_1",
		},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{ID: "price_1"}, CurrentPeriodEnd: 1735689600},
			},
		},
	}

	gotID, err := RestaurantIDFromMetadata(stripeSub.Metadata)
	require.NoError(t, err)
	assert.Equal(t, restaurantID, gotID)

	sub, err := BuildFromStripe(stripeSub, restaurantID)
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
	assert.Equal(t, "cus_1", sub.StripeCustomerID)
	assert.Equal(t, enums.SubscriptionStatusActive, sub.Status)
	require.NotNil(t, sub.PriceID)
	assert.Equal(t, "price_1", *sub.PriceID)
	require.NotNil(t, sub.CheckoutSessionID)
	assert.Equal(t, "cs_1", *sub.CheckoutSessionID)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Equal(t, 2025, sub.CurrentPeriodEnd.Year())
}

func newTestService(t *testing.T, repo *stubSubRepo, cacheStore *stubCache) Service {
	t.Helper()
	svc, err := NewService(repo, cacheStore, nil, Options{MaxAttempts: 2, RetryDelay: time.Millisecond})
	require.NoError(t, err)
	return svc
}

type stubSubRepo struct {
	latest          *models.Subscription
	session         *models.Subscription
	sessionHitAfter int
	sessionLookups  int
}

func (s *stubSubRepo) FindLatestByRestaurant(_ context.Context, _ uuid.UUID) (*models.Subscription, error) {
	if s.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.latest, nil
}

func (s *stubSubRepo) FindByCheckoutSession(_ context.Context, _ string) (*models.Subscription, error) {
	s.sessionLookups++
	if s.session != nil && s.sessionLookups >= s.sessionHitAfter {
		return s.session, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCache struct {
	deleted []string
}

func (s *stubCache) Del(_ context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

func (s *stubCache) CacheKey(parts ...string) string {
	key := "kumiko:cache"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}
