package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
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

type stubSubStore struct {
	existing *models.Subscription
	created  *models.Subscription
	updated  *models.Subscription
}

func (s *stubSubStore) FindByStripeID(_ context.Context, stripeID string) (*models.Subscription, error) {
	if s.existing != nil && s.existing.StripeSubscriptionID == stripeID {
		return s.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubStore) Create(_ context.Context, sub *models.Subscription) error {
	s.created = sub
	return nil
}

func (s *stubSubStore) Update(_ context.Context, sub *models.Subscription) error {
	s.updated = sub
	return nil
}

type stubRestaurantStore struct {
	restaurant *models.Restaurant
	setActive  []bool
}

func (s *stubRestaurantStore) FindByID(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	if s.restaurant == nil || s.restaurant.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.restaurant, nil
}

func (s *stubRestaurantStore) SetSubscriptionActive(_ context.Context, _ uuid.UUID, active bool) error {
	s.setActive = append(s.setActive, active)
	return nil
}

type stubOrderMarker struct {
	paidIntents []string
}

func (s *stubOrderMarker) MarkPaidByIntent(_ context.Context, intentID string) error {
	s.paidIntents = append(s.paidIntents, intentID)
	return nil
}

type stubWebhookCache struct {
	deleted []string
}

func (s *stubWebhookCache) Del(_ context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

func (s *stubWebhookCache) CacheKey(parts ...string) string {
	key := "cache"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func subscriptionEvent(t *testing.T, eventType stripe.EventType, payload string) *stripe.Event {
	t.Helper()
	return &stripe.Event{
		ID:   "evt_1",
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestHandleSubscriptionCreatedActivatesRestaurant(t *testing.T) {
	t.Parallel()

	restaurantID := uuid.New()
	subs := &stubSubStore{}
	restaurants := &stubRestaurantStore{restaurant: &models.Restaurant{ID: restaurantID}}
	cache := &stubWebhookCache{}
	svc, err := NewService(ServiceParams{
		Subscriptions: subs,
		Restaurants:   restaurants,
		Orders:        &stubOrderMarker{},
		Cache:         cache,
	})
	require.NoError(t, err)

	payload := fmt.Sprintf(`{
		"id": "sub_1",
		"status": "active",
		"customer": {"id": "cus_1"},
		"metadata": {"restaurant_id": %q, "checkout_session_id": "cs_1"},
		"items": {"data": [{"price": {"id": "price_1"}, "current_period_end": 1735689600}]}
	}`, restaurantID)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionCreated, payload)
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	require.NotNil(t, subs.created, "subscription row created")
	assert.Equal(t, enums.SubscriptionStatusActive, subs.created.Status)
	assert.Equal(t, restaurantID, subs.created.RestaurantID)
	assert.Equal(t, []bool{true}, restaurants.setActive)
	assert.Len(t, cache.deleted, 1)
}

func TestHandleSubscriptionDeletedFallsBackToStoredRestaurant(t *testing.T) {
	t.Parallel()

	restaurantID := uuid.New()
	subs := &stubSubStore{existing: &models.Subscription{
		RestaurantID:         restaurantID,
		StripeSubscriptionID: "sub_1",
		Status:               enums.SubscriptionStatusActive,
	}}
	restaurants := &stubRestaurantStore{restaurant: &models.Restaurant{
		ID:                 restaurantID,
		SubscriptionActive: true,
	}}
	svc, err := NewService(ServiceParams{
		Subscriptions: subs,
		Restaurants:   restaurants,
		Orders:        &stubOrderMarker{},
	})
	require.NoError(t, err)

	// Deleted events arrive without the checkout metadata.
	payload := `{"id": "sub_1", "status": "canceled", "customer": {"id": "cus_1"}}`
	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionDeleted, payload)
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	require.NotNil(t, subs.updated, "stored subscription updated")
	assert.Equal(t, enums.SubscriptionStatusCanceled, subs.updated.Status)
	assert.Equal(t, []bool{false}, restaurants.setActive)
}

func TestHandleSubscriptionSkipsFlagWriteWhenUnchanged(t *testing.T) {
	t.Parallel()

	restaurantID := uuid.New()
	subs := &stubSubStore{existing: &models.Subscription{
		RestaurantID:         restaurantID,
		StripeSubscriptionID: "sub_1",
		Status:               enums.SubscriptionStatusActive,
	}}
	restaurants := &stubRestaurantStore{restaurant: &models.Restaurant{
		ID:                 restaurantID,
		SubscriptionActive: true,
	}}
	svc, err := NewService(ServiceParams{
		Subscriptions: subs,
		Restaurants:   restaurants,
		Orders:        &stubOrderMarker{},
	})
	require.NoError(t, err)

	payload := `{"id": "sub_1", "status": "active", "customer": {"id": "cus_1"}}`
	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, payload)
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, restaurants.setActive, "no flag write when unchanged")
}

func TestHandlePaymentIntentSucceededMarksOrder(t *testing.T) {
	t.Parallel()

	orders := &stubOrderMarker{}
	svc, err := NewService(ServiceParams{
		Subscriptions: &stubSubStore{},
		Restaurants:   &stubRestaurantStore{},
		Orders:        orders,
	})
	require.NoError(t, err)

	event := subscriptionEvent(t, stripe.EventTypePaymentIntentSucceeded, `{"id": "pi_123"}`)
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Equal(t, []string{"pi_123"}, orders.paidIntents)
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	t.Parallel()

	subs := &stubSubStore{}
	svc, err := NewService(ServiceParams{
		Subscriptions: subs,
		Restaurants:   &stubRestaurantStore{},
		Orders:        &stubOrderMarker{},
	})
	require.NoError(t, err)

	event := subscriptionEvent(t, stripe.EventType("charge.refunded"), `{}`)
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Nil(t, subs.created, "unknown event types must not touch subscriptions")
	assert.Nil(t, subs.updated)
}

type stubIdempotencyStore struct {
	keys map[string]bool
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.keys == nil {
		s.keys = map[string]bool{}
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestIdempotencyGuardFencesRedelivery(t *testing.T) {
	t.Parallel()

	guard, err := NewIdempotencyGuard(&stubIdempotencyStore{}, time.Hour, "stripe")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, seen, "first delivery is fresh")

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.True(t, seen, "redelivery of the same event id is fenced")

	require.NoError(t, guard.Delete(context.Background(), "evt_1"))
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, seen, "released event id is processable again")
}
