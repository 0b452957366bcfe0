package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/internal/subscriptions"
	"github.com/duboyz/kumiko-backend/pkg/db/models"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
)

type subscriptionStore interface {
	FindByStripeID(ctx context.Context, stripeID string) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
}

type restaurantStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	SetSubscriptionActive(ctx context.Context, id uuid.UUID, active bool) error
}

type orderMarker interface {
	MarkPaidByIntent(ctx context.Context, intentID string) error
}

type cacheInvalidator interface {
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// ServiceParams wires the webhook processor's collaborators.
type ServiceParams struct {
	Subscriptions subscriptionStore
	Restaurants   restaurantStore
	Orders        orderMarker
	Cache         cacheInvalidator
}

// Service applies Stripe events to local state. Handlers are idempotent so
// redelivery (and the at-least-once guard in front) stays safe.
type Service struct {
	subs        subscriptionStore
	restaurants restaurantStore
	orders      orderMarker
	cache       cacheInvalidator
}

// NewService validates the wiring. Cache may be nil.
func NewService(params ServiceParams) (*Service, error) {
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription store required")
	}
	if params.Restaurants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "restaurant store required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order marker required")
	}
	return &Service{
		subs:        params.Subscriptions,
		restaurants: params.Restaurants,
		orders:      params.Orders,
		cache:       params.Cache,
	}, nil
}

// HandleEvent routes one verified event. Unknown types are acknowledged
// without action so Stripe stops retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.syncSubscription(ctx, &stripeSub)
	case stripe.EventTypePaymentIntentSucceeded:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
		}
		return s.orders.MarkPaidByIntent(ctx, intent.ID)
	default:
		return nil
	}
}

func (s *Service) syncSubscription(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}

	stored, err := s.subs.FindByStripeID(ctx, stripeSub.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	restaurantID, metadataErr := subscriptions.RestaurantIDFromMetadata(stripeSub.Metadata)
	if metadataErr != nil {
		if stored == nil {
			return metadataErr
		}
		restaurantID = stored.RestaurantID
	}

	var current *models.Subscription
	if stored == nil {
		built, buildErr := subscriptions.BuildFromStripe(stripeSub, restaurantID)
		if buildErr != nil {
			return buildErr
		}
		if err := s.subs.Create(ctx, built); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		current = built
	} else {
		if err := subscriptions.UpdateFromStripe(stored, stripeSub); err != nil {
			return err
		}
		if err := s.subs.Update(ctx, stored); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
		}
		current = stored
	}

	restaurant, err := s.restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}

	active := current.Status.IsActive()
	if restaurant.SubscriptionActive != active {
		if err := s.restaurants.SetSubscriptionActive(ctx, restaurantID, active); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription flag")
		}
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, s.cache.CacheKey("subscription", restaurantID.String()))
	}
	return nil
}
