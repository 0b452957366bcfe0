package subscriptions

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
)

// BuildFromStripe maps a provider subscription into the canonical model.
func BuildFromStripe(stripeSub *stripe.Subscription, restaurantID uuid.UUID) (*models.Subscription, error) {
	if stripeSub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe subscription is nil")
	}
	status, err := enums.ParseSubscriptionStatus(string(stripeSub.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid subscription status")
	}

	sub := &models.Subscription{
		RestaurantID:         restaurantID,
		StripeSubscriptionID: stripeSub.ID,
		Status:               status,
		PriceID:              priceIDPtr(stripeSub),
		CurrentPeriodEnd:     periodEnd(stripeSub),
		CanceledAt:           toTimePtr(stripeSub.CanceledAt),
	}
	if stripeSub.Customer != nil {
		sub.StripeCustomerID = stripeSub.Customer.ID
	}
	if session, ok := stripeSub.Metadata["checkout_session_id"]; ok && session != "" {
		sub.CheckoutSessionID = &session
	}
	return sub, nil
}

// UpdateFromStripe mutates the stored subscription with fresh provider data.
func UpdateFromStripe(target *models.Subscription, stripeSub *stripe.Subscription) error {
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "target subscription is nil")
	}
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "stripe subscription is nil")
	}
	status, err := enums.ParseSubscriptionStatus(string(stripeSub.Status))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid subscription status")
	}

	target.StripeSubscriptionID = stripeSub.ID
	target.Status = status
	if price := priceIDPtr(stripeSub); price != nil {
		target.PriceID = price
	}
	target.CurrentPeriodEnd = periodEnd(stripeSub)
	target.CanceledAt = toTimePtr(stripeSub.CanceledAt)
	if stripeSub.Customer != nil {
		target.StripeCustomerID = stripeSub.Customer.ID
	}
	if session, ok := stripeSub.Metadata["checkout_session_id"]; ok && session != "" {
		target.CheckoutSessionID = &session
	}
	return nil
}

// RestaurantIDFromMetadata extracts the restaurant id attached when the
// Checkout session was created.
func RestaurantIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	if metadata == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription metadata is required")
	}
	raw, ok := metadata["restaurant_id"]
	if !ok || strings.TrimSpace(raw) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant_id missing from metadata")
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid restaurant_id metadata")
	}
	return id, nil
}

func priceIDPtr(sub *stripe.Subscription) *string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return nil
	}
	id := sub.Items.Data[0].Price.ID
	return &id
}

// periodEnd takes the latest item period end; the provider moved the field
// off the subscription object onto its items.
func periodEnd(sub *stripe.Subscription) *time.Time {
	if sub.Items == nil {
		return nil
	}
	var latest int64
	for _, item := range sub.Items.Data {
		if item != nil && item.CurrentPeriodEnd > latest {
			latest = item.CurrentPeriodEnd
		}
	}
	return toTimePtr(latest)
}

func toTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
