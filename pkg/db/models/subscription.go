package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/duboyz/kumiko-backend/pkg/enums"
)

// Subscription mirrors the Stripe billing subscription for a restaurant.
// Rows are created and updated by the webhook sync; reads come from the
// post-checkout verification flow and the admin dashboard.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID         uuid.UUID                `gorm:"column:restaurant_id;type:uuid;not null;index"`
	StripeSubscriptionID string                   `gorm:"column:stripe_subscription_id;not null;uniqueIndex"`
	StripeCustomerID     string                   `gorm:"column:stripe_customer_id;not null"`
	CheckoutSessionID    *string                  `gorm:"column:checkout_session_id;index"`
	PriceID              *string                  `gorm:"column:price_id"`
	Status               enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end"`
	CanceledAt           *time.Time               `gorm:"column:canceled_at"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
