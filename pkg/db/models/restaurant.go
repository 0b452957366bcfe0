package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/duboyz/kumiko-backend/pkg/enums"
)

// Restaurant is a tenant: one storefront, one menu tree, one Stripe account.
// BusinessHours is the opaque JSON document described in pkg/hours; it is
// validated on write and parsed permissively on read.
type Restaurant struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID            uuid.UUID      `gorm:"column:owner_id;type:uuid;not null"`
	Name               string         `gorm:"column:name;not null"`
	Slug               string         `gorm:"column:slug;not null;uniqueIndex"`
	Currency           enums.Currency `gorm:"column:currency;not null;default:'USD'"`
	BusinessHours      *string        `gorm:"column:business_hours;type:text"`
	StripeAccountID    *string        `gorm:"column:stripe_account_id"`
	SubscriptionActive bool           `gorm:"column:subscription_active;not null;default:false"`
	Menus              []Menu         `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
