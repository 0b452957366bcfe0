package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/duboyz/kumiko-backend/pkg/enums"
)

// Order is a submitted pickup order with line-item snapshots taken at
// checkout time. Menu edits after submission do not affect it.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID uuid.UUID         `gorm:"column:restaurant_id;type:uuid;not null;index"`
	MenuID       uuid.UUID         `gorm:"column:menu_id;type:uuid;not null"`
	SessionID    string            `gorm:"column:session_id;not null"`
	Status       enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Currency     enums.Currency    `gorm:"column:currency;not null;default:'USD'"`

	CustomerName   string `gorm:"column:customer_name;not null"`
	CustomerPhone  string `gorm:"column:customer_phone;not null"`
	CustomerEmail  string `gorm:"column:customer_email;not null"`
	PickupDate     string `gorm:"column:pickup_date;not null"`
	PickupTime     string `gorm:"column:pickup_time;not null"`
	AdditionalNote string `gorm:"column:additional_note"`

	TotalAmount string `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ItemCount   int    `gorm:"column:item_count;not null"`

	Paid                  bool    `gorm:"column:paid;not null;default:false"`
	StripePaymentIntentID *string `gorm:"column:stripe_payment_intent_id"`
	StripeClientSecret    *string `gorm:"column:stripe_client_secret"`

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem snapshots one cart line at submission time.
type OrderLineItem struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID         uuid.UUID  `gorm:"column:menu_item_id;type:uuid;not null"`
	MenuItemName       string     `gorm:"column:menu_item_name;not null"`
	MenuItemOptionID   *uuid.UUID `gorm:"column:menu_item_option_id;type:uuid"`
	MenuItemOptionName *string    `gorm:"column:menu_item_option_name"`
	Price              string     `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity           int        `gorm:"column:quantity;not null"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
}
