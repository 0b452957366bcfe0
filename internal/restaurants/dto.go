package restaurants

import (
	"time"

	"github.com/google/uuid"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
)

// RestaurantDTO exposes tenant data in API responses.
type RestaurantDTO struct {
	ID                 uuid.UUID      `json:"id"`
	OwnerID            uuid.UUID      `json:"owner_id"`
	Name               string         `json:"name"`
	Slug               string         `json:"slug"`
	Currency           enums.Currency `json:"currency"`
	BusinessHours      *string        `json:"business_hours,omitempty"`
	StripeAccountID    *string        `json:"stripe_account_id,omitempty"`
	SubscriptionActive bool           `json:"subscription_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// CreateRestaurantInput holds creation-time data for a new restaurant.
type CreateRestaurantInput struct {
	Name          string
	Slug          string
	Currency      enums.Currency
	BusinessHours *string
}

// UpdateRestaurantInput carries the mutable fields; nil means unchanged.
type UpdateRestaurantInput struct {
	Name          *string
	Slug          *string
	Currency      *enums.Currency
	BusinessHours *string
}

// PickupWindowDTO is what the storefront date/time pickers consume for a
// single candidate pickup date.
type PickupWindowDTO struct {
	Date      string   `json:"date"`
	Available bool     `json:"available"`
	Disabled  bool     `json:"disabled"`
	MinTime   *string  `json:"min_time,omitempty"`
	MaxTime   *string  `json:"max_time,omitempty"`
	MinDate   *string  `json:"min_date,omitempty"`
	Dates     []string `json:"dates"`
}

// FromModel maps the persisted restaurant into a DTO.
func FromModel(m *models.Restaurant) *RestaurantDTO {
	if m == nil {
		return nil
	}
	return &RestaurantDTO{
		ID:                 m.ID,
		OwnerID:            m.OwnerID,
		Name:               m.Name,
		Slug:               m.Slug,
		Currency:           m.Currency,
		BusinessHours:      m.BusinessHours,
		StripeAccountID:    m.StripeAccountID,
		SubscriptionActive: m.SubscriptionActive,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
