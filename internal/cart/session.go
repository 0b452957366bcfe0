package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duboyz/kumiko-backend/pkg/enums"
)

// Session is the full cart document stored per storefront session. It is
// serialized as a single JSON value so every mutation persists atomically.
type Session struct {
	SessionID    string         `json:"session_id"`
	RestaurantID uuid.UUID      `json:"restaurant_id"`
	MenuID       uuid.UUID      `json:"menu_id"`
	Currency     enums.Currency `json:"currency"`
	Lines        []Line         `json:"lines"`
	Customer     CustomerDraft  `json:"customer"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Line is one cart entry. LineID is generated on insert and never reused;
// callers address lines by it rather than by position.
type Line struct {
	LineID             uuid.UUID  `json:"line_id"`
	MenuItemID         uuid.UUID  `json:"menu_item_id"`
	MenuItemName       string     `json:"menu_item_name"`
	MenuItemOptionID   *uuid.UUID `json:"menu_item_option_id,omitempty"`
	MenuItemOptionName *string    `json:"menu_item_option_name,omitempty"`
	Price              string     `json:"price"`
	Quantity           int        `json:"quantity"`
}

// CustomerDraft is the in-progress checkout form kept alongside the lines.
type CustomerDraft struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	PickupDate     string `json:"pickup_date"`
	PickupTime     string `json:"pickup_time"`
	AdditionalNote string `json:"additional_note"`
}

// matchesKey reports whether the line holds the given merge key. Two lines
// never share a key within one session.
func (l Line) matchesKey(menuItemID uuid.UUID, optionID *uuid.UUID) bool {
	if l.MenuItemID != menuItemID {
		return false
	}
	if (l.MenuItemOptionID == nil) != (optionID == nil) {
		return false
	}
	return l.MenuItemOptionID == nil || *l.MenuItemOptionID == *optionID
}

// TotalAmount returns the exact sum of price times quantity across lines.
func (s *Session) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		price, err := decimal.NewFromString(line.Price)
		if err != nil {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// ItemCount returns the sum of quantities across lines.
func (s *Session) ItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

func (s *Session) findLine(lineID uuid.UUID) int {
	for i := range s.Lines {
		if s.Lines[i].LineID == lineID {
			return i
		}
	}
	return -1
}

func (s *Session) removeLineAt(idx int) {
	s.Lines = append(s.Lines[:idx], s.Lines[idx+1:]...)
}
