package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
)

const defaultPickupTime = "12:00"

// CustomerField names one field of the customer draft for field-level
// updates from the storefront form.
type CustomerField string

const (
	FieldName           CustomerField = "name"
	FieldPhone          CustomerField = "phone"
	FieldEmail          CustomerField = "email"
	FieldPickupDate     CustomerField = "pickupDate"
	FieldPickupTime     CustomerField = "pickupTime"
	FieldAdditionalNote CustomerField = "additionalNote"
)

// ParseCustomerField maps a wire value onto a known draft field.
func ParseCustomerField(value string) (CustomerField, bool) {
	switch CustomerField(value) {
	case FieldName, FieldPhone, FieldEmail, FieldPickupDate, FieldPickupTime, FieldAdditionalNote:
		return CustomerField(value), true
	}
	return "", false
}

// AddItemInput snapshots the item being added. Price is taken as-is.
type AddItemInput struct {
	MenuItemID         uuid.UUID
	MenuItemName       string
	Price              string
	MenuItemOptionID   *uuid.UUID
	MenuItemOptionName *string
}

// ContextInput sets the restaurant/menu/currency the session shops against.
type ContextInput struct {
	RestaurantID uuid.UUID
	MenuID       uuid.UUID
	Currency     enums.Currency
	DiscardItems bool
}

// Service exposes the cart session operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Session, error)
	UpdateQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, delta int) (*Session, error)
	RemoveItem(ctx context.Context, sessionID string, lineID uuid.UUID) (*Session, error)
	ClearItems(ctx context.Context, sessionID string) (*Session, error)
	SetCustomerField(ctx context.Context, sessionID string, field CustomerField, value string) (*Session, error)
	ResetCustomerInfo(ctx context.Context, sessionID string) (*Session, error)
	SetRestaurantContext(ctx context.Context, sessionID string, input ContextInput) (*Session, error)
	Discard(ctx context.Context, sessionID string) error
}

// Options tunes session defaults. Zero values fall back to 12:00 pickup
// and the wall clock.
type Options struct {
	DefaultPickupTime string
	Now               func() time.Time
}

type service struct {
	store             SessionStore
	defaultPickupTime string
	now               func() time.Time
}

// NewService builds a cart service over the given session store.
func NewService(store SessionStore, opts Options) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	pickup := opts.DefaultPickupTime
	if pickup == "" {
		pickup = defaultPickupTime
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: store, defaultPickupTime: pickup, now: now}, nil
}

// Get returns the session, materializing an empty one with default
// customer info when none is stored yet.
func (s *service) Get(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AddItem merges on (menu item, option): an existing line gains quantity,
// otherwise a fresh line with quantity 1 and a new line id is appended.
func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Session, error) {
	if input.MenuItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item id is required")
	}
	if strings.TrimSpace(input.MenuItemName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item name is required")
	}
	if _, err := decimal.NewFromString(input.Price); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string")
	}

	return s.mutate(ctx, sessionID, func(session *Session) error {
		for i := range session.Lines {
			if session.Lines[i].matchesKey(input.MenuItemID, input.MenuItemOptionID) {
				session.Lines[i].Quantity++
				return nil
			}
		}
		session.Lines = append(session.Lines, Line{
			LineID:             uuid.New(),
			MenuItemID:         input.MenuItemID,
			MenuItemName:       input.MenuItemName,
			MenuItemOptionID:   copyUUIDPtr(input.MenuItemOptionID),
			MenuItemOptionName: copyStringPtr(input.MenuItemOptionName),
			Price:              input.Price,
			Quantity:           1,
		})
		return nil
	})
}

// UpdateQuantity applies a signed delta; a resulting quantity of zero or
// below removes the line.
func (s *service) UpdateQuantity(ctx context.Context, sessionID string, lineID uuid.UUID, delta int) (*Session, error) {
	return s.mutate(ctx, sessionID, func(session *Session) error {
		idx := session.findLine(lineID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		next := session.Lines[idx].Quantity + delta
		if next <= 0 {
			session.removeLineAt(idx)
			return nil
		}
		session.Lines[idx].Quantity = next
		return nil
	})
}

// RemoveItem drops the line regardless of quantity.
func (s *service) RemoveItem(ctx context.Context, sessionID string, lineID uuid.UUID) (*Session, error) {
	return s.mutate(ctx, sessionID, func(session *Session) error {
		idx := session.findLine(lineID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		session.removeLineAt(idx)
		return nil
	})
}

// ClearItems empties the lines. The customer draft and restaurant context
// survive so a re-order keeps the filled form.
func (s *service) ClearItems(ctx context.Context, sessionID string) (*Session, error) {
	return s.mutate(ctx, sessionID, func(session *Session) error {
		session.Lines = nil
		return nil
	})
}

func (s *service) SetCustomerField(ctx context.Context, sessionID string, field CustomerField, value string) (*Session, error) {
	return s.mutate(ctx, sessionID, func(session *Session) error {
		switch field {
		case FieldName:
			session.Customer.Name = value
		case FieldPhone:
			session.Customer.Phone = value
		case FieldEmail:
			session.Customer.Email = value
		case FieldPickupDate:
			session.Customer.PickupDate = value
		case FieldPickupTime:
			session.Customer.PickupTime = value
		case FieldAdditionalNote:
			session.Customer.AdditionalNote = value
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown customer field")
		}
		return nil
	})
}

// ResetCustomerInfo restores the draft defaults: today's date, the default
// pickup time, blank contact fields.
func (s *service) ResetCustomerInfo(ctx context.Context, sessionID string) (*Session, error) {
	return s.mutate(ctx, sessionID, func(session *Session) error {
		session.Customer = s.defaultDraft()
		return nil
	})
}

// SetRestaurantContext points the session at a restaurant/menu pair.
// Switching restaurants while lines exist is refused unless the caller
// explicitly discards them.
func (s *service) SetRestaurantContext(ctx context.Context, sessionID string, input ContextInput) (*Session, error) {
	if input.RestaurantID == uuid.Nil || input.MenuID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id and menu id are required")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	return s.mutate(ctx, sessionID, func(session *Session) error {
		switching := session.RestaurantID != uuid.Nil && session.RestaurantID != input.RestaurantID
		if switching && len(session.Lines) > 0 && !input.DiscardItems {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart holds items from another restaurant")
		}
		if switching && input.DiscardItems {
			session.Lines = nil
		}
		session.RestaurantID = input.RestaurantID
		session.MenuID = input.MenuID
		session.Currency = input.Currency
		return nil
	})
}

// Discard deletes the stored session entirely.
func (s *service) Discard(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.store.Delete(ctx, sessionID)
}

func (s *service) load(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = &Session{
			SessionID: sessionID,
			Currency:  enums.CurrencyUSD,
			Customer:  s.defaultDraft(),
		}
	}
	return session, nil
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) defaultDraft() CustomerDraft {
	return CustomerDraft{
		PickupDate: s.now().Format("2006-01-02"),
		PickupTime: s.defaultPickupTime,
	}
}

func copyUUIDPtr(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}
