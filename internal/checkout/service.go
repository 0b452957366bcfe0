package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/internal/cart"
	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/hours"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderRepository is the order persistence surface checkout needs.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

type cartSessions interface {
	Get(ctx context.Context, sessionID string) (*cart.Session, error)
	ClearItems(ctx context.Context, sessionID string) (*cart.Session, error)
}

type restaurantLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
}

type orderCounter interface {
	IncOrderSubmitted(restaurantID string)
}

// Service turns a cart session into a submitted order.
type Service interface {
	Submit(ctx context.Context, sessionID string) (*models.Order, error)
}

type service struct {
	orders      OrderRepository
	tx          txRunner
	carts       cartSessions
	restaurants restaurantLoader
	counter     orderCounter
}

// NewService builds a checkout service backed by the provided stack. The
// counter may be nil.
func NewService(orders OrderRepository, tx txRunner, carts cartSessions, restaurants restaurantLoader, counter orderCounter) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart sessions required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("restaurant loader required")
	}
	return &service{
		orders:      orders,
		tx:          tx,
		carts:       carts,
		restaurants: restaurants,
		counter:     counter,
	}, nil
}

// Submit validates the session in a fixed order and reports only the first
// failing check, so the storefront shows one actionable message at a time.
func (s *service) Submit(ctx context.Context, sessionID string) (*models.Order, error) {
	session, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sched := s.scheduleFor(ctx, session)
	if err := validateSession(session, sched); err != nil {
		return nil, err
	}

	order := buildOrder(session)
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.orders.WithTx(tx).Create(ctx, order)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	if s.counter != nil {
		s.counter.IncOrderSubmitted(order.RestaurantID.String())
	}

	// Lines are consumed by the order; the draft and context stay so the
	// customer can reorder without retyping.
	if _, err := s.carts.ClearItems(ctx, sessionID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) scheduleFor(ctx context.Context, session *cart.Session) hours.WeekSchedule {
	if session.RestaurantID == uuid.Nil {
		return nil
	}
	restaurant, err := s.restaurants.FindByID(ctx, session.RestaurantID)
	if err != nil || restaurant.BusinessHours == nil {
		return nil
	}
	sched, _ := hours.Parse(*restaurant.BusinessHours)
	return sched
}

func validateSession(session *cart.Session, sched hours.WeekSchedule) error {
	if strings.TrimSpace(session.Customer.Name) == "" {
		return fieldError("customerName", "customer name is required")
	}
	if strings.TrimSpace(session.Customer.Phone) == "" {
		return fieldError("customerPhone", "customer phone is required")
	}
	email := strings.TrimSpace(session.Customer.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fieldError("customerEmail", "a valid customer email is required")
	}

	pickupDate, err := time.Parse("2006-01-02", session.Customer.PickupDate)
	if err != nil {
		return fieldError("pickupDate", "pickup date must be YYYY-MM-DD")
	}
	if !sched.DateAvailable(pickupDate) {
		return fieldError("pickupDate", "restaurant is closed on the selected date")
	}
	if !sched.TimeAvailable(pickupDate, session.Customer.PickupTime) {
		return fieldError("pickupTime", "pickup time is outside business hours")
	}

	if len(session.Lines) == 0 {
		return fieldError("cart", "cart is empty")
	}
	if session.RestaurantID == uuid.Nil || session.MenuID == uuid.Nil {
		return fieldError("restaurant", "cart has no restaurant selected")
	}
	return nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"field": field})
}

func buildOrder(session *cart.Session) *models.Order {
	lines := make([]models.OrderLineItem, 0, len(session.Lines))
	for _, line := range session.Lines {
		lines = append(lines, models.OrderLineItem{
			MenuItemID:         line.MenuItemID,
			MenuItemName:       line.MenuItemName,
			MenuItemOptionID:   line.MenuItemOptionID,
			MenuItemOptionName: line.MenuItemOptionName,
			Price:              line.Price,
			Quantity:           line.Quantity,
		})
	}
	currency := session.Currency
	if !currency.IsValid() {
		currency = enums.CurrencyUSD
	}
	return &models.Order{
		RestaurantID:   session.RestaurantID,
		MenuID:         session.MenuID,
		SessionID:      session.SessionID,
		Status:         enums.OrderStatusPending,
		Currency:       currency,
		CustomerName:   strings.TrimSpace(session.Customer.Name),
		CustomerPhone:  strings.TrimSpace(session.Customer.Phone),
		CustomerEmail:  strings.TrimSpace(session.Customer.Email),
		PickupDate:     session.Customer.PickupDate,
		PickupTime:     session.Customer.PickupTime,
		AdditionalNote: session.Customer.AdditionalNote,
		TotalAmount:    session.TotalAmount().StringFixed(2),
		ItemCount:      session.ItemCount(),
		LineItems:      lines,
	}
}
