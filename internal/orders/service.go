package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/pagination"
)

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	StatusCounts(ctx context.Context, restaurantID uuid.UUID) (map[enums.OrderStatus]int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	MarkPaid(ctx context.Context, intentID string) error
}

type restaurantLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
}

// Page is one cursor page of orders.
type Page struct {
	Orders     []models.Order `json:"orders"`
	NextCursor *string        `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// Service exposes the admin order board operations.
type Service interface {
	Get(ctx context.Context, ownerID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, ownerID, restaurantID uuid.UUID, params pagination.Params) (*Page, error)
	Counts(ctx context.Context, ownerID, restaurantID uuid.UUID) (map[enums.OrderStatus]int64, error)
	Transition(ctx context.Context, ownerID, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	MarkPaidByIntent(ctx context.Context, intentID string) error
}

type service struct {
	repo        orderRepository
	restaurants restaurantLoader
}

// NewService builds an order service with the provided repositories.
func NewService(repo orderRepository, restaurants restaurantLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("restaurant loader required")
	}
	return &service{repo: repo, restaurants: restaurants}, nil
}

func (s *service) Get(ctx context.Context, ownerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRestaurantOwner(ctx, ownerID, order.RestaurantID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, ownerID, restaurantID uuid.UUID, params pagination.Params) (*Page, error) {
	if err := s.requireRestaurantOwner(ctx, ownerID, restaurantID); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByRestaurant(ctx, restaurantID, cursor, pagination.PeekLimit(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := &Page{Orders: rows}
	if len(rows) > limit {
		page.Orders = rows[:limit]
		page.HasMore = true
		last := page.Orders[len(page.Orders)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func (s *service) Counts(ctx context.Context, ownerID, restaurantID uuid.UUID) (map[enums.OrderStatus]int64, error) {
	if err := s.requireRestaurantOwner(ctx, ownerID, restaurantID); err != nil {
		return nil, err
	}
	counts, err := s.repo.StatusCounts(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	return counts, nil
}

// Transition moves an order across the kanban board. Illegal moves are a
// state conflict, not a validation error: the request is well-formed, the
// order just is not in a position to accept it.
func (s *service) Transition(ctx context.Context, ownerID, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRestaurantOwner(ctx, ownerID, order.RestaurantID); err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}
	if err := s.repo.UpdateStatus(ctx, orderID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = target
	return order, nil
}

// MarkPaidByIntent is called from the payment webhook; a missing order is
// not an error there since intents may belong to other products.
func (s *service) MarkPaidByIntent(ctx context.Context, intentID string) error {
	if intentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	if err := s.repo.MarkPaid(ctx, intentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) requireRestaurantOwner(ctx context.Context, ownerID, restaurantID uuid.UUID) error {
	restaurant, err := s.restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if restaurant.OwnerID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "restaurant belongs to another owner")
	}
	return nil
}
