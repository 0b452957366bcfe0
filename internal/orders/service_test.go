package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	"github.com/duboyz/kumiko-backend/pkg/enums"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
	"github.com/duboyz/kumiko-backend/pkg/pagination"
)

func TestTransitionMatrix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusReady, true},
		{enums.OrderStatusReady, enums.OrderStatusCompleted, true},
		{enums.OrderStatusPending, enums.OrderStatusReady, false},
		{enums.OrderStatusCompleted, enums.OrderStatusPending, false},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusReady, enums.OrderStatusCancelled, true},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed, false},
		{enums.OrderStatusCompleted, enums.OrderStatusCancelled, false},
	}

	for _, tc := range cases {
		ownerID := uuid.New()
		restaurant := &models.Restaurant{ID: uuid.New(), OwnerID: ownerID}
		order := &models.Order{ID: uuid.New(), RestaurantID: restaurant.ID, Status: tc.from}
		svc := newTestService(t, &stubOrderRepo{order: order}, restaurant)

		got, err := svc.Transition(context.Background(), ownerID, order.ID, tc.to)
		if tc.allowed {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, got.Status, "%s -> %s", tc.from, tc.to)
			continue
		}
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "%s -> %s: expected state conflict, got %v", tc.from, tc.to, err)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code(), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionChecksOwnership(t *testing.T) {
	t.Parallel()

	restaurant := &models.Restaurant{ID: uuid.New(), OwnerID: uuid.New()}
	order := &models.Order{ID: uuid.New(), RestaurantID: restaurant.ID, Status: enums.OrderStatusPending}
	svc := newTestService(t, &stubOrderRepo{order: order}, restaurant)

	_, err := svc.Transition(context.Background(), uuid.New(), order.ID, enums.OrderStatusConfirmed)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestListPaginates(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	restaurant := &models.Restaurant{ID: uuid.New(), OwnerID: ownerID}
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]models.Order, 3)
	for i := range rows {
		rows[i] = models.Order{ID: uuid.New(), RestaurantID: restaurant.ID, CreatedAt: base.Add(-time.Duration(i) * time.Hour)}
	}
	svc := newTestService(t, &stubOrderRepo{list: rows}, restaurant)

	page, err := svc.List(context.Background(), ownerID, restaurant.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)

	cursor, err := pagination.ParseCursor(*page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, page.Orders[1].ID, cursor.ID, "cursor points at the last returned row")
}

func TestMarkPaidByIntentToleratesUnknownIntent(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{markPaidErr: gorm.ErrRecordNotFound}, &models.Restaurant{ID: uuid.New()})
	assert.NoError(t, svc.MarkPaidByIntent(context.Background(), "pi_123"), "unknown intent is a no-op")
}

func newTestService(t *testing.T, repo *stubOrderRepo, restaurant *models.Restaurant) Service {
	t.Helper()
	svc, err := NewService(repo, restaurantLoaderFunc(func(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
		if restaurant == nil || restaurant.ID != id {
			return nil, gorm.ErrRecordNotFound
		}
		return restaurant, nil
	}))
	require.NoError(t, err)
	return svc
}

type restaurantLoaderFunc func(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)

func (fn restaurantLoaderFunc) FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	return fn(ctx, id)
}

type stubOrderRepo struct {
	order       *models.Order
	list        []models.Order
	markPaidErr error
}

func (s *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s.order
	return &clone, nil
}

func (s *stubOrderRepo) ListByRestaurant(_ context.Context, _ uuid.UUID, _ *pagination.Cursor, limit int) ([]models.Order, error) {
	if limit > len(s.list) {
		limit = len(s.list)
	}
	return s.list[:limit], nil
}

func (s *stubOrderRepo) StatusCounts(_ context.Context, _ uuid.UUID) (map[enums.OrderStatus]int64, error) {
	return map[enums.OrderStatus]int64{enums.OrderStatusPending: int64(len(s.list))}, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status enums.OrderStatus) error {
	s.order.Status = status
	return nil
}

func (s *stubOrderRepo) MarkPaid(_ context.Context, _ string) error {
	return s.markPaidErr
}
