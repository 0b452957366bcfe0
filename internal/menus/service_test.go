package menus

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
)

func TestCreateMenuChecksOwnership(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	restaurant := &models.Restaurant{ID: uuid.New(), OwnerID: ownerID}
	svc := newTestService(t, &stubMenuRepo{}, restaurant)

	_, err := svc.CreateMenu(context.Background(), uuid.New(), restaurant.ID, CreateMenuInput{Name: "Dinner"})
	requireCode(t, err, pkgerrors.CodeForbidden)

	menu, err := svc.CreateMenu(context.Background(), ownerID, restaurant.ID, CreateMenuInput{Name: "Dinner"})
	require.NoError(t, err)
	assert.True(t, menu.IsActive)
	assert.Equal(t, restaurant.ID, menu.RestaurantID)
}

func TestReorderCategoriesRequiresPermutation(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	menuID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	repo := &stubMenuRepo{owner: ownerID, categoryIDs: []uuid.UUID{a, b, c}}
	svc := newTestService(t, repo, &models.Restaurant{ID: uuid.New(), OwnerID: ownerID})

	err := svc.ReorderCategories(context.Background(), ownerID, menuID, ReorderInput{CategoryIDs: []uuid.UUID{a, b}})
	requireCode(t, err, pkgerrors.CodeValidation)

	err = svc.ReorderCategories(context.Background(), ownerID, menuID, ReorderInput{CategoryIDs: []uuid.UUID{a, b, uuid.New()}})
	requireCode(t, err, pkgerrors.CodeValidation)

	require.NoError(t, svc.ReorderCategories(context.Background(), ownerID, menuID, ReorderInput{CategoryIDs: []uuid.UUID{c, a, b}}))
	assert.Equal(t, []uuid.UUID{c, a, b}, repo.reordered)
}

func TestCreateItemValidatesPrice(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	repo := &stubMenuRepo{owner: ownerID}
	svc := newTestService(t, repo, &models.Restaurant{ID: uuid.New(), OwnerID: ownerID})

	_, err := svc.CreateItem(context.Background(), ownerID, uuid.New(), CreateItemInput{Name: "Ramen", Price: "abc"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateItem(context.Background(), ownerID, uuid.New(), CreateItemInput{Name: "Ramen", Price: "-1.00"})
	requireCode(t, err, pkgerrors.CodeValidation)

	item, err := svc.CreateItem(context.Background(), ownerID, uuid.New(), CreateItemInput{
		Name: "Ramen", Price: "12.50", Allergens: []string{"gluten", "soy"},
	})
	require.NoError(t, err)
	assert.True(t, item.IsAvailable)
	assert.Equal(t, "12.50", item.Price)
}

func TestOwnershipLookupMapsErrors(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	repo := &stubMenuRepo{ownerErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo, &models.Restaurant{ID: uuid.New(), OwnerID: ownerID})

	err := svc.DeleteItem(context.Background(), ownerID, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func newTestService(t *testing.T, repo *stubMenuRepo, restaurant *models.Restaurant) Service {
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

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

type restaurantLoaderFunc func(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)

func (fn restaurantLoaderFunc) FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	return fn(ctx, id)
}

type stubMenuRepo struct {
	owner       uuid.UUID
	ownerErr    error
	categoryIDs []uuid.UUID
	reordered   []uuid.UUID
}

func (s *stubMenuRepo) CreateMenu(_ context.Context, menu *models.Menu) (*models.Menu, error) {
	menu.ID = uuid.New()
	return menu, nil
}

func (s *stubMenuRepo) FindMenuByID(_ context.Context, id uuid.UUID) (*models.Menu, error) {
	return &models.Menu{ID: id}, nil
}

func (s *stubMenuRepo) UpdateMenu(_ context.Context, _ *models.Menu) error { return nil }
func (s *stubMenuRepo) DeleteMenu(_ context.Context, _ uuid.UUID) error    { return nil }

func (s *stubMenuRepo) MenuOwner(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
	return s.ownerResult()
}

func (s *stubMenuRepo) CreateCategory(_ context.Context, category *models.MenuCategory) (*models.MenuCategory, error) {
	category.ID = uuid.New()
	return category, nil
}

func (s *stubMenuRepo) FindCategoryByID(_ context.Context, id uuid.UUID) (*models.MenuCategory, error) {
	return &models.MenuCategory{ID: id}, nil
}

func (s *stubMenuRepo) UpdateCategory(_ context.Context, _ *models.MenuCategory) error { return nil }
func (s *stubMenuRepo) DeleteCategory(_ context.Context, _ uuid.UUID) error            { return nil }

func (s *stubMenuRepo) CategoryIDsForMenu(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	return s.categoryIDs, nil
}

func (s *stubMenuRepo) ReplaceCategoryPositions(_ context.Context, _ uuid.UUID, orderedIDs []uuid.UUID) error {
	s.reordered = orderedIDs
	return nil
}

func (s *stubMenuRepo) CategoryOwner(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
	return s.ownerResult()
}

func (s *stubMenuRepo) CreateItem(_ context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	item.ID = uuid.New()
	return item, nil
}

func (s *stubMenuRepo) FindItemByID(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return &models.MenuItem{ID: id}, nil
}

func (s *stubMenuRepo) UpdateItem(_ context.Context, _ *models.MenuItem) error { return nil }
func (s *stubMenuRepo) DeleteItem(_ context.Context, _ uuid.UUID) error        { return nil }

func (s *stubMenuRepo) ItemOwner(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
	return s.ownerResult()
}

func (s *stubMenuRepo) CreateOption(_ context.Context, option *models.MenuItemOption) (*models.MenuItemOption, error) {
	option.ID = uuid.New()
	return option, nil
}

func (s *stubMenuRepo) FindOptionByID(_ context.Context, id uuid.UUID) (*models.MenuItemOption, error) {
	return &models.MenuItemOption{ID: id}, nil
}

func (s *stubMenuRepo) UpdateOption(_ context.Context, _ *models.MenuItemOption) error { return nil }
func (s *stubMenuRepo) DeleteOption(_ context.Context, _ uuid.UUID) error              { return nil }

func (s *stubMenuRepo) OptionOwner(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
	return s.ownerResult()
}

func (s *stubMenuRepo) ownerResult() (uuid.UUID, error) {
	if s.ownerErr != nil {
		return uuid.Nil, s.ownerErr
	}
	return s.owner, nil
}
