package menus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
	pkgerrors "github.com/duboyz/kumiko-backend/pkg/errors"
)

type menuRepository interface {
	CreateMenu(ctx context.Context, menu *models.Menu) (*models.Menu, error)
	FindMenuByID(ctx context.Context, id uuid.UUID) (*models.Menu, error)
	UpdateMenu(ctx context.Context, menu *models.Menu) error
	DeleteMenu(ctx context.Context, id uuid.UUID) error
	MenuOwner(ctx context.Context, menuID uuid.UUID) (uuid.UUID, error)

	CreateCategory(ctx context.Context, category *models.MenuCategory) (*models.MenuCategory, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.MenuCategory, error)
	UpdateCategory(ctx context.Context, category *models.MenuCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CategoryIDsForMenu(ctx context.Context, menuID uuid.UUID) ([]uuid.UUID, error)
	ReplaceCategoryPositions(ctx context.Context, menuID uuid.UUID, orderedIDs []uuid.UUID) error
	CategoryOwner(ctx context.Context, categoryID uuid.UUID) (uuid.UUID, error)

	CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ItemOwner(ctx context.Context, itemID uuid.UUID) (uuid.UUID, error)

	CreateOption(ctx context.Context, option *models.MenuItemOption) (*models.MenuItemOption, error)
	FindOptionByID(ctx context.Context, id uuid.UUID) (*models.MenuItemOption, error)
	UpdateOption(ctx context.Context, option *models.MenuItemOption) error
	DeleteOption(ctx context.Context, id uuid.UUID) error
	OptionOwner(ctx context.Context, optionID uuid.UUID) (uuid.UUID, error)
}

type restaurantLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
}

// Service exposes the menu tree operations behind owner checks.
type Service interface {
	CreateMenu(ctx context.Context, ownerID, restaurantID uuid.UUID, input CreateMenuInput) (*models.Menu, error)
	GetMenu(ctx context.Context, menuID uuid.UUID) (*models.Menu, error)
	UpdateMenu(ctx context.Context, ownerID, menuID uuid.UUID, input UpdateMenuInput) (*models.Menu, error)
	DeleteMenu(ctx context.Context, ownerID, menuID uuid.UUID) error

	CreateCategory(ctx context.Context, ownerID, menuID uuid.UUID, input CreateCategoryInput) (*models.MenuCategory, error)
	UpdateCategory(ctx context.Context, ownerID, categoryID uuid.UUID, input UpdateCategoryInput) (*models.MenuCategory, error)
	DeleteCategory(ctx context.Context, ownerID, categoryID uuid.UUID) error
	ReorderCategories(ctx context.Context, ownerID, menuID uuid.UUID, input ReorderInput) error

	CreateItem(ctx context.Context, ownerID, categoryID uuid.UUID, input CreateItemInput) (*models.MenuItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateItemInput) (*models.MenuItem, error)
	DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error

	CreateOption(ctx context.Context, ownerID, itemID uuid.UUID, input CreateOptionInput) (*models.MenuItemOption, error)
	UpdateOption(ctx context.Context, ownerID, optionID uuid.UUID, input UpdateOptionInput) (*models.MenuItemOption, error)
	DeleteOption(ctx context.Context, ownerID, optionID uuid.UUID) error
}

type service struct {
	repo        menuRepository
	restaurants restaurantLoader
}

// NewService builds a menu service with the provided repositories.
func NewService(repo menuRepository, restaurants restaurantLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("restaurant loader required")
	}
	return &service{repo: repo, restaurants: restaurants}, nil
}

func (s *service) CreateMenu(ctx context.Context, ownerID, restaurantID uuid.UUID, input CreateMenuInput) (*models.Menu, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu name is required")
	}
	restaurant, err := s.restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if restaurant.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant belongs to another owner")
	}

	menu := &models.Menu{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		IsActive:     true,
	}
	created, err := s.repo.CreateMenu(ctx, menu)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu")
	}
	return created, nil
}

func (s *service) GetMenu(ctx context.Context, menuID uuid.UUID) (*models.Menu, error) {
	menu, err := s.repo.FindMenuByID(ctx, menuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu")
	}
	return menu, nil
}

func (s *service) UpdateMenu(ctx context.Context, ownerID, menuID uuid.UUID, input UpdateMenuInput) (*models.Menu, error) {
	if err := s.requireMenuOwner(ctx, ownerID, menuID); err != nil {
		return nil, err
	}
	menu, err := s.GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu name cannot be empty")
		}
		menu.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		menu.Description = *input.Description
	}
	if input.IsActive != nil {
		menu.IsActive = *input.IsActive
	}
	if err := s.repo.UpdateMenu(ctx, menu); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu")
	}
	return menu, nil
}

func (s *service) DeleteMenu(ctx context.Context, ownerID, menuID uuid.UUID) error {
	if err := s.requireMenuOwner(ctx, ownerID, menuID); err != nil {
		return err
	}
	if err := s.repo.DeleteMenu(ctx, menuID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu")
	}
	return nil
}

func (s *service) CreateCategory(ctx context.Context, ownerID, menuID uuid.UUID, input CreateCategoryInput) (*models.MenuCategory, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if err := s.requireMenuOwner(ctx, ownerID, menuID); err != nil {
		return nil, err
	}
	category := &models.MenuCategory{MenuID: menuID, Name: strings.TrimSpace(input.Name)}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

func (s *service) UpdateCategory(ctx context.Context, ownerID, categoryID uuid.UUID, input UpdateCategoryInput) (*models.MenuCategory, error) {
	if err := s.requireOwner(ownerID)(s.repo.CategoryOwner(ctx, categoryID)); err != nil {
		return nil, err
	}
	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		category.Name = strings.TrimSpace(*input.Name)
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, ownerID, categoryID uuid.UUID) error {
	if err := s.requireOwner(ownerID)(s.repo.CategoryOwner(ctx, categoryID)); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, categoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// ReorderCategories persists the admin's drag-and-drop ordering. The input
// must be a permutation of the menu's current category ids.
func (s *service) ReorderCategories(ctx context.Context, ownerID, menuID uuid.UUID, input ReorderInput) error {
	if err := s.requireMenuOwner(ctx, ownerID, menuID); err != nil {
		return err
	}
	current, err := s.repo.CategoryIDsForMenu(ctx, menuID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	if len(input.CategoryIDs) != len(current) {
		return pkgerrors.New(pkgerrors.CodeValidation, "ordering must include every category exactly once")
	}
	seen := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		seen[id] = struct{}{}
	}
	for _, id := range input.CategoryIDs {
		if _, ok := seen[id]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "ordering references unknown category")
		}
		delete(seen, id)
	}
	if err := s.repo.ReplaceCategoryPositions(ctx, menuID, input.CategoryIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder categories")
	}
	return nil
}

func (s *service) CreateItem(ctx context.Context, ownerID, categoryID uuid.UUID, input CreateItemInput) (*models.MenuItem, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ownerID)(s.repo.CategoryOwner(ctx, categoryID)); err != nil {
		return nil, err
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}
	item := &models.MenuItem{
		CategoryID:  categoryID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Allergens:   input.Allergens,
		IsAvailable: available,
	}
	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return created, nil
}

func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, ownerID, itemID uuid.UUID, input UpdateItemInput) (*models.MenuItem, error) {
	if err := s.requireOwner(ownerID)(s.repo.ItemOwner(ctx, itemID)); err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		item.Price = *input.Price
	}
	if input.Allergens != nil {
		item.Allergens = *input.Allergens
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, ownerID, itemID uuid.UUID) error {
	if err := s.requireOwner(ownerID)(s.repo.ItemOwner(ctx, itemID)); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}

func (s *service) CreateOption(ctx context.Context, ownerID, itemID uuid.UUID, input CreateOptionInput) (*models.MenuItemOption, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option name is required")
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
	}
	if err := s.requireOwner(ownerID)(s.repo.ItemOwner(ctx, itemID)); err != nil {
		return nil, err
	}
	option := &models.MenuItemOption{
		MenuItemID: itemID,
		Name:       strings.TrimSpace(input.Name),
		Price:      input.Price,
	}
	created, err := s.repo.CreateOption(ctx, option)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create option")
	}
	return created, nil
}

func (s *service) UpdateOption(ctx context.Context, ownerID, optionID uuid.UUID, input UpdateOptionInput) (*models.MenuItemOption, error) {
	if err := s.requireOwner(ownerID)(s.repo.OptionOwner(ctx, optionID)); err != nil {
		return nil, err
	}
	option, err := s.repo.FindOptionByID(ctx, optionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load option")
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option name cannot be empty")
		}
		option.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		option.Price = input.Price
	}
	if err := s.repo.UpdateOption(ctx, option); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update option")
	}
	return option, nil
}

func (s *service) DeleteOption(ctx context.Context, ownerID, optionID uuid.UUID) error {
	if err := s.requireOwner(ownerID)(s.repo.OptionOwner(ctx, optionID)); err != nil {
		return err
	}
	if err := s.repo.DeleteOption(ctx, optionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete option")
	}
	return nil
}

func (s *service) requireMenuOwner(ctx context.Context, ownerID, menuID uuid.UUID) error {
	return s.requireOwner(ownerID)(s.repo.MenuOwner(ctx, menuID))
}

// requireOwner turns an (owner, err) lookup result into the appropriate
// not-found / forbidden error.
func (s *service) requireOwner(ownerID uuid.UUID) func(uuid.UUID, error) error {
	return func(got uuid.UUID, err error) error {
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve owner")
		}
		if got != ownerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "resource belongs to another owner")
		}
		return nil
	}
}

func validatePrice(price string) error {
	value, err := decimal.NewFromString(price)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string")
	}
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}
