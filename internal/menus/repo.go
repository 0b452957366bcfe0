package menus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/pkg/db/models"
)

// Repository handles menu tree persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to menu operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateMenu persists a new menu row.
func (r *Repository) CreateMenu(ctx context.Context, menu *models.Menu) (*models.Menu, error) {
	if menu == nil {
		return nil, fmt.Errorf("menu is required")
	}
	if err := r.db.WithContext(ctx).Create(menu).Error; err != nil {
		return nil, err
	}
	return menu, nil
}

// FindMenuByID loads a menu with its ordered category/item/option tree.
func (r *Repository) FindMenuByID(ctx context.Context, id uuid.UUID) (*models.Menu, error) {
	var menu models.Menu
	if err := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("menu_categories.position ASC")
		}).
		Preload("Categories.Items").
		Preload("Categories.Items.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("menu_item_options.position ASC")
		}).
		Where("id = ?", id).
		First(&menu).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

// UpdateMenu saves the provided menu.
func (r *Repository) UpdateMenu(ctx context.Context, menu *models.Menu) error {
	if menu == nil {
		return fmt.Errorf("menu is required")
	}
	return r.db.WithContext(ctx).Save(menu).Error
}

// DeleteMenu removes the menu; categories, items and options cascade.
func (r *Repository) DeleteMenu(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Menu{}, "id = ?", id).Error
}

// MenuOwner resolves the owning user of a menu through its restaurant.
func (r *Repository) MenuOwner(ctx context.Context, menuID uuid.UUID) (uuid.UUID, error) {
	var row ownerRow
	if err := r.db.WithContext(ctx).
		Model(&models.Menu{}).
		Select("restaurants.owner_id AS owner_id").
		Joins("JOIN restaurants ON restaurants.id = menus.restaurant_id").
		Where("menus.id = ?", menuID).
		Take(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.OwnerID, nil
}

// CreateCategory persists a category with the next position in its menu.
func (r *Repository) CreateCategory(ctx context.Context, category *models.MenuCategory) (*models.MenuCategory, error) {
	if category == nil {
		return nil, fmt.Errorf("category is required")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max int
		if err := tx.Model(&models.MenuCategory{}).
			Select("COALESCE(MAX(position), -1)").
			Where("menu_id = ?", category.MenuID).
			Scan(&max).Error; err != nil {
			return err
		}
		category.Position = max + 1
		return tx.Create(category).Error
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// FindCategoryByID loads one category row.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.MenuCategory, error) {
	var category models.MenuCategory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory saves the provided category.
func (r *Repository) UpdateCategory(ctx context.Context, category *models.MenuCategory) error {
	if category == nil {
		return fmt.Errorf("category is required")
	}
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteCategory removes the category; items cascade.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MenuCategory{}, "id = ?", id).Error
}

// CategoryIDsForMenu returns the category ids of a menu in stored order.
func (r *Repository) CategoryIDsForMenu(ctx context.Context, menuID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.MenuCategory{}).
		Where("menu_id = ?", menuID).
		Order("position ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplaceCategoryPositions persists a full ordering atomically.
func (r *Repository) ReplaceCategoryPositions(ctx context.Context, menuID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range orderedIDs {
			res := tx.Model(&models.MenuCategory{}).
				Where("id = ? AND menu_id = ?", id, menuID).
				Update("position", position)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// CategoryOwner resolves the owning user of a category.
func (r *Repository) CategoryOwner(ctx context.Context, categoryID uuid.UUID) (uuid.UUID, error) {
	var row ownerRow
	if err := r.db.WithContext(ctx).
		Model(&models.MenuCategory{}).
		Select("restaurants.owner_id AS owner_id").
		Joins("JOIN menus ON menus.id = menu_categories.menu_id").
		Joins("JOIN restaurants ON restaurants.id = menus.restaurant_id").
		Where("menu_categories.id = ?", categoryID).
		Take(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.OwnerID, nil
}

// CreateItem persists a new menu item.
func (r *Repository) CreateItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if item == nil {
		return nil, fmt.Errorf("item is required")
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindItemByID loads an item with its ordered options.
func (r *Repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("menu_item_options.position ASC")
		}).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem saves the provided item.
func (r *Repository) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes the item; options cascade.
func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MenuItem{}, "id = ?", id).Error
}

// ItemOwner resolves the owning user of an item.
func (r *Repository) ItemOwner(ctx context.Context, itemID uuid.UUID) (uuid.UUID, error) {
	var row ownerRow
	if err := r.db.WithContext(ctx).
		Model(&models.MenuItem{}).
		Select("restaurants.owner_id AS owner_id").
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Joins("JOIN menus ON menus.id = menu_categories.menu_id").
		Joins("JOIN restaurants ON restaurants.id = menus.restaurant_id").
		Where("menu_items.id = ?", itemID).
		Take(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.OwnerID, nil
}

// CreateOption persists an option with the next position under its item.
func (r *Repository) CreateOption(ctx context.Context, option *models.MenuItemOption) (*models.MenuItemOption, error) {
	if option == nil {
		return nil, fmt.Errorf("option is required")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max int
		if err := tx.Model(&models.MenuItemOption{}).
			Select("COALESCE(MAX(position), -1)").
			Where("menu_item_id = ?", option.MenuItemID).
			Scan(&max).Error; err != nil {
			return err
		}
		option.Position = max + 1
		return tx.Create(option).Error
	})
	if err != nil {
		return nil, err
	}
	return option, nil
}

// FindOptionByID loads one option row.
func (r *Repository) FindOptionByID(ctx context.Context, id uuid.UUID) (*models.MenuItemOption, error) {
	var option models.MenuItemOption
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&option).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

// UpdateOption saves the provided option.
func (r *Repository) UpdateOption(ctx context.Context, option *models.MenuItemOption) error {
	if option == nil {
		return fmt.Errorf("option is required")
	}
	return r.db.WithContext(ctx).Save(option).Error
}

// DeleteOption removes the option row.
func (r *Repository) DeleteOption(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MenuItemOption{}, "id = ?", id).Error
}

// OptionOwner resolves the owning user of an option.
func (r *Repository) OptionOwner(ctx context.Context, optionID uuid.UUID) (uuid.UUID, error) {
	var row ownerRow
	if err := r.db.WithContext(ctx).
		Model(&models.MenuItemOption{}).
		Select("restaurants.owner_id AS owner_id").
		Joins("JOIN menu_items ON menu_items.id = menu_item_options.menu_item_id").
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Joins("JOIN menus ON menus.id = menu_categories.menu_id").
		Joins("JOIN restaurants ON restaurants.id = menus.restaurant_id").
		Where("menu_item_options.id = ?", optionID).
		Take(&row).Error; err != nil {
		return uuid.Nil, err
	}
	return row.OwnerID, nil
}

type ownerRow struct {
	OwnerID uuid.UUID
}
