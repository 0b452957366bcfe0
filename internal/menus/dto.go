package menus

import (
	"github.com/google/uuid"
)

// CreateMenuInput holds creation-time data for a new menu.
type CreateMenuInput struct {
	Name        string
	Description string
}

// UpdateMenuInput carries the mutable menu fields; nil means unchanged.
type UpdateMenuInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// CreateCategoryInput names a new category; it is appended at the end of
// the menu's ordering.
type CreateCategoryInput struct {
	Name string
}

// UpdateCategoryInput carries the mutable category fields.
type UpdateCategoryInput struct {
	Name *string
}

// CreateItemInput holds creation-time data for a menu item. Price is a
// decimal string.
type CreateItemInput struct {
	Name        string
	Description string
	Price       string
	Allergens   []string
	IsAvailable *bool
}

// UpdateItemInput carries the mutable item fields; nil means unchanged.
type UpdateItemInput struct {
	Name        *string
	Description *string
	Price       *string
	Allergens   *[]string
	IsAvailable *bool
}

// CreateOptionInput holds creation-time data for an item option. A nil
// Price means the option inherits the item price.
type CreateOptionInput struct {
	Name  string
	Price *string
}

// UpdateOptionInput carries the mutable option fields.
type UpdateOptionInput struct {
	Name  *string
	Price *string
}

// ReorderInput is the full category ordering for one menu, first to last.
type ReorderInput struct {
	CategoryIDs []uuid.UUID
}
