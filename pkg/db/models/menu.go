package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Menu is the root of a restaurant's category/item/option tree.
type Menu struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID uuid.UUID      `gorm:"column:restaurant_id;type:uuid;not null;index"`
	Name         string         `gorm:"column:name;not null"`
	Description  string         `gorm:"column:description"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	Categories   []MenuCategory `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuCategory groups items; Position is the admin's drag-and-drop ordering.
type MenuCategory struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuID    uuid.UUID  `gorm:"column:menu_id;type:uuid;not null;index"`
	Name      string     `gorm:"column:name;not null"`
	Position  int        `gorm:"column:position;not null;default:0"`
	Items     []MenuItem `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuItem is a sellable dish. Price is a decimal string to avoid float
// drift; options may carry their own price override.
type MenuItem struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index"`
	Name        string           `gorm:"column:name;not null"`
	Description string           `gorm:"column:description"`
	Price       string           `gorm:"column:price;type:numeric(12,2);not null"`
	Allergens   pq.StringArray   `gorm:"column:allergens;type:text[]"`
	IsAvailable bool             `gorm:"column:is_available;not null;default:true"`
	Options     []MenuItemOption `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuItemOption is a named variant of an item (size, side, preparation).
type MenuItemOption struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	Price      *string   `gorm:"column:price;type:numeric(12,2)"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
