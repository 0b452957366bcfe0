package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/duboyz/kumiko-backend/internal/orders"
	"github.com/duboyz/kumiko-backend/pkg/db/models"
)

// WrapOrders adapts the concrete orders repository to the checkout-side
// interface so WithTx keeps returning the narrow surface.
func WrapOrders(repo *orders.Repository) OrderRepository {
	return ordersAdapter{repo: repo}
}

type ordersAdapter struct {
	repo *orders.Repository
}

func (a ordersAdapter) WithTx(tx *gorm.DB) OrderRepository {
	return ordersAdapter{repo: a.repo.WithTx(tx)}
}

func (a ordersAdapter) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return a.repo.Create(ctx, order)
}
