package migrate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_core_tables.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no core migration file found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	checks := []string{
		"CREATE TYPE order_status AS ENUM",
		"CREATE TYPE subscription_status AS ENUM",
		"CREATE TABLE IF NOT EXISTS restaurants",
		"CREATE TABLE IF NOT EXISTS menus",
		"CREATE TABLE IF NOT EXISTS menu_categories",
		"CREATE TABLE IF NOT EXISTS menu_items",
		"CREATE TABLE IF NOT EXISTS menu_item_options",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_line_items",
		"CREATE TABLE IF NOT EXISTS subscriptions",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurants_slug",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_stripe_id",
		"CREATE INDEX IF NOT EXISTS idx_orders_restaurant_created",
		"-- +goose Down",
	}

	for _, sub := range checks {
		assert.Contains(t, content, sub)
	}
}
