package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  original_price TEXT,
  stock INTEGER NOT NULL DEFAULT 0,
  is_archived INTEGER NOT NULL DEFAULT 0,
  is_featured INTEGER NOT NULL DEFAULT 0,
  gender TEXT NOT NULL DEFAULT 'Unisex',
  sizes TEXT NOT NULL DEFAULT '{}',
  colors TEXT NOT NULL DEFAULT '{}',
  category_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	ordersDDL := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  is_paid INTEGER NOT NULL DEFAULT 0,
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  size TEXT,
  color TEXT
);`
	for _, ddl := range []string{categories, products, ordersDDL, orderItems} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func mustCreateOrderTestProduct(t *testing.T, tx *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Gender:     "Unisex",
		Sizes:      []string{},
		Colors:     []string{},
		CategoryID: uuid.New(),
	}
	require.NoError(t, tx.Create(product).Error)
	return product
}

func mustCreateTestOrder(t *testing.T, tx *gorm.DB, paid bool, items []models.OrderItem) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:     uuid.New(),
		IsPaid: paid,
		Phone:  "+33600000000",
		Items:  items,
	}
	require.NoError(t, tx.Create(order).Error)
	return order
}

func TestCreateOrderPersistsItems(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	product := mustCreateOrderTestProduct(t, conn, "Storm Parka", "129.00", 5)
	size := "M"
	order := &models.Order{
		ID: uuid.New(),
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: product.ID, Quantity: 2, Size: &size},
		},
	}
	require.NoError(t, repo.CreateOrder(ctx, order))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsPaid)
	require.Len(t, loaded.Items, 1)
	require.NotNil(t, loaded.Items[0].Product)
	assert.Equal(t, "Storm Parka", loaded.Items[0].Product.Name)
	require.NotNil(t, loaded.Items[0].Size)
	assert.Equal(t, "M", *loaded.Items[0].Size)
}

func TestMarkPaidGuardsAgainstSecondTransition(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	order := mustCreateTestOrder(t, conn, false, nil)

	changed, err := repo.MarkPaid(ctx, order.ID, "12 Rue de Rivoli, Paris", "+33612345678")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkPaid(ctx, order.ID, "other", "other")
	require.NoError(t, err)
	assert.False(t, changed, "paid is a terminal state")

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsPaid)
	assert.Equal(t, "12 Rue de Rivoli, Paris", loaded.Address)
	assert.Equal(t, "+33612345678", loaded.Phone)
}

func TestListOrdersPaidFilter(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	mustCreateTestOrder(t, conn, false, nil)
	paid := mustCreateTestOrder(t, conn, true, nil)

	all, err := repo.ListOrders(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	paidOnly, err := repo.ListOrders(ctx, ListFilter{PaidOnly: true})
	require.NoError(t, err)
	require.Len(t, paidOnly, 1)
	assert.Equal(t, paid.ID, paidOnly[0].ID)
}

func TestListPaidWithItemsChronological(t *testing.T) {
	ctx := context.Background()
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	product := mustCreateOrderTestProduct(t, conn, "Storm Parka", "129.00", 5)

	older := &models.Order{
		ID:     uuid.New(),
		IsPaid: true,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: product.ID, Quantity: 1},
		},
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, conn.Create(older).Error)
	newer := &models.Order{
		ID:        uuid.New(),
		IsPaid:    true,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, conn.Create(newer).Error)

	paid, err := repo.ListPaidWithItems(ctx)
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assert.Equal(t, older.ID, paid[0].ID)
	require.Len(t, paid[0].Items, 1)
	require.NotNil(t, paid[0].Items[0].Product)
}

func TestTotalSumsProductPrices(t *testing.T) {
	parka := &models.Product{Price: decimal.RequireFromString("129.00")}
	hat := &models.Product{Price: decimal.RequireFromString("19.50")}
	order := &models.Order{
		Items: []models.OrderItem{
			{Product: parka, Quantity: 2},
			{Product: hat, Quantity: 1},
			{Product: nil, Quantity: 3},
		},
	}
	assert.True(t, Total(order).Equal(decimal.RequireFromString("277.50")))
}
