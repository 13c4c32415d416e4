package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/monsoonshop/monsoon-backend/internal/orders"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
)

type gormTxRunner struct {
	conn *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.conn.WithContext(ctx).Transaction(fn)
}

type fakeProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProductLoader) FindProductsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeSessionCreator struct {
	params *stripe.CheckoutSessionParams
	url    string
	err    error
}

func (f *fakeSessionCreator) CreateSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{URL: f.url}, nil
}

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

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
	for _, ddl := range []string{products, ordersDDL, orderItems} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		AppURL:           "https://shop.example.com",
		Currency:         "eur",
		AllowedCountries: []string{"FR", "SN"},
		SuccessPath:      "/success",
		CancelPath:       "/cart?canceled=1",
	}
}

func testProduct(name, price string, stock int) *models.Product {
	return &models.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func newCheckoutService(t *testing.T, conn *gorm.DB, loader *fakeProductLoader, sessions *fakeSessionCreator, cfg config.CheckoutConfig) (Service, *orders.Repository) {
	t.Helper()
	ordersRepo := orders.NewRepository(conn)
	svc, err := NewService(gormTxRunner{conn: conn}, loader, ordersRepo, sessions, cfg)
	require.NoError(t, err)
	return svc, ordersRepo
}

func TestExecuteCreatesOrderAndSession(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	parka := testProduct("Storm Parka", "129.00", 5)
	parka.Images = []models.Image{
		{URL: "https://cdn.example.com/parka.jpg"},
		{URL: "/relative/skipped.jpg"},
	}
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{parka.ID: parka}}
	sessions := &fakeSessionCreator{url: "https://checkout.stripe.com/pay/cs_test_123"}
	svc, ordersRepo := newCheckoutService(t, conn, loader, sessions, testCheckoutConfig())

	result, err := svc.Execute(ctx, []Line{
		{ProductID: parka.ID, Quantity: 2, SelectedSize: "M", SelectedColor: "Blue"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", result.URL)

	order, err := ordersRepo.FindByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.False(t, order.IsPaid)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	require.NotNil(t, order.Items[0].Size)
	assert.Equal(t, "M", *order.Items[0].Size)

	params := sessions.params
	require.NotNil(t, params)
	assert.Equal(t, result.OrderID.String(), params.Metadata["order_id"])
	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(2), *item.Quantity)
	assert.Equal(t, int64(12900), *item.PriceData.UnitAmount)
	assert.Equal(t, "eur", *item.PriceData.Currency)
	assert.Equal(t, "Size: M - Color: Blue", *item.PriceData.ProductData.Description)
	require.Len(t, item.PriceData.ProductData.Images, 1)
	assert.Equal(t, "https://shop.example.com/success", *params.SuccessURL)
	assert.Equal(t, "https://shop.example.com/cart?canceled=1", *params.CancelURL)
	assert.Equal(t, string(stripe.CheckoutSessionBillingAddressCollectionRequired), *params.BillingAddressCollection)
	assert.True(t, *params.PhoneNumberCollection.Enabled)
}

func TestExecuteInsufficientStockRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	parka := testProduct("Storm Parka", "129.00", 5)
	hat := testProduct("Sun Hat", "19.50", 1)
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{
		parka.ID: parka,
		hat.ID:   hat,
	}}
	sessions := &fakeSessionCreator{url: "https://checkout.stripe.com/pay/cs_test_123"}
	svc, ordersRepo := newCheckoutService(t, conn, loader, sessions, testCheckoutConfig())

	_, err := svc.Execute(ctx, []Line{
		{ProductID: parka.ID, Quantity: 1},
		{ProductID: hat.ID, Quantity: 2},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	count, err := ordersRepo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "no order row on rejection")
	assert.Nil(t, sessions.params, "no session attempt on rejection")
}

func TestExecuteAggregatesVariantQuantitiesAgainstStock(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	parka := testProduct("Storm Parka", "129.00", 3)
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{parka.ID: parka}}
	sessions := &fakeSessionCreator{url: "u"}
	svc, ordersRepo := newCheckoutService(t, conn, loader, sessions, testCheckoutConfig())

	// Two variant lines of the same product: 2 + 2 > 3 in stock.
	_, err := svc.Execute(ctx, []Line{
		{ProductID: parka.ID, Quantity: 2, SelectedSize: "M"},
		{ProductID: parka.ID, Quantity: 2, SelectedSize: "L"},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	count, err := ordersRepo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestExecuteArchivedProductRejected(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	parka := testProduct("Storm Parka", "129.00", 5)
	parka.IsArchived = true
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{parka.ID: parka}}
	sessions := &fakeSessionCreator{url: "u"}
	svc, ordersRepo := newCheckoutService(t, conn, loader, sessions, testCheckoutConfig())

	_, err := svc.Execute(ctx, []Line{{ProductID: parka.ID, Quantity: 1}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	count, err := ordersRepo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestExecuteMissingProductRejected(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{}}
	sessions := &fakeSessionCreator{url: "u"}
	svc, _ := newCheckoutService(t, conn, loader, sessions, testCheckoutConfig())

	_, err := svc.Execute(ctx, []Line{{ProductID: uuid.New(), Quantity: 1}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestExecuteEmptyAndInvalidLines(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{}}
	svc, _ := newCheckoutService(t, conn, loader, &fakeSessionCreator{}, testCheckoutConfig())

	_, err := svc.Execute(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Execute(ctx, []Line{{ProductID: uuid.New(), Quantity: 0}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestExecuteZeroDecimalCurrency(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	boubou := testProduct("Grand Boubou", "15000", 10)
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{boubou.ID: boubou}}
	sessions := &fakeSessionCreator{url: "u"}
	cfg := testCheckoutConfig()
	cfg.Currency = "xof"
	svc, _ := newCheckoutService(t, conn, loader, sessions, cfg)

	_, err := svc.Execute(ctx, []Line{{ProductID: boubou.ID, Quantity: 1}})
	require.NoError(t, err)

	require.Len(t, sessions.params.LineItems, 1)
	assert.Equal(t, int64(15000), *sessions.params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "xof", *sessions.params.LineItems[0].PriceData.Currency)
}

func TestExecuteImageCapAtEight(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	parka := testProduct("Storm Parka", "129.00", 5)
	for i := 0; i < 12; i++ {
		parka.Images = append(parka.Images, models.Image{
			URL: fmt.Sprintf("https://cdn.example.com/%d.jpg", i),
		})
	}
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{parka.ID: parka}}
	sessions := &fakeSessionCreator{url: "u"}
	svc, _ := newCheckoutService(t, conn, loader, sessions, testCheckoutConfig())

	_, err := svc.Execute(ctx, []Line{{ProductID: parka.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Len(t, sessions.params.LineItems[0].PriceData.ProductData.Images, 8)
}

func TestExecuteSessionFailureSurfacesDependencyError(t *testing.T) {
	ctx := context.Background()
	conn := setupCheckoutTestDB(t)

	parka := testProduct("Storm Parka", "129.00", 5)
	loader := &fakeProductLoader{products: map[uuid.UUID]*models.Product{parka.ID: parka}}
	sessions := &fakeSessionCreator{err: errors.New("stripe unavailable")}
	svc, _ := newCheckoutService(t, conn, loader, sessions, testCheckoutConfig())

	_, err := svc.Execute(ctx, []Line{{ProductID: parka.ID, Quantity: 1}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
