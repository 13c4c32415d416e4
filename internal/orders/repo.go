package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
)

// ListFilter narrows admin order listings.
type ListFilter struct {
	PaidOnly bool
	Limit    int
}

// Repository exposes order persistence for checkout, the payment webhook,
// and the back office.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateOrder inserts the order row together with its items.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with its items and their products.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid flips the paid flag and records the shipping details captured by
// the payment provider. The update is guarded on the unpaid state; false
// means the order was already paid and nothing changed. Inside a
// transaction the row update serializes concurrent deliveries for the same
// order.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, address, phone string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]any{
			"is_paid": true,
			"address": address,
			"phone":   phone,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListOrders returns orders newest first for the back office.
func (r *Repository) ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items.Product").
		Order("created_at DESC")
	if filter.PaidOnly {
		query = query.Where("is_paid = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListPaidWithItems feeds the CSV export, oldest first so the file reads
// chronologically.
func (r *Repository) ListPaidWithItems(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("is_paid = ?", true).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CountOrders reports the total number of order rows.
func (r *Repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

// Total sums product price times quantity across the order's items. Items
// whose product no longer loads contribute nothing.
func Total(order *models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, item := range order.Items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
