package models

import (
	"github.com/google/uuid"
)

// OrderItem is written once at order creation and never mutated. Pricing is
// read through the product relation at render/export time, not snapshotted.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Size      *string   `gorm:"column:size"`
	Color     *string   `gorm:"column:color"`
}
