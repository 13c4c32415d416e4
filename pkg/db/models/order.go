package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is created unpaid at checkout initiation and transitioned to paid
// exactly once by the Stripe webhook. Once paid it is read-only.
type Order struct {
	ID        uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IsPaid    bool        `gorm:"column:is_paid;not null;default:false"`
	Address   string      `gorm:"column:address;not null;default:''"`
	Phone     string      `gorm:"column:phone;not null;default:''"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
