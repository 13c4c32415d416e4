package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. Stock is mutated only by the
// payment webhook's guarded decrement; archived products stay out of public
// listings but remain referenced by historical orders.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string           `gorm:"column:name;not null"`
	Description   string           `gorm:"column:description;not null;default:''"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	OriginalPrice *decimal.Decimal `gorm:"column:original_price;type:numeric(10,2)"`
	Stock         int              `gorm:"column:stock;not null;default:0"`
	IsArchived    bool             `gorm:"column:is_archived;not null;default:false"`
	IsFeatured    bool             `gorm:"column:is_featured;not null;default:false"`
	Gender        string           `gorm:"column:gender;not null;default:'Unisex'"`
	Sizes         pq.StringArray   `gorm:"column:sizes;type:text[];not null;default:ARRAY[]::text[]"`
	Colors        pq.StringArray   `gorm:"column:colors;type:text[];not null;default:ARRAY[]::text[]"`
	CategoryID    uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	Images        []Image          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
