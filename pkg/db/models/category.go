package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for storefront navigation. Names are unique
// case-insensitively (enforced by a functional index in the schema).
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Products  []Product `gorm:"foreignKey:CategoryID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
