package models

import (
	"time"

	"github.com/google/uuid"
)

// Image belongs to a product. A nil Color means the image applies to every
// variant. The set is replaced wholesale on product edits.
type Image struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	URL       string    `gorm:"column:url;not null"`
	Color     *string   `gorm:"column:color"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
