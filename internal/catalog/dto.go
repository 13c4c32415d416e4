package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock         int              `json:"stock"`
	IsArchived    bool             `json:"isArchived"`
	IsFeatured    bool             `json:"isFeatured"`
	Gender        string           `json:"gender"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Category      *CategoryDTO     `json:"category,omitempty"`
	Images        []ImageDTO       `json:"images"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ImageDTO carries one product image.
type ImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Color    *string   `json:"color,omitempty"`
	Position int       `json:"position"`
}

// CategoryDTO is the category payload.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImageInput is one image in a create/update payload.
type ImageInput struct {
	URL   string
	Color *string
}

// CreateProductInput holds the validated payload to create a product. Fields
// are mapped one by one onto the model; unknown request fields never reach
// the row.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Stock         int
	IsFeatured    bool
	Gender        string
	Sizes         []string
	Colors        []string
	CategoryID    *uuid.UUID
	CategoryName  string
	Images        []ImageInput
}

// UpdateProductInput holds optional mutation values. Nil means "leave as is".
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	ClearOriginal bool
	Stock         *int
	IsArchived    *bool
	IsFeatured    *bool
	Gender        *string
	Sizes         *[]string
	Colors        *[]string
	CategoryID    *uuid.UUID
	Images        *[]ImageInput
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Stock:         product.Stock,
		IsArchived:    product.IsArchived,
		IsFeatured:    product.IsFeatured,
		Gender:        product.Gender,
		Sizes:         append([]string{}, product.Sizes...),
		Colors:        append([]string{}, product.Colors...),
		Images:        make([]ImageDTO, 0, len(product.Images)),
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if product.Category != nil {
		dto.Category = NewCategoryDTO(product.Category)
	}
	for _, image := range product.Images {
		dto.Images = append(dto.Images, ImageDTO{
			ID:       image.ID,
			URL:      image.URL,
			Color:    image.Color,
			Position: image.Position,
		})
	}
	return dto
}

// NewCategoryDTO builds a DTO from the persisted model.
func NewCategoryDTO(category *models.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}

func newProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}
