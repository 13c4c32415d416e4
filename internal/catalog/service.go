package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monsoonshop/monsoon-backend/pkg/db"
	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
)

const (
	searchMinLength = 2
	searchLimit     = 8
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog reads and the back-office mutations.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, name string) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	GetProduct(ctx context.Context, id uuid.UUID, includeArchived bool) (*ProductDTO, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]ProductDTO, error)
	SearchProducts(ctx context.Context, term string) ([]ProductDTO, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, *NewCategoryDTO(&categories[i]))
	}
	return dtos, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if _, err := s.repo.FindCategoryByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up category")
	}

	category, err := s.repo.CreateCategory(ctx, &models.Category{ID: uuid.New(), Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_categories_name_lower") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return NewCategoryDTO(category), nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
	}
	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID, includeArchived bool) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product.IsArchived && !includeArchived {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]ProductDTO, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return newProductDTOs(products), nil
}

// SearchProducts returns an empty result for terms shorter than two
// characters rather than an error, so storefront typeahead stays quiet.
func (s *service) SearchProducts(ctx context.Context, term string) ([]ProductDTO, error) {
	if len(strings.TrimSpace(term)) < searchMinLength {
		return []ProductDTO{}, nil
	}
	products, err := s.repo.SearchProducts(ctx, term, searchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching products")
	}
	return newProductDTOs(products), nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		category, err := s.resolveCategory(ctx, repo, input.CategoryID, input.CategoryName)
		if err != nil {
			return err
		}

		product := &models.Product{
			ID:            uuid.New(),
			Name:          strings.TrimSpace(input.Name),
			Description:   input.Description,
			Price:         input.Price,
			OriginalPrice: input.OriginalPrice,
			Stock:         input.Stock,
			IsFeatured:    input.IsFeatured,
			Gender:        normalizeGender(input.Gender),
			Sizes:         toStringArray(input.Sizes),
			Colors:        toStringArray(input.Colors),
			CategoryID:    category.ID,
		}
		if _, err := repo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
		}
		if err := repo.ReplaceImages(ctx, product.ID, toImageModels(input.Images)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing product images")
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, created.ID, true)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}

		applyProductUpdate(product, input)

		if input.CategoryID != nil {
			if _, err := repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "category not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
			}
			product.CategoryID = *input.CategoryID
		}

		// Save only touches the product row; associations are replaced
		// explicitly below.
		product.Images = nil
		product.Category = nil
		if _, err := repo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
		}
		if input.Images != nil {
			if err := repo.ReplaceImages(ctx, product.ID, toImageModels(*input.Images)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing product images")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id, true)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindProductByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	// Ordered products stay in the catalog for order history; archive hides
	// them from the storefront.
	referenced, err := s.repo.CountOrderItemsForProduct(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting product order history")
	}
	if referenced > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product has order history; archive it instead")
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

// resolveCategory prefers an explicit ID, falls back to a case-insensitive
// name lookup, and creates the category when the name is new.
func (s *service) resolveCategory(ctx context.Context, repo *Repository, id *uuid.UUID, name string) (*models.Category, error) {
	if id != nil {
		category, err := repo.FindCategoryByID(ctx, *id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
		}
		return category, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	category, err := repo.FindCategoryByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up category")
	}
	created, err := repo.CreateCategory(ctx, &models.Category{ID: uuid.New(), Name: name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return created, nil
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if input.OriginalPrice != nil && !input.OriginalPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "original price must be greater than zero")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return validateImageURLs(input.Images)
}

func validateUpdateInput(input UpdateProductInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
	}
	if input.Price != nil && !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if input.OriginalPrice != nil && !input.OriginalPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "original price must be greater than zero")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.Images != nil {
		return validateImageURLs(*input.Images)
	}
	return nil
}

func validateImageURLs(images []ImageInput) error {
	for _, image := range images {
		parsed, err := url.Parse(image.URL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return pkgerrors.New(pkgerrors.CodeValidation, "image urls must be absolute http(s) urls")
		}
	}
	return nil
}

// applyProductUpdate copies only the allow-listed fields onto the row.
func applyProductUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = input.OriginalPrice
	} else if input.ClearOriginal {
		product.OriginalPrice = nil
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.IsArchived != nil {
		product.IsArchived = *input.IsArchived
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.Gender != nil {
		product.Gender = normalizeGender(*input.Gender)
	}
	if input.Sizes != nil {
		product.Sizes = toStringArray(*input.Sizes)
	}
	if input.Colors != nil {
		product.Colors = toStringArray(*input.Colors)
	}
}

func normalizeGender(gender string) string {
	gender = strings.TrimSpace(gender)
	if gender == "" {
		return "Unisex"
	}
	return gender
}

func toStringArray(values []string) []string {
	clean := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			clean = append(clean, value)
		}
	}
	return clean
}

func toImageModels(inputs []ImageInput) []models.Image {
	images := make([]models.Image, 0, len(inputs))
	for i, input := range inputs {
		images = append(images, models.Image{
			ID:       uuid.New(),
			URL:      input.URL,
			Color:    input.Color,
			Position: i,
		})
	}
	return images
}
