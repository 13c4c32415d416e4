package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/monsoonshop/monsoon-backend/api/responses"
	"github.com/monsoonshop/monsoon-backend/api/validators"
	"github.com/monsoonshop/monsoon-backend/internal/catalog"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
)

type imageRequest struct {
	URL   string  `json:"url" validate:"required"`
	Color *string `json:"color,omitempty"`
}

type createProductRequest struct {
	Name          string           `json:"name" validate:"required"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock         int              `json:"stock" validate:"min=0"`
	IsFeatured    bool             `json:"isFeatured"`
	Gender        string           `json:"gender"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty"`
	CategoryName  string           `json:"categoryName"`
	Images        []imageRequest   `json:"images"`
}

type updateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	ClearOriginal bool             `json:"clearOriginalPrice,omitempty"`
	Stock         *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsArchived    *bool            `json:"isArchived,omitempty"`
	IsFeatured    *bool            `json:"isFeatured,omitempty"`
	Gender        *string          `json:"gender,omitempty"`
	Sizes         *[]string        `json:"sizes,omitempty"`
	Colors        *[]string        `json:"colors,omitempty"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty"`
	Images        *[]imageRequest  `json:"images,omitempty"`
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func toImageInputs(images []imageRequest) []catalog.ImageInput {
	inputs := make([]catalog.ImageInput, 0, len(images))
	for _, image := range images {
		inputs = append(inputs, catalog.ImageInput{URL: image.URL, Color: image.Color})
	}
	return inputs
}

// AdminCreateProduct handles back-office product creation.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.CreateProduct(ctx, catalog.CreateProductInput{
			Name:          payload.Name,
			Description:   payload.Description,
			Price:         payload.Price,
			OriginalPrice: payload.OriginalPrice,
			Stock:         payload.Stock,
			IsFeatured:    payload.IsFeatured,
			Gender:        payload.Gender,
			Sizes:         payload.Sizes,
			Colors:        payload.Colors,
			CategoryID:    payload.CategoryID,
			CategoryName:  payload.CategoryName,
			Images:        toImageInputs(payload.Images),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial product update.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{
			Name:          payload.Name,
			Description:   payload.Description,
			Price:         payload.Price,
			OriginalPrice: payload.OriginalPrice,
			ClearOriginal: payload.ClearOriginal,
			Stock:         payload.Stock,
			IsArchived:    payload.IsArchived,
			IsFeatured:    payload.IsFeatured,
			Gender:        payload.Gender,
			Sizes:         payload.Sizes,
			Colors:        payload.Colors,
			CategoryID:    payload.CategoryID,
		}
		if payload.Images != nil {
			images := toImageInputs(*payload.Images)
			input.Images = &images
		}

		product, err := svc.UpdateProduct(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminGetProduct returns any product, archived included.
func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(ctx, id, true)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminListProducts lists every product including archived ones.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.ListProducts(ctx, catalog.ListFilter{IncludeArchived: true})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// AdminDeleteProduct removes a product and its images.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		if err := svc.DeleteProduct(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminCreateCategory creates a category; names are unique ignoring case.
func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := svc.CreateCategory(ctx, payload.Name)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// AdminDeleteCategory removes an empty category.
func AdminDeleteCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid category id"))
			return
		}

		if err := svc.DeleteCategory(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
