package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/monsoonshop/monsoon-backend/api/responses"
	"github.com/monsoonshop/monsoon-backend/api/validators"
	checkoutsvc "github.com/monsoonshop/monsoon-backend/internal/checkout"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
)

type checkoutItemRequest struct {
	ID            uuid.UUID `json:"id" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,min=1"`
	SelectedSize  string    `json:"selectedSize"`
	SelectedColor string    `json:"selectedColor"`
}

type checkoutRequest struct {
	Items []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Checkout validates the batch and returns the hosted payment URL.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		lines := make([]checkoutsvc.Line, 0, len(payload.Items))
		for _, item := range payload.Items {
			lines = append(lines, checkoutsvc.Line{
				ProductID:     item.ID,
				Quantity:      item.Quantity,
				SelectedSize:  item.SelectedSize,
				SelectedColor: item.SelectedColor,
			})
		}

		result, err := svc.Execute(ctx, lines)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
