package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/monsoonshop/monsoon-backend/api/responses"
	"github.com/monsoonshop/monsoon-backend/internal/orders"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
)

// AdminListOrders lists orders newest first; ?paid=true keeps only paid ones.
func AdminListOrders(repo *orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		list, err := repo.ListOrders(ctx, orders.ListFilter{
			PaidOnly: r.URL.Query().Get("paid") == "true",
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewOrderDTOs(list))
	}
}

// AdminGetOrder returns one order with its line items.
func AdminGetOrder(repo *orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		order, err := repo.FindByID(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewOrderDTO(order))
	}
}

// AdminExportOrders streams every paid order as a CSV attachment.
func AdminExportOrders(repo *orders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		paid, err := repo.ListPaidWithItems(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
		if err := orders.WriteCSV(w, paid); err != nil {
			// Headers are already on the wire; log and give up on the body.
			logg.Error(ctx, "orders csv export failed", err)
		}
	}
}
