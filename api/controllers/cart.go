package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/monsoonshop/monsoon-backend/api/responses"
	"github.com/monsoonshop/monsoon-backend/api/validators"
	"github.com/monsoonshop/monsoon-backend/internal/cart"
	"github.com/monsoonshop/monsoon-backend/internal/catalog"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID     uuid.UUID `json:"productId" validate:"required"`
	Quantity      int       `json:"quantity" validate:"omitempty,min=1"`
	SelectedSize  string    `json:"selectedSize"`
	SelectedColor string    `json:"selectedColor"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items   []cart.Item `json:"items"`
	Message string      `json:"message,omitempty"`
}

type messageNotifier struct {
	message string
}

func (n *messageNotifier) Notify(_ context.Context, message string) {
	n.message = message
}

// CartHandlers bundles the session-cart endpoints. Each request loads the
// snapshot for the caller's cart cookie, applies one mutation, and persists.
type CartHandlers struct {
	store      cart.SnapshotStore
	catalogSvc catalog.Service
	cfg        config.CartConfig
	logg       *logger.Logger
}

func NewCartHandlers(store cart.SnapshotStore, catalogSvc catalog.Service, cfg config.CartConfig, logg *logger.Logger) *CartHandlers {
	return &CartHandlers{store: store, catalogSvc: catalogSvc, cfg: cfg, logg: logg}
}

// sessionStore resolves the caller's cart session (minting the cookie when
// absent) and loads the persisted snapshot into a store.
func (h *CartHandlers) sessionStore(w http.ResponseWriter, r *http.Request) (*cart.Store, *messageNotifier, error) {
	sessionID := h.sessionID(w, r)

	items, err := cart.LoadItems(r.Context(), h.store, sessionID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	notifier := &messageNotifier{}
	persister := cart.NewRedisPersister(h.store, sessionID, h.cfg.TTL, h.logg)
	return cart.NewStore(items, persister, notifier), notifier, nil
}

func (h *CartHandlers) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(h.cfg.SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.cfg.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}

// Fetch returns the current cart contents.
func (h *CartHandlers) Fetch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, _, err := h.sessionStore(w, r)
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse{Items: store.Items()})
	}
}

// Add puts a product variant in the cart, merging quantities on repeats. The
// denormalized name, price, and image come from the live catalog.
func (h *CartHandlers) Add() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}

		product, err := h.catalogSvc.GetProduct(ctx, payload.ProductID, false)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}

		store, notifier, err := h.sessionStore(w, r)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}

		item := cart.Item{
			ProductID:     product.ID,
			Name:          product.Name,
			UnitPrice:     product.Price,
			Quantity:      payload.Quantity,
			SelectedSize:  payload.SelectedSize,
			SelectedColor: payload.SelectedColor,
		}
		if len(product.Images) > 0 {
			item.Image = product.Images[0].URL
		}
		store.AddItem(ctx, item)

		responses.WriteSuccess(w, cartResponse{Items: store.Items(), Message: notifier.message})
	}
}

// UpdateQuantity sets the quantity on one line; zero removes it.
func (h *CartHandlers) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cartID := chi.URLParam(r, "cartId")
		if cartID == "" {
			responses.WriteError(ctx, h.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required"))
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}

		store, notifier, err := h.sessionStore(w, r)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		store.UpdateQuantity(ctx, cartID, payload.Quantity)

		responses.WriteSuccess(w, cartResponse{Items: store.Items(), Message: notifier.message})
	}
}

// Remove deletes one line. Removing an absent line is a quiet no-op.
func (h *CartHandlers) Remove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cartID := chi.URLParam(r, "cartId")
		if cartID == "" {
			responses.WriteError(ctx, h.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required"))
			return
		}

		store, notifier, err := h.sessionStore(w, r)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		store.RemoveItem(ctx, cartID)

		responses.WriteSuccess(w, cartResponse{Items: store.Items(), Message: notifier.message})
	}
}

// Clear empties the cart.
func (h *CartHandlers) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		store, _, err := h.sessionStore(w, r)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		store.Clear(ctx)

		responses.WriteSuccess(w, cartResponse{Items: store.Items()})
	}
}
