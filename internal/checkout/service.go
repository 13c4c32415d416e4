package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/monsoonshop/monsoon-backend/internal/orders"
	"github.com/monsoonshop/monsoon-backend/pkg/config"
	pkgcurrency "github.com/monsoonshop/monsoon-backend/pkg/currency"
	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
)

// Stripe accepts at most eight image urls per line item.
const maxLineItemImages = 8

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Line is one requested purchase: a product with an optional variant choice.
type Line struct {
	ProductID     uuid.UUID
	Quantity      int
	SelectedSize  string
	SelectedColor string
}

// Result carries the created order and the hosted payment page.
type Result struct {
	OrderID uuid.UUID `json:"orderId"`
	URL     string    `json:"url"`
}

// Service executes checkout initiation.
type Service interface {
	Execute(ctx context.Context, lines []Line) (*Result, error)
}

type service struct {
	tx         txRunner
	products   productLoader
	ordersRepo *orders.Repository
	sessions   SessionCreator
	cfg        config.CheckoutConfig
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	products productLoader,
	ordersRepo *orders.Repository,
	sessions SessionCreator,
	cfg config.CheckoutConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session creator required")
	}
	return &service{
		tx:         tx,
		products:   products,
		ordersRepo: ordersRepo,
		sessions:   sessions,
		cfg:        cfg,
	}, nil
}

// Execute validates the whole batch before any side effect, creates the
// unpaid order, then asks Stripe for a hosted payment session. The order and
// the session are deliberately not atomic with each other; an abandoned
// unpaid order is harmless.
func (s *service) Execute(ctx context.Context, lines []Line) (*Result, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items in checkout")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantities must be positive")
		}
	}

	byID, err := s.loadProducts(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := validateBatch(lines, byID); err != nil {
		return nil, err
	}

	order := buildOrder(lines)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.ordersRepo.WithTx(tx).CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	params := s.buildSessionParams(order.ID, lines, byID)
	created, err := s.sessions.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating checkout session")
	}

	return &Result{OrderID: order.ID, URL: created.URL}, nil
}

func (s *service) loadProducts(ctx context.Context, lines []Line) (map[uuid.UUID]*models.Product, error) {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

// validateBatch rejects the entire checkout on the first violation: missing
// product, archived product, or aggregate quantity above current stock.
func validateBatch(lines []Line, byID map[uuid.UUID]*models.Product) error {
	requested := make(map[uuid.UUID]int, len(byID))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "product not found").
				WithDetails(map[string]string{"productId": line.ProductID.String()})
		}
		if product.IsArchived {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is no longer available", product.Name))
		}
		requested[line.ProductID] += line.Quantity
	}
	for id, qty := range requested {
		product := byID[id]
		if qty > product.Stock {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", product.Name)).
				WithDetails(map[string]any{"productId": id.String(), "available": product.Stock})
		}
	}
	return nil
}

func buildOrder(lines []Line) *models.Order {
	order := &models.Order{
		ID:    uuid.New(),
		Items: make([]models.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		item := models.OrderItem{
			ID:        uuid.New(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if line.SelectedSize != "" {
			size := line.SelectedSize
			item.Size = &size
		}
		if line.SelectedColor != "" {
			color := line.SelectedColor
			item.Color = &color
		}
		order.Items = append(order.Items, item)
	}
	return order
}

func (s *service) buildSessionParams(orderID uuid.UUID, lines []Line, byID map[uuid.UUID]*models.Product) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		product := byID[line.ProductID]
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(product.Name),
		}
		if description := variantDescription(line); description != "" {
			productData.Description = stripe.String(description)
		}
		if images := lineItemImages(product); len(images) > 0 {
			productData.Images = stripe.StringSlice(images)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(line.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.cfg.Currency),
				UnitAmount:  stripe.Int64(pkgcurrency.UnitAmount(product.Price, s.cfg.Currency)),
				ProductData: productData,
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:                lineItems,
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(s.cfg.AllowedCountries),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL()),
		CancelURL:  stripe.String(s.cfg.CancelURL()),
	}
	params.AddMetadata("order_id", orderID.String())
	return params
}

// variantDescription renders the selected variant the way the hosted page
// shows it, e.g. "Size: M - Color: Blue".
func variantDescription(line Line) string {
	parts := make([]string, 0, 2)
	if line.SelectedSize != "" {
		parts = append(parts, "Size: "+line.SelectedSize)
	}
	if line.SelectedColor != "" {
		parts = append(parts, "Color: "+line.SelectedColor)
	}
	return strings.Join(parts, " - ")
}

// lineItemImages keeps only well-formed absolute http(s) urls, capped at
// Stripe's per-item limit.
func lineItemImages(product *models.Product) []string {
	images := make([]string, 0, maxLineItemImages)
	for _, image := range product.Images {
		parsed, err := url.Parse(image.URL)
		if err != nil || parsed.Host == "" {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		images = append(images, image.URL)
		if len(images) == maxLineItemImages {
			break
		}
	}
	return images
}
