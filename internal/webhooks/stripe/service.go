package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/monsoonshop/monsoon-backend/internal/catalog"
	"github.com/monsoonshop/monsoon-backend/internal/orders"
	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
	"github.com/monsoonshop/monsoon-backend/pkg/email"
	pkgerrors "github.com/monsoonshop/monsoon-backend/pkg/errors"
	"github.com/monsoonshop/monsoon-backend/pkg/logger"
	"github.com/monsoonshop/monsoon-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the webhook service dependencies.
type ServiceParams struct {
	OrdersRepo        *orders.Repository
	CatalogRepo       *catalog.Repository
	TransactionRunner txRunner
	EmailSender       email.Sender
	Currency          string
	Logger            *logger.Logger
}

// Service applies the payment state machine: an unpaid order transitions to
// paid exactly once, atomically with its stock decrements.
type Service struct {
	ordersRepo  *orders.Repository
	catalogRepo *catalog.Repository
	txRunner    txRunner
	emailSender email.Sender
	currency    string
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		ordersRepo:  params.OrdersRepo,
		catalogRepo: params.CatalogRepo,
		txRunner:    params.TransactionRunner,
		emailSender: params.EmailSender,
		currency:    params.Currency,
		logg:        params.Logger,
	}, nil
}

// HandleEvent processes checkout completion events and ignores everything
// else. A nil error acknowledges the delivery.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.handleSessionCompleted(ctx, &session)
	default:
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeIgnored).Inc()
		return nil
	}
}

func (s *Service) handleSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	orderID, err := uuid.Parse(session.Metadata["order_id"])
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeFailed).Inc()
		return pkgerrors.New(pkgerrors.CodeValidation, "order_id metadata missing or malformed")
	}
	ctx = s.withOrderID(ctx, orderID)

	address, phone, customerEmail := customerDetails(session)

	var (
		order       *models.Order
		alreadyPaid bool
	)
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		catalogRepo := s.catalogRepo.WithTx(tx)

		loaded, err := ordersRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		order = loaded

		// Paid is terminal. A redelivery for an already-paid order succeeds
		// without touching stock.
		if order.IsPaid {
			alreadyPaid = true
			return nil
		}
		changed, err := ordersRepo.MarkPaid(ctx, orderID, address, phone)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order paid")
		}
		if !changed {
			alreadyPaid = true
			return nil
		}

		for _, item := range order.Items {
			ok, err := catalogRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "stock decrement refused").
					WithDetails(map[string]string{"productId": item.ProductID.String()})
			}
		}
		return nil
	})
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeFailed).Inc()
		return err
	}

	if alreadyPaid {
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return nil
	}

	metrics.WebhookEvents.WithLabelValues(metrics.OutcomeProcessed).Inc()
	metrics.OrdersPaid.Inc()
	if s.logg != nil {
		s.logg.Info(ctx, "order marked paid")
	}

	s.sendConfirmation(ctx, order, customerEmail)
	return nil
}

// sendConfirmation is best effort: a delivery failure is logged and counted
// but never fails the webhook.
func (s *Service) sendConfirmation(ctx context.Context, order *models.Order, to string) {
	if s.emailSender == nil || to == "" {
		return
	}
	msg := email.OrderConfirmation{
		To:       to,
		OrderID:  order.ID.String(),
		Total:    orders.Total(order),
		Currency: s.currency,
	}
	if err := s.emailSender.SendOrderConfirmation(ctx, msg); err != nil {
		metrics.EmailFailures.Inc()
		if s.logg != nil {
			s.logg.Error(ctx, "order confirmation email failed", err)
		}
	}
}

func (s *Service) withOrderID(ctx context.Context, orderID uuid.UUID) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderID(ctx, orderID.String())
}

// customerDetails flattens the session's customer block into the joined
// address line, phone, and email the order stores.
func customerDetails(session *stripe.CheckoutSession) (address, phone, customerEmail string) {
	details := session.CustomerDetails
	if details == nil {
		return "", "", ""
	}
	if details.Address != nil {
		parts := []string{
			details.Address.Line1,
			details.Address.Line2,
			details.Address.City,
			details.Address.State,
			details.Address.PostalCode,
			details.Address.Country,
		}
		nonEmpty := make([]string, 0, len(parts))
		for _, part := range parts {
			if strings.TrimSpace(part) != "" {
				nonEmpty = append(nonEmpty, part)
			}
		}
		address = strings.Join(nonEmpty, ", ")
	}
	return address, details.Phone, details.Email
}
