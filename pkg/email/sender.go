package email

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderConfirmation carries everything the confirmation template needs.
type OrderConfirmation struct {
	To       string
	OrderID  string
	Total    decimal.Decimal
	Currency string
}

// Sender delivers transactional mail. Implementations must be safe for
// concurrent use; callers treat failures as best-effort.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error
}
