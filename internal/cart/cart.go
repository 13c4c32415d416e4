package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a cart line. CartID is the composite variant identity: the same
// product added with a different size or color is a distinct line.
type Item struct {
	CartID        string          `json:"cartId"`
	ProductID     uuid.UUID       `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Image         string          `json:"image,omitempty"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
}

// ItemKey builds the composite line identity. Absent variant dimensions
// contribute an empty segment, so "id--" is a valid key for a product with
// neither size nor color.
func ItemKey(productID uuid.UUID, size, color string) string {
	return fmt.Sprintf("%s-%s-%s", productID, size, color)
}

// Persister saves the full item list after every mutation. Failures are
// reported back so the caller can decide whether to surface them; Store
// treats them as non-fatal.
type Persister interface {
	Save(ctx context.Context, items []Item) error
}

// Notifier receives a user-facing message after each successful mutation.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string) {}

// Store holds one shopper's cart. It is not safe for concurrent use; each
// request loads its own Store from the persisted snapshot.
type Store struct {
	items   []Item
	persist Persister
	notify  Notifier
}

// NewStore seeds a store with previously persisted items. Both ports are
// optional; a nil Notifier is replaced with a no-op.
func NewStore(items []Item, persist Persister, notify Notifier) *Store {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &Store{
		items:   append([]Item(nil), items...),
		persist: persist,
		notify:  notify,
	}
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	return len(s.items)
}

// AddItem merges the quantity into an existing line with the same composite
// identity, or appends a new line at the end.
func (s *Store) AddItem(ctx context.Context, item Item) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.CartID == "" {
		item.CartID = ItemKey(item.ProductID, item.SelectedSize, item.SelectedColor)
	}
	if idx := s.indexOf(item.CartID); idx >= 0 {
		s.items[idx].Quantity += item.Quantity
		s.save(ctx)
		s.notify.Notify(ctx, "Cart quantity updated")
		return
	}
	s.items = append(s.items, item)
	s.save(ctx)
	s.notify.Notify(ctx, "Added to cart")
}

// RemoveItem deletes the line with the given composite identity. Removing an
// absent line is a no-op and emits no notification.
func (s *Store) RemoveItem(ctx context.Context, cartID string) {
	idx := s.indexOf(cartID)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.save(ctx)
	s.notify.Notify(ctx, "Removed from cart")
}

// UpdateQuantity replaces the quantity of an existing line. A quantity of
// zero or less removes the line entirely.
func (s *Store) UpdateQuantity(ctx context.Context, cartID string, quantity int) {
	idx := s.indexOf(cartID)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		s.save(ctx)
		s.notify.Notify(ctx, "Removed from cart")
		return
	}
	s.items[idx].Quantity = quantity
	s.save(ctx)
	s.notify.Notify(ctx, "Cart quantity updated")
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.items = nil
	s.save(ctx)
}

// Total sums unit price times quantity across all lines.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (s *Store) indexOf(cartID string) int {
	for i, item := range s.items {
		if item.CartID == cartID {
			return i
		}
	}
	return -1
}

func (s *Store) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	// Persistence is best effort; the in-memory state is authoritative for
	// the rest of the request.
	_ = s.persist.Save(ctx, s.items)
}
