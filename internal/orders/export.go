package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
)

var exportHeader = []string{"order_id", "created_at", "phone", "total", "products"}

// WriteCSV streams the paid-order export. One row per order: id, ISO-8601
// creation timestamp, phone, total with two decimals, and a pipe-joined
// "Nx Name" product summary.
func WriteCSV(w io.Writer, orders []models.Order) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i := range orders {
		order := &orders[i]
		row := []string{
			order.ID.String(),
			order.CreatedAt.UTC().Format(time.RFC3339),
			order.Phone,
			Total(order).StringFixed(2),
			productSummary(order),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func productSummary(order *models.Order) string {
	parts := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		name := "unknown product"
		if item.Product != nil {
			name = item.Product.Name
		}
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, name))
	}
	return strings.Join(parts, " | ")
}
