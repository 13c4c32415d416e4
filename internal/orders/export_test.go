package orders

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
)

func TestWriteCSVShape(t *testing.T) {
	parka := &models.Product{Name: "Storm Parka", Price: decimal.RequireFromString("129.00")}
	hat := &models.Product{Name: "Sun Hat", Price: decimal.RequireFromString("19.50")}
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	order := models.Order{
		ID:        uuid.New(),
		IsPaid:    true,
		Phone:     "+33612345678",
		CreatedAt: created,
		Items: []models.OrderItem{
			{Product: parka, Quantity: 2},
			{Product: hat, Quantity: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.Order{order}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"order_id", "created_at", "phone", "total", "products"}, records[0])

	row := records[1]
	assert.Equal(t, order.ID.String(), row[0])
	assert.Equal(t, "2026-03-14T09:30:00Z", row[1])
	assert.Equal(t, "+33612345678", row[2])
	assert.Equal(t, "277.50", row[3])
	assert.Equal(t, "2x Storm Parka | 1x Sun Hat", row[4])
}

func TestWriteCSVEmptyOrders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}
