package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/monsoonshop/monsoon-backend/pkg/db/models"
)

// OrderDTO is the back-office order payload.
type OrderDTO struct {
	ID        uuid.UUID       `json:"id"`
	IsPaid    bool            `json:"isPaid"`
	Address   string          `json:"address"`
	Phone     string          `json:"phone"`
	Total     decimal.Decimal `json:"total"`
	Items     []OrderItemDTO  `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
}

// OrderItemDTO is one line of an order.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Size        *string         `json:"size,omitempty"`
	Color       *string         `json:"color,omitempty"`
}

// NewOrderDTO builds a DTO from the persisted model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:        order.ID,
		IsPaid:    order.IsPaid,
		Address:   order.Address,
		Phone:     order.Phone,
		Total:     Total(order),
		Items:     make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.UnitPrice = item.Product.Price
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}

// NewOrderDTOs maps a batch of orders.
func NewOrderDTOs(orders []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *NewOrderDTO(&orders[i]))
	}
	return dtos
}
