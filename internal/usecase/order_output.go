package usecase

import (
	"strconv"
	"strings"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

type OrderItemOutput struct {
	MenuItemID int64  `json:"menu_id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	Price      int64  `json:"price"`
	Subtotal   int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	TableNumber   int                 `json:"table_number"`
	OrderType     model.OrderType     `json:"order_type"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Total         int64               `json:"total"`
	Status        model.OrderStatus   `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	EndedAt       *time.Time          `json:"ended_at"`
	Menu          string              `json:"menu"`
	Items         []OrderItemOutput   `json:"items"`
}

// "Kopi Susu x2, Roti Bakar x1"
func MenuSummary(items []model.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.MenuName()+" x"+strconv.FormatInt(it.Quantity, 10))
	}
	return strings.Join(parts, ", ")
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			MenuItemID: it.MenuItemID,
			Name:       it.MenuName(),
			Quantity:   it.Quantity,
			Price:      it.Price,
			Subtotal:   it.LineTotal(),
		})
	}

	return OrderOutput{
		ID:            o.ID,
		Name:          o.CustomerName,
		TableNumber:   o.TableNumber,
		OrderType:     o.OrderType,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		EndedAt:       o.EndedAt,
		Menu:          MenuSummary(o.Items),
		Items:         items,
	}
}

func toOrderOutputs(orders []model.Order) []OrderOutput {
	out := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderOutput(o))
	}
	return out
}

func orderEvent(typ model.OrderEventType, o model.Order, at time.Time) model.OrderEvent {
	return model.OrderEvent{
		Type:        typ,
		OrderID:     o.ID,
		TableNumber: o.TableNumber,
		Status:      o.Status,
		At:          at,
	}
}
