package model

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusWaiting    OrderStatus = "waiting"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var ErrInvalidOrderStatus = errors.New("invalid status")

// 大文字小文字は無視。旧ステータス（menunggu/diproses/selesai/dibatalkan）も変換する。
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "waiting", "menunggu":
		return OrderStatusWaiting, nil
	case "processing", "diproses":
		return OrderStatusProcessing, nil
	case "done", "selesai":
		return OrderStatusDone, nil
	case "cancelled", "canceled", "dibatalkan":
		return OrderStatusCancelled, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// done/cancelled は終端
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDone || s == OrderStatusCancelled
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
)

var ErrInvalidOrderType = errors.New("invalid order_type")

func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dine_in", "dinein", "dine-in":
		return OrderTypeDineIn, nil
	case "takeaway", "take_away":
		return OrderTypeTakeaway, nil
	default:
		return "", ErrInvalidOrderType
	}
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodQRIS PaymentMethod = "qris"
)

var ErrInvalidPaymentMethod = errors.New("invalid payment_method")

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "tunai":
		return PaymentMethodCash, nil
	case "qris":
		return PaymentMethodQRIS, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// 注文
// ended_at が NULL の間はテーブルを占有している。
type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName  string        `gorm:"column:name;type:varchar(255);not null;index" json:"name"`
	TableNumber   int           `gorm:"not null;index" json:"table_number"`
	OrderType     OrderType     `gorm:"type:varchar(20);not null" json:"order_type"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Total         int64         `gorm:"not null" json:"total"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time     `gorm:"not null;index" json:"created_at"`
	EndedAt       *time.Time    `gorm:"index" json:"ended_at"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// ended_at が NULL かつ done ではない
func (o Order) IsActive() bool {
	return o.EndedAt == nil && o.Status != OrderStatusDone
}

// 明細から合計を計算（価格はスナップショット）
func (o Order) ItemsTotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.LineTotal()
	}
	return total
}
