package model

import "time"

type OrderEventType string

const (
	OrderEventInsert OrderEventType = "INSERT"
	OrderEventUpdate OrderEventType = "UPDATE"
	OrderEventDelete OrderEventType = "DELETE"
)

// orders テーブルの変更通知
type OrderEvent struct {
	Type        OrderEventType `json:"type"`
	OrderID     int64          `json:"order_id"`
	TableNumber int            `json:"table_number"`
	Status      OrderStatus    `json:"status"`
	At          time.Time      `json:"at"`
}
