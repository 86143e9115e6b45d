package model

import "time"

// カートの1行
// price は追加時点の価格、stock は追加時点で見えていた在庫。
type CartLine struct {
	MenuItemID int64  `json:"menu_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
	Stock      int64  `json:"stock"`
}

func (l CartLine) Subtotal() int64 {
	return l.Price * l.Quantity
}

// テーブルセッション（客側の注文の流れ）
// TableNumber は確保中のテーブル（0なら未確保）。
// OrderTable/OrderID は最後に送信した注文。
type TableSession struct {
	ID           string      `json:"id"`
	TableNumber  int         `json:"table_number"`
	CustomerName string      `json:"name"`
	Cart         []CartLine  `json:"cart"`
	OrderID      int64       `json:"order_id,omitempty"`
	OrderTable   int         `json:"order_table,omitempty"`
	OrderStatus  OrderStatus `json:"order_status,omitempty"`
	LastActivity time.Time   `json:"last_activity"`
}

func (s TableSession) Claimed() bool {
	return s.TableNumber > 0
}

func (s TableSession) CartTotal() int64 {
	var total int64
	for _, l := range s.Cart {
		total += l.Subtotal()
	}
	return total
}

func (s TableSession) FindLine(menuItemID int64) (int, bool) {
	for i, l := range s.Cart {
		if l.MenuItemID == menuItemID {
			return i, true
		}
	}
	return -1, false
}

// アイドル判定用に覚えているテーブル
func (s TableSession) RememberedTable() int {
	if s.OrderTable > 0 {
		return s.OrderTable
	}
	return s.TableNumber
}

func (s TableSession) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}
