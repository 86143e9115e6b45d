package model

import "time"

// 注文明細
// price は注文時点の単価。
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	MenuItemID int64     `gorm:"column:menu_id;not null;index" json:"menu_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	Price      int64     `gorm:"not null" json:"price"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	MenuItem   *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu,omitempty"`
}

func (i OrderItem) LineTotal() int64 {
	return i.Price * i.Quantity
}

// 結合したメニュー名。無ければ "Menu"
func (i OrderItem) MenuName() string {
	if i.MenuItem == nil || i.MenuItem.Name == "" {
		return "Menu"
	}
	return i.MenuItem.Name
}
