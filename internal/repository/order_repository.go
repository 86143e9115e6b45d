package repository

import (
	"context"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

type OrderListFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	// 0 なら全件
	Limit int
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	// 明細とメニュー名も一緒に取る
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	// ended_at が NULL かつ done 以外の注文
	ListActiveByTable(ctx context.Context, table int) ([]model.Order, error)
	// 使用中のテーブル番号（昇順・重複なし）
	ListActiveTables(ctx context.Context) ([]int, error)

	// 名前（大文字小文字無視）とテーブルで最新の注文
	FindLatestByNameAndTable(ctx context.Context, name string, table int) (model.Order, error)

	//管理者用の注文一覧（新しい順、明細付き）
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	// cutoff より前に作られた waiting の注文
	ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error)

	// endedAt が nil なら ended_at は触らない
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, endedAt *time.Time) error
	Delete(ctx context.Context, orderID int64) error
}
