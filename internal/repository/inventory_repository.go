package repository

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, menuItemID int64, newStock int64) error

	// stock = stock - qty。在庫チェックはしない（マイナスもありえる）
	DecreaseStock(ctx context.Context, menuItemID int64, qty int64) error

	// 在庫戻し（キャンセル）
	IncreaseStock(ctx context.Context, menuItemID int64, qty int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error
}
