package repository

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, menuItemID int64, newStock int64) error {
	return r.updateStock(ctx, menuItemID, newStock)
}

// 在庫を減らす。足りるかは見ない
func (r *InventoryGormRepository) DecreaseStock(ctx context.Context, menuItemID int64, qty int64) error {
	return r.updateStock(ctx, menuItemID, gorm.Expr("stock - ?", qty))
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, menuItemID int64, qty int64) error {
	return r.updateStock(ctx, menuItemID, gorm.Expr("stock + ?", qty))
}

func (r *InventoryGormRepository) updateStock(ctx context.Context, menuItemID int64, value interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.MenuItem{}).
		Where("id = ?", menuItemID).
		Update("stock", value)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.StockAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
