package repository

import (
	"context"

	repo "github.com/syrjfsih/TwoNCafe/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	tx *gorm.DB
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r *txReposGorm) Menus() repo.MenuRepository           { return NewMenuGormRepository(r.tx) }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return NewInventoryGormRepository(r.tx) }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return NewAuditLogGormRepository(r.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(&txReposGorm{tx: tx})
	})
}
