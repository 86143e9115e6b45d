package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細は別で保存するので関連は無視
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// 明細とメニュー名を結合して読む
func (r *OrderGormRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.MenuItem")
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.withItems(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("ended_at IS NULL AND status <> ?", model.OrderStatusDone)
}

func (r *OrderGormRepository) ListActiveByTable(ctx context.Context, table int) ([]model.Order, error) {
	var items []model.Order
	err := r.active(ctx).
		Where("table_number = ?", table).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListActiveTables(ctx context.Context) ([]int, error) {
	var tables []int
	err := r.active(ctx).
		Distinct("table_number").
		Order("table_number asc").
		Pluck("table_number", &tables).Error
	if err != nil {
		return []int{}, err
	}
	return tables, nil
}

func (r *OrderGormRepository) FindLatestByNameAndTable(ctx context.Context, name string, table int) (model.Order, error) {
	var o model.Order
	err := r.withItems(ctx).
		Where("LOWER(name) = ? AND table_number = ?", strings.ToLower(strings.TrimSpace(name)), table).
		Order("created_at desc").Order("id desc").
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	q := r.withItems(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var items []model.Order
	if err := q.Order("created_at desc").Order("id desc").Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	var items []model.Order
	err := r.withItems(ctx).
		Where("status = ? AND created_at < ?", model.OrderStatusWaiting, cutoff).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, endedAt *time.Time) error {
	values := map[string]interface{}{"status": status}
	if endedAt != nil {
		values["ended_at"] = *endedAt
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
