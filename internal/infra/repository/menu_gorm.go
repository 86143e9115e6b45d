package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"

	"gorm.io/gorm"
)

type MenuGormRepository struct {
	db *gorm.DB
}

// DI
func NewMenuGormRepository(db *gorm.DB) *MenuGormRepository {
	return &MenuGormRepository{db: db}
}

// 論理削除されていないメニューを、検索/カテゴリ付きで返す。
func (r *MenuGormRepository) List(ctx context.Context, q repo.MenuListQuery) ([]model.MenuItem, error) {
	var items []model.MenuItem

	tx := r.db.WithContext(ctx).Model(&model.MenuItem{}).Where("is_deleted = ?", false)

	if !q.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}

	// 名前の部分一致（大文字小文字無視）
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	if strings.TrimSpace(q.Category) != "" {
		cat, err := model.ParseMenuCategory(q.Category)
		if err != nil {
			return []model.MenuItem{}, err
		}
		tx = tx.Where("category = ?", cat)
	}

	if err := tx.Order("name asc").Order("id asc").Find(&items).Error; err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}

// IDでメニューを取得（論理削除済みも返す）
func (r *MenuGormRepository) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return m, nil
}

func (r *MenuGormRepository) Create(ctx context.Context, item *model.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// 在庫以外の項目を更新
func (r *MenuGormRepository) Update(ctx context.Context, item *model.MenuItem) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ? AND is_deleted = ?", item.ID, false).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"price":       item.Price,
			"description": item.Description,
			"category":    item.Category,
			"image_url":   item.ImageURL,
			"is_active":   item.IsActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// is_deleted=true にする
func (r *MenuGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MenuGormRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("is_deleted = ? AND is_active = ?", false, true).
		Count(&n).Error
	return n, err
}
