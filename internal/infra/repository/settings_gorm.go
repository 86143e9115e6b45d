package repository

import (
	"context"
	"errors"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"

	"gorm.io/gorm"
)

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) Get(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := r.db.WithContext(ctx).First(&s, model.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Settings{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// id=1 に upsert
func (r *SettingsGormRepository) Save(ctx context.Context, s model.Settings) error {
	s.ID = model.SettingsID
	return r.db.WithContext(ctx).Save(&s).Error
}
