package repository

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

// id=1 の設定行
type SettingsRepository interface {
	Get(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}
