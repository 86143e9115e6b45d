package repository

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

// 客側セッションの置き場所
// 消えても業務データは壊れない。
type SessionStore interface {
	// 無い場合は ErrNotFound
	Get(ctx context.Context, id string) (model.TableSession, error)
	Save(ctx context.Context, s model.TableSession) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.TableSession, error)
}
