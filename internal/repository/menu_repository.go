package repository

import (
	"context"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
)

// メニュー一覧の条件
type MenuListQuery struct {
	Q        string
	Category string
	//管理画面では非公開のメニューも出す
	IncludeInactive bool
}

type MenuRepository interface {
	// 論理削除されていないメニューを名前順で返す
	List(ctx context.Context, q MenuListQuery) ([]model.MenuItem, error)
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)
	Create(ctx context.Context, item *model.MenuItem) error
	Update(ctx context.Context, item *model.MenuItem) error
	SoftDelete(ctx context.Context, id int64) error
	// 公開中メニュー数（ダッシュボード）
	CountActive(ctx context.Context) (int64, error)
}
