package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

const menuImagePrefix = "menu-images/"

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

type MenuUsecase struct {
	menus    repo.MenuRepository
	tx       repo.TransactionManager
	storage  repo.ImageStorage
	ids      IDGenerator
	clock    Clock
	cacheTTL time.Duration

	mu        sync.Mutex
	cache     []model.MenuItem
	expiresAt time.Time
}

// DI
func NewMenuUsecase(
	menus repo.MenuRepository,
	tx repo.TransactionManager,
	storage repo.ImageStorage,
	ids IDGenerator,
	clock Clock,
	cacheTTL time.Duration,
) *MenuUsecase {
	return &MenuUsecase{
		menus:    menus,
		tx:       tx,
		storage:  storage,
		ids:      ids,
		clock:    clock,
		cacheTTL: cacheTTL,
	}
}

// 公開メニュー全件（キャッシュ付き）
func (u *MenuUsecase) publicMenu(ctx context.Context) ([]model.MenuItem, error) {
	now := u.clock.Now()

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.cache != nil && now.Before(u.expiresAt) {
		return u.cache, nil
	}

	items, err := u.menus.List(ctx, repo.MenuListQuery{})
	if err != nil {
		return nil, err
	}
	u.cache = items
	u.expiresAt = now.Add(u.cacheTTL)
	return items, nil
}

// 管理画面で書き換えたら捨てる
func (u *MenuUsecase) invalidate() {
	u.mu.Lock()
	u.cache = nil
	u.mu.Unlock()
}

// GET /api/menu
func (u *MenuUsecase) ListMenu(ctx context.Context, q string, category string) ([]model.MenuItem, error) {
	if len(q) > 100 {
		return []model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	var cat model.MenuCategory
	if strings.TrimSpace(category) != "" {
		c, err := model.ParseMenuCategory(category)
		if err != nil {
			return []model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		cat = c
	}

	all, err := u.publicMenu(ctx)
	if err != nil {
		return []model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "failed to load menu")
	}

	needle := strings.ToLower(strings.TrimSpace(q))
	out := make([]model.MenuItem, 0, len(all))
	for _, m := range all {
		if cat != "" && m.Category != cat {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(m.Name), needle) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// GET /api/menu/:id
func (u *MenuUsecase) GetMenuItem(ctx context.Context, id int64) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := u.menus.FindByID(ctx, id)
	if err == repo.ErrNotFound || (err == nil && !m.Orderable()) {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "menu not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m, nil
}

// 管理画面用（非公開も含む）
func (u *MenuUsecase) AdminList(ctx context.Context, q string, category string) ([]model.MenuItem, error) {
	items, err := u.menus.List(ctx, repo.MenuListQuery{Q: q, Category: category, IncludeInactive: true})
	if err == model.ErrInvalidMenuCategory {
		return []model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	if err != nil {
		return []model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

type MenuInput struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
}

func (in MenuInput) build() (model.MenuItem, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	m, err := model.NewMenuItem(in.Name, in.Price, in.Description, in.Category, in.Stock, in.ImageURL, active)
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return m, nil
}

func (u *MenuUsecase) AdminCreate(ctx context.Context, actorAdminUserID int64, in MenuInput) (model.MenuItem, error) {
	if actorAdminUserID <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	m, err := in.build()
	if err != nil {
		return model.MenuItem{}, err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Menus().Create(ctx, &m); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "failed to save menu")
		}
		return u.audit(ctx, r, actorAdminUserID, model.AuditActionCreateMenu, m.ID, nil, m)
	})
	if err != nil {
		return model.MenuItem{}, err
	}

	u.invalidate()
	return m, nil
}

// 在庫が変わったときは調整履歴も残す
func (u *MenuUsecase) AdminUpdate(ctx context.Context, actorAdminUserID int64, id int64, in MenuInput) (model.MenuItem, error) {
	if actorAdminUserID <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	next, err := in.build()
	if err != nil {
		return model.MenuItem{}, err
	}
	next.ID = id

	var updated model.MenuItem
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Menus().FindByID(ctx, id)
		if err == repo.ErrNotFound || (err == nil && before.IsDeleted) {
			return NewHTTPError(http.StatusNotFound, "menu not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Menus().Update(ctx, &next); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "failed to save menu")
		}
		if next.Stock != before.Stock {
			if err := u.setStock(ctx, r, actorAdminUserID, id, before.Stock, next.Stock, "menu edit"); err != nil {
				return err
			}
		}

		updated, err = r.Menus().FindByID(ctx, id)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return u.audit(ctx, r, actorAdminUserID, model.AuditActionUpdateMenu, id, before, updated)
	})
	if err != nil {
		return model.MenuItem{}, err
	}

	u.invalidate()
	return updated, nil
}

func (u *MenuUsecase) AdminDelete(ctx context.Context, actorAdminUserID int64, id int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Menus().SoftDelete(ctx, id); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "menu not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "failed to delete menu")
		}
		return u.audit(ctx, r, actorAdminUserID, model.AuditActionDeleteMenu, id, nil, map[string]bool{"is_deleted": true})
	})
	if err != nil {
		return err
	}

	u.invalidate()
	return nil
}

type UpdateStockInput struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// 在庫を絶対値で設定
func (u *MenuUsecase) AdminUpdateStock(ctx context.Context, actorAdminUserID int64, id int64, in UpdateStockInput) (model.MenuItem, error) {
	if actorAdminUserID <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Stock < 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "manual adjustment"
	}

	var updated model.MenuItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Menus().FindByID(ctx, id)
		if err == repo.ErrNotFound || (err == nil && before.IsDeleted) {
			return NewHTTPError(http.StatusNotFound, "menu not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.setStock(ctx, r, actorAdminUserID, id, before.Stock, in.Stock, reason); err != nil {
			return err
		}
		updated = before
		updated.Stock = in.Stock
		return nil
	})
	if err != nil {
		return model.MenuItem{}, err
	}

	u.invalidate()
	return updated, nil
}

// 在庫更新＋調整履歴＋監査ログ
func (u *MenuUsecase) setStock(ctx context.Context, r repo.TxRepos, actor int64, id int64, before int64, after int64, reason string) error {
	if err := r.Inventory().SetStock(ctx, id, after); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "failed to update stock")
	}
	if err := r.Inventory().CreateAdjustment(ctx, model.StockAdjustment{
		MenuItemID:  id,
		AdminUserID: actor,
		Delta:       after - before,
		Reason:      reason,
		CreatedAt:   u.clock.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.audit(ctx, r, actor, model.AuditActionUpdateStock, id,
		map[string]int64{"stock": before}, map[string]int64{"stock": after})
}

func (u *MenuUsecase) audit(ctx context.Context, r repo.TxRepos, actor int64, action model.AuditAction, id int64, before, after interface{}) error {
	var beforeJSON, afterJSON []byte
	if before != nil {
		beforeJSON, _ = json.Marshal(before)
	}
	if after != nil {
		afterJSON, _ = json.Marshal(after)
	}
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: model.AuditResourceMenu,
		ResourceID:   id,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type UploadImageOutput struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// メニュー画像を menu-images/<uuid><ext> に保存
func (u *MenuUsecase) UploadImage(ctx context.Context, filename string, r io.Reader) (UploadImageOutput, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return UploadImageOutput{}, NewHTTPError(http.StatusBadRequest, "unsupported image type")
	}

	objectPath := menuImagePrefix + u.ids.NewID() + ext
	if err := u.storage.Upload(ctx, objectPath, r, false); err != nil {
		logging.FromContext(ctx).Error("upload menu image failed", "path", objectPath, "error", err)
		return UploadImageOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to upload image")
	}

	return UploadImageOutput{Path: objectPath, URL: u.storage.PublicURL(objectPath)}, nil
}
