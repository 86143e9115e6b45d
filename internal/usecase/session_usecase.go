package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

// カート追加で使うメニューの読み取り
type MenuReader interface {
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)
}

type SessionOutput struct {
	ID          string            `json:"-"`
	TableNumber int               `json:"table_number"`
	Name        string            `json:"name"`
	Cart        []model.CartLine  `json:"cart"`
	Total       int64             `json:"total"`
	OrderID     int64             `json:"order_id,omitempty"`
	OrderTable  int               `json:"order_table,omitempty"`
	OrderStatus model.OrderStatus `json:"order_status,omitempty"`
}

func toSessionOutput(s model.TableSession) SessionOutput {
	cart := s.Cart
	if cart == nil {
		cart = []model.CartLine{}
	}
	return SessionOutput{
		ID:          s.ID,
		TableNumber: s.TableNumber,
		Name:        s.CustomerName,
		Cart:        cart,
		Total:       s.CartTotal(),
		OrderID:     s.OrderID,
		OrderTable:  s.OrderTable,
		OrderStatus: s.OrderStatus,
	}
}

type SessionUsecase struct {
	store       repo.SessionStore
	orders      repo.OrderRepository
	menus       MenuReader
	clock       Clock
	ids         IDGenerator
	tableCount  int
	idleTimeout time.Duration
}

// DI
func NewSessionUsecase(
	store repo.SessionStore,
	orders repo.OrderRepository,
	menus MenuReader,
	clock Clock,
	ids IDGenerator,
	tableCount int,
	idleTimeout time.Duration,
) *SessionUsecase {
	return &SessionUsecase{
		store:       store,
		orders:      orders,
		menus:       menus,
		clock:       clock,
		ids:         ids,
		tableCount:  tableCount,
		idleTimeout: idleTimeout,
	}
}

// "5" → 5。範囲外や数字以外は false
func parseTable(raw string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

// ended_at が NULL で done 以外の注文があれば使用中
func checkTableFree(ctx context.Context, orders repo.OrderRepository, table int) error {
	active, err := orders.ListActiveByTable(ctx, table)
	if err != nil {
		logging.FromContext(ctx).Error("check table failed", "table", table, "error", err)
		return NewRedirectError(http.StatusInternalServerError, "failed to verify table", "/")
	}
	if len(active) > 0 {
		return NewRedirectError(http.StatusConflict, "table "+strconv.Itoa(table)+" is still in use", "/")
	}
	return nil
}

// リクエストごとに呼ぶ。無ければ新しく作る（created=true）
func (u *SessionUsecase) Touch(ctx context.Context, id string) (model.TableSession, bool, error) {
	now := u.clock.Now()

	if id != "" {
		s, err := u.store.Get(ctx, id)
		if err == nil {
			s.LastActivity = now
			if err := u.store.Save(ctx, s); err != nil {
				return model.TableSession{}, false, err
			}
			return s, false, nil
		}
		if err != repo.ErrNotFound {
			return model.TableSession{}, false, err
		}
	}

	s := model.TableSession{ID: u.ids.NewID(), LastActivity: now}
	if err := u.store.Save(ctx, s); err != nil {
		return model.TableSession{}, false, err
	}
	return s, true, nil
}

func (u *SessionUsecase) load(ctx context.Context, id string) (model.TableSession, error) {
	if id == "" {
		return model.TableSession{}, NewRedirectError(http.StatusBadRequest, "no session", "/")
	}
	s, err := u.store.Get(ctx, id)
	if err == repo.ErrNotFound {
		return model.TableSession{}, NewRedirectError(http.StatusBadRequest, "no session", "/")
	}
	if err != nil {
		return model.TableSession{}, NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return s, nil
}

func (u *SessionUsecase) save(ctx context.Context, s model.TableSession) error {
	s.LastActivity = u.clock.Now()
	if err := u.store.Save(ctx, s); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return nil
}

func (u *SessionUsecase) Get(ctx context.Context, id string) (SessionOutput, error) {
	s, err := u.load(ctx, id)
	if err != nil {
		return SessionOutput{}, err
	}
	return toSessionOutput(s), nil
}

type ClaimInput struct {
	Table string
	Name  string
}

// QRを読んだとき（?meja=N&nama=X）
// meja が無ければ今のテーブルを返す。テーブルも無ければトップへ戻す。
func (u *SessionUsecase) Claim(ctx context.Context, id string, in ClaimInput) (SessionOutput, error) {
	s, err := u.load(ctx, id)
	if err != nil {
		return SessionOutput{}, err
	}

	name := strings.TrimSpace(in.Name)
	if strings.TrimSpace(in.Table) == "" {
		if !s.Claimed() {
			return SessionOutput{}, NewRedirectError(http.StatusBadRequest, "table number required", "/")
		}
		if name != "" {
			s.CustomerName = name
			if err := u.save(ctx, s); err != nil {
				return SessionOutput{}, err
			}
		}
		return toSessionOutput(s), nil
	}

	table, ok := parseTable(in.Table, u.tableCount)
	if !ok {
		return SessionOutput{}, NewRedirectError(http.StatusBadRequest, "invalid table number", "/")
	}

	if err := checkTableFree(ctx, u.orders, table); err != nil {
		return SessionOutput{}, err
	}

	// 別のテーブルに移ったらカートは持ち越さない
	if s.TableNumber != table {
		s.Cart = nil
	}
	s.TableNumber = table
	if name != "" {
		s.CustomerName = name
	}
	if err := u.save(ctx, s); err != nil {
		return SessionOutput{}, err
	}
	return toSessionOutput(s), nil
}

func (u *SessionUsecase) requireClaimed(ctx context.Context, id string) (model.TableSession, error) {
	s, err := u.load(ctx, id)
	if err != nil {
		return model.TableSession{}, err
	}
	if !s.Claimed() {
		return model.TableSession{}, NewRedirectError(http.StatusBadRequest, "scan a table first", "/")
	}
	return s, nil
}

type AddToCartInput struct {
	MenuItemID int64 `json:"menu_id"`
	Quantity   int64 `json:"quantity"`
}

// 既にある行は覚えている在庫で先に判定する（DBは見ない）
func (u *SessionUsecase) AddToCart(ctx context.Context, id string, in AddToCartInput) (SessionOutput, error) {
	if in.MenuItemID <= 0 {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid menu_id")
	}
	if in.Quantity <= 0 {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	s, err := u.requireClaimed(ctx, id)
	if err != nil {
		return SessionOutput{}, err
	}

	if i, ok := s.FindLine(in.MenuItemID); ok {
		// 足してから比べると溢れるので残りと比べる
		if in.Quantity > s.Cart[i].Stock-s.Cart[i].Quantity {
			return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "quantity exceeds stock")
		}
		s.Cart[i].Quantity += in.Quantity
	} else {
		m, err := u.menus.FindByID(ctx, in.MenuItemID)
		if err == repo.ErrNotFound || (err == nil && !m.Orderable()) {
			return SessionOutput{}, NewHTTPError(http.StatusNotFound, "menu not found")
		}
		if err != nil {
			return SessionOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to load menu")
		}
		if m.Stock <= 0 {
			return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "out of stock")
		}
		if in.Quantity > m.Stock {
			return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "quantity exceeds stock")
		}
		s.Cart = append(s.Cart, model.CartLine{
			MenuItemID: m.ID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   in.Quantity,
			Stock:      m.Stock,
		})
	}

	if err := u.save(ctx, s); err != nil {
		return SessionOutput{}, err
	}
	return toSessionOutput(s), nil
}

// 0以下なら行を消す
func (u *SessionUsecase) UpdateCartItem(ctx context.Context, id string, menuItemID int64, quantity int64) (SessionOutput, error) {
	s, err := u.requireClaimed(ctx, id)
	if err != nil {
		return SessionOutput{}, err
	}

	i, ok := s.FindLine(menuItemID)
	if !ok {
		return SessionOutput{}, NewHTTPError(http.StatusNotFound, "item not in cart")
	}
	if quantity > s.Cart[i].Stock {
		return SessionOutput{}, NewHTTPError(http.StatusBadRequest, "quantity exceeds stock")
	}

	if quantity <= 0 {
		s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
	} else {
		s.Cart[i].Quantity = quantity
	}

	if err := u.save(ctx, s); err != nil {
		return SessionOutput{}, err
	}
	return toSessionOutput(s), nil
}

func (u *SessionUsecase) RemoveCartItem(ctx context.Context, id string, menuItemID int64) (SessionOutput, error) {
	return u.UpdateCartItem(ctx, id, menuItemID, 0)
}

// DELETE /api/session
func (u *SessionUsecase) Release(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := u.store.Delete(ctx, id); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "session error")
	}
	return nil
}

// 放置されたセッションを消す。
// 覚えている名前とテーブルで進行中の注文がまだあれば残す。
func (u *SessionUsecase) ReapIdle(ctx context.Context) (int, error) {
	sessions, err := u.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := u.clock.Now()
	removed := 0
	for _, s := range sessions {
		if s.IdleSince(now) < u.idleTimeout {
			continue
		}

		keep, err := u.hasActiveOrder(ctx, s)
		if err != nil {
			logging.FromContext(ctx).Warn("idle session check failed", "session", s.ID, "error", err)
			continue
		}
		if keep {
			continue
		}

		if err := u.store.Delete(ctx, s.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (u *SessionUsecase) hasActiveOrder(ctx context.Context, s model.TableSession) (bool, error) {
	table := s.RememberedTable()
	name := strings.TrimSpace(s.CustomerName)
	if table == 0 || name == "" {
		return false, nil
	}

	active, err := u.orders.ListActiveByTable(ctx, table)
	if err != nil {
		return false, err
	}
	for _, o := range active {
		if strings.EqualFold(strings.TrimSpace(o.CustomerName), name) {
			return true, nil
		}
	}
	return false, nil
}

// ReapIdle を interval ごとに回す
func (u *SessionUsecase) RunReaper(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := u.ReapIdle(ctx)
			if err != nil {
				logging.FromContext(ctx).Warn("session reaper failed", "error", err)
				continue
			}
			if n > 0 {
				logging.FromContext(ctx).Info("idle sessions released", "count", n)
			}
		}
	}
}
