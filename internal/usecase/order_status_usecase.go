package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

// 客側の注文状態ページ
type OrderStatusUsecase struct {
	orders     repo.OrderRepository
	sessions   repo.SessionStore
	tableCount int
}

func NewOrderStatusUsecase(orders repo.OrderRepository, sessions repo.SessionStore, tableCount int) *OrderStatusUsecase {
	return &OrderStatusUsecase{orders: orders, sessions: sessions, tableCount: tableCount}
}

type StatusQuery struct {
	Name  string
	Table string
}

// 名前（大文字小文字無視）とテーブルで最新の注文を返す。
// 指定が無ければセッションが覚えている名前とテーブルを使う。
func (u *OrderStatusUsecase) GetStatus(ctx context.Context, sessionID string, q StatusQuery) (OrderOutput, error) {
	var sess *model.TableSession
	if sessionID != "" {
		if s, err := u.sessions.Get(ctx, sessionID); err == nil {
			sess = &s
		}
	}

	name := strings.TrimSpace(q.Name)
	tableRaw := strings.TrimSpace(q.Table)
	if sess != nil {
		if name == "" {
			name = sess.CustomerName
		}
		if tableRaw == "" && sess.RememberedTable() > 0 {
			tableRaw = strconv.Itoa(sess.RememberedTable())
		}
	}
	if name == "" || tableRaw == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "nama and meja are required")
	}
	table, ok := parseTable(tableRaw, u.tableCount)
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid meja")
	}

	o, err := u.orders.FindLatestByNameAndTable(ctx, name, table)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to load order")
	}

	if sess != nil && sess.OrderID == o.ID {
		u.remember(ctx, *sess, o)
	}
	return toOrderOutput(o), nil
}

// セッションの注文状態を更新。done になったら注文の記憶を消す
func (u *OrderStatusUsecase) remember(ctx context.Context, s model.TableSession, o model.Order) {
	if s.OrderStatus == o.Status && o.Status != model.OrderStatusDone {
		return
	}
	s.OrderStatus = o.Status
	if o.Status == model.OrderStatusDone {
		s.OrderID = 0
		s.OrderTable = 0
		s.OrderStatus = ""
	}
	if err := u.sessions.Save(ctx, s); err != nil {
		logging.FromContext(ctx).Warn("save session status failed", "session", s.ID, "error", err)
	}
}

// 使用中テーブル（チェックアウトのテーブル選択用）
func (u *OrderStatusUsecase) ActiveTables(ctx context.Context) ([]int, error) {
	tables, err := u.orders.ListActiveTables(ctx)
	if err != nil {
		return []int{}, NewHTTPError(http.StatusInternalServerError, "failed to load tables")
	}
	return tables, nil
}
