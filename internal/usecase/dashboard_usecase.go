package usecase

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

const (
	dateLayout    = "2006-01-02"
	trendDays     = 7
	latestOrdersN = 5
)

type DailyRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

type DashboardOutput struct {
	TodayRevenue      int64          `json:"today_revenue"`
	TodayOrders       int            `json:"today_orders"`
	ActiveMenus       int64          `json:"active_menus"`
	ActiveTables      []int          `json:"active_tables"`
	NewlyActiveTables []int          `json:"newly_active_tables"`
	Trend             []DailyRevenue `json:"trend"`
	LatestOrders      []OrderOutput  `json:"latest_orders"`
	OpeningTime       string         `json:"opening_time"`
	ClosingTime       string         `json:"closing_time"`
	Open              bool           `json:"open"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// 全注文から毎回計算し直す（orders は新しい順）
// キャンセルは売上と件数に入れない。
func BuildDashboard(orders []model.Order, now time.Time, loc *time.Location, prevActive []int) DashboardOutput {
	now = now.In(loc)
	today := now.Format(dateLayout)

	trend := make([]DailyRevenue, 0, trendDays)
	index := make(map[string]int, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format(dateLayout)
		index[key] = len(trend)
		trend = append(trend, DailyRevenue{Date: key})
	}

	out := DashboardOutput{GeneratedAt: now}
	active := map[int]bool{}
	for _, o := range orders {
		if o.IsActive() {
			active[o.TableNumber] = true
		}
		//キャンセルは売上にも件数にも入れない（旧画面は全件を合計していた）
		if o.Status == model.OrderStatusCancelled {
			continue
		}

		day := o.CreatedAt.In(loc).Format(dateLayout)
		if day == today {
			out.TodayRevenue += o.Total
			out.TodayOrders++
		}
		if i, ok := index[day]; ok {
			trend[i].Revenue += o.Total
			trend[i].Orders++
		}
	}
	out.Trend = trend

	out.ActiveTables = make([]int, 0, len(active))
	for t := range active {
		out.ActiveTables = append(out.ActiveTables, t)
	}
	sort.Ints(out.ActiveTables)

	prev := make(map[int]bool, len(prevActive))
	for _, t := range prevActive {
		prev[t] = true
	}
	out.NewlyActiveTables = []int{}
	for _, t := range out.ActiveTables {
		if !prev[t] {
			out.NewlyActiveTables = append(out.NewlyActiveTables, t)
		}
	}

	n := len(orders)
	if n > latestOrdersN {
		n = latestOrdersN
	}
	out.LatestOrders = toOrderOutputs(orders[:n])
	return out
}

type DashboardUsecase struct {
	orders repo.OrderRepository
	menus  repo.MenuRepository
	hours  *HoursUsecase
	clock  Clock
	loc    *time.Location

	mu         sync.Mutex
	prevActive []int
}

func NewDashboardUsecase(orders repo.OrderRepository, menus repo.MenuRepository, hours *HoursUsecase, clock Clock, loc *time.Location) *DashboardUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardUsecase{orders: orders, menus: menus, hours: hours, clock: clock, loc: loc}
}

// prevActive は前回のアクティブテーブル（新しく埋まったテーブルの判定用）
func (u *DashboardUsecase) Compute(ctx context.Context, prevActive []int) (DashboardOutput, error) {
	orders, err := u.orders.List(ctx, repo.OrderListFilter{})
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to load orders")
	}
	activeMenus, err := u.menus.CountActive(ctx)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to load menu")
	}

	out := BuildDashboard(orders, u.clock.Now(), u.loc, prevActive)
	out.ActiveMenus = activeMenus

	st := u.hours.Status(ctx)
	out.OpeningTime = st.OpeningTime
	out.ClosingTime = st.ClosingTime
	out.Open = st.Open
	return out, nil
}

// GET /admin/dashboard（前回呼び出しとの差分で新しいテーブルを出す）
func (u *DashboardUsecase) Dashboard(ctx context.Context) (DashboardOutput, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	out, err := u.Compute(ctx, u.prevActive)
	if err != nil {
		return DashboardOutput{}, err
	}
	u.prevActive = out.ActiveTables
	return out, nil
}
