package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	repo "github.com/syrjfsih/TwoNCafe/internal/repository"
)

type MonthlyRevenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

type MenuFrequency struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type ReportQuery struct {
	Start string
	End   string
}

type ReportOutput struct {
	Start        string           `json:"start,omitempty"`
	End          string           `json:"end,omitempty"`
	Daily        []DailyRevenue   `json:"daily"`
	Weekly       []DailyRevenue   `json:"weekly"`
	Monthly      []MonthlyRevenue `json:"monthly"`
	TotalProfit  int64            `json:"total_profit"`
	MostOrdered  *MenuFrequency   `json:"most_ordered"`
	LeastOrdered *MenuFrequency   `json:"least_ordered"`
}

func (q ReportQuery) validate() error {
	for _, v := range []string{q.Start, q.End} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return NewHTTPError(http.StatusBadRequest, "dates must be YYYY-MM-DD")
		}
	}
	if q.Start != "" && q.End != "" && q.Start > q.End {
		return NewHTTPError(http.StatusBadRequest, "start must be before end")
	}
	return nil
}

// 両方あるときだけ絞り込む（両端を含む）
func (q ReportQuery) inRange(day string) bool {
	if q.Start == "" || q.End == "" {
		return true
	}
	return day >= q.Start && day <= q.End
}

// 日別・週（直近7件の日別）・月別と、よく出る/出ないメニュー
// 同数のときは先に集計に出てきた方。
func BuildReport(orders []model.Order, loc *time.Location, q ReportQuery) ReportOutput {
	sorted := append([]model.Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	dailyIdx := map[string]int{}
	var daily []DailyRevenue
	monthlyIdx := map[string]int{}
	var monthly []MonthlyRevenue

	freqIdx := map[string]int{}
	var freq []MenuFrequency

	for _, o := range sorted {
		//キャンセルは売上にも件数にも入れない（旧画面は全件を合計していた）
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		at := o.CreatedAt.In(loc)
		day := at.Format(dateLayout)
		month := at.Format("2006-01")

		i, ok := dailyIdx[day]
		if !ok {
			i = len(daily)
			dailyIdx[day] = i
			daily = append(daily, DailyRevenue{Date: day})
		}
		daily[i].Revenue += o.Total
		daily[i].Orders++

		m, ok := monthlyIdx[month]
		if !ok {
			m = len(monthly)
			monthlyIdx[month] = m
			monthly = append(monthly, MonthlyRevenue{Month: month})
		}
		monthly[m].Revenue += o.Total
		monthly[m].Orders++

		if !q.inRange(day) {
			continue
		}
		for _, it := range o.Items {
			name := it.MenuName()
			f, ok := freqIdx[name]
			if !ok {
				f = len(freq)
				freqIdx[name] = f
				freq = append(freq, MenuFrequency{Name: name})
			}
			freq[f].Quantity += it.Quantity
		}
	}

	out := ReportOutput{
		Start:   q.Start,
		End:     q.End,
		Daily:   []DailyRevenue{},
		Monthly: monthly,
	}
	if out.Monthly == nil {
		out.Monthly = []MonthlyRevenue{}
	}
	for _, d := range daily {
		if q.inRange(d.Date) {
			out.Daily = append(out.Daily, d)
			out.TotalProfit += d.Revenue
		}
	}

	weekStart := len(daily) - trendDays
	if weekStart < 0 {
		weekStart = 0
	}
	out.Weekly = append([]DailyRevenue{}, daily[weekStart:]...)

	for i := range freq {
		f := freq[i]
		if out.MostOrdered == nil || f.Quantity > out.MostOrdered.Quantity {
			out.MostOrdered = &f
		}
		if out.LeastOrdered == nil || f.Quantity < out.LeastOrdered.Quantity {
			out.LeastOrdered = &f
		}
	}
	return out
}

type ReportUsecase struct {
	orders repo.OrderRepository
	loc    *time.Location
}

func NewReportUsecase(orders repo.OrderRepository, loc *time.Location) *ReportUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &ReportUsecase{orders: orders, loc: loc}
}

func (u *ReportUsecase) Report(ctx context.Context, q ReportQuery) (ReportOutput, error) {
	q.Start = strings.TrimSpace(q.Start)
	q.End = strings.TrimSpace(q.End)
	if err := q.validate(); err != nil {
		return ReportOutput{}, err
	}

	orders, err := u.orders.List(ctx, repo.OrderListFilter{})
	if err != nil {
		return ReportOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to load orders")
	}
	return BuildReport(orders, u.loc, q), nil
}

// 絞り込んだ日別をCSVにする（表計算ソフト用）
func (u *ReportUsecase) ExportCSV(ctx context.Context, q ReportQuery) ([]byte, error) {
	rep, err := u.Report(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"date", "orders", "total"})
	for _, d := range rep.Daily {
		_ = w.Write([]string{d.Date, strconv.Itoa(d.Orders), strconv.FormatInt(d.Revenue, 10)})
	}
	_ = w.Write([]string{"total", "", strconv.FormatInt(rep.TotalProfit, 10)})
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "failed to export")
	}
	return buf.Bytes(), nil
}
