package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ダッシュボードと売上レポート
type DashboardHandler struct {
	dashboard *usecase.DashboardUsecase
	reports   *usecase.ReportUsecase
}

func NewDashboardHandler(dashboard *usecase.DashboardUsecase, reports *usecase.ReportUsecase) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, reports: reports}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.GET("/dashboard", h.summary)
	admin.GET("/reports", h.report)
	admin.GET("/reports/export.csv", h.exportCSV)
}

func (h *DashboardHandler) summary(c echo.Context) error {
	out, err := h.dashboard.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *DashboardHandler) report(c echo.Context) error {
	out, err := h.reports.Report(c.Request().Context(), reportQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) exportCSV(c echo.Context) error {
	q := reportQuery(c)
	b, err := h.reports.ExportCSV(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}

	name := "laporan-penjualan.csv"
	if q.Start != "" && q.End != "" {
		name = "laporan-penjualan_" + q.Start + "_" + q.End + ".csv"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", b)
}

func reportQuery(c echo.Context) usecase.ReportQuery {
	return usecase.ReportQuery{Start: c.QueryParam("start"), End: c.QueryParam("end")}
}
