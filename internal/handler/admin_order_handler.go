package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文の変更通知（realtime.Hub）
type OrderFeed interface {
	Subscribe() (<-chan model.OrderEvent, func())
}

type AdminOrderHandler struct {
	uc           *usecase.AdminOrderUsecase
	dashboard    *usecase.DashboardUsecase
	feed         OrderFeed
	pollInterval time.Duration
	loc          *time.Location
}

func NewAdminOrderHandler(
	uc *usecase.AdminOrderUsecase,
	dashboard *usecase.DashboardUsecase,
	feed OrderFeed,
	pollInterval time.Duration,
	loc *time.Location,
) *AdminOrderHandler {
	if loc == nil {
		loc = time.Local
	}
	return &AdminOrderHandler{uc: uc, dashboard: dashboard, feed: feed, pollInterval: pollInterval, loc: loc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

// SSE で流す1回分
type OrdersSnapshot struct {
	Orders    []usecase.OrderOutput   `json:"orders"`
	Dashboard usecase.DashboardOutput `json:"dashboard"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)

	admin.GET("/orders", h.list)
	admin.GET("/orders/stream", h.stream)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.DELETE("/orders/:id", h.delete)
	admin.GET("/orders/:id/receipt", h.receipt)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// 操作した管理者ID（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, usecase.AdminUpdateOrderStatusInput{
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, orderID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "order deleted"})
}

func (h *AdminOrderHandler) receipt(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	o, err := h.uc.Get(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}

	body, err := renderReceipt(o, h.loc)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("render receipt failed", "order_id", orderID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.HTMLBlob(http.StatusOK, body)
}

// Server-Sent Events
// 変更通知が来たら一覧とダッシュボードを計算し直して送る。pollInterval ごとにも送る。
func (h *AdminOrderHandler) stream(c echo.Context) error {
	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	events, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	var prevActive []int
	push := func() error {
		orders, err := h.uc.List(ctx, "")
		if err != nil {
			return err
		}
		dash, err := h.dashboard.Compute(ctx, prevActive)
		if err != nil {
			return err
		}
		prevActive = dash.ActiveTables

		b, err := json.Marshal(OrdersSnapshot{Orders: orders, Dashboard: dash})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "event: snapshot\ndata: %s\n\n", b); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	if err := push(); err != nil {
		log.Warn("order stream push failed", "error", err)
		return nil
	}

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
		case <-ticker.C:
		}

		if err := push(); err != nil {
			// 切断か DB エラー。どちらでも閉じてクライアントに再接続させる
			log.Warn("order stream push failed", "error", err)
			return nil
		}
	}
}
