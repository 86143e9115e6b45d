package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文確定と客側の注文状態
type CheckoutHandler struct {
	checkout *usecase.CheckoutUsecase
	status   *usecase.OrderStatusUsecase
}

func NewCheckoutHandler(checkout *usecase.CheckoutUsecase, status *usecase.OrderStatusUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, status: status}
}

type CheckoutRequest struct {
	Name          string `json:"name"`
	TableNumber   int    `json:"table_number"`
	OrderType     string `json:"order_type"`
	PaymentMethod string `json:"payment_method"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, customer ...echo.MiddlewareFunc) {
	g := e.Group("/api", customer...)

	g.POST("/checkout", h.create)
	g.GET("/orders/status", h.orderStatus)
	g.GET("/tables/active", h.activeTables)
}

func (h *CheckoutHandler) create(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkout.Checkout(c.Request().Context(), sessionIDFromContext(c), usecase.CheckoutInput{
		Name:          req.Name,
		TableNumber:   req.TableNumber,
		OrderType:     req.OrderType,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// ?nama=X&meja=N。無ければセッションが覚えている注文
func (h *CheckoutHandler) orderStatus(c echo.Context) error {
	out, err := h.status.GetStatus(c.Request().Context(), sessionIDFromContext(c), usecase.StatusQuery{
		Name:  c.QueryParam("nama"),
		Table: c.QueryParam("meja"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) activeTables(c echo.Context) error {
	tables, err := h.status.ActiveTables(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]int{"tables": tables})
}
