package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/menu の公開API
type MenuHandler struct {
	uc *usecase.MenuUsecase
}

// DI
func NewMenuHandler(uc *usecase.MenuUsecase) *MenuHandler {
	return &MenuHandler{uc: uc}
}

// 公開メニューのルートを登録
func (h *MenuHandler) RegisterRoutes(e *echo.Echo, customer ...echo.MiddlewareFunc) {
	g := e.Group("/api/menu", customer...)

	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func (h *MenuHandler) list(c echo.Context) error {
	out, err := h.uc.ListMenu(c.Request().Context(), c.QueryParam("q"), c.QueryParam("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MenuHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	m, err := h.uc.GetMenuItem(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}
