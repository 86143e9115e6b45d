package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 営業時間
type HoursHandler struct {
	uc *usecase.HoursUsecase
}

func NewHoursHandler(uc *usecase.HoursUsecase) *HoursHandler {
	return &HoursHandler{uc: uc}
}

type HoursUpdateRequest struct {
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

// GET /api/hours は閉店中でも見られる（/blocked の表示用）
func (h *HoursHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.GET("/api/hours", h.status)

	admin := adminGroup(e, cfg, userRepo)
	admin.GET("/settings/hours", h.status)
	admin.PUT("/settings/hours", h.update)
}

func (h *HoursHandler) status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Status(c.Request().Context()))
}

func (h *HoursHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req HoursUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateHours(c.Request().Context(), adminID, usecase.UpdateHoursInput{
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
