package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := adminGroup(e, cfg, userRepo)
	admin.GET("/audit-logs", h.list)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), usecase.AuditLogQuery{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Limit:        c.QueryParam("limit"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
