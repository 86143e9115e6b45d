package handler

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/middleware"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

// QR読み取りとテーブルセッション
type SessionHandler struct {
	uc *usecase.SessionUsecase
}

// DI
func NewSessionHandler(uc *usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// customer は TableSession / HoursGate
func (h *SessionHandler) RegisterRoutes(e *echo.Echo, customer ...echo.MiddlewareFunc) {
	g := e.Group("/api", customer...)

	g.GET("/scan", h.scan)
	g.GET("/session", h.get)
	g.DELETE("/session", h.release)
	g.POST("/session/touch", h.touch)
}

// ?meja=N&nama=X（table/name でも可）
func (h *SessionHandler) scan(c echo.Context) error {
	table := c.QueryParam("meja")
	if table == "" {
		table = c.QueryParam("table")
	}
	name := c.QueryParam("nama")
	if name == "" {
		name = c.QueryParam("name")
	}

	out, err := h.uc.Claim(c.Request().Context(), sessionIDFromContext(c), usecase.ClaimInput{
		Table: table,
		Name:  name,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SessionHandler) get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), sessionIDFromContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SessionHandler) release(c echo.Context) error {
	if err := h.uc.Release(c.Request().Context(), sessionIDFromContext(c)); err != nil {
		return writeError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// 画面操作だけのとき。更新は middleware 側で済んでいる
func (h *SessionHandler) touch(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
