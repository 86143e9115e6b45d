package handler

import (
	"net/http"
	"strconv"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/middleware"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Redirect: he.Redirect})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /admin 配下は全部「JWT必須 + token_version一致 + 管理ロール限定」
func adminGroup(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) *echo.Group {
	return e.Group(
		"/admin",
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
		middleware.AdminRoleGuard(),
	)
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// middleware.TableSession が入れたセッションID
func sessionIDFromContext(c echo.Context) string {
	id, _ := c.Get(middleware.CtxSessionIDKey).(string)
	return id
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
