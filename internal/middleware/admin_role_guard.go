package middleware

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleで管理画面に入れるか確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ADMINとSTAFFだけ許可
			switch model.Role(role) {
			case model.RoleAdmin, model.RoleStaff:
				return next(c)
			default:
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
		}
	}
}
