package middleware

import (
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/repository"

	"github.com/labstack/echo/v4"
)

// ログアウト済みや停止された店員のトークンを止める。
// AuthJWT の後ろに置く。毎回 users を引くのでログアウトは即座に効く。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			staffID, _ := c.Get(CtxUserIDKey).(int64)
			tv, hasTV := c.Get(CtxTokenVersionKey).(int)
			if staffID <= 0 || !hasTV || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			staff, err := userRepo.FindByID(c.Request().Context(), staffID)
			switch {
			case err != nil || staff == nil:
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			case !staff.IsActive:
				return c.JSON(http.StatusForbidden, errorJSON("account disabled"))
			case staff.TokenVersion != tv:
				//ログアウトで番号が進んだ古いトークン
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}
