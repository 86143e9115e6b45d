package middleware

import (
	"context"
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"
	"github.com/syrjfsih/TwoNCafe/internal/logging"

	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "table_session"
	CtxSessionIDKey   = "table_session_id" // string
)

type SessionToucher interface {
	Touch(ctx context.Context, id string) (model.TableSession, bool, error)
}

// 客のセッションをcookieで引き当てて最終操作時刻を更新する。
// 無ければ作ってcookieを返す。
func TableSession(sessions SessionToucher, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				id = ck.Value
			}

			s, created, err := sessions.Touch(c.Request().Context(), id)
			if err != nil {
				logging.FromContext(c.Request().Context()).Error("touch session failed", "error", err)
				return c.JSON(http.StatusInternalServerError, errorJSON("session error"))
			}

			if created {
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(CtxSessionIDKey, s.ID)
			return next(c)
		}
	}
}
