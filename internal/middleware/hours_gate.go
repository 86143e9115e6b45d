package middleware

import (
	"context"
	"net/http"

	"github.com/syrjfsih/TwoNCafe/internal/usecase"

	"github.com/labstack/echo/v4"
)

type HoursChecker interface {
	Status(ctx context.Context) usecase.OpenStatus
}

// 営業時間外は客側APIを止めて /blocked へ
func HoursGate(hours HoursChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !hours.Status(c.Request().Context()).Open {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "closed", Redirect: "/blocked"})
			}
			return next(c)
		}
	}
}
