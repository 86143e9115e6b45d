package server

import (
	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/handler"
	"github.com/syrjfsih/TwoNCafe/internal/repository"

	"github.com/labstack/echo/v4"
)

// 客向けはテーブルセッションと営業時間のミドルウェアを通す
type customerRoutes interface {
	RegisterRoutes(e *echo.Echo, customer ...echo.MiddlewareFunc)
}

// 管理画面は JWT → token_version → role の順
type adminRoutes interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository)
}

type Handlers struct {
	Session  *handler.SessionHandler
	Cart     *handler.CartHandler
	Menu     *handler.MenuHandler
	Checkout *handler.CheckoutHandler

	Auth       *handler.AuthHandler
	Hours      *handler.HoursHandler
	AdminMenu  *handler.AdminMenuHandler
	AdminOrder *handler.AdminOrderHandler
	Dashboard  *handler.DashboardHandler
	AuditLog   *handler.AuditLogHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers, customer ...echo.MiddlewareFunc) {
	for _, r := range []customerRoutes{h.Session, h.Cart, h.Menu, h.Checkout} {
		r.RegisterRoutes(e, customer...)
	}
	for _, r := range []adminRoutes{h.Auth, h.Hours, h.AdminMenu, h.AdminOrder, h.Dashboard, h.AuditLog} {
		r.RegisterRoutes(e, cfg, userRepo)
	}
}
