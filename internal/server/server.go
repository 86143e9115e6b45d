package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	appmw "github.com/syrjfsih/TwoNCafe/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// New は共通ミドルウェアと静的ファイルだけ載せた echo を作る。
// ルートは RegisterRoutes で足す。
func New(cfg config.Config, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(appmw.RequestLogger(log))

	//フロントが別オリジンのときだけ。cookieを通すので credentials あり
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FEURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	//アップロードした画像
	e.Static("/storage", cfg.StorageDir)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

// Run は ctx が終わるまでサーバーを動かし、終わったら graceful shutdown する。
func Run(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("http server shutting down")
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
