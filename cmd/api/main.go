package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/syrjfsih/TwoNCafe/internal/config"
	"github.com/syrjfsih/TwoNCafe/internal/handler"
	"github.com/syrjfsih/TwoNCafe/internal/infra/db"
	"github.com/syrjfsih/TwoNCafe/internal/infra/realtime"
	infraRepo "github.com/syrjfsih/TwoNCafe/internal/infra/repository"
	"github.com/syrjfsih/TwoNCafe/internal/infra/session"
	"github.com/syrjfsih/TwoNCafe/internal/infra/storage"
	"github.com/syrjfsih/TwoNCafe/internal/infra/token"
	"github.com/syrjfsih/TwoNCafe/internal/logging"
	appmw "github.com/syrjfsih/TwoNCafe/internal/middleware"
	"github.com/syrjfsih/TwoNCafe/internal/repository"
	"github.com/syrjfsih/TwoNCafe/internal/server"
	"github.com/syrjfsih/TwoNCafe/internal/usecase"
	"github.com/syrjfsih/TwoNCafe/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

func main() {
	//.env は無くてもよい（本番は環境変数）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, log)

	//DB接続
	gormDB, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	if err := db.SeedSettings(ctx, gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	settingsRepo := infraRepo.NewSettingsGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	sessionStore := session.NewMemoryStore()
	hub := realtime.NewHub()

	images, err := storage.NewLocalStorage(cfg.StorageDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	//Kafkaは任意
	var publisher repository.OrderEventPublisher = realtime.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := realtime.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		log.Info("publishing order events to kafka", "topic", cfg.KafkaTopic)
	}

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	idGen := &uuidGenerator{}
	loc := cfg.Location()
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	menuUC := usecase.NewMenuUsecase(menuRepo, txm, images, idGen, clock, cfg.MenuCacheTTL)
	hoursUC := usecase.NewHoursUsecase(settingsRepo, auditRepo, clock, loc)
	sessionUC := usecase.NewSessionUsecase(sessionStore, orderRepo, menuRepo, clock, idGen, cfg.TableCount, cfg.SessionIdleTimeout)
	checkoutUC := usecase.NewCheckoutUsecase(sessionStore, orderRepo, orderItemRepo, inventoryRepo, publisher, clock, cfg.TableCount)
	statusUC := usecase.NewOrderStatusUsecase(orderRepo, sessionStore, cfg.TableCount)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, orderItemRepo, auditRepo, publisher, clock, cfg.AutoCancelAfter)
	dashboardUC := usecase.NewDashboardUsecase(orderRepo, menuRepo, hoursUC, clock, loc)
	reportUC := usecase.NewReportUsecase(orderRepo, loc)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)
	authUC := usecase.NewAuthUsecase(userRepo, validator.NewAuthValidator(), issuer, clock)

	if cfg.AdminEmail != "" {
		created, err := authUC.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("admin account created", "email", cfg.AdminEmail)
		}
	}

	//Handler生成
	e := server.New(cfg, log)
	server.RegisterRoutes(e, cfg, userRepo, server.Handlers{
		Session:  handler.NewSessionHandler(sessionUC),
		Cart:     handler.NewCartHandler(sessionUC),
		Menu:     handler.NewMenuHandler(menuUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC, statusUC),

		Auth:       handler.NewAuthHandler(authUC),
		Hours:      handler.NewHoursHandler(hoursUC),
		AdminMenu:  handler.NewAdminMenuHandler(menuUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC, dashboardUC, hub, cfg.OrderPollInterval, loc),
		Dashboard:  handler.NewDashboardHandler(dashboardUC, reportUC),
		AuditLog:   handler.NewAuditLogHandler(auditUC),
	},
		appmw.HoursGate(hoursUC),
		appmw.TableSession(sessionUC, cfg.IsProd()),
	)

	//Server起動（サーバー、DB通知、セッション掃除）
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, e, ":"+cfg.Port, log)
	})
	g.Go(func() error {
		return realtime.NewPGListener(cfg.DSN(), db.OrdersChannel, hub, log).Run(gctx)
	})
	g.Go(func() error {
		return sessionUC.RunReaper(gctx, cfg.SessionReapInterval)
	})

	return g.Wait()
}
