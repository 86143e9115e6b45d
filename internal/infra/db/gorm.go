package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 変更通知のチャンネル名
const OrdersChannel = "orders_changed"

func configurePool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
}

// Connect はDBに接続して *gorm.DB を返す。
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gdb, nil
}

// Migrate はテーブルを作り、postgresなら変更通知のトリガーも入れる。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&model.User{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Settings{},
		&model.StockAdjustment{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if gdb.Dialector.Name() != "postgres" {
		return nil
	}
	for _, stmt := range notifyTriggerSQL {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("install orders trigger: %w", err)
		}
	}
	return nil
}

// orders の INSERT/UPDATE/DELETE ごとに pg_notify する
var notifyTriggerSQL = []string{
	`CREATE OR REPLACE FUNCTION notify_orders_changed() RETURNS trigger AS $$
DECLARE
	rec RECORD;
BEGIN
	IF TG_OP = 'DELETE' THEN
		rec := OLD;
	ELSE
		rec := NEW;
	END IF;
	PERFORM pg_notify('` + OrdersChannel + `', json_build_object(
		'type', TG_OP,
		'order_id', rec.id,
		'table_number', rec.table_number,
		'status', rec.status
	)::text);
	RETURN rec;
END;
$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS orders_changed ON orders`,
	`CREATE TRIGGER orders_changed AFTER INSERT OR UPDATE OR DELETE ON orders
	FOR EACH ROW EXECUTE FUNCTION notify_orders_changed()`,
}

// 初回だけ営業時間の行を作る（08:00-22:00）
func SeedSettings(ctx context.Context, gdb *gorm.DB) error {
	s := model.Settings{ID: model.SettingsID, OpeningTime: "08:00", ClosingTime: "22:00"}
	return gdb.WithContext(ctx).FirstOrCreate(&s, model.Settings{ID: model.SettingsID}).Error
}
