package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // 管理画面のトークン有効期限

	GoEnv         string // dev/prod
	FEURL         string // フロントURL（CORS）
	PublicBaseURL string // 画像URLの前に付ける
	StorageDir    string // 画像の保存先

	TableCount          int           // テーブル数（30）
	SessionIdleTimeout  time.Duration // 放置でセッションを消すまで（2分）
	SessionReapInterval time.Duration // 放置チェックの間隔（30秒）
	OrderPollInterval   time.Duration // 管理画面の再取得間隔（10秒）
	AutoCancelAfter     time.Duration // waitingの自動キャンセル（30分）
	MenuCacheTTL        time.Duration // メニューのキャッシュ（15分）

	KafkaBrokers []string // 空ならKafkaに流さない
	KafkaTopic   string

	AdminEmail    string // 初期管理者
	AdminPassword string

	LogLevel string
	TimeZone string // 日付の区切りに使う（Asia/Jakarta）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	tables, err := intEnv("TABLE_COUNT", 30)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:         getenv("GO_ENV", "dev"),
		FEURL:         os.Getenv("FE_URL"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		StorageDir:    getenv("STORAGE_DIR", "./storage"),

		TableCount: tables,

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "twoncafe.orders"),

		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		LogLevel: getenv("LOG_LEVEL", "info"),
		TimeZone: getenv("TZ_NAME", "Asia/Jakarta"),
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"ACCESS_TOKEN_TTL", 12 * time.Hour, &cfg.AccessTokenTTL},
		{"SESSION_IDLE_TIMEOUT", 2 * time.Minute, &cfg.SessionIdleTimeout},
		{"SESSION_REAP_INTERVAL", 30 * time.Second, &cfg.SessionReapInterval},
		{"ORDER_POLL_INTERVAL", 10 * time.Second, &cfg.OrderPollInterval},
		{"AUTO_CANCEL_AFTER", 30 * time.Minute, &cfg.AutoCancelAfter},
		{"MENU_CACHE_TTL", 15 * time.Minute, &cfg.MenuCacheTTL},
	}
	for _, d := range durations {
		v, err := durationEnv(d.key, d.def)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	//必須チェック
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TableCount <= 0 {
		return Config{}, fmt.Errorf("TABLE_COUNT must be positive")
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return Config{}, fmt.Errorf("TZ_NAME is invalid: %w", err)
	}

	return cfg, nil
}

// DSN はgormに渡す接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Location は日付の区切り用のタイムゾーン（Loadで検証済み）
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

// "2m" や "30s"
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration like 30s", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
