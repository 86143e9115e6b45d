package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/cafe?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.TableCount)
	assert.Equal(t, 2*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.OrderPollInterval)
	assert.Equal(t, 30*time.Minute, cfg.AutoCancelAfter)
	assert.Equal(t, 15*time.Minute, cfg.MenuCacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "postgres://u:p@localhost:5432/cafe?sslmode=disable", cfg.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TABLE_COUNT", "12")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PUBLIC_BASE_URL", "http://cafe.local/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.TableCount)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://cafe.local", cfg.PublicBaseURL)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoad_BadDuration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ORDER_POLL_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORDER_POLL_INTERVAL")
}

func TestDSN_FromParts(t *testing.T) {
	cfg := Config{
		PostgresHost: "db", PostgresPort: 5433, PostgresUser: "cafe",
		PostgresPassword: "pw", PostgresDB: "twon", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=cafe password=pw dbname=twon sslmode=disable", cfg.DSN())
}
