package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "NODE_ENV", "PORT", "DATABASE_URL", "DB_URI", "FRONTEND_URL",
		"KAFKA_BROKERS", "ORDER_SEQ_START", "ORDER_SEQ_STEP", "TAX_PRICE", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8000, cfg.ServerPort)
	assert.Equal(t, "*", cfg.FrontendURL)
	assert.Equal(t, "order_events", cfg.KafkaOrderTopic)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.EqualValues(t, 0, cfg.OrderSeqStart)
	assert.EqualValues(t, 1, cfg.OrderSeqStep)
	assert.True(t, cfg.TaxPrice.IsZero())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "staging")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URI", "postgres://u:p@db:5432/shop")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("TAX_PRICE", "2.50")
	t.Setenv("ORDER_SEQ_START", "1000")

	cfg := Load()

	assert.Equal(t, "staging", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.DatabaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.TaxPrice.Equal(decimal.RequireFromString("2.5")))
	assert.EqualValues(t, 1000, cfg.OrderSeqStart)
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_DEC", "-3")

	assert.Equal(t, 7, EnvIntDefault("X_INT", 7))
	assert.Equal(t, time.Minute, EnvDurationDefault("X_DUR", time.Minute))
	assert.True(t, EnvDecimalDefault("X_DEC", decimal.NewFromInt(1)).Equal(decimal.NewFromInt(1)))
}
