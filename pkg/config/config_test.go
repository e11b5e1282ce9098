package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Ledger.Storage)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 5*time.Millisecond, cfg.Ledger.RetryBackoff)
	assert.Equal(t, 20, cfg.Ledger.PageSize)
	assert.Equal(t, 100, cfg.Ledger.MaxPageSize)
	assert.True(t, cfg.DB.Migrate)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "ledger", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_STORAGE", "Memory")
	v.Set("LEDGER_MAX_COMMIT_RETRIES", "9")
	v.Set("LEDGER_RETRY_BACKOFF_MS", "12")
	v.Set("METRICS_ENABLED", "false")
	v.Set("DB_PORT", "6543")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Ledger.Storage)
	assert.Equal(t, 9, cfg.Ledger.MaxRetries)
	assert.Equal(t, 12*time.Millisecond, cfg.Ledger.RetryBackoff)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestFromViper_Invalida(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_STORAGE", "redis")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("LEDGER_PAGE_SIZE", "200")
	_, err = fromViper(v)
	assert.Error(t, err, "page size mayor que el máximo")
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{User: "u", Password: "p@ss:w/rd", Host: "db", Port: 5432, DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aw%2Frd@db:5432/x?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://other"
	assert.Equal(t, "postgres://other", c.ConnectionString())
}
