package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8081", cfg.AdminServer.Addr())
	assert.Equal(t, 5*time.Second, cfg.AdminServer.RequestTimeout)
	assert.Equal(t, "mysql", cfg.Storage.Driver)
	assert.Equal(t, 6, cfg.Analytics.RevenueMonths)
	assert.Equal(t, 5, cfg.Analytics.RecentOrders)
	assert.False(t, cfg.Policy.CODCompletionAdvancesOrder)
	assert.Equal(t, 30*time.Second, cfg.Policy.IdempotencyPendingTTL)
	assert.Equal(t, "message_reply_queue", cfg.RabbitMQ.ReplyQueue)
	assert.Equal(t, []string{"auth-node-1", "auth-node-2", "auth-node-3"}, cfg.Auth.Nodes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COMMERCEOPS_STORAGE_DRIVER", "memory")
	t.Setenv("COMMERCEOPS_ADMIN_SERVER_PORT", "9090")
	t.Setenv("COMMERCEOPS_ADMIN_SERVER_REQUEST_TIMEOUT", "2s")
	t.Setenv("COMMERCEOPS_POLICY_COD_COMPLETION_ADVANCES_ORDER", "true")
	t.Setenv("COMMERCEOPS_ANALYTICS_REVENUE_MONTHS", "12")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 9090, cfg.AdminServer.Port)
	assert.Equal(t, 2*time.Second, cfg.AdminServer.RequestTimeout)
	assert.True(t, cfg.Policy.CODCompletionAdvancesOrder)
	assert.Equal(t, 12, cfg.Analytics.RevenueMonths)
}

func TestLoadEmptyEnvDisablesOptionalInfra(t *testing.T) {
	t.Setenv("COMMERCEOPS_REDIS_ADDR", "")
	t.Setenv("COMMERCEOPS_RABBITMQ_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
storage:
  driver: memory
redis:
  addr: ""
currency:
  code: EUR
  symbol: "€"
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "EUR", cfg.Currency.Code)
	// 文件中未出现的键仍保留默认值
	assert.Equal(t, 8081, cfg.AdminServer.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("COMMERCEOPS_STORAGE_DRIVER", "sqlite")
	_, err := Load("")
	require.Error(t, err)
}
