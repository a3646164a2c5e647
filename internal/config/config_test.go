package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, def.Database.Driver, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Checkout.PendingTTL)
	assert.Equal(t, "INR", cfg.Payment.Currency)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
database:
  driver: sqlite
  dsn: /tmp/gadgetcave.db
checkout:
  pending_ttl: 5m
payment:
  upi_id: shop@upi
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("GADGETCAVE_JWT_SECRET", "from-env")
	t.Setenv("GADGETCAVE_SERVER_PORT", "9191")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/gadgetcave.db", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Checkout.PendingTTL)
	assert.Equal(t, "shop@upi", cfg.Payment.UPIID)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	// 未覆盖的字段保持默认
	assert.Equal(t, 8081, cfg.AdminServer.Port)
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", ServerConfig{Port: 8080}.Addr())
	assert.Equal(t, "127.0.0.1:81", ServerConfig{Host: "127.0.0.1", Port: 81}.Addr())
}
