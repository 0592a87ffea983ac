package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heshamdawsha976/sen2/internal/config"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, config.StoreDriverPostgres, cfg.App.StoreDriver)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)

	price, err := cfg.UnitPrice()
	require.NoError(t, err)
	assert.Equal(t, "350", price.String())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("UNIT_PRICE", "299.99")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, config.StoreDriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)

	price, err := cfg.UnitPrice()
	require.NoError(t, err)
	assert.Equal(t, "299.99", price.String())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "store_driver", key: "STORE_DRIVER", value: "redis"},
		{name: "unit_price", key: "UNIT_PRICE", value: "cheap"},
		{name: "negative_price", key: "UNIT_PRICE", value: "-1"},
		{name: "timezone", key: "TIMEZONE", value: "Mars/Olympus"},
		{name: "window", key: "RATE_LIMIT_WINDOW", value: "0s"},
		{name: "max", key: "RATE_LIMIT_MAX", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Parse()
			require.Error(t, err)
		})
	}
}

func TestNewConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("WHATSAPP_NUMBER=201000000000\n"), 0o600))

	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("WHATSAPP_NUMBER") })

	cfg, err := config.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "201000000000", cfg.Shop.WhatsAppNumber)
}

func TestNewConfig_MissingEnvFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := config.NewConfig()
	require.NoError(t, err)
}
