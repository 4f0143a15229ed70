package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestNewConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "8080"
  log_level: info
  cors_origins:
    - http://localhost:3000
table_store:
  url: https://example.supabase.co
  api_key: test-key
  page_size: 500
dashboard:
  overdue_after_days: 10
`)
	t.Setenv("SERVICELOG_CONFIG_FILE", path)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "https://example.supabase.co", cfg.TableStore.URL)
	assert.Equal(t, 500, cfg.TableStore.PageSizeOrDefault())
	assert.Equal(t, 10, cfg.Dashboard.OverdueAfterDaysOrDefault())
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "8080"
table_store:
  url: https://example.supabase.co
  api_key: from-file
`)
	t.Setenv("SERVICELOG_CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TABLE_STORE_API_KEY", "from-env")
	t.Setenv("TABLE_STORE_PAGE_SIZE", "250")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.TableStore.APIKey)
	assert.Equal(t, 250, cfg.TableStore.PageSize)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
}

func TestNewConfig_MissingFile(t *testing.T) {
	t.Setenv("SERVICELOG_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestDashboardDefaults(t *testing.T) {
	var d DashboardConfig

	assert.Equal(t, DefaultOverdueAfterDays, d.OverdueAfterDaysOrDefault())
	assert.Equal(t, DefaultUrgentDisplayCount, d.UrgentDisplayCountOrDefault())
	assert.Equal(t, DefaultTrendWindowDays, d.TrendWindowDaysOrDefault())
	assert.Equal(t, DefaultSeriesWindowDays, d.SeriesWindowDaysOrDefault())
	assert.Equal(t, DefaultRollupLimit, d.RollupLimitOrDefault())
	assert.Equal(t, DefaultRecentLimit, d.RecentLimitOrDefault())
	assert.Equal(t, DefaultResolutionClampDays, d.ResolutionClampDaysOrDefault())
	assert.Equal(t, DefaultWarrantyWindowDays, d.WarrantyWindowDaysOrDefault())
}
