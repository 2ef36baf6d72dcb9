package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/parse"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "marketareas.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 100, cfg.FeatureService.MaxRecords)
	assert.Equal(t, 4326, cfg.FeatureService.OutSR)
	assert.Equal(t, 6, cfg.FeatureService.GeometryPrecision)
	assert.Equal(t, 30, cfg.FeatureService.TimeoutSecs)
	assert.Equal(t, "CA", cfg.Import.DefaultState)
	assert.Equal(t, "permissive", cfg.Import.ClassifyPolicy)
	assert.Equal(t, "transparency", cfg.Import.OpacityPercentMeans)
	assert.InDelta(t, 5, cfg.Import.DefaultRadiusMiles, 0.001)
	assert.InDelta(t, 15, cfg.Import.DefaultDriveMinutes, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Viz.Enabled)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/marketareas
import:
  default_state: TX
  classify_policy: restrictive
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "TX", cfg.Import.DefaultState)
	assert.Equal(t, "restrictive", cfg.Import.ClassifyPolicy)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 100, cfg.FeatureService.MaxRecords)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("MARKETAREA_STORE_DRIVER", "api")
	t.Setenv("MARKETAREA_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "api", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("MARKETAREA_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "marketareas.db"
	cfg.FeatureService.MaxRecords = 100
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateImport(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("import"))
}

func TestValidateAPIDriverRequiresBaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "api"
	cfg.Store.APIBaseURL = ""

	err := cfg.Validate("import")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.api_base_url is required")

	cfg.Store.APIBaseURL = "https://api.example.com"
	assert.NoError(t, cfg.Validate("import"))
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "dynamo"

	err := cfg.Validate("import")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be")
}

func TestValidateServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateMaxRecordsBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.FeatureService.MaxRecords = 0
	err := cfg.Validate("import")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_records must be between 1 and 1000")

	cfg.FeatureService.MaxRecords = 1001
	err = cfg.Validate("import")
	assert.Error(t, err)

	cfg.FeatureService.MaxRecords = 1000
	assert.NoError(t, cfg.Validate("import"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("replicate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestParseOptions(t *testing.T) {
	cfg := validDefaults()
	cfg.Import.DefaultState = "NC"
	cfg.Import.ClassifyPolicy = "restrictive"
	cfg.Import.OpacityPercentMeans = "opacity"
	cfg.Import.SupportedKinds = []string{"zip", "County"}

	opts, err := cfg.ParseOptions()
	require.NoError(t, err)
	assert.Equal(t, parse.PolicyRestrictive, opts.Policy)
	assert.Equal(t, parse.PercentMeansOpacity, opts.OpacityMode)
	assert.Equal(t, "NC", opts.DefaultState)
	assert.True(t, opts.Supported[marketarea.KindZip])
	assert.True(t, opts.Supported[marketarea.KindCounty])
	assert.False(t, opts.Supported[marketarea.KindTract])
}

func TestParseOptionsRejectsUnknownKind(t *testing.T) {
	cfg := validDefaults()
	cfg.Import.SupportedKinds = []string{"hexagon"}

	_, err := cfg.ParseOptions()
	assert.Error(t, err)
}

func TestLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	yaml := `
zip:
  fill_color: "#FF9800"
  fill_opacity: 0.35
  border_color: "#E65100"
  border_width: 2
radius:
  fill_color: "#4CAF50"
  no_border: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "#FF9800", presets[marketarea.KindZip].FillColor)
	assert.InDelta(t, 0.35, presets[marketarea.KindZip].FillOpacity, 0.001)
	assert.True(t, presets[marketarea.KindRadius].NoBorder)
}

func TestLoadPresetsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hexagon:\n  fill_color: \"#000\"\n"), 0644))

	_, err := LoadPresets(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}
