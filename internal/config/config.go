// Package config loads application configuration from config.yaml and
// MARKETAREA_* environment variables, and owns global logger setup.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/normalize"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/parse"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/resolve"
)

// Config holds the full application configuration.
type Config struct {
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	FeatureService FeatureServiceConfig `yaml:"feature_service" mapstructure:"feature_service"`
	Import         ImportConfig         `yaml:"import" mapstructure:"import"`
	Viz            VizConfig            `yaml:"viz" mapstructure:"viz"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend. Driver is one of
// postgres, sqlite, or api.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	APIBaseURL  string `yaml:"api_base_url" mapstructure:"api_base_url"`
	APIToken    string `yaml:"api_token" mapstructure:"api_token"`
}

// FeatureServiceConfig configures the TIGERweb query client and the
// geometry resolver.
type FeatureServiceConfig struct {
	BaseURL           string              `yaml:"base_url" mapstructure:"base_url"`
	Layers            map[string][]string `yaml:"layers" mapstructure:"layers"`
	MDFallbackURL     string              `yaml:"md_fallback_url" mapstructure:"md_fallback_url"`
	MaxRecords        int                 `yaml:"max_records" mapstructure:"max_records"`
	OutSR             int                 `yaml:"out_sr" mapstructure:"out_sr"`
	GeometryPrecision int                 `yaml:"geometry_precision" mapstructure:"geometry_precision"`
	TimeoutSecs       int                 `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec        float64             `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ImportConfig configures parsing and normalization defaults.
type ImportConfig struct {
	DefaultState        string   `yaml:"default_state" mapstructure:"default_state"`
	DefaultProjectID    string   `yaml:"default_project_id" mapstructure:"default_project_id"`
	ClassifyPolicy      string   `yaml:"classify_policy" mapstructure:"classify_policy"`
	SupportedKinds      []string `yaml:"supported_kinds" mapstructure:"supported_kinds"`
	OpacityPercentMeans string   `yaml:"opacity_percent_means" mapstructure:"opacity_percent_means"`
	DefaultRadiusMiles  float64  `yaml:"default_radius_miles" mapstructure:"default_radius_miles"`
	DefaultDriveMinutes float64  `yaml:"default_drive_minutes" mapstructure:"default_drive_minutes"`
	FallbackLatitude    float64  `yaml:"fallback_latitude" mapstructure:"fallback_latitude"`
	FallbackLongitude   float64  `yaml:"fallback_longitude" mapstructure:"fallback_longitude"`
	StylePresetsPath    string   `yaml:"style_presets_path" mapstructure:"style_presets_path"`
}

// VizConfig configures GeoJSON output.
type VizConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig configures the import HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETAREA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "marketareas.db")
	v.SetDefault("feature_service.max_records", 100)
	v.SetDefault("feature_service.out_sr", 4326)
	v.SetDefault("feature_service.geometry_precision", 6)
	v.SetDefault("feature_service.timeout_secs", 30)
	v.SetDefault("feature_service.rate_per_sec", 10)
	v.SetDefault("import.default_state", "CA")
	v.SetDefault("import.classify_policy", "permissive")
	v.SetDefault("import.opacity_percent_means", "transparency")
	v.SetDefault("import.default_radius_miles", 5)
	v.SetDefault("import.default_drive_minutes", 15)
	v.SetDefault("import.fallback_latitude", 33.501)
	v.SetDefault("import.fallback_longitude", -117.662)
	v.SetDefault("viz.enabled", false)
	v.SetDefault("viz.output_dir", "out")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration can support the given command
// mode. Returned errors aggregate every problem found.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	case "sqlite":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the sqlite driver")
		}
	case "api":
		if c.Store.APIBaseURL == "" {
			problems = append(problems, "store.api_base_url is required for the api driver")
		}
	default:
		problems = append(problems, "store.driver must be postgres, sqlite, or api")
	}

	if c.FeatureService.MaxRecords < 1 || c.FeatureService.MaxRecords > 1000 {
		problems = append(problems, "feature_service.max_records must be between 1 and 1000")
	}

	switch mode {
	case "import":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// ParseOptions translates the import section into parser options,
// loading style presets when a path is configured.
func (c *Config) ParseOptions() (parse.Options, error) {
	opts := parse.Options{
		Policy:              parse.Policy(c.Import.ClassifyPolicy),
		OpacityMode:         parse.OpacityPercentMeans(c.Import.OpacityPercentMeans),
		DefaultState:        c.Import.DefaultState,
		DefaultRadiusMiles:  c.Import.DefaultRadiusMiles,
		DefaultDriveMinutes: c.Import.DefaultDriveMinutes,
		FallbackLatitude:    c.Import.FallbackLatitude,
		FallbackLongitude:   c.Import.FallbackLongitude,
		ProjectID:           c.Import.DefaultProjectID,
	}

	if len(c.Import.SupportedKinds) > 0 {
		opts.Supported = make(map[marketarea.Kind]bool, len(c.Import.SupportedKinds))
		for _, k := range c.Import.SupportedKinds {
			kind := marketarea.Kind(strings.ToLower(strings.TrimSpace(k)))
			if !kind.Valid() {
				return parse.Options{}, eris.Errorf("config: unsupported kind %q", k)
			}
			opts.Supported[kind] = true
		}
	}

	if c.Import.StylePresetsPath != "" {
		presets, err := LoadPresets(c.Import.StylePresetsPath)
		if err != nil {
			return parse.Options{}, err
		}
		opts.StylePresets = presets
	}

	return opts, nil
}

// NormalizeOptions translates the import section into normalizer options.
func (c *Config) NormalizeOptions() normalize.Options {
	return normalize.Options{DefaultState: c.Import.DefaultState}
}

// ResolveOptions translates the feature service section into resolver
// options.
func (c *Config) ResolveOptions() resolve.Options {
	return resolve.Options{
		ResultRecordCount:  c.FeatureService.MaxRecords,
		OutSR:              c.FeatureService.OutSR,
		GeometryPrecision:  c.FeatureService.GeometryPrecision,
		MDFallbackEndpoint: c.FeatureService.MDFallbackURL,
	}
}

// Layers translates the configured layer map, falling back to the
// built-in TIGERweb layout when the section is absent.
func (c *Config) Layers() resolve.Layers {
	if len(c.FeatureService.Layers) == 0 {
		return resolve.DefaultLayers()
	}
	layers := make(resolve.Layers, len(c.FeatureService.Layers))
	for k, urls := range c.FeatureService.Layers {
		layers[marketarea.Kind(k)] = urls
	}
	return layers
}

// Timeout returns the feature service client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.FeatureService.TimeoutSecs) * time.Second
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
