package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Coverage CoverageConfig `yaml:"coverage" mapstructure:"coverage"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the input datasets. Entries may be local paths or
// http(s) URLs; URLs are downloaded into CacheDir.
type DataConfig struct {
	SmallAreas string `yaml:"small_areas" mapstructure:"small_areas"`
	Population string `yaml:"population" mapstructure:"population"`
	Stations   string `yaml:"stations" mapstructure:"stations"`
	Schools    string `yaml:"schools" mapstructure:"schools"`
	CacheDir   string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// CoverageConfig configures the coverage engine defaults.
type CoverageConfig struct {
	RadiusMeters float64  `yaml:"radius_meters" mapstructure:"radius_meters"`
	Cohorts      []string `yaml:"cohorts" mapstructure:"cohorts"`
	CacheSize    int      `yaml:"cache_size" mapstructure:"cache_size"`
}

// StoreConfig configures the query-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port              int     `yaml:"port" mapstructure:"port"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
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
	v.SetEnvPrefix("BORGARLINA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.small_areas", "data/smasvaedi_2021.json")
	v.SetDefault("data.population", "data/processed/habitants/habitant_2024.csv")
	v.SetDefault("data.stations", "data/processed/cityline_2025_4326.geojson")
	v.SetDefault("data.schools", "")
	v.SetDefault("data.cache_dir", "/tmp/borgarlina")
	v.SetDefault("coverage.radius_meters", 400)
	v.SetDefault("coverage.cohorts", []string{"10-14 ára", "15-19 ára", "20-24 ára"})
	v.SetDefault("coverage.cache_size", 100)
	v.SetDefault("store.path", "borgarlina.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.requests_per_second", 20)
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

// Validate checks that the configuration can support the given mode
// ("query" for one-shot commands, "serve" for the HTTP server).
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Data.SmallAreas == "" {
		problems = append(problems, "data.small_areas is required")
	}
	if c.Data.Population == "" {
		problems = append(problems, "data.population is required")
	}
	if c.Data.Stations == "" {
		problems = append(problems, "data.stations is required")
	}
	if c.Coverage.RadiusMeters <= 0 {
		problems = append(problems, "coverage.radius_meters must be > 0")
	}
	if c.Coverage.CacheSize < 0 {
		problems = append(problems, "coverage.cache_size must be >= 0")
	}
	if len(c.Coverage.Cohorts) == 0 {
		problems = append(problems, "coverage.cohorts must not be empty")
	}

	switch mode {
	case "query":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
		if c.Server.RequestsPerSecond <= 0 {
			problems = append(problems, "server.requests_per_second must be > 0")
		}
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
