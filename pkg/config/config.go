// Package config provides configuration loading and validation for memefang.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort        = errors.New("invalid server port")
	ErrInvalidWindowStart = errors.New("invalid window start date")
	ErrInvalidMinDays     = errors.New("minimum window days must be positive")
	ErrInvalidRolling     = errors.New("rolling window must be positive")
	ErrInvalidIterations  = errors.New("max fit iterations must be positive")
	ErrInvalidTopShare    = errors.New("top share must be in (0, 1]")
	ErrInvalidThresholds  = errors.New("classification thresholds must increase")
	ErrInvalidSampleRatio = errors.New("sample ratio must be in [0, 1]")
)

const (
	maxPort = 65535
	// dateLayout is the calendar date format of window starts.
	dateLayout = "2006-01-02"
	// WholeSeries disables a window start.
	WholeSeries = "all"
)

// Config holds all configuration for memefang.
type Config struct {
	Analysis       AnalysisConfig       `mapstructure:"analysis"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Output         OutputConfig         `mapstructure:"output"`
}

// AnalysisConfig holds the lifecycle stage settings.
type AnalysisConfig struct {
	PhaseWindowStart string  `mapstructure:"phase_window_start"`
	CurveWindowStart string  `mapstructure:"curve_window_start"`
	MinPhaseDays     int     `mapstructure:"min_phase_days"`
	MinCurveDays     int     `mapstructure:"min_curve_days"`
	RollingWindow    int     `mapstructure:"rolling_window"`
	MaxFitIterations int     `mapstructure:"max_fit_iterations"`
	TopShare         float64 `mapstructure:"top_share"`
}

// ClassificationConfig holds the lifecycle classification thresholds.
type ClassificationConfig struct {
	FlashMaxDays      int     `mapstructure:"flash_max_days"`
	ShortLivedMaxDays int     `mapstructure:"short_lived_max_days"`
	StandardMaxDays   int     `mapstructure:"standard_max_days"`
	SlowBurnRatio     float64 `mapstructure:"slow_burn_ratio"`
	BalancedRatio     float64 `mapstructure:"balanced_ratio"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	Environment  string  `mapstructure:"environment"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	CacheEntries int           `mapstructure:"cache_entries"`
}

// DatabaseConfig holds the optional Postgres source settings.
type DatabaseConfig struct {
	DSN            string `mapstructure:"dsn"`
	Table          string `mapstructure:"table"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format     string `mapstructure:"format"`
	Theme      string `mapstructure:"theme"`
	DataDir    string `mapstructure:"data_dir"`
	StoreDir   string `mapstructure:"store_dir"`
	StoreCodec string `mapstructure:"store_codec"`
}

// LoadConfig loads configuration from file and environment variables.
// With an empty configPath, .memefang.yaml is searched in the working
// directory and then $HOME; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".memefang")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix("MEMEFANG")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&config)

	return &config
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("analysis.phase_window_start", DefaultPhaseWindowStart)
	viperCfg.SetDefault("analysis.curve_window_start", DefaultCurveWindowStart)
	viperCfg.SetDefault("analysis.min_phase_days", DefaultMinPhaseDays)
	viperCfg.SetDefault("analysis.min_curve_days", DefaultMinCurveDays)
	viperCfg.SetDefault("analysis.rolling_window", DefaultRollingWindow)
	viperCfg.SetDefault("analysis.max_fit_iterations", DefaultMaxFitIterations)
	viperCfg.SetDefault("analysis.top_share", DefaultTopShare)

	viperCfg.SetDefault("classification.flash_max_days", DefaultFlashMaxDays)
	viperCfg.SetDefault("classification.short_lived_max_days", DefaultShortLivedMaxDays)
	viperCfg.SetDefault("classification.standard_max_days", DefaultStandardMaxDays)
	viperCfg.SetDefault("classification.slow_burn_ratio", DefaultSlowBurnRatio)
	viperCfg.SetDefault("classification.balanced_ratio", DefaultBalancedRatio)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", DefaultEnvironment)
	viperCfg.SetDefault("telemetry.debug_trace", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)
	viperCfg.SetDefault("server.max_body_bytes", DefaultServerMaxBodyBytes)
	viperCfg.SetDefault("server.cache_entries", DefaultServerCacheEntries)

	viperCfg.SetDefault("database.dsn", "")
	viperCfg.SetDefault("database.table", DefaultDatabaseTable)
	viperCfg.SetDefault("database.max_connections", DefaultDatabaseMaxConnections)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.theme", DefaultOutputTheme)
	viperCfg.SetDefault("output.data_dir", DefaultDataDir)
	viperCfg.SetDefault("output.store_dir", "")
	viperCfg.SetDefault("output.store_codec", DefaultStoreCodec)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	for _, start := range []string{config.Analysis.PhaseWindowStart, config.Analysis.CurveWindowStart} {
		_, err := parseWindowStart(start)
		if err != nil {
			return err
		}
	}

	a := config.Analysis

	switch {
	case a.MinPhaseDays <= 0:
		return fmt.Errorf("%w: min_phase_days=%d", ErrInvalidMinDays, a.MinPhaseDays)
	case a.MinCurveDays <= 0:
		return fmt.Errorf("%w: min_curve_days=%d", ErrInvalidMinDays, a.MinCurveDays)
	case a.RollingWindow <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidRolling, a.RollingWindow)
	case a.MaxFitIterations <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidIterations, a.MaxFitIterations)
	case a.TopShare <= 0 || a.TopShare > 1:
		return fmt.Errorf("%w: %g", ErrInvalidTopShare, a.TopShare)
	}

	c := config.Classification
	if c.FlashMaxDays > c.ShortLivedMaxDays || c.ShortLivedMaxDays > c.StandardMaxDays ||
		c.BalancedRatio > c.SlowBurnRatio {
		return fmt.Errorf("%w: days %d/%d/%d, ratios %g/%g", ErrInvalidThresholds,
			c.FlashMaxDays, c.ShortLivedMaxDays, c.StandardMaxDays, c.BalancedRatio, c.SlowBurnRatio)
	}

	if r := config.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, r)
	}

	return nil
}

// parseWindowStart parses a calendar date. An empty value or "all" yields
// the zero time, which keeps the whole series.
func parseWindowStart(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, WholeSeries) {
		return time.Time{}, nil
	}

	start, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWindowStart, value)
	}

	return start, nil
}
