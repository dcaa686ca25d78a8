package config

import "github.com/Sumatoshi-tech/memefang/pkg/lifecycle"

// Analysis defaults.
const (
	DefaultPhaseWindowStart = "2023-01-01"
	DefaultCurveWindowStart = "2024-01-01"
	DefaultMinPhaseDays     = lifecycle.DefaultMinPhaseDays
	DefaultMinCurveDays     = lifecycle.DefaultMinCurveDays
	DefaultRollingWindow    = lifecycle.DefaultRollingWindow
	DefaultMaxFitIterations = lifecycle.DefaultMaxFitIterations
	DefaultTopShare         = lifecycle.DefaultTopShare
)

// Classification defaults.
const (
	DefaultFlashMaxDays      = lifecycle.DefaultFlashMaxDays
	DefaultShortLivedMaxDays = lifecycle.DefaultShortLivedMaxDays
	DefaultStandardMaxDays   = lifecycle.DefaultStandardMaxDays
	DefaultSlowBurnRatio     = lifecycle.DefaultSlowBurnRatio
	DefaultBalancedRatio     = lifecycle.DefaultBalancedRatio
)

// Server defaults.
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = "30s"
	DefaultServerWriteTimeout = "60s"
	DefaultServerIdleTimeout  = "120s"
	DefaultServerMaxBodyBytes = 32 << 20 // 32 MiB.
	DefaultServerCacheEntries = 128
)

// Database defaults.
const (
	DefaultDatabaseTable          = "reddit_posts"
	DefaultDatabaseMaxConnections = 4
)

// Output defaults.
const (
	DefaultOutputFormat = "text"
	DefaultOutputTheme  = "dark"
	DefaultDataDir      = "data"
	DefaultStoreCodec   = "json"
)

// Logging and telemetry defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogJSON     = false
	DefaultEnvironment = "dev"
)
