package config

import (
	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/observability"
)

// LifecycleOptions converts the analysis and classification sections into
// analyzer options. The configuration must have passed validation.
func (c *Config) LifecycleOptions() lifecycle.Options {
	phaseStart, _ := parseWindowStart(c.Analysis.PhaseWindowStart)
	curveStart, _ := parseWindowStart(c.Analysis.CurveWindowStart)

	return lifecycle.Options{
		RollingWindow: c.Analysis.RollingWindow,
		Phase: lifecycle.PhaseOptions{
			WindowStart: phaseStart,
			MinDays:     c.Analysis.MinPhaseDays,
		},
		Curve: lifecycle.CurveOptions{
			WindowStart:   curveStart,
			MinDays:       c.Analysis.MinCurveDays,
			MaxIterations: c.Analysis.MaxFitIterations,
		},
		TopShare: c.Analysis.TopShare,
		Policy: lifecycle.ClassificationPolicy{
			FlashMaxDays:      c.Classification.FlashMaxDays,
			ShortLivedMaxDays: c.Classification.ShortLivedMaxDays,
			StandardMaxDays:   c.Classification.StandardMaxDays,
			SlowBurnRatio:     c.Classification.SlowBurnRatio,
			BalancedRatio:     c.Classification.BalancedRatio,
		},
	}
}

// Observability converts the logging and telemetry sections into an
// observability configuration for mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Mode = mode
	cfg.Environment = c.Telemetry.Environment
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.DebugTrace = c.Telemetry.DebugTrace
	cfg.SampleRatio = c.Telemetry.SampleRatio
	cfg.LogLevel = observability.ParseLevel(c.Logging.Level)
	cfg.LogJSON = c.Logging.JSON

	return cfg
}
