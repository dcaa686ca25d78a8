package lifecycle

// Lifecycle duration classes.
const (
	LifecycleFlash      = "Flash Meme"
	LifecycleShortLived = "Short-lived Meme"
	LifecycleStandard   = "Standard Meme"
	LifecycleLongLived  = "Long-lived Meme"
)

// Spread pattern classes.
const (
	SpreadSlowBurn   = "Slow Burn"
	SpreadBalanced   = "Balanced"
	SpreadViralSpike = "Viral Spike"
)

// Default classification thresholds.
const (
	DefaultFlashMaxDays      = 30
	DefaultShortLivedMaxDays = 90
	DefaultStandardMaxDays   = 365
	DefaultSlowBurnRatio     = 2.0
	DefaultBalancedRatio     = 0.5
)

// ClassificationPolicy holds the thresholds used to label a lifecycle.
// Durations are exclusive upper bounds; ratios are exclusive lower bounds.
type ClassificationPolicy struct {
	FlashMaxDays      int     `json:"flash_max_days" yaml:"flash_max_days"`
	ShortLivedMaxDays int     `json:"short_lived_max_days" yaml:"short_lived_max_days"`
	StandardMaxDays   int     `json:"standard_max_days" yaml:"standard_max_days"`
	SlowBurnRatio     float64 `json:"slow_burn_ratio" yaml:"slow_burn_ratio"`
	BalancedRatio     float64 `json:"balanced_ratio" yaml:"balanced_ratio"`
}

// DefaultClassificationPolicy returns the standard thresholds.
func DefaultClassificationPolicy() ClassificationPolicy {
	return ClassificationPolicy{
		FlashMaxDays:      DefaultFlashMaxDays,
		ShortLivedMaxDays: DefaultShortLivedMaxDays,
		StandardMaxDays:   DefaultStandardMaxDays,
		SlowBurnRatio:     DefaultSlowBurnRatio,
		BalancedRatio:     DefaultBalancedRatio,
	}
}

// Classification is the pair of labels assigned to a lifecycle.
type Classification struct {
	Lifecycle     string `json:"lifecycle" yaml:"lifecycle"`
	SpreadPattern string `json:"spread_pattern" yaml:"spread_pattern"`
}

// ClassifyDuration labels a lifecycle by its span in days.
func (p ClassificationPolicy) ClassifyDuration(days int) string {
	switch {
	case days < p.FlashMaxDays:
		return LifecycleFlash
	case days < p.ShortLivedMaxDays:
		return LifecycleShortLived
	case days < p.StandardMaxDays:
		return LifecycleStandard
	default:
		return LifecycleLongLived
	}
}

// ClassifySpread labels the growth/decline ratio. An undefined ratio counts
// as zero.
func (p ClassificationPolicy) ClassifySpread(ratio *float64) string {
	r := 0.0
	if ratio != nil {
		r = *ratio
	}

	switch {
	case r > p.SlowBurnRatio:
		return SpreadSlowBurn
	case r > p.BalancedRatio:
		return SpreadBalanced
	default:
		return SpreadViralSpike
	}
}

// Classify labels metrics.
func (p ClassificationPolicy) Classify(m LifecycleMetrics) Classification {
	return Classification{
		Lifecycle:     p.ClassifyDuration(m.DurationDays),
		SpreadPattern: p.ClassifySpread(m.GrowthDeclineRatio),
	}
}
