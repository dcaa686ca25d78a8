package lifecycle

// Options configures every stage of an [Analyzer] run.
type Options struct {
	RollingWindow int
	Phase         PhaseOptions
	Curve         CurveOptions
	TopShare      float64
	Policy        ClassificationPolicy
}

// DefaultOptions returns the standard analysis windows and thresholds.
func DefaultOptions() Options {
	return Options{
		RollingWindow: DefaultRollingWindow,
		Phase: PhaseOptions{
			WindowStart: DefaultPhaseWindowStart,
			MinDays:     DefaultMinPhaseDays,
		},
		Curve: CurveOptions{
			WindowStart:   DefaultCurveWindowStart,
			MinDays:       DefaultMinCurveDays,
			MaxIterations: DefaultMaxFitIterations,
		},
		TopShare: DefaultTopShare,
		Policy:   DefaultClassificationPolicy(),
	}
}
