package lifecycle

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// --- Data Types ---.

// StageStatus records the outcome of one pipeline stage.
type StageStatus struct {
	Stage  string `json:"stage" yaml:"stage"`
	Status string `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Diagnostics describes data quality and stage outcomes of one run.
type Diagnostics struct {
	AcceptedRecords int            `json:"accepted_records" yaml:"accepted_records"`
	SkippedRecords  int            `json:"skipped_records" yaml:"skipped_records"`
	SkipReasons     map[string]int `json:"skip_reasons,omitempty" yaml:"skip_reasons,omitempty"`
	Stages          []StageStatus  `json:"stages" yaml:"stages"`
}

// Status returns the recorded status of stage, or "" when absent.
func (d Diagnostics) Status(stage string) string {
	for _, s := range d.Stages {
		if s.Stage == stage {
			return s.Status
		}
	}

	return ""
}

// SortedSkipReasons returns skip reasons in lexical order.
func (d Diagnostics) SortedSkipReasons() []string {
	return slices.Sorted(maps.Keys(d.SkipReasons))
}

// Report is the complete lifecycle description of one meme. It carries no
// wall-clock time, so equal inputs produce equal reports.
type Report struct {
	Meme           string             `json:"meme" yaml:"meme"`
	Title          string             `json:"title" yaml:"title"`
	Metrics        LifecycleMetrics   `json:"metrics" yaml:"metrics"`
	Classification Classification     `json:"classification" yaml:"classification"`
	Phases         []Phase            `json:"phases,omitempty" yaml:"phases,omitempty"`
	CurveFit       *CurveFitResult    `json:"curve_fit,omitempty" yaml:"curve_fit,omitempty"`
	Temporal       *TemporalPatterns  `json:"temporal,omitempty" yaml:"temporal,omitempty"`
	SourceGroups   []SourceGroupShare `json:"source_groups,omitempty" yaml:"source_groups,omitempty"`
	Series         []DailyMetric      `json:"series" yaml:"series"`
	Diagnostics    Diagnostics        `json:"diagnostics" yaml:"diagnostics"`
}

// Phase returns the phase with label, if present.
func (r *Report) Phase(label PhaseLabel) (Phase, bool) {
	for _, p := range r.Phases {
		if p.Label == label {
			return p, true
		}
	}

	return Phase{}, false
}

// SynthesisInput gathers the stage outputs combined into a [Report].
type SynthesisInput struct {
	Meme         string
	Metrics      LifecycleMetrics
	Series       []DailyMetric
	Phases       []Phase
	CurveFit     *CurveFitResult
	Temporal     *TemporalPatterns
	SourceGroups []SourceGroupShare
	Diagnostics  Diagnostics
}

// Synthesize assembles a report and classifies the lifecycle under policy.
func Synthesize(in SynthesisInput, policy ClassificationPolicy) *Report {
	return &Report{
		Meme:           in.Meme,
		Title:          TitleCase(in.Meme),
		Metrics:        in.Metrics,
		Classification: policy.Classify(in.Metrics),
		Phases:         in.Phases,
		CurveFit:       in.CurveFit,
		Temporal:       in.Temporal,
		SourceGroups:   in.SourceGroups,
		Series:         in.Series,
		Diagnostics:    in.Diagnostics,
	}
}

// TitleCase turns a meme slug such as "skibidi_toilet" into "Skibidi Toilet".
func TitleCase(meme string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(meme, "_", " "))
}
