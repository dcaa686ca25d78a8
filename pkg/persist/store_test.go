package persist_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/persist"
)

func sampleReport() *lifecycle.Report {
	ratio := 5.11
	growth := 460
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	return &lifecycle.Report{
		Meme:  "doge",
		Title: "Doge",
		Metrics: lifecycle.LifecycleMetrics{
			TotalPosts:         550,
			StartDate:          start,
			EndDate:            start.AddDate(0, 0, 39),
			DurationDays:       39,
			GrowthPhasePosts:   &growth,
			GrowthDeclineRatio: &ratio,
		},
		Classification: lifecycle.Classification{
			Lifecycle:     lifecycle.LifecycleShortLived,
			SpreadPattern: lifecycle.SpreadSlowBurn,
		},
		Phases:   []lifecycle.Phase{{Label: lifecycle.PhaseGrowth, Start: start, End: start.AddDate(0, 0, 18), DurationDays: 19}},
		Temporal: &lifecycle.TemporalPatterns{PeakHour: 12, PeakWeekday: "Monday"},
		Series:   []lifecycle.DailyMetric{{Date: start, PostCount: 1, RollingPosts: 1}},
		Diagnostics: lifecycle.Diagnostics{
			AcceptedRecords: 550,
			SkippedRecords:  2,
			SkipReasons:     map[string]int{lifecycle.ReasonDuplicateID: 2},
			Stages:          []lifecycle.StageStatus{{Stage: lifecycle.StageNormalize, Status: lifecycle.StatusOK}},
		},
	}
}

func TestReportStore_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{persist.CodecJSON, persist.CodecYAML, persist.CodecArchive} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			codec, err := persist.CodecFor(name)
			require.NoError(t, err)

			store := persist.NewReportStore(t.TempDir(), codec)

			path, err := store.Save(sampleReport())
			require.NoError(t, err)
			assert.Equal(t, store.Path("doge"), path)
			assert.Equal(t, "doge_lifecycle_report"+codec.Extension(), filepath.Base(path))

			loaded, err := store.Load("doge")
			require.NoError(t, err)
			assert.Equal(t, sampleReport(), loaded)

			fromFile, err := persist.LoadReportFile(path)
			require.NoError(t, err)
			assert.Equal(t, sampleReport(), fromFile)
		})
	}
}

func TestReportStore_LoadMissing(t *testing.T) {
	t.Parallel()

	_, err := persist.NewReportStore(t.TempDir(), persist.NewJSONCodec()).Load("pepe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load report pepe")
}

func TestCodecForPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", persist.CodecForPath("a/doge_lifecycle_report.json").Extension())
	assert.Equal(t, ".yaml", persist.CodecForPath("report.YAML").Extension())
	assert.Equal(t, ".yaml", persist.CodecForPath("report.yml").Extension())
	assert.Equal(t, ".json.lz4", persist.CodecForPath("report.json.lz4").Extension())
	assert.Equal(t, ".yaml.lz4", persist.CodecForPath("report.yaml.lz4").Extension())
	assert.Equal(t, ".json", persist.CodecForPath("report").Extension())
}
