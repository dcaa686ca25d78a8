package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaussianSamples(n int, a, b, c float64) (xs, ys []float64) {
	xs = make([]float64, n)
	ys = make([]float64, n)

	for i := range n {
		xs[i] = float64(i)
		ys[i] = Gaussian(xs[i], []float64{a, b, c})
	}

	return xs, ys
}

func TestLevenbergMarquardt_RecoversGaussian(t *testing.T) {
	t.Parallel()

	xs, ys := gaussianSamples(60, 40, 25, 6)
	problem := Problem{X: xs, Y: ys, Model: Gaussian, Gradient: GaussianGradient}

	res, err := LevenbergMarquardt(problem, []float64{35, 22, 15}, DefaultSettings())
	require.NoError(t, err)

	assert.InDelta(t, 40, res.Params[GaussAmplitude], 0.01)
	assert.InDelta(t, 25, res.Params[GaussCenter], 0.01)
	assert.InDelta(t, 6, math.Abs(res.Params[GaussWidth]), 0.01)
	assert.Less(t, res.SSR, 1e-6)
	assert.Positive(t, res.Evaluations)
}

func TestLevenbergMarquardt_NoisyData(t *testing.T) {
	t.Parallel()

	xs, ys := gaussianSamples(30, 10, 12, 4)
	for i := range ys {
		if i%2 == 0 {
			ys[i] += 0.3
		} else {
			ys[i] -= 0.3
		}
	}

	problem := Problem{X: xs, Y: ys, Model: Gaussian, Gradient: GaussianGradient}

	res, err := LevenbergMarquardt(problem, []float64{10, 12, 7.5}, DefaultSettings())
	require.NoError(t, err)

	assert.InDelta(t, 12, res.Params[GaussCenter], 0.5)
	assert.Greater(t, RSquared(xs, ys, Gaussian, res.Params), 0.9)
}

func TestLevenbergMarquardt_BudgetExhausted(t *testing.T) {
	t.Parallel()

	xs, ys := gaussianSamples(40, 50, 20, 5)
	problem := Problem{X: xs, Y: ys, Model: Gaussian, Gradient: GaussianGradient}

	_, err := LevenbergMarquardt(problem, []float64{1, 5, 10}, Settings{MaxEvaluations: 2})
	require.ErrorIs(t, err, ErrNotConverged)
}

func TestLevenbergMarquardt_InvalidProblem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		problem Problem
		initial []float64
		wantErr error
	}{
		{
			name:    "missing_model",
			problem: Problem{X: []float64{1, 2, 3}, Y: []float64{1, 2, 3}},
			initial: []float64{1, 1, 1},
			wantErr: ErrInvalidProblem,
		},
		{
			name:    "length_mismatch",
			problem: Problem{X: []float64{1, 2, 3}, Y: []float64{1, 2}, Model: Gaussian, Gradient: GaussianGradient},
			initial: []float64{1, 1, 1},
			wantErr: ErrInvalidProblem,
		},
		{
			name:    "too_few_samples",
			problem: Problem{X: []float64{1, 2}, Y: []float64{1, 2}, Model: Gaussian, Gradient: GaussianGradient},
			initial: []float64{1, 1, 1},
			wantErr: ErrInvalidProblem,
		},
		{
			name:    "nan_initial",
			problem: Problem{X: []float64{1, 2, 3}, Y: []float64{1, 2, 3}, Model: Gaussian, Gradient: GaussianGradient},
			initial: []float64{math.NaN(), 1, 1},
			wantErr: ErrNonFinite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LevenbergMarquardt(tt.problem, tt.initial, DefaultSettings())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRSquared(t *testing.T) {
	t.Parallel()

	xs, ys := gaussianSamples(20, 5, 10, 3)
	params := []float64{5, 10, 3}

	assert.InDelta(t, 1, RSquared(xs, ys, Gaussian, params), 1e-9)
	assert.InDelta(t, 0, RSquared(nil, nil, Gaussian, params), 1e-9)

	flat := []float64{2, 2, 2}
	flatX := []float64{0, 1, 2}

	assert.InDelta(t, 0, RSquared(flatX, flat, Gaussian, params), 1e-9)
	assert.InDelta(t, 1, RSquared(flatX, []float64{0, 0, 0}, Gaussian, []float64{0, 1, 1}), 1e-9)
}
