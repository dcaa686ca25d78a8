// Package fit implements bounded nonlinear least-squares curve fitting.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for curve fitting.
var (
	ErrNotConverged   = errors.New("fit did not converge")
	ErrNonFinite      = errors.New("fit produced non-finite values")
	ErrInvalidProblem = errors.New("invalid fit problem")
)

// Default solver settings.
const (
	DefaultMaxEvaluations = 5000
	DefaultTolerance      = 1e-10
	DefaultInitialDamping = 1e-3

	dampingGrow   = 10.0
	dampingShrink = 10.0
	dampingCeil   = 1e16
	diagFloor     = 1e-12
)

// ModelFunc evaluates a model at x for the parameter vector params.
type ModelFunc func(x float64, params []float64) float64

// GradientFunc writes the partial derivatives of the model with respect to
// each parameter at x into grad. len(grad) == len(params).
type GradientFunc func(x float64, params []float64, grad []float64)

// Problem is a least-squares fitting problem over paired samples.
type Problem struct {
	X        []float64
	Y        []float64
	Model    ModelFunc
	Gradient GradientFunc
}

// Settings bounds the solver.
type Settings struct {
	// MaxEvaluations caps the number of full residual evaluations.
	MaxEvaluations int
	// Tolerance is the relative reduction of the residual sum of squares
	// below which the solver stops.
	Tolerance float64
	// InitialDamping is the starting Levenberg–Marquardt damping factor.
	InitialDamping float64
}

// DefaultSettings returns solver settings matching the package defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxEvaluations: DefaultMaxEvaluations,
		Tolerance:      DefaultTolerance,
		InitialDamping: DefaultInitialDamping,
	}
}

// Result holds the outcome of a successful fit.
type Result struct {
	Params      []float64
	SSR         float64
	Evaluations int
}

// LevenbergMarquardt minimizes the residual sum of squares of problem
// starting from initial. It returns ErrNotConverged when the evaluation
// budget is exhausted and ErrNonFinite when the parameters or residuals
// stop being finite numbers.
func LevenbergMarquardt(problem Problem, initial []float64, settings Settings) (Result, error) {
	err := problem.validate(initial)
	if err != nil {
		return Result{}, err
	}

	if settings.MaxEvaluations <= 0 {
		settings.MaxEvaluations = DefaultMaxEvaluations
	}

	if settings.Tolerance <= 0 {
		settings.Tolerance = DefaultTolerance
	}

	if settings.InitialDamping <= 0 {
		settings.InitialDamping = DefaultInitialDamping
	}

	s := newSolver(problem, initial)

	ssr := s.sumSquares(s.params)
	evals := 1

	if !finite(ssr) {
		return Result{}, fmt.Errorf("%w: initial residuals", ErrNonFinite)
	}

	lambda := settings.InitialDamping
	stale := true

	for evals < settings.MaxEvaluations {
		if ssr == 0 {
			return s.result(ssr, evals), nil
		}

		if stale {
			s.linearize()
			stale = false
		}

		step, ok := s.step(lambda)
		if !ok {
			lambda *= dampingGrow
			if lambda > dampingCeil {
				return s.result(ssr, evals), nil
			}

			continue
		}

		trial := make([]float64, len(s.params))
		for i := range trial {
			trial[i] = s.params[i] + step[i]
		}

		trialSSR := s.sumSquares(trial)
		evals++

		if !allFinite(trial) || !finite(trialSSR) || trialSSR >= ssr {
			lambda *= dampingGrow
			if lambda > dampingCeil {
				// No descent direction left: the current point is a minimum.
				return s.result(ssr, evals), nil
			}

			continue
		}

		reduction := (ssr - trialSSR) / ssr
		s.params = trial
		ssr = trialSSR
		stale = true
		lambda = max(lambda/dampingShrink, diagFloor)

		if reduction < settings.Tolerance {
			return s.result(ssr, evals), nil
		}
	}

	return Result{}, fmt.Errorf("%w after %d evaluations", ErrNotConverged, evals)
}

func (p Problem) validate(initial []float64) error {
	switch {
	case p.Model == nil || p.Gradient == nil:
		return fmt.Errorf("%w: model and gradient are required", ErrInvalidProblem)
	case len(p.X) != len(p.Y):
		return fmt.Errorf("%w: %d x values, %d y values", ErrInvalidProblem, len(p.X), len(p.Y))
	case len(p.X) < len(initial):
		return fmt.Errorf("%w: %d samples for %d params", ErrInvalidProblem, len(p.X), len(initial))
	case len(initial) == 0:
		return fmt.Errorf("%w: no parameters", ErrInvalidProblem)
	case !allFinite(initial):
		return fmt.Errorf("%w: initial params %v", ErrNonFinite, initial)
	}

	return nil
}

// solver keeps the working buffers of one fit.
type solver struct {
	problem Problem
	params  []float64

	resid *mat.VecDense
	jac   *mat.Dense
	jtj   *mat.Dense
	jtr   *mat.VecDense
	grad  []float64
}

func newSolver(problem Problem, initial []float64) *solver {
	n, m := len(problem.X), len(initial)

	return &solver{
		problem: problem,
		params:  append([]float64(nil), initial...),
		resid:   mat.NewVecDense(n, nil),
		jac:     mat.NewDense(n, m, nil),
		jtj:     mat.NewDense(m, m, nil),
		jtr:     mat.NewVecDense(m, nil),
		grad:    make([]float64, m),
	}
}

// sumSquares returns the residual sum of squares at params.
func (s *solver) sumSquares(params []float64) float64 {
	var ssr float64

	for i, x := range s.problem.X {
		r := s.problem.Y[i] - s.problem.Model(x, params)
		ssr += r * r
	}

	return ssr
}

// linearize fills the residual vector, the Jacobian and the normal
// equations at the current params.
func (s *solver) linearize() {
	for i, x := range s.problem.X {
		s.resid.SetVec(i, s.problem.Y[i]-s.problem.Model(x, s.params))

		s.problem.Gradient(x, s.params, s.grad)
		s.jac.SetRow(i, s.grad)
	}

	s.jtj.Mul(s.jac.T(), s.jac)
	s.jtr.MulVec(s.jac.T(), s.resid)
}

// step solves (JᵀJ + λ·diag(JᵀJ))·δ = Jᵀr.
func (s *solver) step(lambda float64) ([]float64, bool) {
	m := len(s.params)
	damped := mat.DenseCopyOf(s.jtj)

	for i := range m {
		d := s.jtj.At(i, i)
		damped.Set(i, i, d+lambda*max(d, diagFloor))
	}

	var delta mat.VecDense

	err := delta.SolveVec(damped, s.jtr)
	if err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false
		}
	}

	out := mat.Col(nil, 0, &delta)
	if !allFinite(out) {
		return nil, false
	}

	return out, true
}

func (s *solver) result(ssr float64, evals int) Result {
	return Result{
		Params:      append([]float64(nil), s.params...),
		SSR:         ssr,
		Evaluations: evals,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !finite(v) {
			return false
		}
	}

	return true
}
