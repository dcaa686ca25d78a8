package fit

import "math"

// Gaussian parameter indices.
const (
	GaussAmplitude = iota
	GaussCenter
	GaussWidth

	GaussParams
)

// Gaussian evaluates a·exp(-(x-b)²/(2c²)) for params [a, b, c].
func Gaussian(x float64, params []float64) float64 {
	a, b, c := params[GaussAmplitude], params[GaussCenter], params[GaussWidth]
	d := x - b

	return a * math.Exp(-(d*d)/(2*c*c))
}

// GaussianGradient writes the partial derivatives of [Gaussian] with
// respect to a, b and c into grad.
func GaussianGradient(x float64, params []float64, grad []float64) {
	a, b, c := params[GaussAmplitude], params[GaussCenter], params[GaussWidth]
	d := x - b
	e := math.Exp(-(d * d) / (2 * c * c))

	grad[GaussAmplitude] = e
	grad[GaussCenter] = a * e * d / (c * c)
	grad[GaussWidth] = a * e * d * d / (c * c * c)
}

// RSquared returns the coefficient of determination of model at params over
// the samples. A constant series has no variance to explain: it scores 1
// when the model reproduces it exactly and 0 otherwise.
func RSquared(xs, ys []float64, model ModelFunc, params []float64) float64 {
	if len(ys) == 0 {
		return 0
	}

	var mean float64
	for _, y := range ys {
		mean += y
	}

	mean /= float64(len(ys))

	var ssRes, ssTot float64

	for i, x := range xs {
		r := ys[i] - model(x, params)
		ssRes += r * r

		d := ys[i] - mean
		ssTot += d * d
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}

		return 0
	}

	return 1 - ssRes/ssTot
}
