package stats

// RollingMean returns the trailing moving average of values over window
// samples. The window shrinks at the start of the series so the first
// element is averaged over itself, the second over two elements and so on.
// No element looks ahead. A window below 1 is treated as 1.
func RollingMean(values []float64, window int) []float64 {
	window = max(window, 1)
	out := make([]float64, len(values))

	var sum float64

	for i, v := range values {
		sum += v

		if i >= window {
			sum -= values[i-window]
		}

		out[i] = sum / float64(min(i+1, window))
	}

	return out
}

// PctChange returns the fractional change of each element relative to its
// predecessor. The first element and any element whose predecessor is zero
// have no defined change and are reported as nil.
func PctChange(values []float64) []*float64 {
	out := make([]*float64, len(values))

	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}

		change := (values[i] - prev) / prev
		out[i] = &change
	}

	return out
}
