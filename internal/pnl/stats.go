package pnl

import (
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch = errors.New("values and weights must have same length")
	ErrInvalidWindow  = errors.New("window must be positive")
)

// SafeDivide returns n/d, or def when d is zero.
func SafeDivide(n, d, def float64) float64 {
	if d == 0 {
		return def
	}
	return n / d
}

// ROI is pnl as a percentage of investment, 0 when nothing was invested.
func ROI(pnl, investment float64) float64 {
	return SafeDivide(pnl, investment, 0) * 100
}

// MovingAverage returns the simple moving average over every full window.
// A window longer than values shrinks to len(values).
func MovingAverage(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if len(values) == 0 {
		return []float64{}, nil
	}
	if len(values) < window {
		window = len(values)
	}

	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out, nil
}

// WeightedAverage returns sum(v*w)/sum(w). Zero total weight yields 0.
func WeightedAverage(values, weights []float64) (float64, error) {
	if len(values) != len(weights) {
		return 0, fmt.Errorf("%w: %d values, %d weights", ErrLengthMismatch, len(values), len(weights))
	}
	var num, den float64
	for i, v := range values {
		num += v * weights[i]
		den += weights[i]
	}
	return SafeDivide(num, den, 0), nil
}
