package throughput

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/jaa/sync-profiler/internal/elapsed"
)

var ErrEmptySeries = errors.New("no progress samples")

// OrderError reports a progress count that does not strictly increase.
type OrderError struct {
	Index    int
	Previous int
	Current  int
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("progress must strictly increase: sample %d has %d after %d (set analysis.dedupe_repeated_progress to collapse repeated counts)", e.Index, e.Current, e.Previous)
}

type Point struct {
	ItemIndex       int
	DurationPerItem float64
}

type Curve []Point

// TotalSeconds sums the time represented by every bucket of the curve.
func (c Curve) TotalSeconds(bucketSize int) float64 {
	total := 0.0
	for _, point := range c {
		total += point.DurationPerItem * float64(bucketSize)
	}
	return total
}

// Resample interpolates elapsed time at every multiple of bucketSize from 0 up
// to the first multiple at or above the largest progress count, then reports
// the average time per item inside each bucket. Outside the sampled range the
// elapsed time is held at the nearest sample.
func Resample(samples []Sample, bucketSize int) (Curve, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySeries
	}
	if bucketSize <= 0 {
		return nil, fmt.Errorf("bucket size must be > 0, got %d", bucketSize)
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	maxProgress := 0
	for i, sample := range samples {
		if i > 0 && sample.Progress <= samples[i-1].Progress {
			return nil, &OrderError{Index: i, Previous: samples[i-1].Progress, Current: sample.Progress}
		}
		xs[i] = float64(sample.Progress)
		ys[i] = elapsed.Between(samples[0].Timestamp, sample.Timestamp)
		if sample.Progress > maxProgress {
			maxProgress = sample.Progress
		}
	}

	predict, err := newInterpolant(xs, ys)
	if err != nil {
		return nil, err
	}

	buckets := (maxProgress + bucketSize - 1) / bucketSize
	grid := make([]float64, buckets+1)
	for g := range grid {
		grid[g] = predict(float64(g * bucketSize))
	}

	curve := make(Curve, 0, buckets)
	for g := 0; g < buckets; g++ {
		curve = append(curve, Point{
			ItemIndex:       (g + 1) * bucketSize,
			DurationPerItem: (grid[g+1] - grid[g]) / float64(bucketSize),
		})
	}
	return curve, nil
}

// newInterpolant returns a piecewise-linear function through (xs, ys) that is
// flat beyond both ends. xs must be strictly increasing.
func newInterpolant(xs, ys []float64) (func(float64) float64, error) {
	if len(xs) == 1 {
		y := ys[0]
		return func(float64) float64 { return y }, nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit interpolant: %w", err)
	}
	return pl.Predict, nil
}
