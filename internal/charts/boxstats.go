package charts

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BoxStats is the five-number summary drawn by a box plot.
type BoxStats struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Values returns the summary in the order echarts expects.
func (b BoxStats) Values() []float64 {
	return []float64{b.Min, b.Q1, b.Median, b.Q3, b.Max}
}

// Summarize computes quartiles using the empirical inverse CDF, so every
// quartile is one of the observed values. values must not be empty.
func Summarize(values []float64) BoxStats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return BoxStats{
		Min:    floats.Min(sorted),
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    floats.Max(sorted),
	}
}
