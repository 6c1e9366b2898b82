// Package regression compares agents played against the dealer over the same
// game seeds, to tell a real improvement from noise.
package regression

import (
	"math"

	"github.com/lox/buckshot/internal/statistics"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sample summarises one agent's per-game metric.
type Sample struct {
	Mean   float64
	StdDev float64
	N      int
}

// SampleOf summarises values.
func SampleOf(values []float64) Sample {
	if len(values) == 0 {
		return Sample{}
	}
	if len(values) == 1 {
		return Sample{Mean: values[0], N: 1}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Sample{Mean: mean, StdDev: std, N: len(values)}
}

// RewardSample summarises the per-game rewards in s.
func RewardSample(s *statistics.Statistics) Sample {
	return SampleOf(s.Values)
}

// WinSample treats every game as a 0/1 win indicator.
func WinSample(s *statistics.Statistics) Sample {
	n := s.Games
	if n == 0 {
		return Sample{}
	}
	p := s.WinRate()
	sd := 0.0
	if n > 1 {
		sd = math.Sqrt(p * (1 - p) * float64(n) / float64(n-1))
	}
	return Sample{Mean: p, StdDev: sd, N: n}
}

// Comparison is a Welch two-sample t-test of a against b.
type Comparison struct {
	Difference float64
	StdError   float64
	TStatistic float64
	DF         int
	PValue     float64
	EffectSize float64 // Cohen's d
	CI95Low    float64
	CI95High   float64
}

// Significant reports whether the difference is significant at alpha.
func (c Comparison) Significant(alpha float64) bool {
	return c.PValue < alpha
}

// Compare tests whether a's mean differs from b's.
func Compare(a, b Sample) Comparison {
	difference := a.Mean - b.Mean

	pooledStdDev := calculatePooledStdDev(a.StdDev, a.N, b.StdDev, b.N)
	effectSize := 0.0
	if pooledStdDev > 0 {
		effectSize = difference / pooledStdDev
	}

	var se float64
	if a.N > 0 && b.N > 0 {
		se1 := a.StdDev / math.Sqrt(float64(a.N))
		se2 := b.StdDev / math.Sqrt(float64(b.N))
		se = math.Sqrt(se1*se1 + se2*se2)
	}

	tStat := 0.0
	if se > 0 {
		tStat = difference / se
	}

	df := calculateWelchDF(a.StdDev, a.N, b.StdDev, b.N)
	pValue := calculatePValue(tStat, df)
	if se == 0 && difference != 0 {
		// no spread on either side; any difference is exact
		pValue = 0
	}

	tDist := distuv.StudentsT{Nu: float64(df), Mu: 0, Sigma: 1}
	margin := tDist.Quantile(0.975) * se

	return Comparison{
		Difference: difference,
		StdError:   se,
		TStatistic: tStat,
		DF:         df,
		PValue:     pValue,
		EffectSize: effectSize,
		CI95Low:    difference - margin,
		CI95High:   difference + margin,
	}
}

func calculatePooledStdDev(sd1 float64, n1 int, sd2 float64, n2 int) float64 {
	if n1+n2 <= 2 {
		return 0
	}
	var1 := sd1 * sd1
	var2 := sd2 * sd2
	pooledVar := ((float64(n1-1) * var1) + (float64(n2-1) * var2)) / float64(n1+n2-2)
	return math.Sqrt(pooledVar)
}

// calculateWelchDF calculates degrees of freedom using Welch's approximation
func calculateWelchDF(sd1 float64, n1 int, sd2 float64, n2 int) int {
	if n1 <= 1 || n2 <= 1 {
		return 2
	}

	v1 := sd1 * sd1 / float64(n1)
	v2 := sd2 * sd2 / float64(n2)

	numerator := (v1 + v2) * (v1 + v2)
	denominator := (v1*v1)/float64(n1-1) + (v2*v2)/float64(n2-1)
	if denominator == 0 {
		return n1 + n2 - 2
	}
	return max(int(math.Floor(numerator/denominator)), 1)
}

// calculatePValue returns the two-tailed p-value of tStat.
func calculatePValue(tStat float64, df int) float64 {
	if df <= 0 {
		return 1.0
	}
	tDist := distuv.StudentsT{Nu: float64(df), Mu: 0, Sigma: 1}
	pValue := 2 * (1 - tDist.CDF(math.Abs(tStat)))
	return math.Min(math.Max(pValue, 0), 1)
}

// InterpretEffectSize returns a human-readable interpretation of Cohen's d
func InterpretEffectSize(d float64) string {
	absd := math.Abs(d)
	switch {
	case absd < 0.2:
		return "negligible"
	case absd < 0.5:
		return "small"
	case absd < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// InterpretPValue returns a human-readable interpretation of p-value
func InterpretPValue(p float64, alpha float64) string {
	switch {
	case p < 0.001:
		return "highly significant"
	case p < 0.01:
		return "very significant"
	case p < alpha:
		return "significant"
	case p < 0.10:
		return "marginally significant"
	default:
		return "not significant"
	}
}
