package indicators

import "math"

// BaselineStats returns the mean and population standard deviation of the
// baseline window volumes.
func BaselineStats(volumes []int) (mean, stddev float64) {
	if len(volumes) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range volumes {
		sum += float64(v)
	}
	mean = sum / float64(len(volumes))

	var variance float64
	for _, v := range volumes {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(volumes))

	return mean, math.Sqrt(variance)
}

// VolumeZScore returns how many standard deviations the current volume sits
// above the baseline mean. A degenerate baseline (zero spread) yields 0.
func VolumeZScore(current int, mean, stddev float64) float64 {
	if stddev <= 0 {
		return 0
	}
	return (float64(current) - mean) / stddev
}

// IsAnomalous reports whether the current volume exceeds mean + k*stddev.
// A flat baseline never flags, so a store with constant volume history does
// not alarm on its first busy day unless spread exists to measure against.
func IsAnomalous(current int, mean, stddev, k float64) bool {
	if stddev <= 0 {
		return false
	}
	return float64(current) > mean+k*stddev
}
