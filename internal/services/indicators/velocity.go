package indicators

import (
	"math"

	"github.com/serendiv/pulse/internal/models"
)

// ComputeVelocity returns the relative change in mean sentiment between the
// current window and the equal-length preceding window.
//
// An empty previous window yields 0, not an error and not infinity, so a
// sector appearing for the first time reads as flat rather than exploding.
// A previous mean of zero with articles present falls back to the raw
// difference, which keeps the sign meaningful without dividing by zero.
func ComputeVelocity(currentMean, previousMean float64, previousCount int) float64 {
	if previousCount == 0 {
		return 0
	}
	if math.Abs(previousMean) < 1e-9 {
		return currentMean - previousMean
	}
	return (currentMean - previousMean) / math.Abs(previousMean)
}

// ClassifyCluster buckets a sector by sentiment velocity. Low-volume sectors
// stay neutral regardless of velocity, since a handful of articles can swing
// the mean arbitrarily.
func ClassifyCluster(velocity float64, articleCount, minVolume int, threshold float64) models.TrendCluster {
	if articleCount < minVolume {
		return models.ClusterNeutral
	}
	switch {
	case velocity > threshold:
		return models.ClusterTrending
	case velocity < -threshold:
		return models.ClusterDeclining
	default:
		return models.ClusterNeutral
	}
}
