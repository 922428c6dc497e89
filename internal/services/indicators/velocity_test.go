package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serendiv/pulse/internal/models"
)

func TestComputeVelocityEmptyPreviousWindow(t *testing.T) {
	// No previous articles reads as flat, never infinite.
	assert.Zero(t, ComputeVelocity(0.8, 0, 0))
	assert.Zero(t, ComputeVelocity(-0.5, 0, 0))
}

func TestComputeVelocityRelativeChange(t *testing.T) {
	assert.InDelta(t, 0.5, ComputeVelocity(0.3, 0.2, 5), 1e-9)
	assert.InDelta(t, -0.5, ComputeVelocity(0.1, 0.2, 5), 1e-9)
	assert.InDelta(t, 1.0, ComputeVelocity(-0.1, -0.2, 5), 1e-9)
}

func TestComputeVelocityZeroPreviousMeanFallsBackToDifference(t *testing.T) {
	// Articles existed but averaged to zero; raw difference keeps the sign.
	assert.InDelta(t, 0.4, ComputeVelocity(0.4, 0, 3), 1e-9)
	assert.InDelta(t, -0.4, ComputeVelocity(-0.4, 0, 3), 1e-9)
}

func TestClassifyCluster(t *testing.T) {
	tests := []struct {
		name     string
		velocity float64
		count    int
		expected models.TrendCluster
	}{
		{"trending", 0.25, 10, models.ClusterTrending},
		{"declining", -0.25, 10, models.ClusterDeclining},
		{"flat", 0.05, 10, models.ClusterNeutral},
		{"below min volume", 0.9, 2, models.ClusterNeutral},
		{"exactly threshold", 0.1, 10, models.ClusterNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyCluster(tt.velocity, tt.count, 3, 0.1))
		})
	}
}

func TestBaselineStatsAndAnomaly(t *testing.T) {
	volumes := []int{50, 52, 48, 51, 49, 50, 53, 47, 50, 52}

	mean, stddev := BaselineStats(volumes)
	assert.InDelta(t, 50.2, mean, 1e-9)
	assert.Greater(t, stddev, 0.0)

	// A day at 80 articles against this baseline must flag at k=2.
	assert.True(t, IsAnomalous(80, mean, stddev, 2))
	assert.False(t, IsAnomalous(51, mean, stddev, 2))
	assert.Greater(t, VolumeZScore(80, mean, stddev), 2.0)
}

func TestAnomalyDegenerateBaseline(t *testing.T) {
	mean, stddev := BaselineStats([]int{10, 10, 10})
	assert.Zero(t, stddev)
	assert.False(t, IsAnomalous(100, mean, stddev, 2))
	assert.Zero(t, VolumeZScore(100, mean, stddev))

	mean, stddev = BaselineStats(nil)
	assert.Zero(t, mean)
	assert.False(t, IsAnomalous(5, mean, stddev, 2))
}
