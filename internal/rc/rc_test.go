package rc

import "testing"

func TestNewSeedsBufferAtHalf(t *testing.T) {
	c := New(1_000_000, 30, 50, 1920, 1080)
	stats := c.StatsSnapshot()
	if stats.BufferFullnessPct < 49 || stats.BufferFullnessPct > 51 {
		t.Errorf("initial buffer fullness = %.2f%%, want ~50%%", stats.BufferFullnessPct)
	}
	if stats.FramesEncoded != 0 {
		t.Errorf("FramesEncoded = %d, want 0", stats.FramesEncoded)
	}
}

func TestComputeQPFirstKeyframeLowerThanInter(t *testing.T) {
	c := New(1_000_000, 30, 50, 1920, 1080)
	keyQP := c.ComputeQP(true)
	c2 := New(1_000_000, 30, 50, 1920, 1080)
	interQP := c2.ComputeQP(false)
	if keyQP >= interQP {
		t.Errorf("keyframe qp %d should be lower than inter qp %d on first frame", keyQP, interQP)
	}
}

func TestUpdateTracksAverages(t *testing.T) {
	c := New(2_000_000, 30, 50, 1280, 720)
	qp := c.ComputeQP(true)
	c.Update(50_000, qp)
	stats := c.StatsSnapshot()
	if stats.FramesEncoded != 1 {
		t.Errorf("FramesEncoded = %d, want 1", stats.FramesEncoded)
	}
}

func TestComputeQPRisesWhenOverBudget(t *testing.T) {
	c := New(500_000, 30, 50, 1280, 720)
	c.Update(1_000_000, c.ComputeQP(true))
	qp := c.ComputeQP(false)
	if qp < uint8(c.avgQP) {
		t.Errorf("qp should not decrease below running average after overshoot: qp=%d avg=%.1f", qp, c.avgQP)
	}
}

func TestComputeQPFallsWhenUnderBudget(t *testing.T) {
	c := New(5_000_000, 30, 50, 1280, 720)
	c.Update(100, c.ComputeQP(true))
	qp := c.ComputeQP(false)
	if qp > uint8(c.avgQP)+1 {
		t.Errorf("qp should trend down after big undershoot: qp=%d avg=%.1f", qp, c.avgQP)
	}
}

func TestClampQPBounds(t *testing.T) {
	if got := clampQP(-5); got != 1 {
		t.Errorf("clampQP(-5) = %d, want 1", got)
	}
	if got := clampQP(1000); got != 255 {
		t.Errorf("clampQP(1000) = %d, want 255", got)
	}
}

func TestStatsSnapshotReflectsTarget(t *testing.T) {
	c := New(3_000_000, 25, 48, 640, 480)
	stats := c.StatsSnapshot()
	if stats.TargetBitrate != 3_000_000 {
		t.Errorf("TargetBitrate = %d, want 3000000", stats.TargetBitrate)
	}
}
