// Package rc implements single-pass rate control: a bitrate target drives
// a per-frame quantizer choice via a buffer-fullness/rate-error feedback
// loop. Ported from original_source/src/rc.rs.
package rc

// Control tracks encoder state needed to pick each frame's base_q_idx
// under a bitrate target.
type Control struct {
	targetBitrate     uint64
	bufferSize        float64
	bufferFullness    float64
	targetBitsPerFrame float64
	avgFrameBits      float64
	avgQP             float64
	framesEncoded     uint64
	keyint            uint32
	keyframeBoost     float64
}

// Stats is a snapshot of rate control state for diagnostics.
type Stats struct {
	TargetBitrate     uint64
	FramesEncoded     uint64
	BufferFullnessPct float64
	AvgQP             float64
}

// initialQPFromBitrate estimates a starting quantizer from bits-per-pixel
// when no frame has been encoded yet, bucketed the way rc.rs buckets it.
func initialQPFromBitrate(targetBitrate uint64, fps float64, width, height uint32) uint8 {
	pixelsPerSecond := float64(width) * float64(height) * fps
	if pixelsPerSecond <= 0 {
		return 128
	}
	bpp := float64(targetBitrate) / pixelsPerSecond
	switch {
	case bpp > 0.5:
		return 40
	case bpp > 0.25:
		return 80
	case bpp > 0.1:
		return 120
	case bpp > 0.05:
		return 160
	case bpp > 0.02:
		return 200
	default:
		return 230
	}
}

// New builds a Control targeting targetBitrate bits/second at fps,
// keyint frames apart, assuming a one-second rate control buffer.
func New(targetBitrate uint64, fps float64, keyint uint32, width, height uint32) *Control {
	targetBitsPerFrame := float64(targetBitrate) / fps
	return &Control{
		targetBitrate:      targetBitrate,
		bufferSize:         float64(targetBitrate),
		bufferFullness:     float64(targetBitrate) / 2,
		targetBitsPerFrame: targetBitsPerFrame,
		avgQP:              float64(initialQPFromBitrate(targetBitrate, fps, width, height)),
		keyint:             keyint,
		keyframeBoost:      4.0,
	}
}

func (c *Control) targetBitsForFrame(isKeyframe bool) float64 {
	if isKeyframe {
		return c.targetBitsPerFrame * c.keyframeBoost
	}
	if c.keyint <= 1 {
		return c.targetBitsPerFrame
	}
	return c.targetBitsPerFrame * float64(c.keyint) / (float64(c.keyint) + c.keyframeBoost - 1)
}

// ComputeQP returns the base_q_idx to use for the next frame.
func (c *Control) ComputeQP(isKeyframe bool) uint8 {
	if c.framesEncoded == 0 {
		qp := c.avgQP
		if isKeyframe {
			qp -= 15
		}
		return clampQP(qp)
	}

	target := c.targetBitsForFrame(isKeyframe)
	bufferError := (c.bufferFullness - c.bufferSize/2) / c.bufferSize
	rateError := 0.0
	if c.avgFrameBits > 0 {
		rateError = (c.avgFrameBits - target) / target
	}

	delta := (bufferError + rateError) * 30
	qp := c.avgQP + delta
	if qp > c.avgQP+10 {
		qp = c.avgQP + 10
	}
	if qp < c.avgQP-10 {
		qp = c.avgQP - 10
	}
	return clampQP(qp)
}

func clampQP(qp float64) uint8 {
	if qp < 1 {
		qp = 1
	}
	if qp > 255 {
		qp = 255
	}
	return uint8(qp)
}

// Update feeds back the actual size (in bits) of the frame just encoded
// at the given quantizer, advancing the exponential moving averages used
// by the next ComputeQP call.
func (c *Control) Update(frameBits float64, qp uint8) {
	const alpha = 0.2
	if c.framesEncoded == 0 {
		c.avgFrameBits = frameBits
		c.avgQP = float64(qp)
	} else {
		c.avgFrameBits = alpha*frameBits + (1-alpha)*c.avgFrameBits
		c.avgQP = alpha*float64(qp) + (1-alpha)*c.avgQP
	}
	c.bufferFullness += c.targetBitsPerFrame - frameBits
	if c.bufferFullness < 0 {
		c.bufferFullness = 0
	}
	if c.bufferFullness > c.bufferSize {
		c.bufferFullness = c.bufferSize
	}
	c.framesEncoded++
}

// StatsSnapshot returns the current rate control statistics.
func (c *Control) StatsSnapshot() Stats {
	pct := 0.0
	if c.bufferSize > 0 {
		pct = c.bufferFullness / c.bufferSize * 100
	}
	return Stats{
		TargetBitrate:     c.targetBitrate,
		FramesEncoded:     c.framesEncoded,
		BufferFullnessPct: pct,
		AvgQP:             c.avgQP,
	}
}
