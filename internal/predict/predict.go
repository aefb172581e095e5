// Package predict implements AV1 intra prediction: DC/V/H/Paeth/Smooth
// variants and the 8 directional modes, plus the angle-delta and mode
// selection machinery the tile walk drives. Ported from
// original_source/src/tile.rs's predict_* family.
package predict

import "math/bits"

// Mode enumerates the 13 luma intra prediction modes in AV1 symbol order.
type Mode uint8

const (
	DC Mode = iota
	V
	H
	D45
	D135
	D113
	D157
	D203
	D67
	Smooth
	SmoothV
	SmoothH
	Paeth
)

// modeToAngle maps the 8 directional modes to their base angle in
// degrees, indexed by mode-V in V, H, D45, D135, D113, D157, D203, D67
// order.
var modeToAngle = [8]int32{90, 180, 45, 135, 113, 157, 203, 67}

// smWeights is the shared smooth-predictor weight table, indexed by block
// size with a size offset (weights for size n start at sm_weights[n]).
var smWeights = [128]uint8{
	0, 0,
	255, 128,
	255, 149, 85, 64,
	255, 197, 146, 105, 73, 50, 37, 32,
	255, 225, 196, 170, 145, 123, 102, 84,
	68, 54, 43, 33, 26, 20, 17, 16,
	255, 240, 225, 210, 196, 182, 169, 157,
	145, 133, 122, 111, 101, 92, 83, 74,
	66, 59, 52, 45, 39, 34, 29, 25,
	21, 17, 14, 12, 10, 9, 8, 8,
	255, 248, 240, 233, 225, 218, 210, 203,
	196, 189, 182, 176, 169, 163, 156, 150,
	144, 138, 133, 127, 121, 116, 111, 106,
	101, 96, 91, 86, 82, 77, 73, 69,
	65, 61, 57, 54, 50, 47, 44, 41,
	38, 35, 32, 29, 27, 25, 22, 20,
	18, 16, 15, 13, 12, 10, 9, 8,
	7, 6, 6, 5, 5, 4, 4, 4,
}

// drIntraDerivative maps half-angle index to subpel slope for directional
// prediction zones Z1/Z2/Z3.
var drIntraDerivative = [44]uint16{
	0,
	1023, 0,
	547,
	372, 0, 0,
	273,
	215, 0,
	178,
	151, 0,
	132,
	116, 0,
	102, 0,
	90,
	80, 0,
	71,
	64, 0,
	57,
	51, 0,
	45, 0,
	40,
	35, 0,
	31,
	27, 0,
	23,
	19, 0,
	15, 0,
	11, 0,
	7,
	3,
}

func clampByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// PredictDC returns the DC-predicted block: the rounded average of the
// available above/left reference rows, or 128 when neither is available.
func PredictDC(above, left []uint8, haveAbove, haveLeft bool, w, h int) []uint8 {
	var val uint8
	switch {
	case haveAbove && haveLeft:
		var sum uint32
		for i := 0; i < w; i++ {
			sum += uint32(above[i])
		}
		for i := 0; i < h; i++ {
			sum += uint32(left[i])
		}
		val = uint8((sum + uint32(w+h)/2) / uint32(w+h))
	case haveAbove:
		var sum uint32
		for i := 0; i < w; i++ {
			sum += uint32(above[i])
		}
		val = uint8((sum + uint32(w)/2) / uint32(w))
	case haveLeft:
		var sum uint32
		for i := 0; i < h; i++ {
			sum += uint32(left[i])
		}
		val = uint8((sum + uint32(h)/2) / uint32(h))
	default:
		val = 128
	}
	out := make([]uint8, w*h)
	for i := range out {
		out[i] = val
	}
	return out
}

// PredictV replicates the above row down every row of the block.
func PredictV(above []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	for r := 0; r < h; r++ {
		copy(out[r*w:r*w+w], above[:w])
	}
	return out
}

// PredictH replicates the left column across every column of the block.
func PredictH(left []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			out[r*w+c] = left[r]
		}
	}
	return out
}

// PredictPaeth picks, per pixel, whichever of left/above/top-left is
// closest to left+above-topLeft.
func PredictPaeth(above, left []uint8, topLeft uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	tl := int32(topLeft)
	for r := 0; r < h; r++ {
		l := int32(left[r])
		for c := 0; c < w; c++ {
			t := int32(above[c])
			base := l + t - tl
			pLeft := abs32(base - l)
			pTop := abs32(base - t)
			pTL := abs32(base - tl)
			switch {
			case pLeft <= pTop && pLeft <= pTL:
				out[r*w+c] = left[r]
			case pTop <= pTL:
				out[r*w+c] = above[c]
			default:
				out[r*w+c] = topLeft
			}
		}
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// PredictSmooth blends above/left/bottom-left/top-right corners with
// size-dependent weight curves in both directions.
func PredictSmooth(above, left []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	weightsX := smWeights[w : w*2]
	weightsY := smWeights[h : h*2]
	right := int32(above[w-1])
	bottom := int32(left[h-1])
	for r := 0; r < h; r++ {
		wy := int32(weightsY[r])
		for c := 0; c < w; c++ {
			wx := int32(weightsX[c])
			pred := wy*int32(above[c]) + (256-wy)*bottom + wx*int32(left[r]) + (256-wx)*right
			out[r*w+c] = clampByte((pred + 256) >> 9)
		}
	}
	return out
}

// PredictSmoothV is the vertical-only half of PredictSmooth.
func PredictSmoothV(above, left []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	weights := smWeights[h : h*2]
	bottom := int32(left[h-1])
	for r := 0; r < h; r++ {
		wy := int32(weights[r])
		for c := 0; c < w; c++ {
			pred := wy*int32(above[c]) + (256-wy)*bottom
			out[r*w+c] = clampByte((pred + 128) >> 8)
		}
	}
	return out
}

// PredictSmoothH is the horizontal-only half of PredictSmooth.
func PredictSmoothH(above, left []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	weights := smWeights[w : w*2]
	right := int32(above[w-1])
	for r := 0; r < h; r++ {
		l := int32(left[r])
		for c := 0; c < w; c++ {
			wx := int32(weights[c])
			pred := wx*l + (256-wx)*right
			out[r*w+c] = clampByte((pred + 128) >> 8)
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// PredictDirectionalZ1 handles angles < 90: samples slide along the above
// row at a fractional subpel offset derived from dx.
func PredictDirectionalZ1(above []uint8, w, h int, dx int32) []uint8 {
	out := make([]uint8, w*h)
	maxBaseX := minInt(w+minInt(w, h)-1, len(above)-1)
	for y := 0; y < h; y++ {
		xposRow := dx * int32(y+1)
		frac := xposRow & 0x3E
		base := int(xposRow >> 6)
		for x := 0; x < w; x++ {
			if base < maxBaseX {
				v := int32(above[base])*(64-frac) + int32(above[base+1])*frac
				out[y*w+x] = clampByte((v + 32) >> 6)
			} else {
				for fillX := x; fillX < w; fillX++ {
					out[y*w+fillX] = above[maxBaseX]
				}
				break
			}
			base++
		}
	}
	return out
}

// PredictDirectionalZ3 handles angles > 180: mirror of Z1 along the left
// column.
func PredictDirectionalZ3(left []uint8, w, h int, dy int32) []uint8 {
	out := make([]uint8, w*h)
	maxBaseY := minInt(h+minInt(w, h)-1, len(left)-1)
	for x := 0; x < w; x++ {
		yposCol := dy * int32(x+1)
		frac := yposCol & 0x3E
		base := int(yposCol >> 6)
		for y := 0; y < h; y++ {
			if base < maxBaseY {
				v := int32(left[base])*(64-frac) + int32(left[base+1])*frac
				out[y*w+x] = clampByte((v + 32) >> 6)
			} else {
				for fillY := y; fillY < h; fillY++ {
					out[fillY*w+x] = left[maxBaseY]
				}
				break
			}
			base++
		}
	}
	return out
}

// PredictDirectionalZ2 handles 90 < angle < 180, straddling above and
// left through a synthesized edge buffer centered on top-left.
func PredictDirectionalZ2(above, left []uint8, topLeft uint8, w, h int, dx, dy int32) []uint8 {
	out := make([]uint8, w*h)
	edge := make([]uint8, w+h+1)
	tlIdx := h
	for i := 0; i < h; i++ {
		edge[h-1-i] = left[i]
	}
	edge[tlIdx] = topLeft
	for i := 0; i < w; i++ {
		edge[tlIdx+1+i] = above[i]
	}

	for y := 0; y < h; y++ {
		xposRow := 64 - dx*int32(y+1)
		fracX := xposRow & 0x3E
		baseX := xposRow >> 6

		for x := 0; x < w; x++ {
			var v int32
			if baseX >= 0 {
				bx := int(baseX)
				idx := tlIdx + bx
				if idx+1 < len(edge) {
					v = int32(edge[idx])*(64-fracX) + int32(edge[idx+1])*fracX
				} else {
					v = int32(edge[len(edge)-1]) * 64
				}
			} else {
				ypos := int32(y)*64 - dy*int32(x+1)
				baseY := ypos >> 6
				fracY := ypos & 0x3E
				if baseY >= 0 {
					by := int(baseY)
					idx := tlIdx - 1 - by
					switch {
					case idx < len(edge) && idx >= 1:
						v = int32(edge[idx])*(64-fracY) + int32(edge[idx-1])*fracY
					case idx >= 0 && idx < len(edge):
						v = int32(edge[idx]) * 64
					default:
						v = int32(topLeft) * 64
					}
				} else {
					v = int32(topLeft) * 64
				}
			}
			out[y*w+x] = clampByte((v + 32) >> 6)
			baseX++
		}
	}
	return out
}

// GenerateDirectionalPrediction dispatches a raw angle in degrees (the
// base angle plus angle_delta*3) to the matching Z1/Z2/Z3 predictor, or
// to plain V/H at the axis-aligned boundaries.
func GenerateDirectionalPrediction(angle int32, above, left []uint8, topLeft uint8, haveAbove, haveLeft bool, w, h int) []uint8 {
	switch {
	case angle <= 90:
		if angle < 90 && haveAbove {
			dx := int32(drIntraDerivative[angle/2])
			return PredictDirectionalZ1(above, w, h, dx)
		}
		return PredictV(above, w, h)
	case angle < 180:
		dx := int32(drIntraDerivative[(180-angle)/2])
		dy := int32(drIntraDerivative[(angle-90)/2])
		return PredictDirectionalZ2(above, left, topLeft, w, h, dx, dy)
	case angle > 180 && haveLeft:
		dy := int32(drIntraDerivative[(270-angle)/2])
		return PredictDirectionalZ3(left, w, h, dy)
	default:
		return PredictH(left, w, h)
	}
}

// Predict dispatches mode (with an AV1 angle_delta in -3..3 applied only
// to the 8 directional modes) to the matching predictor.
func Predict(mode Mode, angleDelta int32, above, left []uint8, topLeft uint8, haveAbove, haveLeft bool, w, h int) []uint8 {
	switch mode {
	case DC:
		return PredictDC(above, left, haveAbove, haveLeft, w, h)
	case V:
		return PredictV(above, w, h)
	case H:
		return PredictH(left, w, h)
	case Paeth:
		return PredictPaeth(above, left, topLeft, w, h)
	case Smooth:
		return PredictSmooth(above, left, w, h)
	case SmoothV:
		return PredictSmoothV(above, left, w, h)
	case SmoothH:
		return PredictSmoothH(above, left, w, h)
	default:
		dirIndex := int(mode) - int(V)
		angle := modeToAngle[dirIndex] + angleDelta*3
		return GenerateDirectionalPrediction(angle, above, left, topLeft, haveAbove, haveLeft, w, h)
	}
}

// SSE returns the sum of squared errors between src and recon, both
// row-major w*h buffers, used by the tile walk's RD mode decision.
func SSE(src, recon []uint8, w, h int) int64 {
	var sum int64
	for i := 0; i < w*h; i++ {
		d := int64(src[i]) - int64(recon[i])
		sum += d * d
	}
	return sum
}

// RDCost combines distortion with a lambda-scaled rate estimate, the
// same SSE + lambda*nonzero formulation the tile walk uses to pick a
// prediction mode and transform type.
func RDCost(sse int64, nonzeroCount int, acDQ int32) int64 {
	lambda := int64(acDQ) * int64(acDQ) >> 2
	return sse + lambda*int64(nonzeroCount)
}

// log2Floor returns floor(log2(v)) for v > 0.
func log2Floor(v int) int {
	return bits.Len(uint(v)) - 1
}
