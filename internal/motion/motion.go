// Package motion implements inter prediction: full-pel block search,
// 8-neighbour subpel refinement, 8-tap/4-tap subpel interpolation, and the
// scan-neighbor MV prediction and component coding used by the tile
// walk's inter path. Ported from original_source/src/tile.rs's
// motion_search_block/subpel_refine/interpolate_block/predict_mv family.
package motion

import (
	"sort"

	"github.com/deepteams/av1enc/internal/cdf"
	"github.com/deepteams/av1enc/internal/msac"
)

// subpelFilter8Tap and subpelFilter4Tap hold the 15 nonzero sixteenth-pel
// phases; an eighth-pel phase p (1..7) uses row p*2 - 1.
var subpelFilter8Tap = [15][8]int32{
	{0, 1, -3, 63, 4, -1, 0, 0},
	{0, 1, -5, 61, 9, -2, 0, 0},
	{0, 1, -6, 58, 14, -4, 1, 0},
	{0, 1, -7, 55, 19, -5, 1, 0},
	{0, 1, -7, 51, 24, -6, 1, 0},
	{0, 1, -8, 47, 29, -6, 1, 0},
	{0, 1, -7, 42, 33, -6, 1, 0},
	{0, 1, -7, 38, 38, -7, 1, 0},
	{0, 1, -6, 33, 42, -7, 1, 0},
	{0, 1, -6, 29, 47, -8, 1, 0},
	{0, 1, -6, 24, 51, -7, 1, 0},
	{0, 1, -5, 19, 55, -7, 1, 0},
	{0, 1, -4, 14, 58, -6, 1, 0},
	{0, 0, -2, 9, 61, -5, 1, 0},
	{0, 0, -1, 4, 63, -3, 1, 0},
}

var subpelFilter4Tap = [15][8]int32{
	{0, 0, -2, 63, 4, -1, 0, 0},
	{0, 0, -4, 61, 9, -2, 0, 0},
	{0, 0, -5, 58, 14, -3, 0, 0},
	{0, 0, -6, 55, 19, -4, 0, 0},
	{0, 0, -6, 51, 24, -5, 0, 0},
	{0, 0, -7, 47, 29, -5, 0, 0},
	{0, 0, -6, 42, 33, -5, 0, 0},
	{0, 0, -6, 38, 38, -6, 0, 0},
	{0, 0, -5, 33, 42, -6, 0, 0},
	{0, 0, -5, 29, 47, -7, 0, 0},
	{0, 0, -5, 24, 51, -6, 0, 0},
	{0, 0, -4, 19, 55, -6, 0, 0},
	{0, 0, -3, 14, 58, -5, 0, 0},
	{0, 0, -2, 9, 61, -4, 0, 0},
	{0, 0, -1, 4, 63, -2, 0, 0},
}

func clampInt(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ExtractBlock copies a bs*bs block out of plane at (px_x,px_y), clamping
// reads at the frame boundary.
func ExtractBlock(plane []uint8, planeStride, pxX, pxY, blockSize, frameW, frameH uint32) []uint8 {
	block := make([]uint8, blockSize*blockSize)
	for r := uint32(0); r < blockSize; r++ {
		sy := minU32(pxY+r, frameH-1)
		for c := uint32(0); c < blockSize; c++ {
			sx := minU32(pxX+c, frameW-1)
			block[r*blockSize+c] = plane[sy*planeStride+sx]
		}
	}
	return block
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// InterpolateBlock samples reference at (intX,intY) with eighth-pel phase
// (phaseX,phaseY), applying separable 8-tap (or 4-tap for bs<=4) filters.
func InterpolateBlock(reference []uint8, width, height uint32, intX, intY int32, phaseX, phaseY, blockSize uint32) []uint8 {
	bs := int(blockSize)
	w := int32(width)
	h := int32(height)
	output := make([]uint8, bs*bs)

	mx := phaseX * 2
	my := phaseY * 2
	filterTable := &subpelFilter8Tap
	if blockSize <= 4 {
		filterTable = &subpelFilter4Tap
	}

	refPixel := func(sx, sy int32) int32 {
		cx := clampInt(sx, 0, w-1)
		cy := clampInt(sy, 0, h-1)
		return int32(reference[uint32(cy)*width+uint32(cx)])
	}

	switch {
	case mx == 0 && my == 0:
		for r := 0; r < bs; r++ {
			for c := 0; c < bs; c++ {
				output[r*bs+c] = uint8(refPixel(intX+int32(c), intY+int32(r)))
			}
		}
	case mx != 0 && my == 0:
		fh := filterTable[mx-1]
		for r := 0; r < bs; r++ {
			sy := intY + int32(r)
			for c := 0; c < bs; c++ {
				sum := int32(0)
				for t := int32(0); t < 8; t++ {
					sum += fh[t] * refPixel(intX+int32(c)+t-3, sy)
				}
				output[r*bs+c] = uint8(clampInt((sum+34)>>6, 0, 255))
			}
		}
	case mx == 0:
		fv := filterTable[my-1]
		for r := 0; r < bs; r++ {
			for c := 0; c < bs; c++ {
				sx := intX + int32(c)
				sum := int32(0)
				for t := int32(0); t < 8; t++ {
					sum += fv[t] * refPixel(sx, intY+int32(r)+t-3)
				}
				output[r*bs+c] = uint8(clampInt((sum+32)>>6, 0, 255))
			}
		}
	default:
		fh := filterTable[mx-1]
		fv := filterTable[my-1]
		midRows := bs + 7
		mid := make([]int32, midRows*bs)

		for r := 0; r < midRows; r++ {
			sy := intY + int32(r) - 3
			for c := 0; c < bs; c++ {
				sum := int32(0)
				for t := int32(0); t < 8; t++ {
					sum += fh[t] * refPixel(intX+int32(c)+t-3, sy)
				}
				mid[r*bs+c] = (sum + 2) >> 2
			}
		}

		for r := 0; r < bs; r++ {
			for c := 0; c < bs; c++ {
				sum := int32(0)
				for t := 0; t < 8; t++ {
					sum += fv[t] * mid[(r+t)*bs+c]
				}
				output[r*bs+c] = uint8(clampInt((sum+512)>>10, 0, 255))
			}
		}
	}

	return output
}

// ComputeBlockSAD returns the sum of absolute differences between two
// equal-length pixel buffers.
func ComputeBlockSAD(source, predicted []uint8) uint32 {
	var sum uint32
	for i := range source {
		d := int32(source[i]) - int32(predicted[i])
		if d < 0 {
			d = -d
		}
		sum += uint32(d)
	}
	return sum
}

// MotionSearchBlock runs an exhaustive full-pel search over a +/-16
// window and returns the best (dx,dy) in integer pixels, or (0,0) if the
// block runs off the frame.
func MotionSearchBlock(source, reference []uint8, width, height, pxX, pxY, blockSize uint32) (int32, int32) {
	if pxX+blockSize > width || pxY+blockSize > height {
		return 0, 0
	}

	var bestDX, bestDY int32
	bestSAD := uint32(1<<32 - 1)
	bestCost := int32(0)

	for dy := int32(-16); dy <= 16; dy++ {
		for dx := int32(-16); dx <= 16; dx++ {
			refX := int32(pxX) + dx
			refY := int32(pxY) + dy
			if refX < 0 || refY < 0 || refX+int32(blockSize) > int32(width) || refY+int32(blockSize) > int32(height) {
				continue
			}

			var sad uint32
			for row := uint32(0); row < blockSize; row++ {
				srcOff := (pxY + row) * width + pxX
				refOff := (uint32(refY)+row)*width + uint32(refX)
				for col := uint32(0); col < blockSize; col++ {
					s := int32(source[srcOff+col])
					r := int32(reference[refOff+col])
					d := s - r
					if d < 0 {
						d = -d
					}
					sad += uint32(d)
				}
			}

			cost := absI32(dx) + absI32(dy)
			if sad < bestSAD || (sad == bestSAD && cost < bestCost) {
				bestSAD = sad
				bestDX = dx
				bestDY = dy
				bestCost = cost
			}
		}
	}

	return bestDX, bestDY
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// SubpelRefine performs a two-step search (steps of 4 then 2 eighth-pel
// units) over the 8 axis and diagonal neighbours of (bestMVX,bestMVY),
// minimizing SAD against the interpolated reference.
func SubpelRefine(source, reference []uint8, width, height, pxX, pxY, blockSize uint32, bestMVX, bestMVY int32) (int32, int32) {
	bs := int(blockSize)
	srcBlock := make([]uint8, bs*bs)
	for r := 0; r < bs; r++ {
		sy := minU32(pxY+uint32(r), height-1)
		for c := 0; c < bs; c++ {
			sx := minU32(pxX+uint32(c), width-1)
			srcBlock[r*bs+c] = source[sy*width+sx]
		}
	}

	eval := func(mvX, mvY int32) uint32 {
		intX := int32(pxX) + (mvX >> 3)
		intY := int32(pxY) + (mvY >> 3)
		phaseX := uint32(mvX & 7)
		phaseY := uint32(mvY & 7)
		pred := InterpolateBlock(reference, width, height, intX, intY, phaseX, phaseY, blockSize)
		return ComputeBlockSAD(srcBlock, pred)
	}

	bx, by := bestMVX, bestMVY
	bestSAD := eval(bx, by)

	type delta struct{ dx, dy int32 }
	for _, step := range []int32{4, 2} {
		deltas := []delta{
			{-step, 0}, {step, 0}, {0, -step}, {0, step},
			{-step, -step}, {-step, step}, {step, -step}, {step, step},
		}
		for _, d := range deltas {
			cx := bx + d.dx
			cy := by + d.dy
			sad := eval(cx, cy)
			newCost := absI32(cx) + absI32(cy)
			oldCost := absI32(bx) + absI32(by)
			if sad < bestSAD || (sad == bestSAD && newCost < oldCost) {
				bestSAD = sad
				bx = cx
				by = cy
			}
		}
	}

	return bx, by
}

// BlockMV records the motion vector and reference frame index a 4x4 unit
// was coded with; RefFrame -1 marks intra or unavailable.
type BlockMV struct {
	MVX, MVY int32
	RefFrame int8
}

// Candidate is a deduplicated MV seen among a block's causal neighbors,
// accumulating a weight used to rank DRL (dynamic reference list) order.
type Candidate struct {
	MVX, MVY int32
	Weight   uint32
}

func addCandidate(candidates []Candidate, mvX, mvY int32, weight uint32) []Candidate {
	for i := range candidates {
		if candidates[i].MVX == mvX && candidates[i].MVY == mvY {
			candidates[i].Weight += weight
			return candidates
		}
	}
	return append(candidates, Candidate{MVX: mvX, MVY: mvY, Weight: weight})
}

// PredictMV scans the above row, left column, and above-right neighbor of
// a 4x4 unit for inter-coded motion vectors, returning the best-weighted
// predictor and the full ranked candidate list for DRL context.
func PredictMV(blockMVs []BlockMV, miCols, miRows, bx4, by4 uint32) (int32, int32, []Candidate) {
	var candidates []Candidate

	if by4 > 0 {
		end := bx4 + 2
		if end > miCols {
			end = miCols
		}
		for col := bx4; col < end; col++ {
			idx := (by4-1)*miCols + col
			if int(idx) < len(blockMVs) {
				b := blockMVs[idx]
				if b.RefFrame == 0 {
					candidates = addCandidate(candidates, b.MVX, b.MVY, 2)
				}
			}
		}
	}

	if bx4 > 0 {
		end := by4 + 2
		if end > miRows {
			end = miRows
		}
		for row := by4; row < end; row++ {
			idx := row*miCols + bx4 - 1
			if int(idx) < len(blockMVs) {
				b := blockMVs[idx]
				if b.RefFrame == 0 {
					candidates = addCandidate(candidates, b.MVX, b.MVY, 2)
				}
			}
		}
	}

	if by4 > 0 && bx4+2 < miCols {
		idx := (by4-1)*miCols + bx4 + 2
		if int(idx) < len(blockMVs) {
			b := blockMVs[idx]
			if b.RefFrame == 0 {
				candidates = addCandidate(candidates, b.MVX, b.MVY, 2)
			}
		}
	}

	if len(candidates) == 0 {
		return 0, 0, candidates
	}

	for i := range candidates {
		candidates[i].Weight += 640
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Weight > candidates[j].Weight
	})

	return candidates[0].MVX, candidates[0].MVY, candidates
}

// DRLContext returns the dynamic-reference-list symbol context for
// ref_idx within a ranked candidate list.
func DRLContext(candidates []Candidate, refIdx int) int {
	if len(candidates) <= refIdx+1 {
		return 2
	}
	curWeight := candidates[refIdx].Weight
	nextWeight := candidates[refIdx+1].Weight
	switch {
	case curWeight >= 640:
		if nextWeight < 640 {
			return 1
		}
		return 0
	case nextWeight < 640:
		return 2
	default:
		return 1
	}
}

// decomposeMVDiff splits an absolute MV difference into AV1's
// (class, up, fp) triple: class selects the magnitude bucket, up is the
// integer-pel remainder within that bucket, fp is the fractional-pel bits.
func decomposeMVDiff(diff uint32) (class, up, fp uint32) {
	raw := diff - 1
	fp = (raw >> 1) & 3
	up = raw >> 3
	if up < 2 {
		return 0, up, fp
	}
	class = 31 - leadingZeros32(up)
	return class, up, fp
}

func leadingZeros32(v uint32) uint32 {
	n := uint32(0)
	if v == 0 {
		return 32
	}
	for v&0x80000000 == 0 {
		v <<= 1
		n++
	}
	return n
}

// EncodeMVComponent codes one MV component (dy or dx) of an MV residual
// via its sign, class, and within-class magnitude/fraction symbols.
func EncodeMVComponent(enc *msac.Encoder, c *cdf.MvComponentCdf, value int32) {
	sign := value < 0
	absVal := uint32(value)
	if value < 0 {
		absVal = uint32(-value)
	}
	cl, up, fp := decomposeMVDiff(absVal)

	enc.EncodeBool(sign, c.Sign)
	enc.EncodeSymbol(cl, c.Classes, 10)

	if cl == 0 {
		enc.EncodeBool(up != 0, c.Class0)
		enc.EncodeSymbol(fp, c.Class0FP[up], 3)
	} else {
		for n := uint32(0); n < cl; n++ {
			bit := (up >> n) & 1
			enc.EncodeBool(bit != 0, c.ClassN[n])
		}
		enc.EncodeSymbol(fp, c.ClassNFP, 3)
	}
}

// EncodeMVResidual codes the mv_joint symbol followed by whichever
// component(s) the joint indicates are nonzero.
func EncodeMVResidual(enc *msac.Encoder, mvCdf *cdf.Context, dy, dx int32) {
	var joint uint32
	switch {
	case dy == 0 && dx == 0:
		joint = 0
	case dy == 0:
		joint = 1
	case dx == 0:
		joint = 2
	default:
		joint = 3
	}

	enc.EncodeSymbol(joint, mvCdf.MVJoint, 3)

	if dy != 0 {
		EncodeMVComponent(enc, &mvCdf.MVComp[0], dy)
	}
	if dx != 0 {
		EncodeMVComponent(enc, &mvCdf.MVComp[1], dx)
	}
}
