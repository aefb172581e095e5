// Package cdef implements the constrained directional enhancement filter,
// AV1's in-loop deringing post-filter. Ported from
// original_source/src/cdef.rs.
package cdef

var priTaps = [2][2]int32{{4, 2}, {3, 3}}
var secTaps = [2][2]int32{{2, 1}, {2, 1}}

type dir struct{ dy, dx int32 }

var directions = [8][2]dir{
	{{-1, 1}, {-2, 2}},
	{{0, 1}, {-1, 2}},
	{{0, 1}, {0, 2}},
	{{0, 1}, {1, 2}},
	{{1, 1}, {2, 2}},
	{{1, 0}, {2, 1}},
	{{1, 0}, {2, 0}},
	{{1, 0}, {2, -1}},
}

func leadingZeros32(v int32) int32 {
	if v == 0 {
		return 32
	}
	n := int32(0)
	u := uint32(v)
	for u&0x80000000 == 0 {
		u <<= 1
		n++
	}
	return n
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func constrain(diff, strength, damping int32) int32 {
	if strength == 0 {
		return 0
	}
	shift := maxI32(0, damping-(31-leadingZeros32(strength)))
	absDiff := diff
	if absDiff < 0 {
		absDiff = -absDiff
	}
	val := maxI32(0, strength-(absDiff>>uint32(shift)))
	if diff < 0 {
		return -minI32(absDiff, val)
	}
	return minI32(absDiff, val)
}

// AnalyzeDirection picks the block's dominant edge direction (0..7) by
// minimizing the squared difference to pixels reflected across each of
// the 8 candidate directions.
func AnalyzeDirection(src []uint8, stride, bw, bh int) uint8 {
	var cost [8]int32
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			p := int32(src[y*stride+x])
			for dk := 0; dk < 16; dk++ {
				d, k := dk>>1, dk&1
				dy, dx := directions[d][k].dy, directions[d][k].dx
				ny1, nx1 := int32(y)+dy, int32(x)+dx
				ny2, nx2 := int32(y)-dy, int32(x)-dx

				if ny1 >= 0 && ny1 < int32(bh) && nx1 >= 0 && nx1 < int32(bw) {
					p1 := int32(src[int(ny1)*stride+int(nx1)])
					diff := p - p1
					cost[d] += diff * diff
				}
				if ny2 >= 0 && ny2 < int32(bh) && nx2 >= 0 && nx2 < int32(bw) {
					p2 := int32(src[int(ny2)*stride+int(nx2)])
					diff := p - p2
					cost[d] += diff * diff
				}
			}
		}
	}

	bestDir := uint8(0)
	minCost := int32(1<<31 - 1)
	for d, c := range cost {
		if c < minCost {
			minCost = c
			bestDir = uint8(d)
		}
	}
	return bestDir
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

// FilterBlock applies the direction-seeking primary/secondary tap filter
// to one bw*bh block, writing clipped results into dst.
func FilterBlock(src []uint8, stride int, dst []uint8, dstStride int, width, height int, priStrength, secStrength, damping int32) {
	if priStrength == 0 && secStrength == 0 {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dst[y*dstStride+x] = src[y*stride+x]
			}
		}
		return
	}

	direction := AnalyzeDirection(src, stride, width, height)
	priIdx := 0
	if priStrength == 0 {
		priIdx = 1
	}
	priT := priTaps[priIdx]
	secT := secTaps[priIdx]

	dir1 := int(direction)
	dir2 := (int(direction) + 2) & 7
	dir3 := (int(direction) + 6) & 7

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := int32(src[y*stride+x])
			sum := int32(0)

			for k := 0; k < 2; k++ {
				dy, dx := directions[dir1][k].dy, directions[dir1][k].dx
				for _, sign := range [2]int32{-1, 1} {
					ny := int32(y) + sign*dy
					nx := int32(x) + sign*dx
					if ny >= 0 && ny < int32(height) && nx >= 0 && nx < int32(width) {
						p1 := int32(src[int(ny)*stride+int(nx)])
						c := constrain(p1-p, priStrength, damping)
						sum += priT[k] * c
					}
				}
			}

			for k := 0; k < 2; k++ {
				dy, dx := directions[dir2][k].dy, directions[dir2][k].dx
				for _, sign := range [2]int32{-1, 1} {
					ny := int32(y) + sign*dy
					nx := int32(x) + sign*dx
					if ny >= 0 && ny < int32(height) && nx >= 0 && nx < int32(width) {
						p1 := int32(src[int(ny)*stride+int(nx)])
						c := constrain(p1-p, secStrength, damping)
						sum += secT[k] * c
					}
				}
			}

			for k := 0; k < 2; k++ {
				dy, dx := directions[dir3][k].dy, directions[dir3][k].dx
				for _, sign := range [2]int32{-1, 1} {
					ny := int32(y) + sign*dy
					nx := int32(x) + sign*dx
					if ny >= 0 && ny < int32(height) && nx >= 0 && nx < int32(width) {
						p1 := int32(src[int(ny)*stride+int(nx)])
						c := constrain(p1-p, secStrength, damping)
						sum += secT[k] * c
					}
				}
			}

			roundDown := int32(0)
			if sum < 0 {
				roundDown = 1
			}
			filtered := p + ((8 + sum - roundDown) >> 4)
			dst[y*dstStride+x] = clampByte(filtered)
		}
	}
}

// Frame is the minimal plane set FilterFrame needs: luma plus 4:2:0
// chroma, all 8-bit.
type Frame struct {
	Y, U, V       []uint8
	Width, Height uint32
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// FilterFrame runs FilterBlock over every 8x8 luma / 4x4 chroma unit of
// the frame and replaces its planes with the filtered result.
func FilterFrame(f *Frame, priStrength, secStrength, damping int32) {
	if priStrength == 0 && secStrength == 0 {
		return
	}

	width := f.Width
	height := f.Height
	uvW := ceilDiv(width, 2)
	uvH := ceilDiv(height, 2)

	filteredY := make([]uint8, len(f.Y))
	filteredU := make([]uint8, len(f.U))
	filteredV := make([]uint8, len(f.V))

	for by := uint32(0); by < height; by += 8 {
		for bx := uint32(0); bx < width; bx += 8 {
			bw := minU32(8, width-bx)
			bh := minU32(8, height-by)
			off := by*width + bx
			FilterBlock(f.Y[off:], int(width), filteredY[off:], int(width), int(bw), int(bh), priStrength, secStrength, damping)
		}
	}

	for by := uint32(0); by < uvH; by += 4 {
		for bx := uint32(0); bx < uvW; bx += 4 {
			bw := minU32(4, uvW-bx)
			bh := minU32(4, uvH-by)
			off := by*uvW + bx
			FilterBlock(f.U[off:], int(uvW), filteredU[off:], int(uvW), int(bw), int(bh), priStrength, secStrength, damping)
			FilterBlock(f.V[off:], int(uvW), filteredV[off:], int(uvW), int(bw), int(bh), priStrength, secStrength, damping)
		}
	}

	f.Y = filteredY
	f.U = filteredU
	f.V = filteredV
}
