package tile

// intraModeContext maps a neighbor's y-mode (clamped to 12) to the
// above/left mode-context band used to pick the kf_y_mode CDF.
var intraModeContext = [13]uint8{0, 1, 2, 3, 4, 4, 4, 4, 3, 0, 1, 2, 0}

// partitionNSyms gives the symbol count of the partition CDF at each
// split level bl; level 4 (8x8 luma) only ever signals split-or-not.
var partitionNSyms = [5]uint32{9, 9, 9, 9, 3}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// TileContext tracks the above-row and left-column neighbor state the
// partition walk and block coders consult for context derivation. Above
// arrays span the full frame width; left arrays are superblock-tall and
// reset at the start of every superblock row. Ported from tile.rs's
// TileContext.
type TileContext struct {
	miCols uint32

	abovePartition []uint8
	aboveSkip      []uint8
	leftPartition  [16]uint8
	leftSkip       [32]uint8

	aboveReconY []uint8
	aboveReconU []uint8
	aboveReconV []uint8
	leftReconY  [64]uint8
	leftReconU  [32]uint8
	leftReconV  [32]uint8

	aboveLCoef []uint8
	leftLCoef  [32]uint8
	aboveCCoef [2][]uint8
	leftCCoef  [2][16]uint8

	aboveIntra []bool
	leftIntra  [32]bool
	aboveMode  []uint8
	leftMode   [32]uint8
	aboveNewMV []bool
	leftNewMV  [32]bool
}

// NewTileContext allocates the above-row arrays for a miCols-wide frame
// and zero/default-fills the left-column arrays.
func NewTileContext(miCols uint32) *TileContext {
	abovePartSize := miCols/2 + 16
	aboveSkipSize := miCols + 32
	aboveReconYSize := miCols*4 + 32
	aboveReconUVSize := miCols*2 + 16
	aboveCoefSize := miCols + 32
	aboveCCoefSize := miCols/2 + 16
	aboveInterSize := miCols + 32

	c := &TileContext{
		miCols:         miCols,
		abovePartition: make([]uint8, abovePartSize),
		aboveSkip:      make([]uint8, aboveSkipSize),
		aboveReconY:    make([]uint8, aboveReconYSize),
		aboveReconU:    make([]uint8, aboveReconUVSize),
		aboveReconV:    make([]uint8, aboveReconUVSize),
		aboveLCoef:     make([]uint8, aboveCoefSize),
		aboveIntra:     make([]bool, aboveInterSize),
		aboveMode:      make([]uint8, aboveInterSize),
		aboveNewMV:     make([]bool, aboveInterSize),
	}
	c.aboveCCoef[0] = make([]uint8, aboveCCoefSize)
	c.aboveCCoef[1] = make([]uint8, aboveCCoefSize)

	for i := range c.aboveReconY {
		c.aboveReconY[i] = 128
	}
	for i := range c.aboveReconU {
		c.aboveReconU[i] = 128
		c.aboveReconV[i] = 128
	}
	for i := range c.aboveLCoef {
		c.aboveLCoef[i] = 0x40
	}
	for p := 0; p < 2; p++ {
		for i := range c.aboveCCoef[p] {
			c.aboveCCoef[p][i] = 0x40
		}
	}

	c.ResetLeftForSBRow()
	return c
}

// ResetLeftForSBRow reinitializes every left-column array to its default
// value; called once per superblock row before encoding its superblocks.
func (c *TileContext) ResetLeftForSBRow() {
	for i := range c.leftPartition {
		c.leftPartition[i] = 0
	}
	for i := range c.leftSkip {
		c.leftSkip[i] = 0
	}
	for i := range c.leftReconY {
		c.leftReconY[i] = 128
	}
	for i := range c.leftReconU {
		c.leftReconU[i] = 128
		c.leftReconV[i] = 128
	}
	for i := range c.leftLCoef {
		c.leftLCoef[i] = 0x40
	}
	for p := 0; p < 2; p++ {
		for i := range c.leftCCoef[p] {
			c.leftCCoef[p][i] = 0x40
		}
	}
	for i := range c.leftIntra {
		c.leftIntra[i] = false
	}
	for i := range c.leftMode {
		c.leftMode[i] = 0
	}
	for i := range c.leftNewMV {
		c.leftNewMV[i] = false
	}
}

// PartitionCtx derives the 2-bit partition context for the block at
// (bx,by) at split level bl from the above/left partition bitmaps.
func (c *TileContext) PartitionCtx(bx, by, bl uint32) int {
	bit := uint(4 - bl)
	above := (c.abovePartition[bx>>1] >> bit) & 1
	left := (c.leftPartition[(by&31)>>1] >> bit) & 1
	return int(above) | int(left)<<1
}

// SkipCtx derives the 0..2 skip-flag context from above/left skip flags.
func (c *TileContext) SkipCtx(bx, by uint32) int {
	return int(c.aboveSkip[bx]) + int(c.leftSkip[by&31])
}

// partitionCtxNone is the per-level bit pattern stamped into the
// above/left partition bitmaps when a block resolves to PARTITION_NONE.
var partitionCtxNone = [5]uint8{0, 0x10, 0x18, 0x1c, 0x1e}

// UpdatePartitionCtx stamps bl's PARTITION_NONE pattern across the
// above/left spans the block at (bx,by) covers, clipped to the frame.
func (c *TileContext) UpdatePartitionCtx(bx, by, bl, miCols, miRows uint32) {
	val := partitionCtxNone[bl]
	aw := minU32(16>>bl, ceilDiv(miCols-bx, 2))
	for i := uint32(0); i < aw; i++ {
		idx := bx>>1 + i
		if int(idx) < len(c.abovePartition) {
			c.abovePartition[idx] = val
		}
	}
	lh := minU32(16>>bl, ceilDiv(miRows-by, 2))
	for i := uint32(0); i < lh; i++ {
		idx := ((by & 31) >> 1) + i
		if int(idx) < len(c.leftPartition) {
			c.leftPartition[idx] = val
		}
	}
}

// UpdateSkipCtx stamps isSkip across the mi-span the block at (bx,by)
// covers, bounds-checked against both the array length and frame edge.
func (c *TileContext) UpdateSkipCtx(bx, by, bl, miCols, miRows uint32, isSkip bool) {
	val := uint8(0)
	if isSkip {
		val = 1
	}
	bw4 := uint32(2) * (16 >> bl)
	for i := uint32(0); i < bw4; i++ {
		idx := bx + i
		if idx < miCols && int(idx) < len(c.aboveSkip) {
			c.aboveSkip[idx] = val
		}
	}
	for i := uint32(0); i < bw4; i++ {
		idx := by + i
		if idx < miRows {
			li := idx & 31
			if int(li) < len(c.leftSkip) {
				c.leftSkip[li] = val
			}
		}
	}
}

// DCSignCtx derives the 0/1/2 DC-sign context for plane (0=Y,1=U,2=V)
// from the sign bits packed into neighboring coefficient-context bytes.
func (c *TileContext) DCSignCtx(bx, by, bl uint32, plane int) int {
	var n uint32
	if plane == 0 {
		n = 2 * (16 >> bl)
	} else {
		n = maxU32(16>>bl, 1)
	}

	sum := int32(0)
	for i := uint32(0); i < n; i++ {
		var v uint8
		ok := false
		if plane == 0 {
			idx := bx + i
			if int(idx) < len(c.aboveLCoef) {
				v = c.aboveLCoef[idx]
				ok = true
			}
		} else {
			idx := bx/2 + i
			if int(idx) < len(c.aboveCCoef[plane-1]) {
				v = c.aboveCCoef[plane-1][idx]
				ok = true
			}
		}
		if !ok {
			sum++
			continue
		}
		sum += int32(v >> 6)
	}
	for i := uint32(0); i < n; i++ {
		var v uint8
		ok := false
		if plane == 0 {
			idx := (by + i) & 31
			if int(idx) < len(c.leftLCoef) {
				v = c.leftLCoef[idx]
				ok = true
			}
		} else {
			idx := ((by / 2) + i) & 15
			if int(idx) < len(c.leftCCoef[plane-1]) {
				v = c.leftCCoef[plane-1][idx]
				ok = true
			}
		}
		if !ok {
			sum++
			continue
		}
		sum += int32(v >> 6)
	}

	nTotal := int32(2 * n)
	switch {
	case sum == nTotal:
		return 0
	case sum < nTotal/2:
		return 1
	default:
		return 2
	}
}

// ChromaTxbSkipCtx derives the txb_skip context for a chroma plane from
// whether its above/left neighbor coefficient bytes are nonzero.
func (c *TileContext) ChromaTxbSkipCtx(bx, by, bl uint32, plane int) int {
	aboveNonzero := 0
	if int(bx/2) < len(c.aboveCCoef[plane-1]) && c.aboveCCoef[plane-1][bx/2] != 0x40 {
		aboveNonzero = 1
	}
	leftNonzero := 0
	li := (by / 2) & 15
	if int(li) < len(c.leftCCoef[plane-1]) && c.leftCCoef[plane-1][li] != 0x40 {
		leftNonzero = 1
	}
	return 7 + aboveNonzero + leftNonzero
}

// UpdateCoefCtx stamps the packed cul_level|dc_sign byte for each plane
// across the spans the block at (bx,by) covers.
func (c *TileContext) UpdateCoefCtx(bx, by, bl, miCols, miRows uint32, yCtx, uCtx, vCtx uint8) {
	bw4 := uint32(2) * (16 >> bl)
	for i := uint32(0); i < bw4; i++ {
		idx := bx + i
		if idx < miCols && int(idx) < len(c.aboveLCoef) {
			c.aboveLCoef[idx] = yCtx
		}
	}
	for i := uint32(0); i < bw4; i++ {
		idx := by + i
		if idx < miRows {
			li := idx & 31
			if int(li) < len(c.leftLCoef) {
				c.leftLCoef[li] = yCtx
			}
		}
	}

	cw4 := maxU32(16>>bl, 1)
	for i := uint32(0); i < cw4; i++ {
		idx := bx/2 + i
		if int(idx) < len(c.aboveCCoef[0]) && bx+2*i < miCols {
			c.aboveCCoef[0][idx] = uCtx
			c.aboveCCoef[1][idx] = vCtx
		}
	}
	for i := uint32(0); i < cw4; i++ {
		idx := by + 2*i
		if idx < miRows {
			li := (idx / 2) & 15
			if int(li) < len(c.leftCCoef[0]) {
				c.leftCCoef[0][li] = uCtx
				c.leftCCoef[1][li] = vCtx
			}
		}
	}
}

// DCPrediction averages the available above/left reconstructed edge
// pixels for plane (0=Y,1=U,2=V), falling back to 128 when neither
// neighbor is available.
func (c *TileContext) DCPrediction(bx, by, bl uint32, plane int) uint8 {
	haveAbove := by > 0
	haveLeft := bx > 0

	var blockPixels uint32
	if plane == 0 {
		blockPixels = 1 << (7 - bl)
	} else {
		blockPixels = 1 << (6 - bl)
	}

	var aboveArr, leftArr []uint8
	var aboveOff, leftOff uint32
	switch plane {
	case 0:
		aboveArr, aboveOff = c.aboveReconY, bx*4
		leftArr, leftOff = c.leftReconY[:], (by&15)*4
	case 1:
		aboveArr, aboveOff = c.aboveReconU, bx*2
		leftArr, leftOff = c.leftReconU[:], (by&15)*2
	default:
		aboveArr, aboveOff = c.aboveReconV, bx*2
		leftArr, leftOff = c.leftReconV[:], (by&15)*2
	}

	sum := int32(0)
	count := int32(0)
	if haveAbove {
		for i := uint32(0); i < blockPixels; i++ {
			idx := aboveOff + i
			if int(idx) < len(aboveArr) {
				sum += int32(aboveArr[idx])
				count++
			}
		}
	}
	if haveLeft {
		for i := uint32(0); i < blockPixels; i++ {
			idx := leftOff + i
			if int(idx) < len(leftArr) {
				sum += int32(leftArr[idx])
				count++
			}
		}
	}
	if count == 0 {
		return 128
	}
	return uint8((sum + count/2) / count)
}

// UpdateRecon writes the bottom row and right column of a just-decoded
// block into the above/left reconstruction stripes, clipped to the
// frame edge and to each array's length.
func (c *TileContext) UpdateRecon(bx, by, miCols, miRows uint32, yBottomRow, yRightCol, uBottomRow, uRightCol, vBottomRow, vRightCol []uint8) {
	writeAbove := func(arr []uint8, off uint32, row []uint8) {
		for i, v := range row {
			idx := off + uint32(i)
			if int(idx) < len(arr) {
				arr[idx] = v
			}
		}
	}
	writeLeft := func(arr []uint8, off uint32, col []uint8) {
		for i, v := range col {
			idx := off + uint32(i)
			if int(idx) < len(arr) {
				arr[idx] = v
			}
		}
	}

	if by+1 <= miRows {
		writeAbove(c.aboveReconY, bx*4, yBottomRow)
		writeAbove(c.aboveReconU, bx*2, uBottomRow)
		writeAbove(c.aboveReconV, bx*2, vBottomRow)
	}
	if bx+1 <= miCols {
		writeLeft(c.leftReconY[:], (by&15)*4, yRightCol)
		writeLeft(c.leftReconU[:], (by&15)*2, uRightCol)
		writeLeft(c.leftReconV[:], (by&15)*2, vRightCol)
	}
}

// RefCtx returns the single_ref context: 2 if either neighbor is inter
// coded, else 1.
func (c *TileContext) RefCtx(bx, by uint32) int {
	if c.HasInterNeighbor(bx, by) {
		return 2
	}
	return 1
}

// HasInterNeighbor reports whether the above or left neighbor is inter
// coded.
func (c *TileContext) HasInterNeighbor(bx, by uint32) bool {
	aboveInter := by > 0 && int(bx) < len(c.aboveIntra) && !c.aboveIntra[bx]
	leftInter := bx > 0 && !c.leftIntra[by&31]
	return aboveInter || leftInter
}

// NewMVCtx derives the newmv context from how many neighbors are inter
// coded and whether they used a new (non-zero, non-predicted) MV.
func (c *TileContext) NewMVCtx(bx, by uint32) int {
	aboveInter := by > 0 && int(bx) < len(c.aboveIntra) && !c.aboveIntra[bx]
	leftInter := bx > 0 && !c.leftIntra[by&31]
	nearestMatch := 0
	if aboveInter {
		nearestMatch++
	}
	if leftInter {
		nearestMatch++
	}

	haveNewMV := 0
	if aboveInter && int(bx) < len(c.aboveNewMV) && c.aboveNewMV[bx] {
		haveNewMV++
	}
	if leftInter && c.leftNewMV[by&31] {
		haveNewMV++
	}

	switch nearestMatch {
	case 0:
		return 0
	case 1:
		return 3 - haveNewMV
	default:
		return 5 - haveNewMV
	}
}

// IsInterCtx derives the is_inter context from whether the above/left
// neighbors are available and inter coded.
func (c *TileContext) IsInterCtx(bx, by uint32) int {
	haveAbove := by > 0
	haveLeft := bx > 0

	aboveIntra := !haveAbove || (int(bx) < len(c.aboveIntra) && c.aboveIntra[bx])
	leftIntra := !haveLeft || c.leftIntra[by&31]

	switch {
	case haveAbove && haveLeft:
		if aboveIntra && leftIntra {
			return 3
		}
		if aboveIntra || leftIntra {
			return 1
		}
		return 0
	case haveAbove:
		if aboveIntra {
			return 2
		}
		return 0
	case haveLeft:
		if leftIntra {
			return 2
		}
		return 0
	default:
		return 0
	}
}

// UpdateIntraCtx stamps isInter across the above/left span the block at
// (bx,by) covers.
func (c *TileContext) UpdateIntraCtx(bx, by, bl, miCols, miRows uint32, isInter bool) {
	val := !isInter
	bw4 := uint32(2) * (16 >> bl)
	for i := uint32(0); i < bw4; i++ {
		idx := bx + i
		if idx < miCols && int(idx) < len(c.aboveIntra) {
			c.aboveIntra[idx] = val
		}
	}
	for i := uint32(0); i < bw4; i++ {
		idx := by + i
		if idx < miRows {
			li := idx & 31
			if int(li) < len(c.leftIntra) {
				c.leftIntra[li] = val
			}
		}
	}
}

// UpdateNewMVFlag stamps usedNewMV across the above/left span the block
// at (bx,by) covers.
func (c *TileContext) UpdateNewMVFlag(bx, by, bl, miCols, miRows uint32, usedNewMV bool) {
	bw4 := uint32(2) * (16 >> bl)
	for i := uint32(0); i < bw4; i++ {
		idx := bx + i
		if idx < miCols && int(idx) < len(c.aboveNewMV) {
			c.aboveNewMV[idx] = usedNewMV
		}
	}
	for i := uint32(0); i < bw4; i++ {
		idx := by + i
		if idx < miRows {
			li := idx & 31
			if int(li) < len(c.leftNewMV) {
				c.leftNewMV[li] = usedNewMV
			}
		}
	}
}

// UpdateModeCtx stamps yMode across the above/left span the block at
// (bx,by) covers.
func (c *TileContext) UpdateModeCtx(bx, by, bl, miCols, miRows uint32, yMode uint8) {
	bw4 := uint32(2) * (16 >> bl)
	for i := uint32(0); i < bw4; i++ {
		idx := bx + i
		if idx < miCols && int(idx) < len(c.aboveMode) {
			c.aboveMode[idx] = yMode
		}
	}
	for i := uint32(0); i < bw4; i++ {
		idx := by + i
		if idx < miRows {
			li := idx & 31
			if int(li) < len(c.leftMode) {
				c.leftMode[li] = yMode
			}
		}
	}
}

// ModeCtx returns the (above, left) kf_y_mode context band pair,
// defaulting an unavailable neighbor's mode to DC (0).
func (c *TileContext) ModeCtx(bx, by uint32) (int, int) {
	aboveMode := uint8(0)
	if by > 0 && int(bx) < len(c.aboveMode) {
		aboveMode = c.aboveMode[bx]
	}
	leftMode := uint8(0)
	if bx > 0 {
		leftMode = c.leftMode[by&31]
	}
	if aboveMode > 12 {
		aboveMode = 12
	}
	if leftMode > 12 {
		leftMode = 12
	}
	return int(intraModeContext[aboveMode]), int(intraModeContext[leftMode])
}
