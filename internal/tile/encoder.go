package tile

import (
	"github.com/deepteams/av1enc/internal/cdf"
	"github.com/deepteams/av1enc/internal/motion"
	"github.com/deepteams/av1enc/internal/msac"
	"github.com/deepteams/av1enc/internal/predict"
	"github.com/deepteams/av1enc/internal/quantize"
	"github.com/deepteams/av1enc/internal/transform"
	"github.com/deepteams/av1enc/internal/y4m"
)

// TileEncoder walks one key frame's partition tree in raster order over
// superblocks, entropy-coding every leaf block's mode, coefficients and
// context updates. Ported from tile.rs's TileEncoder.
type TileEncoder struct {
	enc     *msac.Encoder
	cdf     *cdf.Context
	ctx     *TileContext
	miCols  uint32
	miRows  uint32
	pixels  *y4m.FramePixels
	dq      quantize.Values
	recon   *y4m.FramePixels
}

// NewTileEncoder builds a fresh encoder over one frame's pixels at the
// given quantizer.
func NewTileEncoder(pixels *y4m.FramePixels, dq quantize.Values, baseQIdx uint8) *TileEncoder {
	miCols := 2 * ceilDiv(pixels.Width, 8)
	miRows := 2 * ceilDiv(pixels.Height, 8)
	cw := ceilDiv(pixels.Width, 2)
	ch := ceilDiv(pixels.Height, 2)
	return &TileEncoder{
		enc:    msac.NewEncoder(),
		cdf:    cdf.ForQIndex(baseQIdx),
		ctx:    NewTileContext(miCols),
		miCols: miCols,
		miRows: miRows,
		pixels: pixels,
		dq:     dq,
		recon: &y4m.FramePixels{
			Width:  pixels.Width,
			Height: pixels.Height,
			Y:      fill(pixels.Width*pixels.Height, 128),
			U:      fill(cw*ch, 128),
			V:      fill(cw*ch, 128),
		},
	}
}

func fill(n uint32, v uint8) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// edgeRow16 builds the 16-sample above or left edge a directional intra
// predictor consults: the first 8 samples from the neighbor stripe, then
// (when available) the 8th sample repeated to fill the extended range,
// or 128 when the neighbor isn't available at all. Mirrors the above_y /
// left_y construction in encode_block.
func edgeRow16(have bool, get func(i int) (uint8, bool)) []uint8 {
	out := make([]uint8, 16)
	for i := 0; i < 16; i++ {
		if have {
			j := i
			if j >= 8 {
				j = 7
			}
			if v, ok := get(j); ok {
				out[i] = v
				continue
			}
		}
		out[i] = 128
	}
	return out
}

func (t *TileEncoder) encodeBlock(bx, by, bl uint32) {
	pxX := bx * 4
	pxY := by * 4
	w := t.pixels.Width
	h := t.pixels.Height
	cw := ceilDiv(w, 2)
	ch := ceilDiv(h, 2)
	chromaPxX := pxX / 2
	chromaPxY := pxY / 2

	haveAbove := by > 0
	haveLeft := bx > 0

	aboveY := edgeRow16(haveAbove, func(i int) (uint8, bool) {
		idx := int(pxX) + i
		if idx < len(t.ctx.aboveReconY) {
			return t.ctx.aboveReconY[idx], true
		}
		return 0, false
	})
	leftLocalPY := int((by & 15) * 4)
	leftY := edgeRow16(haveLeft, func(i int) (uint8, bool) {
		idx := leftLocalPY + i
		if idx < len(t.ctx.leftReconY) {
			return t.ctx.leftReconY[idx], true
		}
		return 0, false
	})

	topLeftY := uint8(128)
	if haveAbove && haveLeft {
		if leftLocalPY > 0 {
			topLeftY = t.ctx.leftReconY[leftLocalPY-1]
		} else if pxX > 0 {
			topLeftY = t.ctx.aboveReconY[pxX-1]
		}
	}

	yBlock := motion.ExtractBlock(t.pixels.Y, w, pxX, pxY, 8, w, h)

	yMode, yAngleDelta := selectBestIntraMode(yBlock, aboveY, leftY, topLeftY, haveAbove, haveLeft, 8, 8, t.dq.DC, t.dq.AC)
	yPredBlock := generatePrediction(yMode, yAngleDelta, aboveY, leftY, topLeftY, haveAbove, haveLeft, 8, 8)
	yTxType := selectBestTxType(yBlock, yPredBlock, t.dq.DC, t.dq.AC)

	uPred := t.ctx.DCPrediction(bx, by, bl, 1)
	vPred := t.ctx.DCPrediction(bx, by, bl, 2)

	uBlock := motion.ExtractBlock(t.pixels.U, cw, chromaPxX, chromaPxY, 4, cw, ch)
	vBlock := motion.ExtractBlock(t.pixels.V, cw, chromaPxX, chromaPxY, 4, cw, ch)

	var yResidual [64]int32
	for i := 0; i < 64; i++ {
		yResidual[i] = int32(yBlock[i]) - int32(yPredBlock[i])
	}
	yDct := transform.Forward8x8(yResidual, yTxType)
	yQuant := quantizeCoeffs(yDct[:], t.dq)

	var uResidual [16]int32
	for i := 0; i < 16; i++ {
		uResidual[i] = int32(uBlock[i]) - int32(uPred)
	}
	uDct := transform.Forward4x4(uResidual, transform.DctDct)
	uQuant := quantizeCoeffs(uDct[:], t.dq)

	var vResidual [16]int32
	for i := 0; i < 16; i++ {
		vResidual[i] = int32(vBlock[i]) - int32(vPred)
	}
	vDct := transform.Forward4x4(vResidual, transform.DctDct)
	vQuant := quantizeCoeffs(vDct[:], t.dq)

	isSkip := allZero(yQuant) && allZero(uQuant) && allZero(vQuant)

	skipCtx := t.ctx.SkipCtx(bx, by)
	t.enc.EncodeBool(isSkip, t.cdf.Skip[skipCtx])

	aboveModeCtx, leftModeCtx := t.ctx.ModeCtx(bx, by)
	t.enc.EncodeSymbol(uint32(yMode), t.cdf.KfYMode[aboveModeCtx][leftModeCtx], 12)

	if yMode >= predict.V && yMode <= predict.D67 {
		t.enc.EncodeSymbol(uint32(yAngleDelta+3), t.cdf.AngleDelta[int(yMode-predict.V)], 6)
	}

	cflAllowed := bl >= 2
	uvNSyms := uint32(12)
	cflIdx := 0
	if cflAllowed {
		uvNSyms = 13
		cflIdx = 1
	}
	t.enc.EncodeSymbol(0, t.cdf.UVMode[cflIdx][yMode], uvNSyms)

	var yCul, uCul, vCul uint8
	var yDCNeg, uDCNeg, vDCNeg bool
	var yDCZero, uDCZero, vDCZero bool

	if !isSkip {
		yDCSignCtx := t.ctx.DCSignCtx(bx, by, bl, 0)
		yResult := encodeTransformBlock(t.enc, t.cdf, encodeTransformBlockParams{
			quant: yQuant, scan: DefaultScan8x8[:], size: 8,
			isChroma: false, isInter: false, tDimCtx: 1,
			txbSkipCtx: 0, dcSignCtx: yDCSignCtx, yMode: uint8(yMode), txType: yTxType,
		})
		yCul, yDCNeg, yDCZero = yResult.culLevel, yResult.dcNegative, yResult.dcIsZero

		uTxbSkipCtx := t.ctx.ChromaTxbSkipCtx(bx, by, bl, 1)
		uDCSignCtx := t.ctx.DCSignCtx(bx, by, bl, 1)
		uResult := encodeTransformBlock(t.enc, t.cdf, encodeTransformBlockParams{
			quant: uQuant, scan: DefaultScan4x4[:], size: 4,
			isChroma: true, isInter: false, tDimCtx: 0,
			txbSkipCtx: uTxbSkipCtx, dcSignCtx: uDCSignCtx, yMode: uint8(yMode), txType: transform.DctDct,
		})
		uCul, uDCNeg, uDCZero = uResult.culLevel, uResult.dcNegative, uResult.dcIsZero

		vTxbSkipCtx := t.ctx.ChromaTxbSkipCtx(bx, by, bl, 2)
		vDCSignCtx := t.ctx.DCSignCtx(bx, by, bl, 2)
		vResult := encodeTransformBlock(t.enc, t.cdf, encodeTransformBlockParams{
			quant: vQuant, scan: DefaultScan4x4[:], size: 4,
			isChroma: true, isInter: false, tDimCtx: 0,
			txbSkipCtx: vTxbSkipCtx, dcSignCtx: vDCSignCtx, yMode: uint8(yMode), txType: transform.DctDct,
		})
		vCul, vDCNeg, vDCZero = vResult.culLevel, vResult.dcNegative, vResult.dcIsZero
	} else {
		yDCZero, uDCZero, vDCZero = true, true, true
	}

	yDeq := dequantizeCoeffs(yQuant, t.dq)
	var yDeqArr [64]int32
	copy(yDeqArr[:], yDeq)
	yReconResidual := transform.Inverse8x8(yDeqArr, yTxType)

	for r := uint32(0); r < 8; r++ {
		for c := uint32(0); c < 8; c++ {
			destX, destY := pxX+c, pxY+r
			if destX < w && destY < h {
				pixel := clamp255(int32(yPredBlock[r*8+c]) + yReconResidual[r*8+c])
				t.recon.Y[destY*w+destX] = pixel
			}
		}
	}

	uDeq := dequantizeCoeffs(uQuant, t.dq)
	var uDeqArr [16]int32
	copy(uDeqArr[:], uDeq)
	uReconResidual := transform.Inverse4x4(uDeqArr, transform.DctDct)
	for r := uint32(0); r < 4; r++ {
		for c := uint32(0); c < 4; c++ {
			destX, destY := chromaPxX+c, chromaPxY+r
			if destX < cw && destY < ch {
				pixel := clamp255(int32(uPred) + uReconResidual[r*4+c])
				t.recon.U[destY*cw+destX] = pixel
			}
		}
	}

	vDeq := dequantizeCoeffs(vQuant, t.dq)
	var vDeqArr [16]int32
	copy(vDeqArr[:], vDeq)
	vReconResidual := transform.Inverse4x4(vDeqArr, transform.DctDct)
	for r := uint32(0); r < 4; r++ {
		for c := uint32(0); c < 4; c++ {
			destX, destY := chromaPxX+c, chromaPxY+r
			if destX < cw && destY < ch {
				pixel := clamp255(int32(vPred) + vReconResidual[r*4+c])
				t.recon.V[destY*cw+destX] = pixel
			}
		}
	}

	yBottomRow, yRightCol := edgeFromRecon(t.recon.Y, w, h, pxX, pxY, 8)
	uBottomRow, uRightCol := edgeFromRecon(t.recon.U, cw, ch, chromaPxX, chromaPxY, 4)
	vBottomRow, vRightCol := edgeFromRecon(t.recon.V, cw, ch, chromaPxX, chromaPxY, 4)

	t.ctx.UpdateRecon(bx, by, t.miCols, t.miRows, yBottomRow, yRightCol, uBottomRow, uRightCol, vBottomRow, vRightCol)
	yCfCtx := coefCtxValue(yCul, yDCNeg, yDCZero)
	uCfCtx := coefCtxValue(uCul, uDCNeg, uDCZero)
	vCfCtx := coefCtxValue(vCul, vDCNeg, vDCZero)
	t.ctx.UpdateCoefCtx(bx, by, bl, t.miCols, t.miRows, yCfCtx, uCfCtx, vCfCtx)
	t.ctx.UpdatePartitionCtx(bx, by, bl, t.miCols, t.miRows)
	t.ctx.UpdateSkipCtx(bx, by, bl, t.miCols, t.miRows, isSkip)
	t.ctx.UpdateModeCtx(bx, by, bl, t.miCols, t.miRows, uint8(yMode))
}

func allZero(v []int32) bool {
	for _, c := range v {
		if c != 0 {
			return false
		}
	}
	return true
}

func clamp255(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// edgeFromRecon reads a reconstructed block's bottom row and right
// column for the above/left context stripes, clamped to frame bounds
// with a 128 fallback.
func edgeFromRecon(plane []uint8, w, h, pxX, pxY, size uint32) ([]uint8, []uint8) {
	bottom := fill(size, 128)
	right := fill(size, 128)
	for c := uint32(0); c < size; c++ {
		destX, destY := pxX+c, pxY+size-1
		if destX < w && destY < h {
			bottom[c] = plane[destY*w+destX]
		}
	}
	for r := uint32(0); r < size; r++ {
		destX, destY := pxX+size-1, pxY+r
		if destX < w && destY < h {
			right[r] = plane[destY*w+destX]
		}
	}
	return bottom, right
}

func (t *TileEncoder) skipMSE(bx, by, bl uint32) uint64 {
	pxX := bx * 4
	pxY := by * 4
	blockSize := uint32(1) << (7 - bl)
	w := t.pixels.Width
	h := t.pixels.Height

	yPred := int64(t.ctx.DCPrediction(bx, by, bl, 0))

	var sse, count uint64
	for r := uint32(0); r < blockSize; r++ {
		for c := uint32(0); c < blockSize; c++ {
			sy := minU32(pxY+r, h-1)
			sx := minU32(pxX+c, w-1)
			val := int64(t.pixels.Y[sy*w+sx])
			diff := val - yPred
			sse += uint64(diff * diff)
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return sse / count
}

func (t *TileEncoder) shouldUsePartitionNone(bx, by, bl uint32) bool {
	base := uint64(t.dq.AC) * uint64(t.dq.AC)
	var divisor uint64
	switch bl {
	case 1:
		divisor = 16
	case 2:
		divisor = 32
	case 3:
		divisor = 48
	default:
		divisor = 64
	}
	return t.skipMSE(bx, by, bl) <= base/divisor
}

func (t *TileEncoder) encodeSkipBlock(bx, by, bl uint32) {
	pxX := bx * 4
	pxY := by * 4
	blockSize := uint32(1) << (7 - bl)
	chromaSize := blockSize / 2
	w := t.pixels.Width
	h := t.pixels.Height
	cw := ceilDiv(w, 2)
	ch := ceilDiv(h, 2)
	cpx := pxX / 2
	cpy := pxY / 2

	yPred := t.ctx.DCPrediction(bx, by, bl, 0)
	uPred := t.ctx.DCPrediction(bx, by, bl, 1)
	vPred := t.ctx.DCPrediction(bx, by, bl, 2)

	skipCtx := t.ctx.SkipCtx(bx, by)
	t.enc.EncodeBool(true, t.cdf.Skip[skipCtx])

	aboveModeCtx, leftModeCtx := t.ctx.ModeCtx(bx, by)
	t.enc.EncodeSymbol(0, t.cdf.KfYMode[aboveModeCtx][leftModeCtx], 12)

	cflAllowed := bl >= 2
	uvNSyms := uint32(12)
	cflIdx := 0
	if cflAllowed {
		uvNSyms = 13
		cflIdx = 1
	}
	t.enc.EncodeSymbol(0, t.cdf.UVMode[cflIdx][0], uvNSyms)

	for r := uint32(0); r < blockSize; r++ {
		for c := uint32(0); c < blockSize; c++ {
			destX, destY := pxX+c, pxY+r
			if destX < w && destY < h {
				t.recon.Y[destY*w+destX] = yPred
			}
		}
	}
	for r := uint32(0); r < chromaSize; r++ {
		for c := uint32(0); c < chromaSize; c++ {
			destX, destY := cpx+c, cpy+r
			if destX < cw && destY < ch {
				t.recon.U[destY*cw+destX] = uPred
				t.recon.V[destY*cw+destX] = vPred
			}
		}
	}

	yBottom := fill(blockSize, yPred)
	yRight := fill(blockSize, yPred)
	uBottom := fill(chromaSize, uPred)
	uRight := fill(chromaSize, uPred)
	vBottom := fill(chromaSize, vPred)
	vRight := fill(chromaSize, vPred)

	t.ctx.UpdateRecon(bx, by, t.miCols, t.miRows, yBottom, yRight, uBottom, uRight, vBottom, vRight)
	skipCf := coefCtxValue(0, false, true)
	t.ctx.UpdateCoefCtx(bx, by, bl, t.miCols, t.miRows, skipCf, skipCf, skipCf)
	t.ctx.UpdatePartitionCtx(bx, by, bl, t.miCols, t.miRows)
	t.ctx.UpdateSkipCtx(bx, by, bl, t.miCols, t.miRows, true)
	t.ctx.UpdateModeCtx(bx, by, bl, t.miCols, t.miRows, 0)
}

func (t *TileEncoder) encodePartition(bl, bx, by uint32) {
	if bl > 4 {
		return
	}

	hsz := uint32(16) >> bl
	haveHSplit := t.miCols > bx+hsz
	haveVSplit := t.miRows > by+hsz

	switch {
	case haveHSplit && haveVSplit:
		partCtx := t.ctx.PartitionCtx(bx, by, bl)
		if bl < 4 {
			if t.shouldUsePartitionNone(bx, by, bl) {
				t.enc.EncodeSymbol(0, t.cdf.Partition[bl][partCtx], partitionNSyms[bl])
				t.encodeSkipBlock(bx, by, bl)
			} else {
				t.enc.EncodeSymbol(3, t.cdf.Partition[bl][partCtx], partitionNSyms[bl])
				t.encodePartition(bl+1, bx, by)
				t.encodePartition(bl+1, bx+hsz, by)
				t.encodePartition(bl+1, bx, by+hsz)
				t.encodePartition(bl+1, bx+hsz, by+hsz)
			}
		} else {
			t.enc.EncodeSymbol(0, t.cdf.Partition[bl][partCtx], partitionNSyms[bl])
			t.encodeBlock(bx, by, bl)
		}
	case haveHSplit:
		partCtx := t.ctx.PartitionCtx(bx, by, bl)
		prob := gatherTopPartitionProb(t.cdf.Partition[bl][partCtx], bl)
		t.enc.EncodeBoolProb(true, prob)
		t.encodePartition(bl+1, bx, by)
		t.encodePartition(bl+1, bx+hsz, by)
	case haveVSplit:
		partCtx := t.ctx.PartitionCtx(bx, by, bl)
		prob := gatherLeftPartitionProb(t.cdf.Partition[bl][partCtx], bl)
		t.enc.EncodeBoolProb(true, prob)
		t.encodePartition(bl+1, bx, by)
		t.encodePartition(bl+1, bx, by+hsz)
	default:
		t.encodePartition(bl+1, bx, by)
	}
}

// EncodeTileWithRecon entropy-codes one key frame's worth of superblocks
// and returns the tile's compressed bytes alongside the reconstructed
// frame later used as a motion-compensation reference.
func EncodeTileWithRecon(pixels *y4m.FramePixels, dq quantize.Values, baseQIdx uint8) ([]byte, *y4m.FramePixels) {
	t := NewTileEncoder(pixels, dq, baseQIdx)

	sbCols := ceilDiv(t.miCols, 16)
	sbRows := ceilDiv(t.miRows, 16)

	for sbRow := uint32(0); sbRow < sbRows; sbRow++ {
		t.ctx.ResetLeftForSBRow()
		for sbCol := uint32(0); sbCol < sbCols; sbCol++ {
			bx := sbCol * 16
			by := sbRow * 16
			t.encodePartition(1, bx, by)
		}
	}

	return t.enc.Finalize(), t.recon
}
