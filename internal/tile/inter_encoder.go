package tile

import (
	"github.com/deepteams/av1enc/internal/cdf"
	"github.com/deepteams/av1enc/internal/motion"
	"github.com/deepteams/av1enc/internal/msac"
	"github.com/deepteams/av1enc/internal/quantize"
	"github.com/deepteams/av1enc/internal/transform"
	"github.com/deepteams/av1enc/internal/y4m"
)

// InterTileEncoder walks one inter frame's partition tree the same way
// TileEncoder does for key frames, but chooses between zero-MV and
// motion-searched prediction per block and disables CDF adaptation
// (matching this encoder's error-resilient inter-frame header bits).
// Ported from tile.rs's InterTileEncoder.
type InterTileEncoder struct {
	enc       *msac.Encoder
	cdf       *cdf.Context
	ctx       *TileContext
	miCols    uint32
	miRows    uint32
	pixels    *y4m.FramePixels
	reference *y4m.FramePixels
	dq        quantize.Values
	recon     *y4m.FramePixels
	blockMVs  []motion.BlockMV
}

// NewInterTileEncoder builds a fresh inter-frame encoder against the
// given reference frame.
func NewInterTileEncoder(pixels, reference *y4m.FramePixels, dq quantize.Values, baseQIdx uint8) *InterTileEncoder {
	miCols := 2 * ceilDiv(pixels.Width, 8)
	miRows := 2 * ceilDiv(pixels.Height, 8)
	cw := ceilDiv(pixels.Width, 2)
	ch := ceilDiv(pixels.Height, 2)

	enc := msac.NewEncoder()
	enc.AllowUpdateCDF = false

	blockMVs := make([]motion.BlockMV, miCols*miRows)
	for i := range blockMVs {
		blockMVs[i] = motion.BlockMV{RefFrame: -1}
	}

	return &InterTileEncoder{
		enc:       enc,
		cdf:       cdf.ForQIndex(baseQIdx),
		ctx:       NewTileContext(miCols),
		miCols:    miCols,
		miRows:    miRows,
		pixels:    pixels,
		reference: reference,
		dq:        dq,
		recon: &y4m.FramePixels{
			Width:  pixels.Width,
			Height: pixels.Height,
			Y:      fill(pixels.Width*pixels.Height, 128),
			U:      fill(cw*ch, 128),
			V:      fill(cw*ch, 128),
		},
		blockMVs: blockMVs,
	}
}

func (t *InterTileEncoder) encodeInterBlock(bx, by, bl uint32) {
	pxX := bx * 4
	pxY := by * 4
	w := t.pixels.Width
	h := t.pixels.Height
	cw := ceilDiv(w, 2)
	ch := ceilDiv(h, 2)
	chromaPxX := pxX / 2
	chromaPxY := pxY / 2

	ySrc := motion.ExtractBlock(t.pixels.Y, w, pxX, pxY, 8, w, h)
	uSrc := motion.ExtractBlock(t.pixels.U, cw, chromaPxX, chromaPxY, 4, cw, ch)
	vSrc := motion.ExtractBlock(t.pixels.V, cw, chromaPxX, chromaPxY, 4, cw, ch)

	dxPixels, dyPixels := motion.MotionSearchBlock(t.pixels.Y, t.reference.Y, w, h, pxX, pxY, 8)

	var refinedMVX, refinedMVY int32
	if dxPixels != 0 || dyPixels != 0 {
		refinedMVX, refinedMVY = motion.SubpelRefine(t.pixels.Y, t.reference.Y, w, h, pxX, pxY, 8, dxPixels*8, dyPixels*8)
	}

	predX, predY, mvCandidates := motion.PredictMV(t.blockMVs, t.miCols, t.miRows, bx, by)

	zeroYRef := motion.ExtractBlock(t.reference.Y, w, pxX, pxY, 8, w, h)
	zeroURef := motion.ExtractBlock(t.reference.U, cw, chromaPxX, chromaPxY, 4, cw, ch)
	zeroVRef := motion.ExtractBlock(t.reference.V, cw, chromaPxX, chromaPxY, 4, cw, ch)

	noInterNeighbors := !t.ctx.HasInterNeighbor(bx, by)

	useNewMV := false
	if noInterNeighbors && (refinedMVX != 0 || refinedMVY != 0) {
		yIntX := int32(pxX) + (refinedMVX >> 3)
		yIntY := int32(pxY) + (refinedMVY >> 3)
		yPhaseX := uint32(refinedMVX & 7)
		yPhaseY := uint32(refinedMVY & 7)
		mcYRef := motion.InterpolateBlock(t.reference.Y, w, h, yIntX, yIntY, yPhaseX, yPhaseY, 8)

		var zeroEnergy, mcEnergy int64
		for i := 0; i < 64; i++ {
			zd := int64(ySrc[i]) - int64(zeroYRef[i])
			md := int64(ySrc[i]) - int64(mcYRef[i])
			zeroEnergy += zd * zd
			mcEnergy += md * md
		}
		useNewMV = mcEnergy < zeroEnergy
	}

	var yRefBlock, uRefBlock, vRefBlock []uint8
	var finalMVX, finalMVY int32
	if useNewMV {
		yIntX := int32(pxX) + (refinedMVX >> 3)
		yIntY := int32(pxY) + (refinedMVY >> 3)
		yPhaseX := uint32(refinedMVX & 7)
		yPhaseY := uint32(refinedMVY & 7)

		chromaMVX := refinedMVX / 2
		chromaMVY := refinedMVY / 2
		cIntX := int32(chromaPxX) + (chromaMVX >> 3)
		cIntY := int32(chromaPxY) + (chromaMVY >> 3)
		cPhaseX := uint32(chromaMVX & 7)
		cPhaseY := uint32(chromaMVY & 7)

		yRefBlock = motion.InterpolateBlock(t.reference.Y, w, h, yIntX, yIntY, yPhaseX, yPhaseY, 8)
		uRefBlock = motion.InterpolateBlock(t.reference.U, cw, ch, cIntX, cIntY, cPhaseX, cPhaseY, 4)
		vRefBlock = motion.InterpolateBlock(t.reference.V, cw, ch, cIntX, cIntY, cPhaseX, cPhaseY, 4)
		finalMVX, finalMVY = refinedMVX, refinedMVY
	} else {
		yRefBlock, uRefBlock, vRefBlock = zeroYRef, zeroURef, zeroVRef
	}

	var yResidual [64]int32
	for i := 0; i < 64; i++ {
		yResidual[i] = int32(ySrc[i]) - int32(yRefBlock[i])
	}
	yDct := transform.Forward8x8(yResidual, transform.DctDct)
	yQuant := quantizeCoeffs(yDct[:], t.dq)

	var uResidual [16]int32
	for i := 0; i < 16; i++ {
		uResidual[i] = int32(uSrc[i]) - int32(uRefBlock[i])
	}
	uDct := transform.Forward4x4(uResidual, transform.DctDct)
	uQuant := quantizeCoeffs(uDct[:], t.dq)

	var vResidual [16]int32
	for i := 0; i < 16; i++ {
		vResidual[i] = int32(vSrc[i]) - int32(vRefBlock[i])
	}
	vDct := transform.Forward4x4(vResidual, transform.DctDct)
	vQuant := quantizeCoeffs(vDct[:], t.dq)

	isSkip := allZero(yQuant) && allZero(uQuant) && allZero(vQuant)

	skipCtx := t.ctx.SkipCtx(bx, by)
	t.enc.EncodeBool(isSkip, t.cdf.Skip[skipCtx])

	isInterCtx := t.ctx.IsInterCtx(bx, by)
	t.enc.EncodeBool(true, t.cdf.IsInter[isInterCtx])

	refCtx := t.ctx.RefCtx(bx, by)
	t.enc.EncodeBool(false, t.cdf.SingleRef[refCtx][0])
	t.enc.EncodeBool(false, t.cdf.SingleRef[refCtx][2])
	t.enc.EncodeBool(false, t.cdf.SingleRef[refCtx][3])

	newmvCtx := t.ctx.NewMVCtx(bx, by)

	if useNewMV {
		t.enc.EncodeBool(false, t.cdf.NewMV[newmvCtx])

		if len(mvCandidates) > 1 {
			drlCtx := motion.DRLContext(mvCandidates, 0)
			t.enc.EncodeBool(false, t.cdf.Drl[drlCtx])
		}

		diffX := finalMVX - predX
		diffY := finalMVY - predY
		motion.EncodeMVResidual(t.enc, t.cdf, diffY, diffX)
	} else {
		t.enc.EncodeBool(true, t.cdf.NewMV[newmvCtx])
		t.enc.EncodeBool(false, t.cdf.ZeroMV)
	}

	var yCul, uCul, vCul uint8
	var yDCNeg, uDCNeg, vDCNeg bool
	var yDCZero, uDCZero, vDCZero bool

	if !isSkip {
		yDCSignCtx := t.ctx.DCSignCtx(bx, by, bl, 0)
		yResult := encodeTransformBlock(t.enc, t.cdf, encodeTransformBlockParams{
			quant: yQuant, scan: DefaultScan8x8[:], size: 8,
			isChroma: false, isInter: true, tDimCtx: 1,
			txbSkipCtx: 0, dcSignCtx: yDCSignCtx, yMode: 0, txType: transform.DctDct,
		})
		yCul, yDCNeg, yDCZero = yResult.culLevel, yResult.dcNegative, yResult.dcIsZero

		uTxbSkipCtx := t.ctx.ChromaTxbSkipCtx(bx, by, bl, 1)
		uDCSignCtx := t.ctx.DCSignCtx(bx, by, bl, 1)
		uResult := encodeTransformBlock(t.enc, t.cdf, encodeTransformBlockParams{
			quant: uQuant, scan: DefaultScan4x4[:], size: 4,
			isChroma: true, isInter: true, tDimCtx: 0,
			txbSkipCtx: uTxbSkipCtx, dcSignCtx: uDCSignCtx, yMode: 0, txType: transform.DctDct,
		})
		uCul, uDCNeg, uDCZero = uResult.culLevel, uResult.dcNegative, uResult.dcIsZero

		vTxbSkipCtx := t.ctx.ChromaTxbSkipCtx(bx, by, bl, 2)
		vDCSignCtx := t.ctx.DCSignCtx(bx, by, bl, 2)
		vResult := encodeTransformBlock(t.enc, t.cdf, encodeTransformBlockParams{
			quant: vQuant, scan: DefaultScan4x4[:], size: 4,
			isChroma: true, isInter: true, tDimCtx: 0,
			txbSkipCtx: vTxbSkipCtx, dcSignCtx: vDCSignCtx, yMode: 0, txType: transform.DctDct,
		})
		vCul, vDCNeg, vDCZero = vResult.culLevel, vResult.dcNegative, vResult.dcIsZero
	} else {
		yDCZero, uDCZero, vDCZero = true, true, true
	}

	yDeq := dequantizeCoeffs(yQuant, t.dq)
	var yDeqArr [64]int32
	copy(yDeqArr[:], yDeq)
	yReconResidual := transform.Inverse8x8(yDeqArr, transform.DctDct)

	for r := uint32(0); r < 8; r++ {
		for c := uint32(0); c < 8; c++ {
			destX, destY := pxX+c, pxY+r
			if destX < w && destY < h {
				pixel := clamp255(int32(yRefBlock[r*8+c]) + yReconResidual[r*8+c])
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
				pixel := clamp255(int32(uRefBlock[r*4+c]) + uReconResidual[r*4+c])
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
				pixel := clamp255(int32(vRefBlock[r*4+c]) + vReconResidual[r*4+c])
				t.recon.V[destY*cw+destX] = pixel
			}
		}
	}

	yBottomRow, yRightCol := edgeFromRecon(t.recon.Y, w, h, pxX, pxY, 8)
	uBottomRow, uRightCol := edgeFromRecon(t.recon.U, cw, ch, chromaPxX, chromaPxY, 4)
	vBottomRow, vRightCol := edgeFromRecon(t.recon.V, cw, ch, chromaPxX, chromaPxY, 4)

	storedMV := motion.BlockMV{MVX: finalMVX, MVY: finalMVY, RefFrame: 0}
	for row := by; row < minU32(by+2, t.miRows); row++ {
		for col := bx; col < minU32(bx+2, t.miCols); col++ {
			t.blockMVs[row*t.miCols+col] = storedMV
		}
	}

	t.ctx.UpdateRecon(bx, by, t.miCols, t.miRows, yBottomRow, yRightCol, uBottomRow, uRightCol, vBottomRow, vRightCol)
	yCfCtx := coefCtxValue(yCul, yDCNeg, yDCZero)
	uCfCtx := coefCtxValue(uCul, uDCNeg, uDCZero)
	vCfCtx := coefCtxValue(vCul, vDCNeg, vDCZero)
	t.ctx.UpdateCoefCtx(bx, by, bl, t.miCols, t.miRows, yCfCtx, uCfCtx, vCfCtx)
	t.ctx.UpdatePartitionCtx(bx, by, bl, t.miCols, t.miRows)
	t.ctx.UpdateSkipCtx(bx, by, bl, t.miCols, t.miRows, isSkip)
	t.ctx.UpdateIntraCtx(bx, by, bl, t.miCols, t.miRows, true)
	t.ctx.UpdateNewMVFlag(bx, by, bl, t.miCols, t.miRows, useNewMV)
}

func (t *InterTileEncoder) interSkipMSE(bx, by, bl uint32) uint64 {
	pxX := bx * 4
	pxY := by * 4
	blockSize := uint32(1) << (7 - bl)
	w := t.pixels.Width
	h := t.pixels.Height

	var sse, count uint64
	for r := uint32(0); r < blockSize; r++ {
		for c := uint32(0); c < blockSize; c++ {
			sy := minU32(pxY+r, h-1)
			sx := minU32(pxX+c, w-1)
			idx := sy*w + sx
			diff := int64(t.pixels.Y[idx]) - int64(t.reference.Y[idx])
			sse += uint64(diff * diff)
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return sse / count
}

func (t *InterTileEncoder) shouldUseInterPartitionNone(bx, by, bl uint32) bool {
	threshold := uint64(t.dq.AC) * uint64(t.dq.AC) / 64
	return t.interSkipMSE(bx, by, bl) <= threshold
}

func (t *InterTileEncoder) encodeInterSkipBlock(bx, by, bl uint32) {
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

	skipCtx := t.ctx.SkipCtx(bx, by)
	t.enc.EncodeBool(true, t.cdf.Skip[skipCtx])

	isInterCtx := t.ctx.IsInterCtx(bx, by)
	t.enc.EncodeBool(true, t.cdf.IsInter[isInterCtx])

	refCtx := t.ctx.RefCtx(bx, by)
	t.enc.EncodeBool(false, t.cdf.SingleRef[refCtx][0])
	t.enc.EncodeBool(false, t.cdf.SingleRef[refCtx][2])
	t.enc.EncodeBool(false, t.cdf.SingleRef[refCtx][3])

	newmvCtx := t.ctx.NewMVCtx(bx, by)
	t.enc.EncodeBool(true, t.cdf.NewMV[newmvCtx])
	t.enc.EncodeBool(false, t.cdf.ZeroMV)

	for r := uint32(0); r < blockSize; r++ {
		for c := uint32(0); c < blockSize; c++ {
			destX, destY := pxX+c, pxY+r
			if destX < w && destY < h {
				idx := destY*w + destX
				t.recon.Y[idx] = t.reference.Y[idx]
			}
		}
	}
	for r := uint32(0); r < chromaSize; r++ {
		for c := uint32(0); c < chromaSize; c++ {
			destX, destY := cpx+c, cpy+r
			if destX < cw && destY < ch {
				idx := destY*cw + destX
				t.recon.U[idx] = t.reference.U[idx]
				t.recon.V[idx] = t.reference.V[idx]
			}
		}
	}

	yBottom, yRight := edgeFromRecon(t.recon.Y, w, h, pxX, pxY, blockSize)
	uBottom, uRight := edgeFromRecon(t.recon.U, cw, ch, cpx, cpy, chromaSize)
	vBottom, vRight := edgeFromRecon(t.recon.V, cw, ch, cpx, cpy, chromaSize)

	t.ctx.UpdateRecon(bx, by, t.miCols, t.miRows, yBottom, yRight, uBottom, uRight, vBottom, vRight)
	skipCf := coefCtxValue(0, false, true)
	t.ctx.UpdateCoefCtx(bx, by, bl, t.miCols, t.miRows, skipCf, skipCf, skipCf)
	t.ctx.UpdatePartitionCtx(bx, by, bl, t.miCols, t.miRows)
	t.ctx.UpdateSkipCtx(bx, by, bl, t.miCols, t.miRows, true)
	t.ctx.UpdateIntraCtx(bx, by, bl, t.miCols, t.miRows, true)
	t.ctx.UpdateNewMVFlag(bx, by, bl, t.miCols, t.miRows, false)

	storedMV := motion.BlockMV{RefFrame: 0}
	miPerSide := uint32(2) << (4 - bl)
	for row := by; row < minU32(by+miPerSide, t.miRows); row++ {
		for col := bx; col < minU32(bx+miPerSide, t.miCols); col++ {
			t.blockMVs[row*t.miCols+col] = storedMV
		}
	}
}

func (t *InterTileEncoder) encodeInterPartition(bl, bx, by uint32) {
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
			if bl >= 2 && t.shouldUseInterPartitionNone(bx, by, bl) {
				t.enc.EncodeSymbol(0, t.cdf.Partition[bl][partCtx], partitionNSyms[bl])
				t.encodeInterSkipBlock(bx, by, bl)
			} else {
				t.enc.EncodeSymbol(3, t.cdf.Partition[bl][partCtx], partitionNSyms[bl])
				t.encodeInterPartition(bl+1, bx, by)
				t.encodeInterPartition(bl+1, bx+hsz, by)
				t.encodeInterPartition(bl+1, bx, by+hsz)
				t.encodeInterPartition(bl+1, bx+hsz, by+hsz)
			}
		} else {
			t.enc.EncodeSymbol(0, t.cdf.Partition[bl][partCtx], partitionNSyms[bl])
			t.encodeInterBlock(bx, by, bl)
		}
	case haveHSplit:
		partCtx := t.ctx.PartitionCtx(bx, by, bl)
		prob := gatherTopPartitionProb(t.cdf.Partition[bl][partCtx], bl)
		t.enc.EncodeBoolProb(true, prob)
		t.encodeInterPartition(bl+1, bx, by)
		t.encodeInterPartition(bl+1, bx+hsz, by)
	case haveVSplit:
		partCtx := t.ctx.PartitionCtx(bx, by, bl)
		prob := gatherLeftPartitionProb(t.cdf.Partition[bl][partCtx], bl)
		t.enc.EncodeBoolProb(true, prob)
		t.encodeInterPartition(bl+1, bx, by)
		t.encodeInterPartition(bl+1, bx, by+hsz)
	default:
		t.encodeInterPartition(bl+1, bx, by)
	}
}

// EncodeInterTileWithRecon entropy-codes one inter frame's worth of
// superblocks against reference, returning the tile's compressed bytes
// and the reconstructed frame for use as the next reference.
func EncodeInterTileWithRecon(pixels, reference *y4m.FramePixels, dq quantize.Values, baseQIdx uint8) ([]byte, *y4m.FramePixels) {
	t := NewInterTileEncoder(pixels, reference, dq, baseQIdx)

	sbCols := ceilDiv(t.miCols, 16)
	sbRows := ceilDiv(t.miRows, 16)

	for sbRow := uint32(0); sbRow < sbRows; sbRow++ {
		t.ctx.ResetLeftForSBRow()
		for sbCol := uint32(0); sbCol < sbCols; sbCol++ {
			bx := sbCol * 16
			by := sbRow * 16
			t.encodeInterPartition(1, bx, by)
		}
	}

	return t.enc.Finalize(), t.recon
}
