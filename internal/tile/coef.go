package tile

import (
	"github.com/deepteams/av1enc/internal/cdf"
	"github.com/deepteams/av1enc/internal/msac"
	"github.com/deepteams/av1enc/internal/quantize"
	"github.com/deepteams/av1enc/internal/transform"
)

func quantizeCoeffs(coeffs []int32, dq quantize.Values) []int32 {
	out := make([]int32, len(coeffs))
	for i, c := range coeffs {
		out[i] = quantize.Quantize(c, i, dq)
	}
	return out
}

func dequantizeCoeffs(quant []int32, dq quantize.Values) []int32 {
	out := make([]int32, len(quant))
	for i, q := range quant {
		out[i] = quantize.Dequantize(q, i, dq)
	}
	return out
}

// txtypeToIntra2Symbol inverts txtpIntra2Map: given a selected tx type,
// returns the 4-ary symbol encode_transform_block signals for it.
func txtypeToIntra2Symbol(t transform.TxType) uint32 {
	for i, m := range txtpIntra2Map {
		if m == t {
			return uint32(i)
		}
	}
	return 1 // DctDct
}

// eobToBin buckets an end-of-block position into its symbol band.
func eobToBin(eob int) uint32 {
	switch {
	case eob == 0:
		return 0
	case eob == 1:
		return 1
	case eob <= 3:
		return 2
	case eob <= 7:
		return 3
	case eob <= 15:
		return 4
	case eob <= 31:
		return 5
	case eob <= 63:
		return 6
	default:
		return 7
	}
}

// getLoCtx derives a coefficient's base_tok context band and its
// extended hi-magnitude sum from the already-placed neighbor level
// bytes at (x,y) in a levels buffer of the given stride.
func getLoCtx(levels []uint8, stride, x, y int) (int, int32) {
	i := y*stride + x
	mag := int32(levels[i+1]) + int32(levels[i+stride])
	hiMag := mag + int32(levels[i+stride+1])
	fullMag := hiMag + int32(levels[i+2]) + int32(levels[i+2*stride])

	yc, xc := y, x
	if yc > 4 {
		yc = 4
	}
	if xc > 4 {
		xc = 4
	}
	offset := int32(loCtxOffsets2D[yc][xc])

	var magCtx int32
	if fullMag > 512 {
		magCtx = 4
	} else {
		magCtx = (fullMag + 64) >> 7
	}
	return int(offset + magCtx), hiMag
}

// levelTok packs a coefficient magnitude into the compact level byte
// used by getLoCtx's neighbor sums.
func levelTok(magnitude int32) uint8 {
	switch {
	case magnitude == 0:
		return 0
	case magnitude == 1:
		return 0x41
	case magnitude == 2:
		return 0x82
	default:
		m := magnitude
		if m > 15 {
			m = 15
		}
		return uint8(m) | 3<<6
	}
}

// coefCtxValue packs a block's cumulative level and DC sign into the
// byte the above/left coefficient-context stripes store.
func coefCtxValue(culLevel uint8, dcNegative, dcIsZero bool) uint8 {
	signLevel := uint8(0x80)
	if dcIsZero {
		signLevel = 0x40
	} else if dcNegative {
		signLevel = 0x00
	}
	return culLevel | signLevel
}

// encodeHiTok extends a base token that signalled a magnitude of 3 or
// more (eob base symbol 2, base_tok symbol 3) with up to 4 br_tok symbols
// in 0..3, each adding its value to the running base of 3; a symbol below
// 3 ends the run.
func encodeHiTok(enc *msac.Encoder, c []uint16, tok int32) {
	base := int32(3)
	for i := 0; i < 4; i++ {
		sym := tok - base
		if sym > 3 {
			sym = 3
		}
		enc.EncodeSymbol(uint32(sym), c, 3)
		if sym < 3 {
			return
		}
		base += 3
	}
}

// transformResult is what encodeTransformBlock hands back for coefficient
// context bookkeeping: the block's clipped cumulative level, whether its
// DC coefficient was negative, and whether it was zero.
type transformResult struct {
	culLevel   uint8
	dcNegative bool
	dcIsZero   bool
}

// encodeTransformBlockParams bundles encodeTransformBlock's many small
// per-call parameters, mirroring the Rust function's argument list.
type encodeTransformBlockParams struct {
	quant      []int32
	scan       []uint16
	size       int // side length: 4 or 8
	isChroma   bool
	isInter    bool
	tDimCtx    int
	txbSkipCtx int
	dcSignCtx  int
	yMode      uint8
	txType     transform.TxType
}

// encodeTransformBlock entropy-codes one transform block's coefficients:
// txb_skip, tx-type (luma only), eob position, and per-position
// base/hi/sign/golomb tokens in reverse scan order. Mirrors
// encode_transform_block.
func encodeTransformBlock(enc *msac.Encoder, c *cdf.Context, p encodeTransformBlockParams) transformResult {
	n := p.size * p.size

	eob := -1
	for i := n - 1; i >= 0; i-- {
		if p.quant[p.scan[i]] != 0 {
			eob = i
			break
		}
	}

	if eob < 0 {
		enc.EncodeBool(true, c.TxbSkip[p.txbSkipCtx])
		return transformResult{culLevel: 0, dcNegative: false, dcIsZero: true}
	}
	enc.EncodeBool(false, c.TxbSkip[p.txbSkipCtx])

	chromaIdx := 0
	if p.isChroma {
		chromaIdx = 1
	}

	if !p.isChroma {
		if p.isInter {
			enc.EncodeBool(true, c.TxtpInter)
		} else {
			sym := txtypeToIntra2Symbol(p.txType)
			yModeIdx := p.yMode
			if int(yModeIdx) >= len(c.TxtpIntra2) {
				yModeIdx = 0
			}
			enc.EncodeSymbol(sym, c.TxtpIntra2[yModeIdx], 4)
		}
	}

	eobBin := eobToBin(eob + 1)
	switch p.size {
	case 4:
		enc.EncodeSymbol(eobBin, c.EobBin16[chromaIdx], 4)
	case 8:
		enc.EncodeSymbol(eobBin, c.EobBin64[chromaIdx], 5)
	}

	eobPos := eob + 1
	if eobBin >= 2 {
		extraBits := int(eobBin) - 2
		hiBit := (eobPos >> extraBits) & 1
		enc.EncodeBool(hiBit != 0, c.EobHiBit)
		for b := extraBits - 1; b >= 0; b-- {
			bit := (eobPos >> b) & 1
			enc.EncodeBoolEqui(bit != 0)
		}
	}

	stride := p.size + 2
	levels := make([]uint8, stride*(p.size+3))

	scanPos := scanXY(p.scan[eob], p.size)
	dcTok := p.quant[p.scan[eob]]
	if dcTok < 0 {
		dcTok = -dcTok
	}
	eobCtx := 0
	if eob >= 10 {
		eobCtx = 1
	}
	if eob >= 20 {
		eobCtx = 2
	}
	sym := dcTok - 1
	if sym > 2 {
		sym = 2
	}
	enc.EncodeSymbol(uint32(sym), c.EobBaseTok[eobCtx], 3)
	if sym >= 2 {
		encodeHiTok(enc, c.BrTok[0], dcTok)
	}
	levels[(scanPos.y+1)*stride+(scanPos.x+1)] = levelTok(dcTok)

	for i := eob - 1; i >= 0; i-- {
		pos := scanXY(p.scan[i], p.size)
		mag := p.quant[p.scan[i]]
		if mag < 0 {
			mag = -mag
		}
		ctx, _ := getLoCtx(levels, stride, pos.x+1, pos.y+1)
		if ctx >= len(c.BaseTok) {
			ctx = len(c.BaseTok) - 1
		}
		sym := mag
		if sym > 3 {
			sym = 3
		}
		enc.EncodeSymbol(uint32(sym), c.BaseTok[ctx], 4)
		if sym >= 3 {
			brCtx := ctx
			if brCtx >= len(c.BrTok) {
				brCtx = len(c.BrTok) - 1
			}
			encodeHiTok(enc, c.BrTok[brCtx], mag)
		}
		levels[(pos.y+1)*stride+(pos.x+1)] = levelTok(mag)
	}

	dcCoeff := p.quant[p.scan[0]]
	dcIsZero := dcCoeff == 0
	dcNegative := dcCoeff < 0
	if !dcIsZero {
		enc.EncodeBool(dcNegative, c.DCSign[chromaIdx])
		dcMag := dcCoeff
		if dcMag < 0 {
			dcMag = -dcMag
		}
		if dcMag >= 15 {
			enc.EncodeGolomb(uint32(dcMag - 15))
		}
	}

	for i := 1; i <= eob; i++ {
		coeff := p.quant[p.scan[i]]
		if coeff == 0 {
			continue
		}
		enc.EncodeBoolEqui(coeff < 0)
		mag := coeff
		if mag < 0 {
			mag = -mag
		}
		if mag >= 15 {
			enc.EncodeGolomb(uint32(mag - 15))
		}
	}

	culLevel := int32(0)
	for i := 0; i <= eob; i++ {
		v := p.quant[p.scan[i]]
		if v < 0 {
			v = -v
		}
		culLevel += v
	}
	if culLevel > 63 {
		culLevel = 63
	}

	return transformResult{culLevel: uint8(culLevel), dcNegative: dcNegative, dcIsZero: dcIsZero}
}

type xy struct{ x, y int }

func scanXY(pos uint16, size int) xy {
	return xy{x: int(pos) % size, y: int(pos) / size}
}
