// Package msac implements the AV1 multi-symbol adaptive range coder: the
// entropy coder every tile's symbols, booleans and Golomb-coded magnitudes
// pass through before they become bytes.
package msac

const (
	ecProbShift = 6
	ecMinProb   = 4
)

// Encoder is the AV1 range encoder. It narrows a [0, rng) interval per
// symbol and defers carry propagation to Finalize, exactly as the
// reference implementation does: low/rng/cnt track the open interval,
// precarry accumulates pre-carry output digits that Finalize resolves
// into final bytes.
type Encoder struct {
	low      uint32
	rng      uint16
	cnt      int16
	precarry []uint16

	// AllowUpdateCDF enables CDF adaptation; when it is false, EncodeSymbol
	// and EncodeBool leave their tables unchanged.
	AllowUpdateCDF bool
}

// NewEncoder returns an Encoder ready to encode the first symbol.
func NewEncoder() *Encoder {
	return &Encoder{
		rng:            0x8000,
		cnt:            -9,
		AllowUpdateCDF: true,
	}
}

func (e *Encoder) computeBounds(fl, fh, nms uint16) (uint32, uint16) {
	r := uint32(e.rng)
	u := (((r >> 8) * (uint32(fl) >> ecProbShift)) >> (7 - ecProbShift)) + ecMinProb*uint32(nms)
	if fl >= 32768 {
		u = r
	}
	v := (((r >> 8) * (uint32(fh) >> ecProbShift)) >> (7 - ecProbShift)) + ecMinProb*(uint32(nms)-1)
	return r - u, uint16(u - v)
}

func (e *Encoder) store(fl, fh, nms uint16) {
	l, r := e.computeBounds(fl, fh, nms)
	low := l + e.low
	c := e.cnt
	d := int16(leadingZeros16(r))
	s := c + d

	if s >= 0 {
		c += 16
		m := (uint32(1) << uint(c)) - 1
		if s >= 8 {
			e.precarry = append(e.precarry, uint16(low>>uint(c)))
			low &= m
			c -= 8
			m >>= 8
		}
		e.precarry = append(e.precarry, uint16(low>>uint(c)))
		s = c + d - 24
		low &= m
	}
	e.low = low << uint(d)
	e.rng = r << uint(d)
	e.cnt = s
}

// EncodeSymbol encodes symbol (0..nSymbols) under a CDF over nSymbols+1
// symbols, then adapts cdf in place unless AllowUpdateCDF is false. cdf
// holds nSymbols cumulative values followed by the adaptation counter at
// cdf[nSymbols]: cdf[i] is the probability that the true symbol is > i,
// scaled to 32768, and the last symbol's upper bound is implicitly 0.
func (e *Encoder) EncodeSymbol(symbol uint32, cdf []uint16, nSymbols uint32) {
	ns := nSymbols
	s := symbol
	nms := uint16(ns + 1 - s)
	var fl uint16 = 32768
	if s > 0 {
		fl = cdf[s-1]
	}
	var fh uint16
	if s < ns {
		fh = cdf[s]
	}
	e.store(fl, fh, nms)

	if e.AllowUpdateCDF {
		UpdateCDF(cdf, symbol, nSymbols)
	}
}

// EncodeBool encodes a single adaptive boolean. cdf[0] is the probability
// of true scaled to 32768; cdf[1] is the adaptation counter.
func (e *Encoder) EncodeBool(val bool, cdf []uint16) {
	f := cdf[0]
	nms := uint16(2)
	var fl uint16 = 32768
	var fh uint16 = f
	if val {
		nms = 1
		fl = f
		fh = 0
	}
	e.store(fl, fh, nms)

	if e.AllowUpdateCDF {
		count := cdf[1]
		rate := 4 + (count >> 4)
		if val {
			cdf[0] += (32768 - cdf[0]) >> rate
		} else {
			cdf[0] -= cdf[0] >> rate
		}
		if count < 32 {
			cdf[1] = count + 1
		}
	}
}

// EncodeBoolProb encodes a boolean at a fixed, non-adapting probability.
func (e *Encoder) EncodeBoolProb(val bool, prob uint16) {
	nms := uint16(2)
	var fl uint16 = 32768
	var fh uint16 = prob
	if val {
		nms = 1
		fl = prob
		fh = 0
	}
	e.store(fl, fh, nms)
}

// EncodeBoolEqui encodes a boolean at a fixed 50/50 probability, used for
// Golomb raw bits and other bypass-coded values.
func (e *Encoder) EncodeBoolEqui(val bool) {
	r := uint32(e.rng)
	v := uint16(((r >> 8) << 7) + ecMinProb)

	var l uint32
	var newRng uint16
	if val {
		l = r - uint32(v)
		newRng = v
	} else {
		l = 0
		newRng = uint16(r) - v
	}

	low := l + e.low
	c := e.cnt
	d := int16(leadingZeros16(newRng))
	s := c + d

	if s >= 0 {
		c += 16
		m := (uint32(1) << uint(c)) - 1
		if s >= 8 {
			e.precarry = append(e.precarry, uint16(low>>uint(c)))
			low &= m
			c -= 8
			m >>= 8
		}
		e.precarry = append(e.precarry, uint16(low>>uint(c)))
		s = c + d - 24
		low &= m
	}
	e.low = low << uint(d)
	e.rng = newRng << uint(d)
	e.cnt = s
}

// EncodeGolomb encodes val using an exp-Golomb code built from bypass
// bools: unary length prefix, then the raw bits of val+1.
func (e *Encoder) EncodeGolomb(val uint32) {
	x := val + 1
	numBits := 31 - leadingZeros32(x)

	for i := uint32(0); i < numBits; i++ {
		e.EncodeBoolEqui(false)
	}
	e.EncodeBoolEqui(true)

	for i := int(numBits) - 1; i >= 0; i-- {
		e.EncodeBoolEqui((x>>uint(i))&1 == 1)
	}
}

// UpdateCDF applies the AV1 CDF adaptation rule: every entry is nudged
// toward the observed symbol by 1/2^rate of its remaining distance, and
// the trailing counter saturates at 32. It is shared between the encoder
// and the reference decoder used in tests so both sides adapt identically.
func UpdateCDF(cdf []uint16, symbol uint32, nSymbols uint32) {
	count := cdf[nSymbols]
	rate := 4 + (count >> 4)
	if nSymbols > 2 {
		rate++
	}
	for i := uint32(0); i < nSymbols; i++ {
		if i < symbol {
			cdf[i] += (32768 - cdf[i]) >> rate
		} else {
			cdf[i] -= cdf[i] >> rate
		}
	}
	if count < 32 {
		cdf[nSymbols] = count + 1
	}
}

// Finalize rounds the final interval up to a byte-aligned value, drains
// any remaining precarry digits, propagates carries right-to-left, and
// returns the encoded byte stream. The Encoder must not be used again.
func (e *Encoder) Finalize() []byte {
	l := e.low
	c := e.cnt
	s := int16(10)
	const m uint32 = 0x3FFF
	eVal := ((l + m) &^ m) | (m + 1)

	s += c

	if s > 0 {
		n := (uint32(1) << uint(c+16)) - 1
		for {
			e.precarry = append(e.precarry, uint16(eVal>>uint(c+16)))
			eVal &= n
			s -= 8
			c -= 8
			n >>= 8
			if s <= 0 {
				break
			}
		}
	}

	var carry uint32
	offs := len(e.precarry)
	out := make([]byte, offs)
	for offs > 0 {
		offs--
		carry += uint32(e.precarry[offs])
		out[offs] = byte(carry)
		carry >>= 8
	}
	return out
}

func leadingZeros16(v uint16) uint32 {
	if v == 0 {
		return 16
	}
	n := uint32(0)
	for v&0x8000 == 0 {
		v <<= 1
		n++
	}
	return n
}

func leadingZeros32(v uint32) uint32 {
	if v == 0 {
		return 32
	}
	n := uint32(0)
	for v&0x80000000 == 0 {
		v <<= 1
		n++
	}
	return n
}
