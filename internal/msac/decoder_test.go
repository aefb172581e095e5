package msac

// refDecoder is a reference range decoder, ported from the dav1d-style
// decoder used in the original implementation's own msac tests. It exists
// solely to prove Encoder's output round-trips; this repo never needs to
// decode AV1 bitstreams it didn't just produce.
type refDecoder struct {
	dif            uint64
	rng            uint32
	cnt            int32
	buf            []byte
	pos            int
	allowUpdateCDF bool
}

func newRefDecoder(data []byte, allowUpdateCDF bool) *refDecoder {
	d := &refDecoder{
		rng:            0x8000,
		cnt:            -15,
		buf:            data,
		allowUpdateCDF: allowUpdateCDF,
	}
	d.refill()
	return d
}

func (d *refDecoder) refill() {
	c := 48 - d.cnt - 24
	dif := d.dif
	for c >= 0 {
		var b byte
		if d.pos < len(d.buf) {
			b = d.buf[d.pos] ^ 0xFF
			d.pos++
		} else {
			b = 0xFF
		}
		dif |= uint64(b) << uint(c)
		c -= 8
	}
	d.dif = dif
	d.cnt = 48 - c - 24
}

func (d *refDecoder) norm(dif uint64, rng uint32) {
	dd := int32(leadingZeros32(rng)) - 16
	cnt := d.cnt
	d.dif = dif << uint(dd)
	d.rng = rng << uint(dd)
	d.cnt = cnt - dd
	if cnt < dd {
		d.refill()
	}
}

func (d *refDecoder) decodeSymbolAdapt(cdf []uint16, nSymbols uint32) uint32 {
	c := uint32(d.dif >> 32)
	r := d.rng >> 8
	var u, v uint32
	v = d.rng
	val := ^uint32(0)

	for {
		val++
		u = v
		v = r * (uint32(cdf[val]) >> ecProbShift)
		v >>= 7 - ecProbShift
		v += ecMinProb * (nSymbols - val)
		if c >= v {
			break
		}
	}

	d.norm(d.dif-(uint64(v)<<32), u-v)

	if d.allowUpdateCDF {
		UpdateCDF(cdf, val, nSymbols)
	}
	return val
}

func (d *refDecoder) decodeBoolAdapt(cdf []uint16) bool {
	bit := d.decodeBool(uint32(cdf[0]))
	if d.allowUpdateCDF {
		count := cdf[1]
		rate := 4 + (count >> 4)
		if bit {
			cdf[0] += (32768 - cdf[0]) >> rate
		} else {
			cdf[0] -= cdf[0] >> rate
		}
		if count < 32 {
			cdf[1] = count + 1
		}
	}
	return bit
}

func (d *refDecoder) decodeBool(f uint32) bool {
	r := d.rng
	dif := d.dif
	v := (((r >> 8) * (f >> ecProbShift)) >> (7 - ecProbShift)) + ecMinProb
	vw := uint64(v) << 32
	ret := dif >= vw
	newDif := dif
	if ret {
		newDif = dif - vw
		v = v + (r - 2*v)
	}
	d.norm(newDif, v)
	return !ret
}

func (d *refDecoder) decodeBoolEqui() bool {
	r := d.rng
	dif := d.dif
	v := ((r >> 8) << 7) + ecMinProb
	vw := uint64(v) << 32
	ret := dif >= vw
	newDif := dif
	if ret {
		newDif = dif - vw
		v = v + (r - 2*v)
	}
	d.norm(newDif, v)
	return !ret
}

func (d *refDecoder) decodeGolomb() uint32 {
	var length uint32
	for length < 32 && !d.decodeBoolEqui() {
		length++
	}
	val := uint32(1) << length
	for i := int(length) - 1; i >= 0; i-- {
		if d.decodeBoolEqui() {
			val += 1 << uint(i)
		}
	}
	return val - 1
}
