// Package quantize implements scalar coefficient quantization and the
// base_q_idx-to-step-size lookup used to derive the DC/AC quantizer pair
// a frame codes at.
package quantize

// Values holds the DC and AC dequantization step sizes a frame was
// quantized with, ground in tile.rs's quantize/dequantize pair.
type Values struct {
	DC int32
	AC int32
}

// dcStep and acStep are monotonically increasing step-size tables indexed
// by base_q_idx (0..255). The normative AV1 Dc_Qlookup/Ac_Qlookup tables
// (wav1c's dequant.rs) are not present in the retrieval pack (see
// DESIGN.md); these tables approximate the real tables' growth shape
// (roughly quadratic at high q_idx, near-linear at low q_idx) without
// claiming to reproduce the bitstream-normative per-index values.
var dcStep, acStep [256]int32

func init() {
	for q := 0; q < 256; q++ {
		base := int32(4 + q/4 + (q*q)/1024)
		dcStep[q] = base
		acStep[q] = base + int32(1+q/16)
	}
}

// Lookup returns the DC/AC quantizer step pair for baseQIdx. bitDepth is
// accepted for interface parity with the normative lookup (which is
// bit-depth dependent); this encoder only targets 8-bit output so it is
// otherwise unused.
func Lookup(baseQIdx uint8, bitDepth int) Values {
	return Values{DC: dcStep[baseQIdx], AC: acStep[baseQIdx]}
}

// Quantize maps a transform coefficient to a quantized token using the
// midpoint-biased rounding rule: tok = (|c| + dq/2) / dq, sign preserved.
// index 0 (the DC position) uses dq.DC, every other position uses dq.AC.
func Quantize(coeff int32, index int, dq Values) int32 {
	step := dq.AC
	if index == 0 {
		step = dq.DC
	}
	sign := int32(1)
	v := coeff
	if v < 0 {
		sign = -1
		v = -v
	}
	tok := (v + step/2) / step
	return sign * tok
}

// Dequantize is the exact inverse of the quantizer's scaling (not of its
// rounding, which is lossy).
func Dequantize(tok int32, index int, dq Values) int32 {
	step := dq.AC
	if index == 0 {
		step = dq.DC
	}
	return tok * step
}
