package quantize

import "testing"

func TestLookupMonotonic(t *testing.T) {
	prevDC, prevAC := int32(0), int32(0)
	for q := 0; q < 256; q++ {
		v := Lookup(uint8(q), 8)
		if v.DC < prevDC || v.AC < prevAC {
			t.Fatalf("step sizes not monotonic at q=%d: dc=%d ac=%d prevDC=%d prevAC=%d", q, v.DC, v.AC, prevDC, prevAC)
		}
		if v.AC < v.DC {
			t.Errorf("q=%d: ac step %d smaller than dc step %d", q, v.AC, v.DC)
		}
		prevDC, prevAC = v.DC, v.AC
	}
}

func TestQuantizeZero(t *testing.T) {
	dq := Lookup(64, 8)
	if tok := Quantize(0, 0, dq); tok != 0 {
		t.Errorf("Quantize(0) = %d, want 0", tok)
	}
	if tok := Quantize(0, 1, dq); tok != 0 {
		t.Errorf("Quantize(0) = %d, want 0", tok)
	}
}

func TestQuantizeSignPreserved(t *testing.T) {
	dq := Lookup(64, 8)
	pos := Quantize(500, 1, dq)
	neg := Quantize(-500, 1, dq)
	if pos <= 0 {
		t.Fatalf("positive coefficient quantized to non-positive token %d", pos)
	}
	if neg != -pos {
		t.Errorf("Quantize(-500) = %d, want %d", neg, -pos)
	}
}

func TestQuantizeDequantizeRoundtripApprox(t *testing.T) {
	dq := Lookup(96, 8)
	for _, c := range []int32{0, 1, -1, 50, -50, 1000, -1000, 32000, -32000} {
		for _, index := range []int{0, 1} {
			tok := Quantize(c, index, dq)
			back := Dequantize(tok, index, dq)
			step := dq.AC
			if index == 0 {
				step = dq.DC
			}
			d := back - c
			if d < 0 {
				d = -d
			}
			if d > step {
				t.Errorf("coeff=%d index=%d: dequantized %d too far from original (step=%d)", c, index, back, step)
			}
		}
	}
}

func TestDequantizeScalesByStep(t *testing.T) {
	dq := Values{DC: 7, AC: 11}
	if got := Dequantize(3, 0, dq); got != 21 {
		t.Errorf("Dequantize(3, dc) = %d, want 21", got)
	}
	if got := Dequantize(3, 1, dq); got != 33 {
		t.Errorf("Dequantize(3, ac) = %d, want 33", got)
	}
}

func TestLookupBoundaries(t *testing.T) {
	lo := Lookup(0, 8)
	hi := Lookup(255, 8)
	if lo.DC <= 0 || lo.AC <= 0 {
		t.Errorf("q=0 step sizes must stay positive, got %+v", lo)
	}
	if hi.DC <= lo.DC || hi.AC <= lo.AC {
		t.Errorf("q=255 steps should exceed q=0 steps, got lo=%+v hi=%+v", lo, hi)
	}
}
