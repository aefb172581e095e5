package transform

import "testing"

func assertRoundtrip4x4(t *testing.T, original [16]int32, tol int32, tx TxType) {
	t.Helper()
	coeffs := Forward4x4(original, tx)
	recovered := Inverse4x4(coeffs, tx)
	for i := range original {
		d := recovered[i] - original[i]
		if d < 0 {
			d = -d
		}
		if d > tol {
			t.Errorf("pixel %d differs: original=%d recovered=%d", i, original[i], recovered[i])
		}
	}
}

func assertRoundtrip8x8(t *testing.T, original [64]int32, tol int32, tx TxType) {
	t.Helper()
	coeffs := Forward8x8(original, tx)
	recovered := Inverse8x8(coeffs, tx)
	for i := range original {
		d := recovered[i] - original[i]
		if d < 0 {
			d = -d
		}
		if d > tol {
			t.Errorf("pixel %d differs: original=%d recovered=%d", i, original[i], recovered[i])
		}
	}
}

func TestAllZero4x4(t *testing.T) {
	var input [16]int32
	coeffs := Forward4x4(input, DctDct)
	for i, c := range coeffs {
		if c != 0 {
			t.Fatalf("coeff %d = %d, want 0", i, c)
		}
	}
}

func TestAllZero8x8(t *testing.T) {
	var input [64]int32
	coeffs := Forward8x8(input, DctDct)
	for i, c := range coeffs {
		if c != 0 {
			t.Fatalf("coeff %d = %d, want 0", i, c)
		}
	}
}

func TestDCOnly4x4(t *testing.T) {
	var input [16]int32
	for i := range input {
		input[i] = 100
	}
	coeffs := Forward4x4(input, DctDct)
	if coeffs[0] == 0 {
		t.Fatal("expected nonzero DC")
	}
	for i := 1; i < 16; i++ {
		if coeffs[i] != 0 {
			t.Errorf("AC coefficient at %d should be zero, got %d", i, coeffs[i])
		}
	}
}

func TestRoundtrip4x4Constant(t *testing.T) {
	var original [16]int32
	for i := range original {
		original[i] = 42
	}
	assertRoundtrip4x4(t, original, 1, DctDct)
}

func TestRoundtrip8x8Constant(t *testing.T) {
	var original [64]int32
	for i := range original {
		original[i] = 42
	}
	assertRoundtrip8x8(t, original, 1, DctDct)
}

func TestRoundtrip4x4Gradient(t *testing.T) {
	var original [16]int32
	for i := range original {
		original[i] = int32(i) * 10
	}
	assertRoundtrip4x4(t, original, 1, DctDct)
}

func TestRoundtrip8x8Gradient(t *testing.T) {
	var original [64]int32
	for i := range original {
		original[i] = int32(i) * 3
	}
	assertRoundtrip8x8(t, original, 1, DctDct)
}

func TestRoundtrip4x4TypicalResidual(t *testing.T) {
	original := [16]int32{3, -1, 2, 0, -2, 1, -3, 4, 1, 0, -1, 2, -4, 3, 0, -2}
	assertRoundtrip4x4(t, original, 1, DctDct)
}

func TestRoundtrip8x8TypicalResidual(t *testing.T) {
	var original [64]int32
	for i := range original {
		original[i] = int32((i*13+5)%51) - 25
	}
	assertRoundtrip8x8(t, original, 1, DctDct)
}

func TestADST4Roundtrip(t *testing.T) {
	var zero [16]int32
	fwd := Forward4x4(zero, AdstAdst)
	for i, c := range fwd {
		if c != 0 {
			t.Fatalf("coeff %d = %d, want 0", i, c)
		}
	}

	signal := [16]int32{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160}
	assertRoundtrip4x4(t, signal, 1, AdstAdst)
}

func TestADST8Roundtrip(t *testing.T) {
	var signal [64]int32
	for i := range signal {
		signal[i] = int32(i)*3 - 90
	}
	assertRoundtrip8x8(t, signal, 2, AdstAdst)
}

func TestIdentity4Roundtrip(t *testing.T) {
	signal := [16]int32{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160}
	assertRoundtrip4x4(t, signal, 1, Idtx)
}

func TestIdentity8Roundtrip(t *testing.T) {
	var signal [64]int32
	for i := range signal {
		signal[i] = int32(i)*2 - 60
	}
	assertRoundtrip8x8(t, signal, 2, Idtx)
}

func TestMixedADSTDCTRoundtrip(t *testing.T) {
	var signal [64]int32
	for i := range signal {
		signal[i] = int32(i)*3 - 90
	}
	for _, tx := range []TxType{AdstDct, DctAdst} {
		assertRoundtrip8x8(t, signal, 2, tx)
	}
}

func TestAllZero16x16(t *testing.T) {
	var input [256]int32
	coeffs := Forward16x16(input)
	for i, c := range coeffs {
		if c != 0 {
			t.Fatalf("coeff %d = %d, want 0", i, c)
		}
	}
}

func TestDCOnly16x16(t *testing.T) {
	var input [256]int32
	for i := range input {
		input[i] = 100
	}
	coeffs := Forward16x16(input)
	if coeffs[0] == 0 {
		t.Fatal("expected nonzero DC")
	}
	for i := 1; i < 256; i++ {
		if coeffs[i] != 0 {
			t.Errorf("AC coefficient at %d should be zero, got %d", i, coeffs[i])
		}
	}
}

func assertRoundtrip16x16(t *testing.T, original [256]int32) {
	t.Helper()
	coeffs := Forward16x16(original)
	recovered := Inverse16x16(coeffs)
	for i := range original {
		d := recovered[i] - original[i]
		if d < 0 {
			d = -d
		}
		if d > 2 {
			t.Errorf("pixel %d differs: original=%d recovered=%d", i, original[i], recovered[i])
		}
	}
}

func TestRoundtrip16x16Constant(t *testing.T) {
	var original [256]int32
	for i := range original {
		original[i] = 42
	}
	assertRoundtrip16x16(t, original)
}

func TestRoundtrip16x16Gradient(t *testing.T) {
	var original [256]int32
	for i := range original {
		original[i] = int32(i)
	}
	assertRoundtrip16x16(t, original)
}

func TestRoundtrip16x16Checkerboard(t *testing.T) {
	var original [256]int32
	for row := 0; row < 16; row++ {
		for col := 0; col < 16; col++ {
			if (row+col)%2 == 0 {
				original[row*16+col] = 60
			} else {
				original[row*16+col] = -60
			}
		}
	}
	assertRoundtrip16x16(t, original)
}
