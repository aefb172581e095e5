package predict

import "testing"

func TestPredictDCNoNeighbors(t *testing.T) {
	out := PredictDC(nil, nil, false, false, 4, 4)
	for i, v := range out {
		if v != 128 {
			t.Fatalf("pixel %d = %d, want 128", i, v)
		}
	}
}

func TestPredictDCAboveOnly(t *testing.T) {
	above := []uint8{10, 20, 30, 40}
	out := PredictDC(above, nil, true, false, 4, 4)
	for i, v := range out {
		if v != 25 {
			t.Fatalf("pixel %d = %d, want 25", i, v)
		}
	}
}

func TestPredictDCBothNeighbors(t *testing.T) {
	above := []uint8{10, 10, 10, 10}
	left := []uint8{30, 30, 30, 30}
	out := PredictDC(above, left, true, true, 4, 4)
	for i, v := range out {
		if v != 20 {
			t.Fatalf("pixel %d = %d, want 20", i, v)
		}
	}
}

func TestPredictVReplicatesAboveRow(t *testing.T) {
	above := []uint8{1, 2, 3, 4}
	out := PredictV(above, 4, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			if out[r*4+c] != above[c] {
				t.Fatalf("row %d col %d = %d, want %d", r, c, out[r*4+c], above[c])
			}
		}
	}
}

func TestPredictHReplicatesLeftCol(t *testing.T) {
	left := []uint8{5, 6, 7}
	out := PredictH(left, 4, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			if out[r*4+c] != left[r] {
				t.Fatalf("row %d col %d = %d, want %d", r, c, out[r*4+c], left[r])
			}
		}
	}
}

func TestPredictPaethUniformNeighbors(t *testing.T) {
	above := []uint8{50, 50, 50, 50}
	left := []uint8{50, 50, 50, 50}
	out := PredictPaeth(above, left, 50, 4, 4)
	for i, v := range out {
		if v != 50 {
			t.Fatalf("pixel %d = %d, want 50", i, v)
		}
	}
}

func TestPredictPaethVerticalEdge(t *testing.T) {
	above := []uint8{100, 100, 100, 100}
	left := []uint8{0, 0, 0, 0}
	out := PredictPaeth(above, left, 0, 4, 4)
	for c := 0; c < 4; c++ {
		if out[c] != 100 {
			t.Errorf("col %d = %d, want 100 (above is nearest to base = left + above - topLeft)", c, out[c])
		}
	}
}

func TestPredictSmoothCorners(t *testing.T) {
	above := []uint8{10, 20, 30, 40}
	left := []uint8{10, 50, 60, 200}
	out := PredictSmooth(above, left, 4, 4)
	if out[0] < 5 || out[0] > 60 {
		t.Errorf("top-left corner %d out of plausible blended range", out[0])
	}
}

func TestSmoothWeightsMatchReferenceTable(t *testing.T) {
	cases := []struct {
		idx  int
		want uint8
	}{
		{4, 255}, {5, 149}, {6, 85}, {7, 64},
		{8, 255}, {9, 197}, {14, 37}, {15, 32},
	}
	for _, c := range cases {
		if smWeights[c.idx] != c.want {
			t.Errorf("smWeights[%d] = %d, want %d", c.idx, smWeights[c.idx], c.want)
		}
	}
}

func TestDrIntraDerivativeMatchesReferenceTable(t *testing.T) {
	cases := []struct {
		idx  int
		want uint16
	}{
		{22, 64}, {33, 27}, {11, 151},
	}
	for _, c := range cases {
		if drIntraDerivative[c.idx] != c.want {
			t.Errorf("drIntraDerivative[%d] = %d, want %d", c.idx, drIntraDerivative[c.idx], c.want)
		}
	}
}

func TestGenerateDirectionalPredictionAxisAligned(t *testing.T) {
	above := []uint8{1, 2, 3, 4}
	left := []uint8{5, 6, 7, 8}
	v := GenerateDirectionalPrediction(90, above, left, 0, true, true, 4, 4)
	for c := 0; c < 4; c++ {
		if v[c] != above[c] {
			t.Errorf("angle 90 should equal PredictV, col %d = %d, want %d", c, v[c], above[c])
		}
	}
	h := GenerateDirectionalPrediction(180, above, left, 0, true, true, 4, 4)
	for r := 0; r < 4; r++ {
		if h[r*4] != left[r] {
			t.Errorf("angle 180 should equal PredictH, row %d = %d, want %d", r, h[r*4], left[r])
		}
	}
}

func TestPredictDirectionalZ1StaysInBounds(t *testing.T) {
	above := make([]uint8, 16)
	for i := range above {
		above[i] = uint8(i * 10)
	}
	out := PredictDirectionalZ1(above, 4, 4, 64)
	for _, v := range out {
		_ = v
	}
	if len(out) != 16 {
		t.Fatalf("len(out) = %d, want 16", len(out))
	}
}

func TestPredictModeDispatchMatchesDirect(t *testing.T) {
	above := []uint8{10, 20, 30, 40}
	left := []uint8{10, 20, 30, 40}
	dc := Predict(DC, 0, above, left, 10, true, true, 4, 4)
	direct := PredictDC(above, left, true, true, 4, 4)
	for i := range dc {
		if dc[i] != direct[i] {
			t.Fatalf("pixel %d: dispatch=%d direct=%d", i, dc[i], direct[i])
		}
	}
}

func TestSSEZeroForIdenticalBlocks(t *testing.T) {
	a := []uint8{1, 2, 3, 4}
	if got := SSE(a, a, 2, 2); got != 0 {
		t.Errorf("SSE of identical blocks = %d, want 0", got)
	}
}

func TestSSENonzeroForDifferentBlocks(t *testing.T) {
	a := []uint8{0, 0, 0, 0}
	b := []uint8{1, 1, 1, 1}
	if got := SSE(a, b, 2, 2); got != 4 {
		t.Errorf("SSE = %d, want 4", got)
	}
}

func TestRDCostIncreasesWithNonzeroCount(t *testing.T) {
	low := RDCost(100, 1, 16)
	high := RDCost(100, 10, 16)
	if high <= low {
		t.Errorf("RDCost should increase with nonzero count: low=%d high=%d", low, high)
	}
}
