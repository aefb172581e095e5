package tile

import (
	"github.com/deepteams/av1enc/internal/predict"
	"github.com/deepteams/av1enc/internal/quantize"
	"github.com/deepteams/av1enc/internal/transform"
)

// modeToAngle mirrors predict's unexported table; kept local because
// generatePrediction must dispatch every directional mode (including
// zero-delta V/H) through the angle path, unlike predict.Predict's
// early-exit shortcuts.
var modeToAngle = [8]int32{90, 180, 45, 135, 113, 157, 203, 67}

// txtpIntra2Map lists the intra luma tx types in txtp_intra2 symbol order
// 0..4 (Idtx, DctDct, AdstAdst, AdstDct, DctAdst). selectBestTxType tries
// DctDct and the three ADST entries, so symbol 0 (Idtx) is never selected.
var txtpIntra2Map = [5]transform.TxType{transform.Idtx, transform.DctDct, transform.AdstAdst, transform.AdstDct, transform.DctAdst}

// generatePrediction reproduces generate_prediction's dispatch exactly:
// every directional mode (1..8) always routes through the angle-based
// generator, even at angleDelta==0, where it internally degenerates to
// a plain vertical/horizontal predictor. predict.Predict must not be
// used here since its V/H cases shortcut before applying angleDelta.
func generatePrediction(mode predict.Mode, angleDelta int32, above, left []uint8, topLeft uint8, haveAbove, haveLeft bool, w, h int) []uint8 {
	switch {
	case mode >= predict.V && mode <= predict.D67:
		angle := modeToAngle[mode-predict.V] + angleDelta*3
		return predict.GenerateDirectionalPrediction(angle, above, left, topLeft, haveAbove, haveLeft, w, h)
	case mode == predict.Smooth:
		return predict.PredictSmooth(above, left, w, h)
	case mode == predict.SmoothV:
		return predict.PredictSmoothV(above, left, w, h)
	case mode == predict.SmoothH:
		return predict.PredictSmoothH(above, left, w, h)
	case mode == predict.Paeth:
		return predict.PredictPaeth(above, left, topLeft, w, h)
	default:
		return predict.PredictDC(above, left, haveAbove, haveLeft, w, h)
	}
}

func computeSAD(source, prediction []uint8) uint32 {
	var sad uint32
	for i := range source {
		d := int32(source[i]) - int32(prediction[i])
		if d < 0 {
			d = -d
		}
		sad += uint32(d)
	}
	return sad
}

// computeRDCost8x8 forward-transforms, quantizes, dequantizes, and
// inverse-transforms an 8x8 residual and returns its SSE plus a
// nonzero-count rate penalty, matching compute_rd_cost.
func computeRDCost8x8(source, prediction []uint8, dcDQ, acDQ int32, txType transform.TxType) int64 {
	var residual [64]int32
	for i := 0; i < 64; i++ {
		residual[i] = int32(source[i]) - int32(prediction[i])
	}
	coeffs := transform.Forward8x8(residual, txType)

	dq := quantize.Values{DC: dcDQ, AC: acDQ}
	var quant [64]int32
	nonzero := 0
	for i := 0; i < 64; i++ {
		quant[i] = quantize.Quantize(coeffs[i], i, dq)
		if quant[i] != 0 {
			nonzero++
		}
	}
	var deq [64]int32
	for i := 0; i < 64; i++ {
		deq[i] = quantize.Dequantize(quant[i], i, dq)
	}
	recon8x8 := transform.Inverse8x8(deq, txType)

	var recon [64]uint8
	for i := 0; i < 64; i++ {
		v := int32(prediction[i]) + recon8x8[i]
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		recon[i] = uint8(v)
	}

	sse := predict.SSE(source, recon[:], 8, 8)
	return predict.RDCost(sse, nonzero, acDQ)
}

type intraModeChoice struct {
	mode       predict.Mode
	angleDelta int32
}

// selectBestIntraMode sweeps DC, V, H (when available), the 3 smooth
// modes and Paeth (when both neighbors available), and for each
// directional mode an angle-delta search in -3..3, returning the
// lowest-RD-cost choice. Mirrors select_best_intra_mode.
func selectBestIntraMode(source, above, left []uint8, topLeft uint8, haveAbove, haveLeft bool, w, h int, dcDQ, acDQ int32) (predict.Mode, int32) {
	best := intraModeChoice{mode: predict.DC, angleDelta: 0}
	pred := generatePrediction(predict.DC, 0, above, left, topLeft, haveAbove, haveLeft, w, h)
	bestCost := computeRDCost8x8(source, pred, dcDQ, acDQ, transform.DctDct)

	try := func(mode predict.Mode, delta int32) {
		p := generatePrediction(mode, delta, above, left, topLeft, haveAbove, haveLeft, w, h)
		cost := computeRDCost8x8(source, p, dcDQ, acDQ, transform.DctDct)
		if cost < bestCost {
			bestCost = cost
			best = intraModeChoice{mode: mode, angleDelta: delta}
		}
	}

	if haveAbove {
		try(predict.V, 0)
	}
	if haveLeft {
		try(predict.H, 0)
	}
	if haveAbove && haveLeft {
		try(predict.Smooth, 0)
		try(predict.SmoothV, 0)
		try(predict.SmoothH, 0)
		try(predict.Paeth, 0)
	}

	for m := predict.V; m <= predict.D67; m++ {
		for delta := int32(-3); delta <= 3; delta++ {
			if delta == 0 && (m == predict.V || m == predict.H) {
				continue
			}
			try(m, delta)
		}
	}

	return best.mode, best.angleDelta
}

// selectBestTxType tries DctDct plus the 3 non-degenerate entries of
// txtpIntra2Map against the already-chosen prediction and returns the
// lowest-cost type. Mirrors select_best_txtype.
func selectBestTxType(source, prediction []uint8, dcDQ, acDQ int32) transform.TxType {
	best := transform.DctDct
	bestCost := computeRDCost8x8(source, prediction, dcDQ, acDQ, transform.DctDct)
	for _, t := range txtpIntra2Map {
		if t == transform.DctDct || t == transform.Idtx {
			continue
		}
		cost := computeRDCost8x8(source, prediction, dcDQ, acDQ, t)
		if cost < bestCost {
			bestCost = cost
			best = t
		}
	}
	return best
}

// gatherTopPartitionProb derives the probability that a block stops at
// a horizontal-only split from the partition CDF's symbol masses.
func gatherTopPartitionProb(pc []uint16, bl uint32) uint16 {
	prob := pc[1] - pc[4] + pc[5]
	if bl != 0 {
		prob += pc[8] - pc[7]
	}
	return prob
}

// gatherLeftPartitionProb derives the probability that a block stops at
// a vertical-only split from the partition CDF's symbol masses.
func gatherLeftPartitionProb(pc []uint16, bl uint32) uint16 {
	prob := pc[0] - pc[1] + pc[2] - pc[6]
	if bl != 0 {
		prob += pc[7] - pc[8]
	}
	return prob
}
