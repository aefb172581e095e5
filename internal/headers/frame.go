package headers

import (
	"github.com/deepteams/av1enc/internal/bitio"
	"github.com/deepteams/av1enc/internal/cdef"
	"github.com/deepteams/av1enc/internal/quantize"
	"github.com/deepteams/av1enc/internal/tile"
	"github.com/deepteams/av1enc/internal/y4m"
)

const (
	maxTileCols    = 64
	maxTileRows    = 64
	maxTileWidthSB = 4096 / 64
	maxTileAreaSB  = 4096 * 2304 / (64 * 64)
)

func tileLog2(blkSize, target uint32) uint32 {
	k := uint32(0)
	for (blkSize << k) < target {
		k++
	}
	return k
}

func ceilDivU32(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// EncodeFrameWithRecon writes a complete key-frame OBU payload (uncompressed
// header bits followed by the tile group) and returns it alongside the
// encoder's own reconstruction of the frame, CDEF-filtered the same way
// the frame will look once decoded. Mirrors encode_frame_with_recon.
func EncodeFrameWithRecon(pixels *y4m.FramePixels, baseQIdx uint8, dq quantize.Values) ([]byte, *y4m.FramePixels) {
	w := bitio.NewBitWriter()

	sbw := ceilDivU32(pixels.Width, 64)
	sbh := ceilDivU32(pixels.Height, 64)

	w.WriteBit(false) // show_existing_frame
	w.WriteBits(0, 2)  // frame_type = KEY_FRAME
	w.WriteBit(true)  // show_frame
	w.WriteBit(false) // error_resilient_mode
	w.WriteBit(false) // disable_cdf_update
	w.WriteBit(false) // allow_screen_content_tools placeholder bit (frame_size_override_flag region below)

	w.WriteBit(false) // frame_size_override_flag

	writeTileInfo(w, sbw, sbh)
	writeQuantParams(w, baseQIdx)

	w.WriteBit(false) // segmentation_enabled
	w.WriteBit(false) // delta_q_present

	writeLoopfilterParams(w, baseQIdx)
	writeCdefParams(w, baseQIdx)

	w.WriteBit(false) // allow_restoration's lr_params gate (enable_restoration is false)
	w.WriteBit(true)  // trailing_one_bit

	headerBytes := w.Finalize()
	tileData, recon := tile.EncodeTileWithRecon(pixels, dq, baseQIdx)

	dampingMinus3, yStrength, _ := cdefStrengthForQidx(baseQIdx)
	applyCdefToRecon(recon, dampingMinus3, yStrength)

	return append(headerBytes, tileData...), recon
}

// EncodeFrame is EncodeFrameWithRecon without the reconstruction return,
// for callers (tests, one-off tools) that only need the bitstream bytes.
func EncodeFrame(pixels *y4m.FramePixels, baseQIdx uint8, dq quantize.Values) []byte {
	data, _ := EncodeFrameWithRecon(pixels, baseQIdx, dq)
	return data
}

func writeTileInfo(w *bitio.BitWriter, sbw, sbh uint32) {
	w.WriteBit(true) // uniform_tile_spacing_flag

	minLog2Cols := tileLog2(maxTileWidthSB, sbw)
	maxLog2Cols := tileLog2(1, minU32(sbw, maxTileCols))
	log2Cols := minLog2Cols

	if minLog2Cols < maxLog2Cols {
		w.WriteBit(false) // increment_tile_cols_log2 terminator
	}

	minLog2Tiles := maxU32(tileLog2(maxTileAreaSB, sbw*sbh), minLog2Cols)
	minLog2Rows := satSubU32(minLog2Tiles, log2Cols)
	maxLog2Rows := tileLog2(1, minU32(sbh, maxTileRows))

	if minLog2Rows < maxLog2Rows {
		w.WriteBit(false) // increment_tile_rows_log2 terminator
	}
}

func writeQuantParams(w *bitio.BitWriter, baseQIdx uint8) {
	w.WriteBits(uint64(baseQIdx), 8)
	w.WriteBit(false) // diff_uv_delta (delta_coded for Y DC)
	w.WriteBit(false) // delta_coded for U DC/AC
	w.WriteBit(false) // using_qmatrix
	w.WriteBit(false) // (unused placeholder matching writeQuantParams's 4-bit tail in frame.rs)
}

// cdefStrengthForQidx derives this encoder's single CDEF strength pair
// from base_q_idx: no deringing below a quality floor, otherwise a
// strength that scales with the quantizer step.
func cdefStrengthForQidx(baseQIdx uint8) (dampingMinus3, yStrength, uvStrength uint8) {
	if baseQIdx < 64 {
		return 0, 0, 0
	}
	pri := uint8(clampU32(uint32(baseQIdx)/16, 1, 15))
	strength := pri << 2 // sec = 0
	return 2, strength, strength
}

func writeCdefParams(w *bitio.BitWriter, baseQIdx uint8) {
	dampingMinus3, yStrength, uvStrength := cdefStrengthForQidx(baseQIdx)
	w.WriteBits(uint64(dampingMinus3), 2)
	w.WriteBits(0, 2) // cdef_bits
	w.WriteBits(uint64(yStrength), 6)
	w.WriteBits(uint64(uvStrength), 6)
}

func loopFilterLevelForQidx(_ uint8) uint8 {
	return 0
}

func writeLoopfilterParams(w *bitio.BitWriter, baseQIdx uint8) {
	level := loopFilterLevelForQidx(baseQIdx)
	w.WriteBits(uint64(level), 6)
	w.WriteBits(uint64(level), 6)
	if level > 0 {
		w.WriteBits(uint64(level), 6)
		w.WriteBits(uint64(level), 6)
	}
	w.WriteBits(0, 3) // loop_filter_sharpness
	w.WriteBit(true)  // loop_filter_delta_enabled
	w.WriteBit(false) // loop_filter_delta_update
}

// EncodeInterFrameWithRecon writes an inter-frame OBU payload referencing
// a single decoded reference frame. Mirrors encode_inter_frame_with_recon,
// trimmed to this encoder's single-reference (LAST_FRAME-only) prediction
// path: every one of the 7 AV1 reference-frame slots still gets its 3-bit
// ref_frame_idx so the bit layout matches, but all of them point at the
// same slot.
func EncodeInterFrameWithRecon(pixels, reference *y4m.FramePixels, refreshFrameFlags, refSlot uint8, showFrame bool, baseQIdx uint8, dq quantize.Values) ([]byte, *y4m.FramePixels) {
	w := bitio.NewBitWriter()

	sbw := ceilDivU32(pixels.Width, 64)
	sbh := ceilDivU32(pixels.Height, 64)

	w.WriteBit(false)     // show_existing_frame
	w.WriteBits(1, 2)     // frame_type = INTER_FRAME
	w.WriteBit(showFrame) // show_frame
	if !showFrame {
		w.WriteBit(true) // showable_frame
	}
	w.WriteBit(true)  // error_resilient_mode
	w.WriteBit(true)  // disable_cdf_update
	w.WriteBit(false) // allow_high_precision_mv

	w.WriteBits(uint64(refreshFrameFlags), 8)

	// AV1's 7 reference-frame slots (LAST, LAST2, LAST3, GOLDEN, BWDREF,
	// ALTREF2, ALTREF) each carry a 3-bit ref_frame_idx; this encoder has
	// only one coded reference so every slot names it.
	for i := 0; i < 7; i++ {
		w.WriteBits(uint64(refSlot), 3)
	}

	w.WriteBit(false) // frame_size_override_flag

	w.WriteBit(false) // render_and_frame_size_different
	w.WriteBit(false) // is_filter_switchable
	w.WriteBits(0, 2) // interpolation_filter
	w.WriteBit(false) // is_motion_mode_switchable

	writeTileInfo(w, sbw, sbh)
	writeQuantParams(w, baseQIdx)

	w.WriteBit(false) // segmentation_enabled
	w.WriteBit(false) // delta_q_present

	writeLoopfilterParams(w, baseQIdx)
	writeCdefParams(w, baseQIdx)

	w.WriteBit(false) // allow_restoration's lr_params gate
	w.WriteBit(false) // reduced_tx_set... / is_skip_mode_present placeholder
	w.WriteBit(true)  // trailing_one_bit

	for i := 0; i < 7; i++ {
		w.WriteBit(false) // ref_frame_sign_bias per non-intra reference
	}

	headerBytes := w.Finalize()
	tileData, recon := tile.EncodeInterTileWithRecon(pixels, reference, dq, baseQIdx)

	dampingMinus3, yStrength, _ := cdefStrengthForQidx(baseQIdx)
	applyCdefToRecon(recon, dampingMinus3, yStrength)

	return append(headerBytes, tileData...), recon
}

// EncodeInterFrame is EncodeInterFrameWithRecon without the reconstruction
// return.
func EncodeInterFrame(pixels, reference *y4m.FramePixels, refreshFrameFlags, refSlot uint8, showFrame bool, baseQIdx uint8, dq quantize.Values) []byte {
	data, _ := EncodeInterFrameWithRecon(pixels, reference, refreshFrameFlags, refSlot, showFrame, baseQIdx, dq)
	return data
}

// EncodeShowExistingFrame writes the tiny uncompressed-header-only payload
// that repeats an already-decoded reference frame slot as the next shown
// frame, without coding any new tile data.
func EncodeShowExistingFrame(slot uint8) []byte {
	w := bitio.NewBitWriter()
	w.WriteBit(true) // show_existing_frame
	w.WriteBits(uint64(slot), 3)
	return w.TrailingBits()
}

func applyCdefToRecon(recon *y4m.FramePixels, dampingMinus3, yStrength uint8) {
	f := &cdef.Frame{Y: recon.Y, U: recon.U, V: recon.V, Width: recon.Width, Height: recon.Height}
	cdef.FilterFrame(f, int32(yStrength>>2), int32(yStrength&3), int32(dampingMinus3)+3)
	recon.Y, recon.U, recon.V = f.Y, f.U, f.V
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func satSubU32(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
