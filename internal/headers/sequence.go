// Package headers writes the two uncompressed AV1 header OBUs this
// encoder emits — the sequence header and the frame header — plus the
// smaller show_existing_frame payload used to repeat a decoded frame.
// Both writers are bit-for-bit layouts, not arithmetic-coded syntax, so
// they use internal/bitio rather than internal/msac.
package headers

import "github.com/deepteams/av1enc/internal/bitio"

// SeqLevelIdx5_1 and SeqLevelIdxMaxParameters bound the level the level
// table derives: no stream coded by this encoder needs a level below 5.1,
// and any frame too large for the table falls back to the "unconstrained"
// level index.
const (
	SeqLevelIdx5_1           uint8 = 13
	SeqLevelIdxMaxParameters uint8 = 31
)

type levelConstraint struct {
	seqLevelIdx     uint8
	maxPicSize      uint64
	maxHSize        uint32
	maxVSize        uint32
	maxDisplayRate  uint64
	maxDecodeRate   uint64
}

// levelConstraints is the subset of the AV1 level table (5.1 through 6.3)
// this encoder's target resolutions fall into.
var levelConstraints = [7]levelConstraint{
	{seqLevelIdx: 13, maxPicSize: 8_912_896, maxHSize: 8_192, maxVSize: 4_352, maxDisplayRate: 534_773_760, maxDecodeRate: 547_430_400},
	{seqLevelIdx: 14, maxPicSize: 8_912_896, maxHSize: 8_192, maxVSize: 4_352, maxDisplayRate: 1_069_547_520, maxDecodeRate: 1_094_860_800},
	{seqLevelIdx: 15, maxPicSize: 8_912_896, maxHSize: 8_192, maxVSize: 4_352, maxDisplayRate: 1_069_547_520, maxDecodeRate: 1_176_502_272},
	{seqLevelIdx: 16, maxPicSize: 35_651_584, maxHSize: 16_384, maxVSize: 8_704, maxDisplayRate: 1_069_547_520, maxDecodeRate: 1_176_502_272},
	{seqLevelIdx: 17, maxPicSize: 35_651_584, maxHSize: 16_384, maxVSize: 8_704, maxDisplayRate: 2_139_095_040, maxDecodeRate: 2_189_721_600},
	{seqLevelIdx: 18, maxPicSize: 35_651_584, maxHSize: 16_384, maxVSize: 8_704, maxDisplayRate: 4_278_190_080, maxDecodeRate: 4_379_443_200},
	{seqLevelIdx: 19, maxPicSize: 35_651_584, maxHSize: 16_384, maxVSize: 8_704, maxDisplayRate: 4_278_190_080, maxDecodeRate: 4_706_009_088},
}

func bitsNeeded(v uint32) uint8 {
	if v == 0 {
		return 1
	}
	n := uint8(0)
	for x := v; x != 0; x >>= 1 {
		n++
	}
	return n
}

// DeriveSequenceLevelIdx picks the smallest level a width/height/framerate
// combination satisfies, floored at 5.1 and falling back to the
// unconstrained max-parameters index when the frame exceeds every table
// entry (e.g. larger than 6.3 allows).
func DeriveSequenceLevelIdx(width, height uint32, fpsNum, fpsDen uint32) uint8 {
	picSize := uint64(width) * uint64(height)
	displayRateNum := picSize * uint64(fpsNum)
	displayRateDen := uint64(fpsDen)

	for _, level := range levelConstraints {
		if width <= level.maxHSize &&
			height <= level.maxVSize &&
			picSize <= level.maxPicSize &&
			displayRateNum <= level.maxDisplayRate*displayRateDen &&
			displayRateNum <= level.maxDecodeRate*displayRateDen {
			if level.seqLevelIdx > SeqLevelIdx5_1 {
				return level.seqLevelIdx
			}
			return SeqLevelIdx5_1
		}
	}

	return SeqLevelIdxMaxParameters
}

// EncodeSequenceHeader builds the sequence_header_obu payload for a
// width/height at the default 25fps level derivation. This encoder only
// ever targets 8-bit 4:2:0 limited-range input (internal/y4m), so the
// bit-depth/monochrome/color-description fields below are fixed rather
// than threaded through from a signal struct the way wav1c's VideoSignal
// parameter allows.
func EncodeSequenceHeader(width, height uint32) []byte {
	seqLevelIdx := DeriveSequenceLevelIdx(width, height, 25, 1)
	return EncodeSequenceHeaderWithLevel(width, height, seqLevelIdx)
}

// EncodeSequenceHeaderWithLevel is EncodeSequenceHeader with an explicit
// seq_level_idx, exposed so callers that already derived a level (or want
// to force one) don't re-derive it.
func EncodeSequenceHeaderWithLevel(width, height uint32, seqLevelIdx uint8) []byte {
	return encodeSequenceHeaderImpl(width, height, seqLevelIdx, false)
}

func encodeSequenceHeaderImpl(width, height uint32, seqLevelIdx uint8, stillPicture bool) []byte {
	w := bitio.NewBitWriter()

	const seqProfile = 0
	const reducedStillPictureHeader = false
	const timingInfoPresent = false
	const initialDisplayDelayPresent = false
	const operatingPointsCntMinus1 = 0
	const operatingPointIdc = 0

	w.WriteBits(seqProfile, 3)
	w.WriteBit(stillPicture)
	w.WriteBit(reducedStillPictureHeader)
	if reducedStillPictureHeader {
		w.WriteBits(uint64(seqLevelIdx), 5)
	} else {
		w.WriteBit(timingInfoPresent)
		w.WriteBit(initialDisplayDelayPresent)
		w.WriteBits(operatingPointsCntMinus1, 5)
		w.WriteBits(operatingPointIdc, 12)
		w.WriteBits(uint64(seqLevelIdx), 5)
		if seqLevelIdx > 7 {
			w.WriteBit(false)
		}
	}

	frameWidthBitsMinus1 := bitsNeeded(width-1) - 1
	frameHeightBitsMinus1 := bitsNeeded(height-1) - 1
	w.WriteBits(uint64(frameWidthBitsMinus1), 4)
	w.WriteBits(uint64(frameHeightBitsMinus1), 4)
	w.WriteBits(uint64(width-1), frameWidthBitsMinus1+1)
	w.WriteBits(uint64(height-1), frameHeightBitsMinus1+1)

	const use128x128Superblock = false
	const enableFilterIntra = false
	const enableIntraEdgeFilter = false
	const enableSuperres = false
	const enableCdef = true
	const enableRestoration = false

	if reducedStillPictureHeader {
		w.WriteBit(use128x128Superblock)
		w.WriteBit(enableFilterIntra)
		w.WriteBit(enableIntraEdgeFilter)
		w.WriteBit(enableSuperres)
		w.WriteBit(enableCdef)
		w.WriteBit(enableRestoration)
	} else {
		const frameIdNumbersPresent = false
		const enableInterintraCompound = false
		const enableMaskedCompound = false
		const enableWarpedMotion = false
		const enableDualFilter = false
		const enableOrderHint = false
		const seqChooseScreenContentTools = false
		const seqForceScreenContentTools = false

		w.WriteBit(frameIdNumbersPresent)
		w.WriteBit(use128x128Superblock)
		w.WriteBit(enableFilterIntra)
		w.WriteBit(enableIntraEdgeFilter)
		w.WriteBit(enableInterintraCompound)
		w.WriteBit(enableMaskedCompound)
		w.WriteBit(enableWarpedMotion)
		w.WriteBit(enableDualFilter)
		w.WriteBit(enableOrderHint)
		w.WriteBit(seqChooseScreenContentTools)
		w.WriteBit(seqForceScreenContentTools)
		w.WriteBit(enableSuperres)
		w.WriteBit(enableCdef)
		w.WriteBit(enableRestoration)
	}

	const highBitdepth = false // this encoder's y4m input path is 8-bit only
	const monoChrome = false
	const colorDescriptionPresent = false
	const colorRange = false // limited range
	const chromaSamplePosition = 0
	const separateUvDeltaQ = false
	const filmGrainParamsPresent = false

	w.WriteBit(highBitdepth)
	w.WriteBit(monoChrome)
	w.WriteBit(colorDescriptionPresent)
	w.WriteBit(colorRange)
	w.WriteBits(chromaSamplePosition, 2)
	w.WriteBit(separateUvDeltaQ)
	w.WriteBit(filmGrainParamsPresent)

	w.WriteBit(true) // trailing_one_bit of the uncompressed header itself

	return w.Finalize()
}
