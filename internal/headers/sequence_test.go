package headers

import (
	"bytes"
	"testing"

	"github.com/deepteams/av1enc/internal/bitio"
)

func TestBitsNeeded(t *testing.T) {
	cases := []struct {
		v    uint32
		want uint8
	}{
		{0, 1},
		{1, 1},
		{63, 6},
		{99, 7},
		{1919, 11},
	}
	for _, c := range cases {
		if got := bitsNeeded(c.v); got != c.want {
			t.Errorf("bitsNeeded(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestSequenceHeader64x64(t *testing.T) {
	got := EncodeSequenceHeader(64, 64)

	w := bitio.NewBitWriter()
	w.WriteBits(0, 3)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBits(0, 5)
	w.WriteBits(0, 12)
	w.WriteBits(13, 5)
	w.WriteBit(false)
	w.WriteBits(5, 4)
	w.WriteBits(5, 4)
	w.WriteBits(63, 6)
	w.WriteBits(63, 6)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBits(0, 2)
	w.WriteBit(false)
	w.WriteBit(true)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBits(0, 2)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(true)

	want := w.Finalize()
	if !bytes.Equal(got, want) {
		t.Fatalf("sequence header mismatch:\ngot  %x\nwant %x", got, want)
	}
}

func TestSequenceHeaderSizeBounds(t *testing.T) {
	for _, dims := range [][2]uint32{{100, 100}, {320, 240}, {1920, 1080}, {1, 1}} {
		got := EncodeSequenceHeader(dims[0], dims[1])
		if len(got) < 8 || len(got) > 12 {
			t.Errorf("EncodeSequenceHeader(%d,%d) len = %d, want 8..12", dims[0], dims[1], len(got))
		}
	}
}

func TestSequenceHeaderDifferentDimensionsDiffer(t *testing.T) {
	small := EncodeSequenceHeader(64, 64)
	large := EncodeSequenceHeader(1920, 1080)
	if bytes.Equal(small, large) {
		t.Fatal("expected differing dimensions to produce differing headers")
	}
	if len(large) <= len(small) {
		t.Fatalf("expected larger dimensions to need more width/height bits: len(large)=%d len(small)=%d", len(large), len(small))
	}
}

func TestSequenceHeaderStillPictureBitClear(t *testing.T) {
	got := EncodeSequenceHeader(64, 64)
	if got[0]&0x10 != 0 {
		t.Fatalf("expected still_picture bit clear for a regular sequence header, got %08b", got[0])
	}
}

func TestDeriveLevelSmallFramesFloorTo5_1(t *testing.T) {
	if got := DeriveSequenceLevelIdx(320, 240, 25, 1); got != SeqLevelIdx5_1 {
		t.Fatalf("got %d, want %d", got, SeqLevelIdx5_1)
	}
}

func TestDeriveLevelLargeFrameSelectsHigherLevel(t *testing.T) {
	if got := DeriveSequenceLevelIdx(4284, 5712, 25, 1); got <= SeqLevelIdx5_1 {
		t.Fatalf("got %d, want > %d", got, SeqLevelIdx5_1)
	}
}

func TestDeriveLevelOutOfTableFallsBackToMaxParameters(t *testing.T) {
	if got := DeriveSequenceLevelIdx(20_000, 20_000, 30, 1); got != SeqLevelIdxMaxParameters {
		t.Fatalf("got %d, want %d", got, SeqLevelIdxMaxParameters)
	}
}
