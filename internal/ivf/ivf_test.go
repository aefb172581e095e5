package ivf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEmptyHeader(t *testing.T) {
	w := New(64, 48, 25, 1)
	got := w.Bytes()
	if len(got) != 32 {
		t.Fatalf("len = %d, want 32 for a frameless IVF file", len(got))
	}
	if !bytes.Equal(got[0:4], []byte("DKIF")) {
		t.Fatalf("signature = %q, want DKIF", got[0:4])
	}
	if !bytes.Equal(got[8:12], []byte("AV01")) {
		t.Fatalf("fourcc = %q, want AV01", got[8:12])
	}
	if w, h := binary.LittleEndian.Uint16(got[12:14]), binary.LittleEndian.Uint16(got[14:16]); w != 64 || h != 48 {
		t.Fatalf("dims = %dx%d, want 64x48", w, h)
	}
	if n := binary.LittleEndian.Uint32(got[24:28]); n != 0 {
		t.Fatalf("num_frames = %d, want 0", n)
	}
}

func TestFrameRecords(t *testing.T) {
	w := New(16, 16, 25, 1)
	w.AddFrame([]byte{1, 2, 3})
	w.AddFrame([]byte{4, 5})
	got := w.Bytes()

	if n := binary.LittleEndian.Uint32(got[24:28]); n != 2 {
		t.Fatalf("num_frames = %d, want 2", n)
	}

	rec1 := got[32:]
	if sz := binary.LittleEndian.Uint32(rec1[0:4]); sz != 3 {
		t.Fatalf("first record size = %d, want 3", sz)
	}
	if pts := binary.LittleEndian.Uint64(rec1[4:12]); pts != 0 {
		t.Fatalf("first record pts = %d, want 0", pts)
	}
	if !bytes.Equal(rec1[12:15], []byte{1, 2, 3}) {
		t.Fatalf("first record payload = %v, want [1 2 3]", rec1[12:15])
	}

	rec2 := rec1[15:]
	if sz := binary.LittleEndian.Uint32(rec2[0:4]); sz != 2 {
		t.Fatalf("second record size = %d, want 2", sz)
	}
	if pts := binary.LittleEndian.Uint64(rec2[4:12]); pts != 1 {
		t.Fatalf("second record pts = %d, want 1", pts)
	}
	if !bytes.Equal(rec2[12:14], []byte{4, 5}) {
		t.Fatalf("second record payload = %v, want [4 5]", rec2[12:14])
	}
}

func TestTotalLength(t *testing.T) {
	w := New(8, 8, 25, 1)
	w.AddFrame(make([]byte, 100))
	got := w.Bytes()
	want := 32 + 12 + 100
	if len(got) != want {
		t.Fatalf("len = %d, want %d", len(got), want)
	}
}
