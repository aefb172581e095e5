package y4m

import (
	"bytes"
	"errors"
	"testing"
)

func buildY4M(width, height int, frames int) []byte {
	var buf bytes.Buffer
	buf.WriteString("YUV4MPEG2 W")
	buf.WriteString(itoa(width))
	buf.WriteString(" H")
	buf.WriteString(itoa(height))
	buf.WriteString(" F25:1 Ip A1:1 C420jpeg\n")

	ySize := width * height
	uvSize := ((width + 1) / 2) * ((height + 1) / 2)
	for i := 0; i < frames; i++ {
		buf.WriteString("FRAME\n")
		for j := 0; j < ySize+2*uvSize; j++ {
			buf.WriteByte(uint8((i + j) % 256))
		}
	}
	return buf.Bytes()
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var digits []byte
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}

func TestParseAllSingleFrame(t *testing.T) {
	data := buildY4M(4, 4, 1)
	frames, err := ParseAll(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	f := frames[0]
	if f.Width != 4 || f.Height != 4 {
		t.Fatalf("dims = %dx%d, want 4x4", f.Width, f.Height)
	}
	if len(f.Y) != 16 || len(f.U) != 4 || len(f.V) != 4 {
		t.Fatalf("plane sizes = %d/%d/%d, want 16/4/4", len(f.Y), len(f.U), len(f.V))
	}
}

func TestParseAllMultipleFrames(t *testing.T) {
	data := buildY4M(4, 4, 3)
	frames, err := ParseAll(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	// Each frame's content was built to differ from the last.
	if bytes.Equal(frames[0].Y, frames[1].Y) {
		t.Fatal("frame 0 and frame 1 are identical, test fixture is broken")
	}
}

func TestParseMissingHeader(t *testing.T) {
	if _, err := ParseAll([]byte("not a y4m file at all")); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("err = %v, want ErrMissingHeader", err)
	}
}

func TestParseInvalidSignature(t *testing.T) {
	_, err := ParseAll([]byte("NOTYUV4MPEG2 W4 H4\nFRAME\n"))
	if err == nil {
		t.Fatal("expected an error for a non-YUV4MPEG2 signature")
	}
}

func TestParseMissingDimensions(t *testing.T) {
	_, err := ParseAll([]byte("YUV4MPEG2 C420jpeg\nFRAME\n"))
	if !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("err = %v, want ErrInvalidDimension", err)
	}
}

func TestParseTruncatedFrame(t *testing.T) {
	data := buildY4M(8, 8, 1)
	truncated := data[:len(data)-10]
	if _, err := ParseAll(truncated); !errors.Is(err, ErrTruncatedFrame) {
		t.Fatalf("err = %v, want ErrTruncatedFrame", err)
	}
}

func TestParseUnsupported10Bit(t *testing.T) {
	_, err := ParseAll([]byte("YUV4MPEG2 W4 H4 C420p10\nFRAME\n"))
	if err == nil {
		t.Fatal("expected an error for a 10-bit colorspace tag")
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("/nonexistent/path/to/input.y4m"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSolidDimensionsAndValues(t *testing.T) {
	f := Solid(6, 4, 10, 20, 30)
	if len(f.Y) != 24 {
		t.Fatalf("len(Y) = %d, want 24", len(f.Y))
	}
	wantUVLen := 3 * 2 // ceil(6/2) * ceil(4/2)
	if len(f.U) != wantUVLen || len(f.V) != wantUVLen {
		t.Fatalf("len(U)/len(V) = %d/%d, want %d", len(f.U), len(f.V), wantUVLen)
	}
	for _, v := range f.Y {
		if v != 10 {
			t.Fatalf("Y sample = %d, want 10", v)
		}
	}
	for i := range f.U {
		if f.U[i] != 20 || f.V[i] != 30 {
			t.Fatalf("chroma sample = %d/%d, want 20/30", f.U[i], f.V[i])
		}
	}
}

func TestGridAlternatesCells(t *testing.T) {
	f := Grid(8, 8, 4, [3]uint8{255, 0, 0}, [3]uint8{0, 0, 0})
	// Cell (0,0) is bright, cell (1,0) (x in [4,8)) is dark.
	if f.Y[0] != 255 {
		t.Fatalf("top-left cell Y = %d, want 255 (bright)", f.Y[0])
	}
	if f.Y[4] != 0 {
		t.Fatalf("top-right cell Y = %d, want 0 (dark)", f.Y[4])
	}
}
