package av1enc

import (
	"testing"

	"github.com/deepteams/av1enc/internal/y4m"
)

func solidFrame(width, height uint32, y, u, v uint8) *Frame {
	p := y4m.Solid(width, height, y, u, v)
	return &Frame{Y: p.Y, U: p.U, V: p.V, Width: width, Height: height, BitDepth: 8}
}

func TestNewRejectsInvalidDimensions(t *testing.T) {
	cases := []struct {
		w, h uint32
	}{
		{0, 64},
		{64, 0},
		{MaxWidth + 1, 64},
		{64, MaxHeight + 1},
	}
	for _, c := range cases {
		if _, err := New(c.w, c.h, DefaultConfig()); err != ErrInvalidDimensions {
			t.Errorf("New(%d,%d) err = %v, want ErrInvalidDimensions", c.w, c.h, err)
		}
	}
}

func TestNewRejectsInvalidKeyint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keyint = 0
	if _, err := New(64, 64, cfg); err == nil {
		t.Fatal("expected an error for Keyint = 0")
	}
}

func TestSendFrameRejectsDimensionMismatch(t *testing.T) {
	enc, err := New(64, 64, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	f := solidFrame(32, 32, 128, 128, 128)
	if err := enc.SendFrame(f); err != ErrDimensionMismatch {
		t.Fatalf("SendFrame err = %v, want ErrDimensionMismatch", err)
	}
}

func TestSendFrameRejectsUnsupportedBitDepth(t *testing.T) {
	enc, err := New(64, 64, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	f := solidFrame(64, 64, 128, 128, 128)
	f.BitDepth = 10
	if err := enc.SendFrame(f); err != ErrUnsupportedInput {
		t.Fatalf("SendFrame err = %v, want ErrUnsupportedInput", err)
	}
}

func TestPendingPacketInvariant(t *testing.T) {
	enc, err := New(64, 64, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	f := solidFrame(64, 64, 128, 128, 128)

	if err := enc.SendFrame(f); err != nil {
		t.Fatal(err)
	}
	if err := enc.SendFrame(f); err != ErrPendingPacket {
		t.Fatalf("second SendFrame before ReceivePacket: err = %v, want ErrPendingPacket", err)
	}
	if _, ok := enc.ReceivePacket(); !ok {
		t.Fatal("expected a pending packet")
	}
	if _, ok := enc.ReceivePacket(); ok {
		t.Fatal("ReceivePacket should return false once drained")
	}
}

// TestSolidColorKeyframe covers spec.md §8 scenario 1: a 64x64 solid-color
// frame codes as a single keyframe whose bytes begin with the
// TemporalDelimiter OBU (type 2) then the SequenceHeader OBU (type 1).
func TestSolidColorKeyframe(t *testing.T) {
	enc, err := New(64, 64, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.SendFrame(solidFrame(64, 64, 128, 128, 128)); err != nil {
		t.Fatal(err)
	}
	pkt, ok := enc.ReceivePacket()
	if !ok {
		t.Fatal("expected a packet")
	}
	if pkt.FrameType != FrameKey {
		t.Fatalf("FrameType = %v, want FrameKey", pkt.FrameType)
	}
	if len(pkt.Data) < 2 || pkt.Data[0] != 0x12 {
		t.Fatalf("packet does not start with the temporal delimiter OBU header: %x", pkt.Data[:min(4, len(pkt.Data))])
	}
	// obu_type=1 (SequenceHeader) at bits 3-6 of the next header byte.
	if pkt.Data[2] != 0x0a {
		t.Fatalf("second OBU header = %#x, want sequence header (0x0a)", pkt.Data[2])
	}
}

// TestKeyintCadence covers spec.md §8 scenario 3: five frames of solid
// input at keyint=25 yield one Key packet followed by four Inter packets.
func TestKeyintCadence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keyint = 25
	enc, err := New(64, 64, cfg)
	if err != nil {
		t.Fatal(err)
	}

	want := []FrameType{FrameKey, FrameInter, FrameInter, FrameInter, FrameInter}
	for i, w := range want {
		if err := enc.SendFrame(solidFrame(64, 64, 128, 128, 128)); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		pkt, ok := enc.ReceivePacket()
		if !ok {
			t.Fatalf("frame %d: expected a packet", i)
		}
		if pkt.FrameType != w {
			t.Errorf("frame %d: FrameType = %v, want %v", i, pkt.FrameType, w)
		}
		if pkt.FrameNumber != uint64(i) {
			t.Errorf("frame %d: FrameNumber = %d, want %d", i, pkt.FrameNumber, i)
		}
		if len(pkt.Data) == 0 {
			t.Errorf("frame %d: empty packet", i)
		}
	}
}

// TestBlackThenWhiteProducesDifferentPackets covers spec.md §8 scenario 4:
// a black frame then a white frame should not collapse to identical
// bitstreams.
func TestBlackThenWhiteProducesDifferentPackets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keyint = 25
	enc, err := New(64, 64, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := enc.SendFrame(solidFrame(64, 64, 0, 128, 128)); err != nil {
		t.Fatal(err)
	}
	black, _ := enc.ReceivePacket()

	if err := enc.SendFrame(solidFrame(64, 64, 255, 128, 128)); err != nil {
		t.Fatal(err)
	}
	white, _ := enc.ReceivePacket()

	if black.FrameType != FrameKey || white.FrameType != FrameInter {
		t.Fatalf("frame types = %v, %v, want Key, Inter", black.FrameType, white.FrameType)
	}
	if string(black.Data) == string(white.Data) {
		t.Fatal("black and white frames produced byte-identical packets")
	}
}

// TestUniformSmallerThanNonUniform covers spec.md §8: a DC-only uniform
// frame's coded size is strictly smaller than a non-uniform frame of the
// same dimensions, since the uniform frame's residual is all-zero and
// codes as skip blocks throughout.
func TestUniformSmallerThanNonUniform(t *testing.T) {
	enc, err := New(64, 64, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.SendFrame(solidFrame(64, 64, 128, 128, 128)); err != nil {
		t.Fatal(err)
	}
	uniform, _ := enc.ReceivePacket()

	enc2, err := New(64, 64, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	gradient := y4m.Grid(64, 64, 4, [3]uint8{40, 200, 40}, [3]uint8{220, 20, 220})
	if err := enc2.SendFrame(&Frame{Y: gradient.Y, U: gradient.U, V: gradient.V, Width: 64, Height: 64, BitDepth: 8}); err != nil {
		t.Fatal(err)
	}
	nonUniform, _ := enc2.ReceivePacket()

	if len(uniform.Data) >= len(nonUniform.Data) {
		t.Fatalf("uniform packet (%d bytes) not smaller than non-uniform packet (%d bytes)", len(uniform.Data), len(nonUniform.Data))
	}
}

func TestOddDimensions(t *testing.T) {
	for _, dims := range [][2]uint32{{17, 33}, {65, 65}} {
		enc, err := New(dims[0], dims[1], DefaultConfig())
		if err != nil {
			t.Fatalf("%v: %v", dims, err)
		}
		if err := enc.SendFrame(solidFrame(dims[0], dims[1], 128, 128, 128)); err != nil {
			t.Fatalf("%v: %v", dims, err)
		}
		if pkt, ok := enc.ReceivePacket(); !ok || len(pkt.Data) == 0 {
			t.Fatalf("%v: expected a non-empty packet", dims)
		}
	}
}

func TestMinAndMaxDimensions(t *testing.T) {
	for _, dims := range [][2]uint32{{1, 1}, {MaxWidth, MaxHeight}} {
		enc, err := New(dims[0], dims[1], DefaultConfig())
		if err != nil {
			t.Fatalf("%v: %v", dims, err)
		}
		if err := enc.SendFrame(solidFrame(dims[0], dims[1], 128, 128, 128)); err != nil {
			t.Fatalf("%v: %v", dims, err)
		}
		if _, ok := enc.ReceivePacket(); !ok {
			t.Fatalf("%v: expected a packet", dims)
		}
	}
}

func TestDeterministicOutput(t *testing.T) {
	encode := func() []byte {
		enc, err := New(64, 64, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if err := enc.SendFrame(solidFrame(64, 64, 100, 90, 160)); err != nil {
			t.Fatal(err)
		}
		pkt, _ := enc.ReceivePacket()
		return pkt.Data
	}
	a, b := encode(), encode()
	if string(a) != string(b) {
		t.Fatal("encoder is not deterministic across identical runs")
	}
}

func TestRateControlStats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetBitrate = 500_000
	enc, err := New(64, 64, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := enc.RateControlStats(); !ok {
		t.Fatal("expected rate control stats to be available")
	}
	if err := enc.SendFrame(solidFrame(64, 64, 128, 128, 128)); err != nil {
		t.Fatal(err)
	}
	enc.ReceivePacket()
	stats, ok := enc.RateControlStats()
	if !ok || stats.FramesEncoded != 1 {
		t.Fatalf("stats = %+v, ok = %v", stats, ok)
	}
}

func TestNoRateControlStatsWithoutBitrate(t *testing.T) {
	enc, err := New(64, 64, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := enc.RateControlStats(); ok {
		t.Fatal("expected no rate control stats without a bitrate target")
	}
}
