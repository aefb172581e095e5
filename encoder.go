// Package av1enc implements a minimal, standards-compliant AV1 video
// encoder. It turns raw 4:2:0 YUV frames into an AV1 OBU byte stream that
// any conforming decoder accepts, trading coding efficiency for
// correctness: every frame is coded with a fixed 8x8 luma / 4x4 chroma
// partition scheme, single-reference inter prediction and a single tile.
package av1enc

import (
	"errors"
	"fmt"

	"github.com/deepteams/av1enc/internal/headers"
	"github.com/deepteams/av1enc/internal/obu"
	"github.com/deepteams/av1enc/internal/quantize"
	"github.com/deepteams/av1enc/internal/rc"
	"github.com/deepteams/av1enc/internal/y4m"
)

// Errors returned by the encoder. SendFrame and New surface only these —
// everything downstream of validation (the tile walk, the arithmetic
// coder) is infallible by construction (spec.md §7).
var (
	ErrInvalidDimensions = errors.New("av1enc: width/height out of range")
	ErrDimensionMismatch = errors.New("av1enc: frame dimensions do not match encoder")
	ErrPendingPacket     = errors.New("av1enc: a packet is already pending; call ReceivePacket first")
	ErrUnsupportedInput  = errors.New("av1enc: only 8-bit limited-range 4:2:0 input is supported")
)

// Bounds on frame dimensions this encoder accepts, matching the AV1 level
// table's largest practical working set (spec.md §7).
const (
	MinWidth  = 1
	MaxWidth  = 4096
	MinHeight = 1
	MaxHeight = 2304
)

// ColorRange identifies a frame's luma/chroma sample range.
type ColorRange int

const (
	ColorRangeLimited ColorRange = iota
	ColorRangeFull
)

// FrameType distinguishes a coded packet's frame type.
type FrameType int

const (
	FrameKey FrameType = iota
	FrameInter
)

func (t FrameType) String() string {
	if t == FrameKey {
		return "key"
	}
	return "inter"
}

// Frame is one submitted input frame: 4:2:0 planes plus the metadata
// needed to validate and code it (spec.md §6 External interfaces).
type Frame struct {
	Y, U, V       []uint8
	Width, Height uint32
	BitDepth      int // 8 or 10; only 8 is implemented, see ErrUnsupportedInput
	ColorRange    ColorRange
}

// Packet is one coded frame's concatenated OBUs (spec.md §3).
type Packet struct {
	Data        []byte
	FrameType   FrameType
	FrameNumber uint64
}

// Config controls encoder-wide behavior. Per-frame quantizer selection is
// either fixed (BaseQIdx) or driven by a bitrate target (TargetBitrate),
// mirroring wav1c-ffi's two quantizer-selection modes (SPEC_FULL.md DOMAIN
// STACK — supplemented features).
type Config struct {
	// BaseQIdx is the fixed quantizer index used when TargetBitrate is 0.
	BaseQIdx uint8
	// Keyint is the mandatory keyframe interval in frames.
	Keyint uint32
	// TargetBitrate, if non-zero, enables single-pass rate control
	// (internal/rc) and BaseQIdx is ignored.
	TargetBitrate uint64
	// FPS is the nominal frame rate, used by rate control and by the
	// sequence header's level derivation.
	FPS float64
	// Speed trades RD-search exhaustiveness for encode time: 0 runs the
	// full mode/tx-type search of spec.md §4.6-4.7, 1 biases the
	// partition-skip heuristic (§4.10) more aggressively. Reserved for
	// the tile encoder's RDO entry points; this build always searches at
	// Speed 0 (internal/tile does not yet expose a fast path).
	Speed int
}

// DefaultConfig returns the encoder's default configuration: base_q_idx
// 128, a 25-frame keyframe interval, fixed quantizer (no rate control),
// 25fps, full RD search. Matches the teacher's DefaultOptions() shape.
func DefaultConfig() Config {
	return Config{
		BaseQIdx: 128,
		Keyint:   25,
		FPS:      25,
	}
}

func (c Config) validate() error {
	if c.Keyint == 0 {
		return fmt.Errorf("av1enc: Keyint must be >= 1")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("av1enc: FPS must be > 0")
	}
	return nil
}

// Encoder codes a sequence of frames into AV1 packets. It is not safe for
// concurrent use — per spec.md §5, one encode call processes one frame to
// completion with no internal parallelism, and the tile encoder exclusively
// owns its coder/CDF/context state for the duration of that call.
type Encoder struct {
	cfg           Config
	width, height uint32

	frameIndex uint64
	reference  *y4m.FramePixels
	rateCtl    *rc.Control

	pending *Packet
}

// New constructs an Encoder for width x height frames. Dimensions outside
// [1,4096]x[1,2304] fail construction (spec.md §7 Invalid dimensions); cfg
// is validated the same way.
func New(width, height uint32, cfg Config) (*Encoder, error) {
	if width < MinWidth || width > MaxWidth || height < MinHeight || height > MaxHeight {
		return nil, ErrInvalidDimensions
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Encoder{cfg: cfg, width: width, height: height}
	if cfg.TargetBitrate > 0 {
		e.rateCtl = rc.New(cfg.TargetBitrate, cfg.FPS, cfg.Keyint, width, height)
	}
	return e, nil
}

// Headers returns the raw sequence_header_obu payload (not OBU-wrapped)
// this encoder would emit for its configured dimensions, for callers that
// want to inspect or golden-test it standalone (spec.md §8 scenario 5).
func (e *Encoder) Headers() []byte {
	return headers.EncodeSequenceHeader(e.width, e.height)
}

// isKeyframe reports whether the frame at the current frame index must be
// coded as a keyframe: the mandatory keyint cadence, or the absence of any
// reference frame (spec.md §3 Reference frame, §4.13 step 1).
func (e *Encoder) isKeyframe() bool {
	if e.reference == nil {
		return true
	}
	return e.frameIndex%uint64(e.cfg.Keyint) == 0
}

func (e *Encoder) baseQIdx(isKey bool) uint8 {
	if e.rateCtl != nil {
		return e.rateCtl.ComputeQP(isKey)
	}
	return e.cfg.BaseQIdx
}

// SendFrame validates and codes one frame, leaving the resulting packet
// in the single-slot pending buffer (spec.md §3 Packet lifecycle). It
// fails — leaving encoder state unmodified — if frame's dimensions don't
// match the encoder, if its format isn't supported, or if a packet from a
// previous SendFrame has not yet been drained via ReceivePacket.
func (e *Encoder) SendFrame(frame *Frame) error {
	if frame.Width != e.width || frame.Height != e.height {
		return ErrDimensionMismatch
	}
	if frame.BitDepth != 0 && frame.BitDepth != 8 {
		return ErrUnsupportedInput
	}
	if e.pending != nil {
		return ErrPendingPacket
	}

	pixels := &y4m.FramePixels{Y: frame.Y, U: frame.U, V: frame.V, Width: frame.Width, Height: frame.Height}

	isKey := e.isKeyframe()
	baseQIdx := e.baseQIdx(isKey)
	dq := quantize.Lookup(baseQIdx, 8)

	td := obu.Wrap(obu.TemporalDelimiter, nil)
	seq := obu.Wrap(obu.SequenceHeader, headers.EncodeSequenceHeader(e.width, e.height))

	var frameBytes []byte
	var recon *y4m.FramePixels
	if isKey {
		frameBytes, recon = headers.EncodeFrameWithRecon(pixels, baseQIdx, dq)
	} else {
		// refresh_frame_flags = 0xFF and ref_slot = 0: this encoder keeps
		// exactly one reference slot, refreshed by every coded frame.
		frameBytes, recon = headers.EncodeInterFrameWithRecon(pixels, e.reference, 0xFF, 0, true, baseQIdx, dq)
	}

	data := make([]byte, 0, len(td)+len(seq)+len(frameBytes)+8)
	data = append(data, td...)
	data = append(data, seq...)
	data = append(data, obu.Wrap(obu.Frame, frameBytes)...)

	if e.rateCtl != nil {
		e.rateCtl.Update(float64(len(data)*8), baseQIdx)
	}

	ft := FrameInter
	if isKey {
		ft = FrameKey
	}
	e.pending = &Packet{Data: data, FrameType: ft, FrameNumber: e.frameIndex}

	e.reference = recon
	e.frameIndex++
	return nil
}

// ReceivePacket drains and returns the pending packet, if any. The second
// return value is false when no packet is waiting.
func (e *Encoder) ReceivePacket() (*Packet, bool) {
	if e.pending == nil {
		return nil, false
	}
	p := e.pending
	e.pending = nil
	return p, true
}

// Flush is a no-op: this encoder has no lookahead or frame reordering, so
// every SendFrame call already produces its packet synchronously. It
// exists for parity with encoders that do buffer frames internally.
func (e *Encoder) Flush() error {
	return nil
}

// RateControlStats returns the current rate-control statistics and true,
// or false if the encoder was constructed without a bitrate target.
func (e *Encoder) RateControlStats() (rc.Stats, bool) {
	if e.rateCtl == nil {
		return rc.Stats{}, false
	}
	return e.rateCtl.StatsSnapshot(), true
}
