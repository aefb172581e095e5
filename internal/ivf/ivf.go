// Package ivf writes the IVF container this encoder's CLI wraps its OBU
// output in: a fixed 32-byte file header followed by one record per coded
// frame. Grounded on wav1c-cli's IVF writer (SPEC_FULL.md DOMAIN STACK —
// supplemented features), which this encoder's own test suite round-trips
// against rather than any third-party container library, matching
// spec.md §1's framing of container writers as external, thin glue.
package ivf

import (
	"encoding/binary"
)

// Writer accumulates IVF frame records and produces the final file bytes
// once the frame count is known (the header's num_frames field is filled
// in at Bytes time, not at construction).
type Writer struct {
	width, height uint32
	timescale     uint32
	tick          uint32
	frames        [][]byte
}

// New builds an IVF writer for width x height AV01 frames at the given
// timescale/tick (timescale/tick == frame rate; e.g. 25/1 for 25fps).
func New(width, height uint32, timescale, tick uint32) *Writer {
	return &Writer{width: width, height: height, timescale: timescale, tick: tick}
}

// AddFrame appends one coded frame's OBU bytes as the next IVF record.
func (w *Writer) AddFrame(payload []byte) {
	w.frames = append(w.frames, payload)
}

// Bytes renders the complete IVF file: the 32-byte "DKIF" header followed
// by a {u32 size, u64 pts, payload} record per frame in submission order,
// pts simply the frame's index (spec.md §6).
func (w *Writer) Bytes() []byte {
	out := make([]byte, 32)
	copy(out[0:4], "DKIF")
	binary.LittleEndian.PutUint16(out[4:6], 0)  // version
	binary.LittleEndian.PutUint16(out[6:8], 32) // header length
	copy(out[8:12], "AV01")
	binary.LittleEndian.PutUint16(out[12:14], uint16(w.width))
	binary.LittleEndian.PutUint16(out[14:16], uint16(w.height))
	binary.LittleEndian.PutUint32(out[16:20], w.timescale)
	binary.LittleEndian.PutUint32(out[20:24], w.tick)
	binary.LittleEndian.PutUint32(out[24:28], uint32(len(w.frames)))
	binary.LittleEndian.PutUint32(out[28:32], 0) // unused

	for i, payload := range w.frames {
		rec := make([]byte, 12+len(payload))
		binary.LittleEndian.PutUint32(rec[0:4], uint32(len(payload)))
		binary.LittleEndian.PutUint64(rec[4:12], uint64(i))
		copy(rec[12:], payload)
		out = append(out, rec...)
	}
	return out
}
