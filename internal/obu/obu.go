// Package obu implements AV1 Open Bitstream Unit framing: LEB128 varint
// encoding and the OBU header/size wrapper used to package every header and
// frame payload this encoder emits.
package obu

// Type identifies the obu_type syntax element. Only the three OBU types
// this encoder ever emits are named; the full AV1 OBU type space (tile
// groups, metadata, padding) is out of scope.
type Type uint8

const (
	SequenceHeader    Type = 1
	TemporalDelimiter Type = 2
	Frame             Type = 6
)

// EncodeLEB128 encodes value as an unsigned LEB128 varint, least
// significant group first, continuation bit set on every byte but the
// last.
func EncodeLEB128(value uint64) []byte {
	var result []byte
	for {
		b := byte(value & 0x7F)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if value == 0 {
			break
		}
	}
	return result
}

// Wrap packages payload as a complete OBU: a header byte with
// obu_has_size_field set, a LEB128-encoded size, and the payload bytes.
// obu_extension_flag is always 0 — this encoder never emits temporal or
// spatial layers.
func Wrap(obuType Type, payload []byte) []byte {
	headerByte := byte(obuType)<<3 | 1<<1
	sizeBytes := EncodeLEB128(uint64(len(payload)))
	result := make([]byte, 0, 1+len(sizeBytes)+len(payload))
	result = append(result, headerByte)
	result = append(result, sizeBytes...)
	result = append(result, payload...)
	return result
}
