package obu

import "bytes"

import "testing"

func TestEncodeLEB128(t *testing.T) {
	cases := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{6, []byte{0x06}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
	}
	for _, c := range cases {
		if got := EncodeLEB128(c.value); !bytes.Equal(got, c.want) {
			t.Errorf("EncodeLEB128(%d) = %x, want %x", c.value, got, c.want)
		}
	}
}

func TestWrapTemporalDelimiter(t *testing.T) {
	got := Wrap(TemporalDelimiter, nil)
	want := []byte{0x12, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWrapSequenceHeader6Bytes(t *testing.T) {
	payload := []byte{0x18, 0x15, 0x7f, 0xfc, 0x00, 0x08}
	got := Wrap(SequenceHeader, payload)
	if got[0] != 0x0A {
		t.Errorf("header byte = %x, want 0A", got[0])
	}
	if got[1] != 0x06 {
		t.Errorf("size byte = %x, want 06", got[1])
	}
	if !bytes.Equal(got[2:], payload) {
		t.Errorf("payload = %x, want %x", got[2:], payload)
	}
}

func TestWrapFrame16Bytes(t *testing.T) {
	payload := make([]byte, 16)
	got := Wrap(Frame, payload)
	if got[0] != 0x32 {
		t.Errorf("header byte = %x, want 32", got[0])
	}
	if got[1] != 0x10 {
		t.Errorf("size byte = %x, want 10", got[1])
	}
	if len(got) != 2+16 {
		t.Errorf("len = %d, want 18", len(got))
	}
}
