// Package transform implements the forward and inverse 1-D and 2-D
// DCT/ADST/identity kernels used to turn residual samples into quantizable
// coefficients and back. Every kernel is a fixed-point butterfly network;
// none of it benefits from a general linear-algebra library (see
// DESIGN.md) so it is hand-unrolled the way the reference implementation
// writes it.
package transform

func clip16(v int32) int32 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return v
}

// TxType names the row/column kernel pairing for a transform block.
// Values match the subset of the AV1 tx_type enumeration this encoder
// emits: identity is numbered 9 to leave room for the tx types this
// encoder never selects.
type TxType int

const (
	DctDct TxType = iota
	AdstDct
	DctAdst
	AdstAdst
	Idtx TxType = 9
)

type kernel1D func(data []int32, offset, stride int)

// --- 4-point kernels ---

func invDCT4(data []int32, offset, stride int) {
	in0 := data[offset]
	in1 := data[offset+stride]
	in2 := data[offset+2*stride]
	in3 := data[offset+3*stride]

	t0 := ((in0 + in2) * 181 + 128) >> 8
	t1 := ((in0 - in2) * 181 + 128) >> 8
	t2 := ((in1*1567 - in3*(3784-4096) + 2048) >> 12) - in3
	t3 := ((in1*(3784-4096) + in3*1567 + 2048) >> 12) + in1

	data[offset] = clip16(t0 + t3)
	data[offset+stride] = clip16(t1 + t2)
	data[offset+2*stride] = clip16(t1 - t2)
	data[offset+3*stride] = clip16(t0 - t3)
}

func fwdDCT4Values(in0, in1, in2, in3 int32) (int32, int32, int32, int32) {
	s0 := in0 + in3
	s1 := in1 + in2
	s2 := in1 - in2
	s3 := in0 - in3

	out0 := ((s0 + s1) * 181 + 128) >> 8
	out1 := ((s3*(3784-4096) + s2*1567 + 2048) >> 12) + s3
	out2 := ((s0 - s1) * 181 + 128) >> 8
	out3 := ((s3*1567 - s2*(3784-4096) + 2048) >> 12) - s2

	return out0, out1, out2, out3
}

func fwdDCT4(data []int32, offset, stride int) {
	out0, out1, out2, out3 := fwdDCT4Values(data[offset], data[offset+stride], data[offset+2*stride], data[offset+3*stride])
	data[offset] = out0
	data[offset+stride] = out1
	data[offset+2*stride] = out2
	data[offset+3*stride] = out3
}

func fwdADST4(data []int32, offset, stride int) {
	in0 := data[offset]
	in1 := data[offset+stride]
	in2 := data[offset+2*stride]
	in3 := data[offset+3*stride]

	s0 := 1321*in0 + 2482*in1 + 3344*in2 + 3803*in3
	s1 := 3344 * (in0 + in1 - in3)
	s2 := 3803*in0 - 1321*in1 - 3344*in2 + 2482*in3
	s3 := 2482*in0 - 3803*in1 + 3344*in2 - 1321*in3

	data[offset] = (s0 + 2048) >> 12
	data[offset+stride] = (s1 + 2048) >> 12
	data[offset+2*stride] = (s2 + 2048) >> 12
	data[offset+3*stride] = (s3 + 2048) >> 12
}

func invADST4(data []int32, offset, stride int) {
	in0 := data[offset]
	in1 := data[offset+stride]
	in2 := data[offset+2*stride]
	in3 := data[offset+3*stride]

	o0 := ((1321*in0 + (3803-4096)*in2 + (2482-4096)*in3 + (3344-4096)*in1 + 2048) >> 12) + in2 + in3 + in1
	o1 := (((2482-4096)*in0 - 1321*in2 - (3803-4096)*in3 + (3344-4096)*in1 + 2048) >> 12) + in0 - in3 + in1
	o2 := (209*(in0-in2+in3) + 128) >> 8
	o3 := (((3803-4096)*in0+(2482-4096)*in2-1321*in3-(3344-4096)*in1 + 2048) >> 12) + in0 + in2 - in1

	data[offset] = clip16(o0)
	data[offset+stride] = clip16(o1)
	data[offset+2*stride] = clip16(o2)
	data[offset+3*stride] = clip16(o3)
}

func fwdIdentity4(data []int32, offset, stride int) {
	for i := 0; i < 4; i++ {
		v := data[offset+i*stride]
		data[offset+i*stride] = v + ((v*1697 + 2048) >> 12)
	}
}

func invIdentity4(data []int32, offset, stride int) {
	fwdIdentity4(data, offset, stride)
}

// --- 8-point kernels ---

func invDCT8(data []int32, offset, stride int) {
	invDCT4(data, offset, stride*2)

	in1 := data[offset+stride]
	in3 := data[offset+3*stride]
	in5 := data[offset+5*stride]
	in7 := data[offset+7*stride]

	t4a := ((in1*799 - in7*(4017-4096) + 2048) >> 12) - in7
	t5a := (in5*1703 - in3*1138 + 1024) >> 11
	t6a := (in5*1138 + in3*1703 + 1024) >> 11
	t7a := ((in1*(4017-4096) + in7*799 + 2048) >> 12) + in1

	t4 := clip16(t4a + t5a)
	t5a2 := clip16(t4a - t5a)
	t7 := clip16(t7a + t6a)
	t6a2 := clip16(t7a - t6a)

	t5 := ((t6a2 - t5a2) * 181 + 128) >> 8
	t6 := ((t6a2 + t5a2) * 181 + 128) >> 8

	t0 := data[offset]
	t1 := data[offset+2*stride]
	t2 := data[offset+4*stride]
	t3 := data[offset+6*stride]

	data[offset] = clip16(t0 + t7)
	data[offset+stride] = clip16(t1 + t6)
	data[offset+2*stride] = clip16(t2 + t5)
	data[offset+3*stride] = clip16(t3 + t4)
	data[offset+4*stride] = clip16(t3 - t4)
	data[offset+5*stride] = clip16(t2 - t5)
	data[offset+6*stride] = clip16(t1 - t6)
	data[offset+7*stride] = clip16(t0 - t7)
}

func fwdDCT8Values(in0, in1, in2, in3, in4, in5, in6, in7 int32) (int32, int32, int32, int32, int32, int32, int32, int32) {
	s0 := in0 + in7
	s1 := in1 + in6
	s2 := in2 + in5
	s3 := in3 + in4
	s4 := in3 - in4
	s5 := in2 - in5
	s6 := in1 - in6
	s7 := in0 - in7

	e0, e1, e2, e3 := fwdDCT4Values(s0, s1, s2, s3)

	t5 := ((s6 - s5) * 181 + 128) >> 8
	t6 := ((s6 + s5) * 181 + 128) >> 8

	t4a := clip16(s4 + t5)
	t5a := clip16(s4 - t5)
	t7a := clip16(s7 + t6)
	t6a := clip16(s7 - t6)

	o1 := ((t7a*(4017-4096) + t4a*799 + 2048) >> 12) + t7a
	o3 := (t6a*1703 - t5a*1138 + 1024) >> 11
	o5 := (t5a*1703 + t6a*1138 + 1024) >> 11
	o7 := ((t7a*799 - t4a*(4017-4096) + 2048) >> 12) - t4a

	return e0, o1, e1, o3, e2, o5, e3, o7
}

func fwdDCT8(data []int32, offset, stride int) {
	o0, o1, o2, o3, o4, o5, o6, o7 := fwdDCT8Values(
		data[offset], data[offset+stride], data[offset+2*stride], data[offset+3*stride],
		data[offset+4*stride], data[offset+5*stride], data[offset+6*stride], data[offset+7*stride])
	data[offset] = o0
	data[offset+stride] = o1
	data[offset+2*stride] = o2
	data[offset+3*stride] = o3
	data[offset+4*stride] = o4
	data[offset+5*stride] = o5
	data[offset+6*stride] = o6
	data[offset+7*stride] = o7
}

func fwdADST8(data []int32, offset, stride int) {
	in0 := data[offset+7*stride]
	in1 := data[offset]
	in2 := data[offset+5*stride]
	in3 := data[offset+2*stride]
	in4 := data[offset+3*stride]
	in5 := data[offset+4*stride]
	in6 := data[offset+stride]
	in7 := data[offset+6*stride]

	t0a := (((4076-4096)*in0 + 401*in1 + 2048) >> 12) + in0
	t1a := ((401*in0 - (4076-4096)*in1 + 2048) >> 12) - in1
	t2a := (((3612-4096)*in2 + 1931*in3 + 2048) >> 12) + in2
	t3a := ((1931*in2 - (3612-4096)*in3 + 2048) >> 12) - in3
	t4a := (1299*in4 + 1583*in5 + 1024) >> 11
	t5a := (1583*in4 - 1299*in5 + 1024) >> 11
	t6a := ((1189*in6 + (3920-4096)*in7 + 2048) >> 12) + in7
	t7a := (((3920-4096)*in6 - 1189*in7 + 2048) >> 12) + in6

	t0 := clip16(t0a + t4a)
	t1 := clip16(t1a + t5a)
	t2 := clip16(t2a + t6a)
	t3 := clip16(t3a + t7a)
	t4 := clip16(t0a - t4a)
	t5 := clip16(t1a - t5a)
	t6 := clip16(t2a - t6a)
	t7 := clip16(t3a - t7a)

	t4b := (((3784-4096)*t4 + 1567*t5 + 2048) >> 12) + t4
	t5b := ((1567*t4 - (3784-4096)*t5 + 2048) >> 12) - t5
	t6b := (((3784-4096)*t7 - 1567*t6 + 2048) >> 12) + t7
	t7b := ((1567*t7 + (3784-4096)*t6 + 2048) >> 12) + t6

	o0 := clip16(t0 + t2)
	o7 := clip16(t1 + t3)
	t2f := clip16(t0 - t2)
	t3f := clip16(t1 - t3)
	o1 := clip16(t4b + t6b)
	o6 := clip16(t5b + t7b)
	t6f := clip16(t4b - t6b)
	t7f := clip16(t5b - t7b)

	data[offset] = o0
	data[offset+stride] = -o1
	data[offset+2*stride] = ((t6f + t7f) * 181 + 128) >> 8
	data[offset+3*stride] = -(((t2f + t3f) * 181 + 128) >> 8)
	data[offset+4*stride] = ((t2f - t3f) * 181 + 128) >> 8
	data[offset+5*stride] = -(((t6f - t7f) * 181 + 128) >> 8)
	data[offset+6*stride] = o6
	data[offset+7*stride] = -o7
}

func invADST8(data []int32, offset, stride int) {
	in0 := data[offset]
	in1 := data[offset+stride]
	in2 := data[offset+2*stride]
	in3 := data[offset+3*stride]
	in4 := data[offset+4*stride]
	in5 := data[offset+5*stride]
	in6 := data[offset+6*stride]
	in7 := data[offset+7*stride]

	t0a := (((4076-4096)*in7 + 401*in0 + 2048) >> 12) + in7
	t1a := ((401*in7 - (4076-4096)*in0 + 2048) >> 12) - in0
	t2a := (((3612-4096)*in5 + 1931*in2 + 2048) >> 12) + in5
	t3a := ((1931*in5 - (3612-4096)*in2 + 2048) >> 12) - in2
	t4a := (1299*in3 + 1583*in4 + 1024) >> 11
	t5a := (1583*in3 - 1299*in4 + 1024) >> 11
	t6a := ((1189*in1 + (3920-4096)*in6 + 2048) >> 12) + in6
	t7a := (((3920-4096)*in1 - 1189*in6 + 2048) >> 12) + in1

	t0 := clip16(t0a + t4a)
	t1 := clip16(t1a + t5a)
	t2 := clip16(t2a + t6a)
	t3 := clip16(t3a + t7a)
	t4 := clip16(t0a - t4a)
	t5 := clip16(t1a - t5a)
	t6 := clip16(t2a - t6a)
	t7 := clip16(t3a - t7a)

	t4b := (((3784-4096)*t4 + 1567*t5 + 2048) >> 12) + t4
	t5b := ((1567*t4 - (3784-4096)*t5 + 2048) >> 12) - t5
	t6b := (((3784-4096)*t7 - 1567*t6 + 2048) >> 12) + t7
	t7b := ((1567*t7 + (3784-4096)*t6 + 2048) >> 12) + t6

	data[offset] = clip16(t0 + t2)
	data[offset+7*stride] = -clip16(t1 + t3)
	t2f := clip16(t0 - t2)
	t3f := clip16(t1 - t3)
	data[offset+stride] = -clip16(t4b + t6b)
	data[offset+6*stride] = clip16(t5b + t7b)
	t6f := clip16(t4b - t6b)
	t7f := clip16(t5b - t7b)

	data[offset+3*stride] = -(((t2f + t3f) * 181 + 128) >> 8)
	data[offset+4*stride] = ((t2f - t3f) * 181 + 128) >> 8
	data[offset+2*stride] = ((t6f + t7f) * 181 + 128) >> 8
	data[offset+5*stride] = -(((t6f - t7f) * 181 + 128) >> 8)
}

func fwdIdentity8(data []int32, offset, stride int) {
	for i := 0; i < 8; i++ {
		data[offset+i*stride] *= 2
	}
}

func invIdentity8(data []int32, offset, stride int) {
	fwdIdentity8(data, offset, stride)
}

// --- 16-point kernels ---

func invDCT16(data []int32, offset, stride int) {
	invDCT8(data, offset, stride*2)

	in1 := data[offset+stride]
	in3 := data[offset+3*stride]
	in5 := data[offset+5*stride]
	in7 := data[offset+7*stride]
	in9 := data[offset+9*stride]
	in11 := data[offset+11*stride]
	in13 := data[offset+13*stride]
	in15 := data[offset+15*stride]

	t8a := ((in1*401 - in15*(4076-4096) + 2048) >> 12) - in15
	t9a := (in9*1583 - in7*1299 + 1024) >> 11
	t10a := ((in5*1931 - in11*(3612-4096) + 2048) >> 12) - in11
	t11a := ((in13*(3920-4096) - in3*1189 + 2048) >> 12) + in13
	t12a := ((in13*1189 + in3*(3920-4096) + 2048) >> 12) + in3
	t13a := ((in5*(3612-4096) + in11*1931 + 2048) >> 12) + in5
	t14a := (in9*1299 + in7*1583 + 1024) >> 11
	t15a := ((in1*(4076-4096) + in15*401 + 2048) >> 12) + in1

	t8 := clip16(t8a + t9a)
	t9 := clip16(t8a - t9a)
	t10 := clip16(t11a - t10a)
	t11 := clip16(t11a + t10a)
	t12 := clip16(t12a + t13a)
	t13 := clip16(t12a - t13a)
	t14 := clip16(t15a - t14a)
	t15 := clip16(t15a + t14a)

	t9b := ((t14*1567 - t9*(3784-4096) + 2048) >> 12) - t9
	t14b := ((t14*(3784-4096) + t9*1567 + 2048) >> 12) + t14
	t10b := ((-(t13*(3784-4096) + t10*1567) + 2048) >> 12) - t13
	t13b := ((t13*1567 - t10*(3784-4096) + 2048) >> 12) - t10

	t8b := clip16(t8 + t11)
	t9c := clip16(t9b + t10b)
	t10c := clip16(t9b - t10b)
	t11b := clip16(t8 - t11)
	t12b := clip16(t15 - t12)
	t13c := clip16(t14b - t13b)
	t14c := clip16(t14b + t13b)
	t15b := clip16(t15 + t12)

	t10d := ((t13c - t10c) * 181 + 128) >> 8
	t13d := ((t13c + t10c) * 181 + 128) >> 8
	t11c := ((t12b - t11b) * 181 + 128) >> 8
	t12c := ((t12b + t11b) * 181 + 128) >> 8

	t0 := data[offset]
	t1 := data[offset+2*stride]
	t2 := data[offset+4*stride]
	t3 := data[offset+6*stride]
	t4 := data[offset+8*stride]
	t5 := data[offset+10*stride]
	t6 := data[offset+12*stride]
	t7 := data[offset+14*stride]

	data[offset] = clip16(t0 + t15b)
	data[offset+stride] = clip16(t1 + t14c)
	data[offset+2*stride] = clip16(t2 + t13d)
	data[offset+3*stride] = clip16(t3 + t12c)
	data[offset+4*stride] = clip16(t4 + t11c)
	data[offset+5*stride] = clip16(t5 + t10d)
	data[offset+6*stride] = clip16(t6 + t9c)
	data[offset+7*stride] = clip16(t7 + t8b)
	data[offset+8*stride] = clip16(t7 - t8b)
	data[offset+9*stride] = clip16(t6 - t9c)
	data[offset+10*stride] = clip16(t5 - t10d)
	data[offset+11*stride] = clip16(t4 - t11c)
	data[offset+12*stride] = clip16(t3 - t12c)
	data[offset+13*stride] = clip16(t2 - t13d)
	data[offset+14*stride] = clip16(t1 - t14c)
	data[offset+15*stride] = clip16(t0 - t15b)
}

func fwdDCT16(data []int32, offset, stride int) {
	in := make([]int32, 16)
	for i := 0; i < 16; i++ {
		in[i] = data[offset+i*stride]
	}

	s := make([]int32, 8)
	d := make([]int32, 8)
	for i := 0; i < 8; i++ {
		s[i] = in[i] + in[15-i]
		d[i] = in[i] - in[15-i]
	}

	e0, e1, e2, e3, e4, e5, e6, e7 := fwdDCT8Values(s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7])

	u0 := ((d[2] - d[5]) * 181 + 128) >> 8
	u1 := ((d[2] + d[5]) * 181 + 128) >> 8
	u2 := ((d[3] - d[4]) * 181 + 128) >> 8
	u3 := ((d[3] + d[4]) * 181 + 128) >> 8

	t8 := clip16(d[7] + u2)
	t11 := clip16(d[7] - u2)
	t9a := clip16(d[6] + u0)
	t10a := clip16(d[6] - u0)
	t12 := clip16(d[0] - u3)
	t15 := clip16(d[0] + u3)
	t13a := clip16(d[1] - u1)
	t14a := clip16(d[1] + u1)

	t9 := ((t14a*1567 - t9a*(3784-4096) + 2048) >> 12) - t9a
	t14 := ((t14a*(3784-4096) + t9a*1567 + 2048) >> 12) + t14a
	t10 := ((-t10a*1567 - t13a*(3784-4096) + 2048) >> 12) - t13a
	t13 := ((-t10a*(3784-4096) + t13a*1567 + 2048) >> 12) - t10a

	t8a := clip16(t8 + t9)
	t9b := clip16(t8 - t9)
	t10b := clip16(t11 - t10)
	t11a := clip16(t11 + t10)
	t12a := clip16(t12 + t13)
	t13b := clip16(t12 - t13)
	t14b := clip16(t15 - t14)
	t15a := clip16(t15 + t14)

	o1 := ((t15a*(4076-4096) + t8a*401 + 2048) >> 12) + t15a
	o15 := ((t15a*401 - t8a*(4076-4096) + 2048) >> 12) - t8a
	o9 := (t9b*1583 + t14b*1299 + 1024) >> 11
	o7 := (t14b*1583 - t9b*1299 + 1024) >> 11
	o5 := ((t13b*(3612-4096) + t10b*1931 + 2048) >> 12) + t13b
	o11 := ((t13b*1931 - t10b*(3612-4096) + 2048) >> 12) - t10b
	o13 := ((t11a*(3920-4096) + t12a*1189 + 2048) >> 12) + t11a
	o3 := ((-t11a*1189 + t12a*(3920-4096) + 2048) >> 12) + t12a

	data[offset] = e0
	data[offset+stride] = o1
	data[offset+2*stride] = e1
	data[offset+3*stride] = o3
	data[offset+4*stride] = e2
	data[offset+5*stride] = o5
	data[offset+6*stride] = e3
	data[offset+7*stride] = o7
	data[offset+8*stride] = e4
	data[offset+9*stride] = o9
	data[offset+10*stride] = e5
	data[offset+11*stride] = o11
	data[offset+12*stride] = e6
	data[offset+13*stride] = o13
	data[offset+14*stride] = e7
	data[offset+15*stride] = o15
}

// --- transpose ---

func transpose(buf []int32, n int) {
	for r := 0; r < n; r++ {
		for c := r + 1; c < n; c++ {
			a, b := r*n+c, c*n+r
			buf[a], buf[b] = buf[b], buf[a]
		}
	}
}

func fwdKernels4(t TxType) (kernel1D, kernel1D) {
	switch t {
	case AdstDct:
		return fwdDCT4, fwdADST4
	case DctAdst:
		return fwdADST4, fwdDCT4
	case AdstAdst:
		return fwdADST4, fwdADST4
	case Idtx:
		return fwdIdentity4, fwdIdentity4
	default:
		return fwdDCT4, fwdDCT4
	}
}

func invKernels4(t TxType) (kernel1D, kernel1D) {
	switch t {
	case AdstDct:
		return invDCT4, invADST4
	case DctAdst:
		return invADST4, invDCT4
	case AdstAdst:
		return invADST4, invADST4
	case Idtx:
		return invIdentity4, invIdentity4
	default:
		return invDCT4, invDCT4
	}
}

func fwdKernels8(t TxType) (kernel1D, kernel1D) {
	switch t {
	case AdstDct:
		return fwdDCT8, fwdADST8
	case DctAdst:
		return fwdADST8, fwdDCT8
	case AdstAdst:
		return fwdADST8, fwdADST8
	case Idtx:
		return fwdIdentity8, fwdIdentity8
	default:
		return fwdDCT8, fwdDCT8
	}
}

func invKernels8(t TxType) (kernel1D, kernel1D) {
	switch t {
	case AdstDct:
		return invDCT8, invADST8
	case DctAdst:
		return invADST8, invDCT8
	case AdstAdst:
		return invADST8, invADST8
	case Idtx:
		return invIdentity8, invIdentity8
	default:
		return invDCT8, invDCT8
	}
}

// Forward4x4 applies the forward transform for tx to a 16-entry residual
// buffer in row-major order and returns the coefficient buffer, also
// row-major.
func Forward4x4(residual [16]int32, t TxType) [16]int32 {
	rowFn, colFn := fwdKernels4(t)
	buf := residual[:]
	for i := range buf {
		buf[i] <<= 2
	}
	for row := 0; row < 4; row++ {
		rowFn(buf, row*4, 1)
	}
	for col := 0; col < 4; col++ {
		colFn(buf, col, 4)
	}
	transpose(buf, 4)
	var out [16]int32
	copy(out[:], buf)
	return out
}

// Inverse4x4 is the inverse of Forward4x4.
func Inverse4x4(coeffs [16]int32, t TxType) [16]int32 {
	rowFn, colFn := invKernels4(t)
	buf := coeffs[:]
	transpose(buf, 4)
	for row := 0; row < 4; row++ {
		rowFn(buf, row*4, 1)
	}
	for col := 0; col < 4; col++ {
		colFn(buf, col, 4)
	}
	for i := range buf {
		buf[i] = (buf[i] + 8) >> 4
	}
	var out [16]int32
	copy(out[:], buf)
	return out
}

// Forward8x8 applies the forward transform for tx to a 64-entry residual
// buffer in row-major order.
func Forward8x8(residual [64]int32, t TxType) [64]int32 {
	rowFn, colFn := fwdKernels8(t)
	buf := residual[:]
	for i := range buf {
		buf[i] <<= 2
	}
	for row := 0; row < 8; row++ {
		rowFn(buf, row*8, 1)
	}
	for i := range buf {
		buf[i] = (buf[i] + 1) >> 1
	}
	for col := 0; col < 8; col++ {
		colFn(buf, col, 8)
	}
	transpose(buf, 8)
	var out [64]int32
	copy(out[:], buf)
	return out
}

// Inverse8x8 is the inverse of Forward8x8.
func Inverse8x8(coeffs [64]int32, t TxType) [64]int32 {
	rowFn, colFn := invKernels8(t)
	buf := coeffs[:]
	transpose(buf, 8)
	for row := 0; row < 8; row++ {
		rowFn(buf, row*8, 1)
	}
	for i := range buf {
		buf[i] = (buf[i] + 1) >> 1
	}
	for col := 0; col < 8; col++ {
		colFn(buf, col, 8)
	}
	for i := range buf {
		buf[i] = (buf[i] + 8) >> 4
	}
	var out [64]int32
	copy(out[:], buf)
	return out
}

// Forward16x16 applies the forward DCT-DCT transform to a 256-entry
// residual buffer; this encoder only ever selects DctDct at 16x16 (ADST
// and identity 16-point kernels are not part of the AV1 profile this
// encoder targets).
func Forward16x16(residual [256]int32) [256]int32 {
	buf := residual[:]
	for i := range buf {
		buf[i] <<= 2
	}
	for row := 0; row < 16; row++ {
		fwdDCT16(buf, row*16, 1)
	}
	for i := range buf {
		buf[i] = (buf[i] + 2) >> 2
	}
	for col := 0; col < 16; col++ {
		fwdDCT16(buf, col, 16)
	}
	transpose(buf, 16)
	var out [256]int32
	copy(out[:], buf)
	return out
}

// Inverse16x16 is the inverse of Forward16x16.
func Inverse16x16(coeffs [256]int32) [256]int32 {
	buf := coeffs[:]
	transpose(buf, 16)
	for row := 0; row < 16; row++ {
		invDCT16(buf, row*16, 1)
	}
	for i := range buf {
		buf[i] = (buf[i] + 2) >> 2
	}
	for col := 0; col < 16; col++ {
		invDCT16(buf, col, 16)
	}
	for i := range buf {
		buf[i] = (buf[i] + 8) >> 4
	}
	var out [256]int32
	copy(out[:], buf)
	return out
}
