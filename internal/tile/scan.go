// Package tile implements the superblock partition walk, intra/inter
// block coding, and coefficient entropy coding that turn one decoded
// frame's pixels into tile data. Ported from original_source/src/tile.rs
// and original_source/src/scan.rs.
package tile

// DefaultScan4x4 is the coefficient scan order for 4x4 transform blocks.
var DefaultScan4x4 = [16]uint16{
	0, 4, 1, 2, 5, 8, 12, 9, 6, 3, 7, 10, 13, 14, 11, 15,
}

// DefaultScan8x8 is the coefficient scan order for 8x8 transform blocks.
var DefaultScan8x8 = [64]uint16{
	0, 8, 1, 2, 9, 16, 24, 17, 10, 3, 4, 11, 18, 25, 32, 40,
	33, 26, 19, 12, 5, 6, 13, 20, 27, 34, 41, 48, 56, 49, 42, 35,
	28, 21, 14, 7, 15, 22, 29, 36, 43, 50, 57, 58, 51, 44, 37, 30,
	23, 31, 38, 45, 52, 59, 60, 53, 46, 39, 47, 54, 61, 62, 55, 63,
}

// loCtxOffsets2D maps (row, col), each clamped to 4, to the neighbor-sum
// context band used when deriving a coefficient's base_tok context.
var loCtxOffsets2D = [5][5]uint8{
	{0, 1, 6, 6, 21},
	{1, 6, 6, 21, 21},
	{6, 6, 21, 21, 21},
	{6, 21, 21, 21, 21},
	{21, 21, 21, 21, 21},
}
