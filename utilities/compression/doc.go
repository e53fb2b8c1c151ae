// Package compression reads and writes compressed disk images.
//
// An image is a sequence of fixed-size blocks, and the emptier the device, the
// more of those blocks are nothing but null bytes. Images are stored
// run-length encoded with RLE8 and then gzipped; the combination shrinks a
// mostly empty image far more than either step alone.
//
// RLE8 here is the scheme used by the BMP file format. A byte B that occurs
// N >= 2 times in a row is written twice, followed by one unsigned byte giving
// how many more times it occurs:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// A group covers at most 257 bytes, so longer runs are split: 300 "X" become
// `XX 255 XX 41`. Since the byte is its own escape, a pair of equal bytes costs
// three bytes.
package compression
