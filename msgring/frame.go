// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: frame.go — element framing for the variable-length SPSC ring
//
// Layout (8 bytes, little-endian, 8-byte aligned):
//
//	uint32 size   // live payload bytes following the header (gap: bytes to arena end)
//	uint32 gap    // 0 = real element, 1 = placeholder the consumer skips
//
// Payloads are padded to the same 8-byte unit so the next header is aligned.
// Every element therefore occupies headerSize + align(size) bytes.
// ─────────────────────────────────────────────────────────────────────────────

package msgring

import "encoding/binary"

const (
	// headerSize is the framing header length and also the alignment unit.
	headerSize = 8

	// alignMask rounds sizes to headerSize multiples.
	alignMask = headerSize - 1

	// minCapacity keeps room for at least one non-empty element.
	minCapacity = 2 * headerSize

	// maxCapacity bounds the arena so that any span fits the 32-bit size field.
	maxCapacity = 1 << 31

	gapFlag  = 1
	realFlag = 0
)

// header is the decoded form of an element prefix.
type header struct {
	size uint32
	gap  bool
}

// align rounds n up to the next multiple of headerSize.
//
//go:nosplit
//go:inline
func align(n uint64) uint64 {
	return (n + alignMask) &^ alignMask
}

// framed returns the arena footprint of an element carrying size payload bytes.
//
//go:nosplit
//go:inline
func framed(size uint64) uint64 {
	return headerSize + align(size)
}

// putHeader encodes h at b[0:8].
func putHeader(b []byte, size uint32, flag uint32) {
	_ = b[headerSize-1]
	binary.LittleEndian.PutUint32(b[0:4], size)
	binary.LittleEndian.PutUint32(b[4:8], flag)
}

// getHeader decodes the prefix stored at b[0:8].
func getHeader(b []byte) header {
	_ = b[headerSize-1]
	return header{
		size: binary.LittleEndian.Uint32(b[0:4]),
		gap:  binary.LittleEndian.Uint32(b[4:8]) == gapFlag,
	}
}
