// Package wire packs and unpacks the fixed-width big-endian words used by
// sector and slot headers on flash.
package wire

// PutUint32 writes n into buf as big-endian. buf must be exactly 4 bytes.
func PutUint32(buf []byte, n uint32) {
	if len(buf) != 4 {
		panic("wire: PutUint32 needs a 4-byte buffer")
	}
	buf[0] = byte(n >> 24)
	buf[1] = byte(n >> 16)
	buf[2] = byte(n >> 8)
	buf[3] = byte(n)
}

// GetUint32 reads a big-endian uint32 from buf. buf must be exactly 4 bytes.
func GetUint32(buf []byte) uint32 {
	if len(buf) != 4 {
		panic("wire: GetUint32 needs a 4-byte buffer")
	}
	var n uint32
	n |= uint32(buf[0]) << 24
	n |= uint32(buf[1]) << 16
	n |= uint32(buf[2]) << 8
	n |= uint32(buf[3])
	return n
}
