package protocol

// ChecksumSize is the byte length of the trailing checksum field.
const ChecksumSize = 2

// Checksum sums data modulo 65536 and swaps the two bytes of the sum. The
// result is stored big-endian, so the low byte of the sum goes first on the wire.
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum<<8 | sum>>8
}

// ChecksumField wraps the checksum of data in a two byte field.
func ChecksumField(data []byte) Field {
	return NewSizedField(uint64(Checksum(data)), ChecksumSize)
}
