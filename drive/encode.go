package drive

import (
	"encoding/binary"
	"fmt"
)

// Persisted scalars are fixed-width big-endian items: u64 for times,
// heights and credits, u16 for epoch indexes, one byte for the fee
// multiplier.

func encodeUint64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func decodeUint64(raw []byte, what string) (uint64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("drive: %s holds %d bytes, want 8: %w", what, len(raw), ErrUnexpectedWidth)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func encodeUint16(v uint16) []byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return buf[:]
}

func decodeUint16(raw []byte, what string) (uint16, error) {
	if len(raw) != 2 {
		return 0, fmt.Errorf("drive: %s holds %d bytes, want 2: %w", what, len(raw), ErrUnexpectedWidth)
	}
	return binary.BigEndian.Uint16(raw), nil
}

func decodeByte(raw []byte, what string) (byte, error) {
	if len(raw) != 1 {
		return 0, fmt.Errorf("drive: %s holds %d bytes, want 1: %w", what, len(raw), ErrUnexpectedWidth)
	}
	return raw[0], nil
}
