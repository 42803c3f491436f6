package logging

import (
	"encoding/hex"
	"log/slog"
)

// Hash renders a 32-byte identifier as a hex attribute abbreviated to
// its first eight bytes.
func Hash(key string, hash [32]byte) slog.Attr {
	return slog.String(key, hex.EncodeToString(hash[:8]))
}

// Epoch renders an epoch index under the canonical "epoch" key.
func Epoch(index uint16) slog.Attr {
	return slog.Int("epoch", int(index))
}
