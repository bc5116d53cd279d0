package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// HashContent returns a hex encoded sha256 over the length prefixed parts.
func HashContent(parts ...[]byte) string {
	hasher := sha256.New()
	for _, p := range parts {
		hasher.Write(binary.LittleEndian.AppendUint64(nil, uint64(len(p))))
		hasher.Write(p)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
