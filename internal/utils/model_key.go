package utils

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ModelKey derives the storage key for a model version. The version is
// written big-endian into the first four bytes of a zeroed 32-byte buffer
// which is then hashed, so the same version always maps to the same key
// across restarts and implementations.
func ModelKey(version uint32) common.Hash {
	var buf [32]byte
	binary.BigEndian.PutUint32(buf[:4], version)
	return crypto.Keccak256Hash(buf[:])
}
