package storage

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Pointer derives the content identifier for a snapshot file: the hex
// keccak256 digest of the file bytes. Anyone fetching the pointer-addressed
// file can recompute it to detect substitution.
func Pointer(data []byte) string {
	return hexutil.Encode(crypto.Keccak256(data))
}
