package model

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Entry is one participant's position in one round. Frozen once the round
// leaves Open.
type Entry struct {
	RoundID        uint64
	Participant    common.Address
	Wagered        *big.Int
	Tickets        uint64
	Weight         uint64
	ProofVerified  bool
	ProofAttempted bool
}

// LeafHash is the entrant-list commitment leaf:
// keccak256(address ‖ tickets ‖ weight), integers big-endian.
func (e *Entry) LeafHash() common.Hash {
	buf := make([]byte, 0, common.AddressLength+16)
	buf = append(buf, e.Participant.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, e.Tickets)
	buf = binary.BigEndian.AppendUint64(buf, e.Weight)
	return crypto.Keccak256Hash(buf)
}

// EntrantRecord is the published snapshot row backing the entrants commit
// root. Any third party can rebuild the tree from these rows alone.
type EntrantRecord struct {
	RoundID uint64 `json:"round_id"`
	Address string `json:"address"`
	Tickets uint64 `json:"tickets"`
	Weight  uint64 `json:"weight"`
}
