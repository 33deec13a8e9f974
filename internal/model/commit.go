package model

import "github.com/ethereum/go-ethereum/common"

// CommitKind distinguishes the two per-round commitments.
type CommitKind string

const (
	CommitEntrants CommitKind = "entrants"
	CommitWinners  CommitKind = "winners"
)

// CommitRecord binds a 32-byte tree root to the content identifier of the
// off-core file whose leaves hash to that root. Write-once per slot.
type CommitRecord struct {
	RoundID uint64      `json:"round_id"`
	Kind    CommitKind  `json:"kind"`
	Root    common.Hash `json:"root"`
	Pointer string      `json:"pointer"`
}
