package model

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Tier labels a prize slot. The set is closed: slot 0 carries Grand, slot 1
// RunnerUp, all remaining slots Common.
type Tier uint8

const (
	TierGrand Tier = iota
	TierRunnerUp
	TierCommon
)

func (t Tier) String() string {
	switch t {
	case TierGrand:
		return "grand"
	case TierRunnerUp:
		return "runner_up"
	case TierCommon:
		return "common"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// TierForSlot maps a slot index to its tier.
func TierForSlot(slot uint32) Tier {
	switch slot {
	case 0:
		return TierGrand
	case 1:
		return TierRunnerUp
	default:
		return TierCommon
	}
}

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "grand":
		return TierGrand, nil
	case "runner_up":
		return TierRunnerUp, nil
	case "common":
		return TierCommon, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", s)
	}
}

// WinnerSlot is one assigned prize slot.
type WinnerSlot struct {
	Slot    uint32
	Tier    Tier
	Address common.Address
}

// WinnerLeaf is the winners-tree commitment leaf:
// keccak256(address ‖ tier ‖ slot), slot big-endian uint32.
func WinnerLeaf(addr common.Address, tier Tier, slot uint32) common.Hash {
	buf := make([]byte, 0, common.AddressLength+5)
	buf = append(buf, addr.Bytes()...)
	buf = append(buf, byte(tier))
	buf = binary.BigEndian.AppendUint32(buf, slot)
	return crypto.Keccak256Hash(buf)
}

// LeafHash returns the slot's commitment leaf.
func (w WinnerSlot) LeafHash() common.Hash {
	return WinnerLeaf(w.Address, w.Tier, w.Slot)
}

// WinnerRecord is the published snapshot row backing the winners commit root.
type WinnerRecord struct {
	RoundID uint64 `json:"round_id"`
	Slot    uint32 `json:"slot"`
	Tier    string `json:"tier"`
	Address string `json:"address"`
}
