package raffle

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"raffleScope/internal/model"
)

// ToRecords converts a frozen entrant list into publishable snapshot rows.
func ToRecords(roundID uint64, entrants []Entrant) []model.EntrantRecord {
	records := make([]model.EntrantRecord, 0, len(entrants))
	for _, e := range entrants {
		records = append(records, model.EntrantRecord{
			RoundID: roundID,
			Address: e.Address.Hex(),
			Tickets: e.Tickets,
			Weight:  e.Weight,
		})
	}
	return records
}

// FromRecords parses snapshot rows back into selector input, preserving row
// order.
func FromRecords(records []model.EntrantRecord) ([]Entrant, error) {
	entrants := make([]Entrant, 0, len(records))
	for i, rec := range records {
		if !common.IsHexAddress(rec.Address) {
			return nil, fmt.Errorf("entrant row %d: invalid address %q", i, rec.Address)
		}
		entrants = append(entrants, Entrant{
			Address: common.HexToAddress(rec.Address),
			Tickets: rec.Tickets,
			Weight:  rec.Weight,
		})
	}
	return entrants, nil
}

// EntrantLeaves returns the commitment leaves for the entrant list, one per
// row, in row order: keccak256(address ‖ tickets ‖ weight).
func EntrantLeaves(entrants []Entrant) []common.Hash {
	leaves := make([]common.Hash, 0, len(entrants))
	for _, e := range entrants {
		buf := make([]byte, 0, common.AddressLength+16)
		buf = append(buf, e.Address.Bytes()...)
		buf = binary.BigEndian.AppendUint64(buf, e.Tickets)
		buf = binary.BigEndian.AppendUint64(buf, e.Weight)
		leaves = append(leaves, crypto.Keccak256Hash(buf))
	}
	return leaves
}

// WinnerRecords converts assigned slots into publishable snapshot rows.
func WinnerRecords(roundID uint64, winners []model.WinnerSlot) []model.WinnerRecord {
	records := make([]model.WinnerRecord, 0, len(winners))
	for _, w := range winners {
		records = append(records, model.WinnerRecord{
			RoundID: roundID,
			Slot:    w.Slot,
			Tier:    w.Tier.String(),
			Address: w.Address.Hex(),
		})
	}
	return records
}

// WinnersFromRecords parses winner snapshot rows, preserving row order.
func WinnersFromRecords(records []model.WinnerRecord) ([]model.WinnerSlot, error) {
	winners := make([]model.WinnerSlot, 0, len(records))
	for i, rec := range records {
		if !common.IsHexAddress(rec.Address) {
			return nil, fmt.Errorf("winner row %d: invalid address %q", i, rec.Address)
		}
		tier, err := model.ParseTier(rec.Tier)
		if err != nil {
			return nil, fmt.Errorf("winner row %d: %w", i, err)
		}
		winners = append(winners, model.WinnerSlot{
			Slot:    rec.Slot,
			Tier:    tier,
			Address: common.HexToAddress(rec.Address),
		})
	}
	return winners, nil
}

// WinnerLeaves returns the commitment leaves for the winner assignment, in
// slot order.
func WinnerLeaves(winners []model.WinnerSlot) []common.Hash {
	leaves := make([]common.Hash, 0, len(winners))
	for _, w := range winners {
		leaves = append(leaves, w.LeafHash())
	}
	return leaves
}
