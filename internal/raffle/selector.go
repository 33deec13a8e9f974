package raffle

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"raffleScope/internal/model"
)

// Entrant is one frozen ledger row fed to the selector. Entrants must appear
// in the round's first-stake order: the cumulative-weight walk depends on it,
// and independent verifiers must walk the same order to reproduce the draw.
type Entrant struct {
	Address common.Address
	Tickets uint64
	Weight  uint64
}

type pool struct {
	address          common.Address
	remainingTickets uint64
	remainingWeight  uint64
	weightPerTicket  uint64
}

// Select assigns up to slots prize slots from the frozen entrant list and the
// round's single random seed. It is a pure function: same inputs, bit
// identical output, safe to run concurrently by independent verifiers.
//
// Each draw hashes (seed, slotIndex), reduces modulo the remaining total
// weight, and walks entrants accumulating remaining weight; the first entrant
// whose cumulative weight exceeds the draw value wins the slot and has one
// ticket consumed. Consuming a ticket subtracts the winner's per-ticket
// weight from both their remaining weight and the pool total, so nobody can
// win more slots than tickets held. If weight or tickets run out early the
// remaining slots are simply unassigned.
func Select(seed common.Hash, entrants []Entrant, slots uint32) ([]model.WinnerSlot, error) {
	pools := make([]pool, 0, len(entrants))
	totalWeight := new(big.Int)
	for _, e := range entrants {
		if e.Tickets == 0 {
			if e.Weight != 0 {
				return nil, fmt.Errorf("entrant %s has weight %d with zero tickets", e.Address.Hex(), e.Weight)
			}
			continue
		}
		pools = append(pools, pool{
			address:          e.Address,
			remainingTickets: e.Tickets,
			remainingWeight:  e.Weight,
			weightPerTicket:  e.Weight / e.Tickets,
		})
		totalWeight.Add(totalWeight, new(big.Int).SetUint64(e.Weight))
	}

	winners := make([]model.WinnerSlot, 0, slots)
	for slot := uint32(0); slot < slots; slot++ {
		if totalWeight.Sign() == 0 {
			break
		}

		draw := drawValue(seed, slot, totalWeight)

		cumulative := new(big.Int)
		for i := range pools {
			p := &pools[i]
			if p.remainingWeight == 0 {
				continue
			}
			cumulative.Add(cumulative, new(big.Int).SetUint64(p.remainingWeight))
			if cumulative.Cmp(draw) <= 0 {
				continue
			}

			winners = append(winners, model.WinnerSlot{
				Slot:    slot,
				Tier:    model.TierForSlot(slot),
				Address: p.address,
			})

			p.remainingTickets--
			consumed := p.weightPerTicket
			if p.remainingTickets == 0 {
				// The last ticket takes any rounding remainder with it.
				consumed = p.remainingWeight
			}
			p.remainingWeight -= consumed
			totalWeight.Sub(totalWeight, new(big.Int).SetUint64(consumed))
			break
		}
	}

	return winners, nil
}

// drawValue derives the slot-specific draw: keccak256(seed ‖ slot) reduced
// modulo the remaining total weight.
func drawValue(seed common.Hash, slot uint32, totalWeight *big.Int) *big.Int {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], slot)
	h := crypto.Keccak256(seed[:], idx[:])
	return new(big.Int).Mod(new(big.Int).SetBytes(h), totalWeight)
}
