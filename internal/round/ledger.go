package round

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"raffleScope/internal/model"
)

type entryKey struct {
	round       uint64
	participant common.Address
}

type slotKey struct {
	round uint64
	slot  uint32
}

// Ledger is the explicit repository holding all round, entry, claim and
// refund state. It is passed by reference into the engine; it performs no
// validation of its own — legality is the engine's job.
type Ledger struct {
	rounds      map[uint64]*model.Round
	entries     map[entryKey]*model.Entry
	claimants   map[slotKey]common.Address
	claimCounts map[entryKey]uint64
	refunds     map[common.Address]*big.Int
	denied      map[common.Address]bool
	proofRefs   map[uint64]common.Hash
	nextRoundID uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		rounds:      make(map[uint64]*model.Round),
		entries:     make(map[entryKey]*model.Entry),
		claimants:   make(map[slotKey]common.Address),
		claimCounts: make(map[entryKey]uint64),
		refunds:     make(map[common.Address]*big.Int),
		denied:      make(map[common.Address]bool),
		proofRefs:   make(map[uint64]common.Hash),
		nextRoundID: 1,
	}
}

func (l *Ledger) createRound() *model.Round {
	id := l.nextRoundID
	l.nextRoundID++
	r := model.NewRound(id)
	l.rounds[id] = r
	return r
}

func (l *Ledger) round(id uint64) *model.Round {
	return l.rounds[id]
}

func (l *Ledger) entry(roundID uint64, participant common.Address) *model.Entry {
	return l.entries[entryKey{roundID, participant}]
}

func (l *Ledger) putEntry(e *model.Entry) {
	l.entries[entryKey{e.RoundID, e.Participant}] = e
}

// entriesInOrder returns the round's entries in first-stake order.
func (l *Ledger) entriesInOrder(r *model.Round) []*model.Entry {
	out := make([]*model.Entry, 0, len(r.Participants))
	for _, addr := range r.Participants {
		if e := l.entry(r.ID, addr); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) claimant(roundID uint64, slot uint32) (common.Address, bool) {
	addr, ok := l.claimants[slotKey{roundID, slot}]
	return addr, ok
}

func (l *Ledger) setClaimant(roundID uint64, slot uint32, addr common.Address) {
	l.claimants[slotKey{roundID, slot}] = addr
}

func (l *Ledger) clearClaimant(roundID uint64, slot uint32) {
	delete(l.claimants, slotKey{roundID, slot})
}

func (l *Ledger) claimCount(roundID uint64, addr common.Address) uint64 {
	return l.claimCounts[entryKey{roundID, addr}]
}

func (l *Ledger) setClaimCount(roundID uint64, addr common.Address, n uint64) {
	l.claimCounts[entryKey{roundID, addr}] = n
}

func (l *Ledger) refundBalance(addr common.Address) *big.Int {
	if bal := l.refunds[addr]; bal != nil {
		return bal
	}
	return new(big.Int)
}

func (l *Ledger) addRefund(addr common.Address, amount *big.Int) {
	l.refunds[addr] = new(big.Int).Add(l.refundBalance(addr), amount)
}

func (l *Ledger) setRefund(addr common.Address, amount *big.Int) {
	l.refunds[addr] = new(big.Int).Set(amount)
}

func (l *Ledger) isDenied(addr common.Address) bool {
	return l.denied[addr]
}

func (l *Ledger) setDenied(addr common.Address, denied bool) {
	if denied {
		l.denied[addr] = true
		return
	}
	delete(l.denied, addr)
}

func (l *Ledger) proofRef(roundID uint64) (common.Hash, bool) {
	ref, ok := l.proofRefs[roundID]
	return ref, ok
}

func (l *Ledger) setProofRef(roundID uint64, ref common.Hash) {
	l.proofRefs[roundID] = ref
}
