package round

import (
	"fmt"

	"raffleScope/internal/model"
)

// ExportRound assembles a round's full durable state for the archive:
// the round row, entrants in first-stake order, committed roots, claims in
// slot order and the participants' outstanding refund credits. Legal in any
// state; the export reflects whatever the round has accumulated so far.
func (e *Engine) ExportRound(roundID uint64) (model.RoundExport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.ledger.round(roundID)
	if r == nil {
		return model.RoundExport{}, fmt.Errorf("round %d does not exist", roundID)
	}

	row := model.RoundRecord{
		RoundID:      r.ID,
		State:        r.State.String(),
		OpenedAt:     r.OpenedAt,
		Deadline:     r.Deadline,
		ClosedAt:     r.ClosedAt,
		TotalTickets: r.TotalTickets,
		TotalWeight:  r.TotalWeight,
		TotalWagered: r.TotalWagered.String(),
		FeesSettled:  r.FeesSettled,
	}
	if r.Randomness != nil {
		row.Randomness = r.Randomness.Hex()
	}
	out := model.RoundExport{Round: row}

	for _, entry := range e.ledger.entriesInOrder(r) {
		out.Entrants = append(out.Entrants, model.EntrantRecord{
			RoundID: r.ID,
			Address: entry.Participant.Hex(),
			Tickets: entry.Tickets,
			Weight:  entry.Weight,
		})
	}

	if r.EntrantsRoot != nil {
		out.Commits = append(out.Commits, *r.EntrantsRoot)
	}
	if r.WinnersRoot != nil {
		out.Commits = append(out.Commits, *r.WinnersRoot)
	}

	for slot := uint32(0); slot < e.cfg.PrizeSlots; slot++ {
		if addr, ok := e.ledger.claimant(r.ID, slot); ok {
			out.Claims = append(out.Claims, model.ClaimRecord{
				RoundID:  r.ID,
				Slot:     slot,
				Tier:     model.TierForSlot(slot).String(),
				Claimant: addr.Hex(),
			})
		}
	}

	for _, addr := range r.Participants {
		if bal := e.ledger.refundBalance(addr); bal.Sign() > 0 {
			out.Refunds = append(out.Refunds, model.RefundRecord{
				Address: addr.Hex(),
				Amount:  bal.String(),
			})
		}
	}

	return out, nil
}
