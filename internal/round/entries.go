package round

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"raffleScope/internal/model"
)

// weightFor derives an entry's weight from its tickets and proof status.
// Weight is never stored independently of this function, so the invariant
// weight = f(tickets, proof) holds by construction.
func (e *Engine) weightFor(tickets uint64, proofVerified bool) uint64 {
	w := tickets * e.cfg.BaseWeight
	if proofVerified {
		w = w * e.cfg.BonusNumerator / e.cfg.BonusDenominator
	}
	return w
}

func (e *Engine) openForEntries(roundID uint64) (*model.Round, error) {
	r, err := e.roundInState(roundID, model.StateOpen)
	if err != nil {
		return nil, err
	}
	if !e.now().Before(r.Deadline) {
		return nil, fmt.Errorf("%w: round %d entry window elapsed", model.ErrInvalidTransition, roundID)
	}
	return r, nil
}

// Stake buys one published ticket bundle for participant. The attached
// amount must match the bundle price exactly.
func (e *Engine) Stake(roundID uint64, participant common.Address, amount *big.Int, tickets uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.openForEntries(roundID)
	if err != nil {
		return err
	}
	if e.ledger.isDenied(participant) {
		return fmt.Errorf("%w: participant %s is denied", model.ErrUnauthorized, participant.Hex())
	}

	bundle, ok := model.FindBundle(e.cfg.Bundles, tickets)
	if !ok {
		return fmt.Errorf("no published bundle with %d tickets", tickets)
	}
	if amount == nil || amount.Cmp(bundle.Price) != 0 {
		return fmt.Errorf("bundle of %d tickets costs exactly %s wei", tickets, bundle.Price)
	}

	entry := e.ledger.entry(roundID, participant)
	wagered := new(big.Int).Set(amount)
	if entry != nil {
		wagered.Add(wagered, entry.Wagered)
	}
	if wagered.Cmp(e.cfg.PerParticipantCap) > 0 {
		return fmt.Errorf("%w: cumulative wager %s exceeds cap %s", model.ErrCapExceeded, wagered, e.cfg.PerParticipantCap)
	}

	if entry == nil {
		entry = &model.Entry{
			RoundID:     roundID,
			Participant: participant,
			Wagered:     new(big.Int),
		}
		e.ledger.putEntry(entry)
		r.Participants = append(r.Participants, participant)
	}

	oldWeight := entry.Weight
	entry.Tickets += tickets
	entry.Wagered = wagered
	entry.Weight = e.weightFor(entry.Tickets, entry.ProofVerified)

	r.TotalTickets += tickets
	r.TotalWeight += entry.Weight - oldWeight
	r.TotalWagered.Add(r.TotalWagered, amount)

	e.logger.Info("stake accepted",
		zap.Uint64("round", roundID),
		zap.String("participant", participant.Hex()),
		zap.Uint64("tickets", tickets),
		zap.String("amount", amount.String()),
	)
	return nil
}

// SetProofReference registers the valid-proof reference digest for a round.
// Write-once, legal until the entry window closes.
func (e *Engine) SetProofReference(caller common.Address, roundID uint64, ref common.Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}
	if ref == (common.Hash{}) {
		return fmt.Errorf("%w: zero proof reference", model.ErrProofInvalid)
	}

	r := e.ledger.round(roundID)
	if r == nil {
		return fmt.Errorf("%w: round %d does not exist", model.ErrInvalidTransition, roundID)
	}
	if r.State != model.StateCreated && r.State != model.StateOpen {
		return fmt.Errorf("%w: round %d is %s, proof reference is fixed", model.ErrInvalidTransition, roundID, r.State)
	}
	if _, ok := e.ledger.proofRef(roundID); ok {
		return fmt.Errorf("%w: proof reference for round %d", model.ErrAlreadyCommitted, roundID)
	}

	e.ledger.setProofRef(roundID, ref)
	return nil
}

// SubmitProof verifies a participant's skill proof against the registered
// reference. Each participant gets one attempt per round: a match multiplies
// their weight by the bonus factor once, a well-formed mismatch consumes the
// attempt without altering weight. Structurally degenerate proofs (all-zero,
// or trivially derived from the submitter's own address) are rejected
// outright and do not consume the attempt, so they cannot be used to game
// the recorded-attempt side effect.
//
// The returned bool reports whether the proof matched; a recorded mismatch
// is a completed operation, not an error.
func (e *Engine) SubmitProof(roundID uint64, participant common.Address, proofValue []byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.openForEntries(roundID); err != nil {
		return false, err
	}

	entry := e.ledger.entry(roundID, participant)
	if entry == nil || entry.Tickets == 0 {
		return false, fmt.Errorf("%w: %s holds no tickets in round %d", model.ErrUnauthorized, participant.Hex(), roundID)
	}
	if entry.ProofAttempted {
		return false, fmt.Errorf("%w: proof already submitted for round %d", model.ErrDuplicateSubmission, roundID)
	}
	if err := checkProofShape(participant, proofValue); err != nil {
		return false, err
	}

	ref, ok := e.ledger.proofRef(roundID)
	if !ok {
		return false, fmt.Errorf("%w: no proof reference registered for round %d", model.ErrProofInvalid, roundID)
	}

	entry.ProofAttempted = true
	if crypto.Keccak256Hash(proofValue) != ref {
		e.logger.Info("proof mismatch",
			zap.Uint64("round", roundID),
			zap.String("participant", participant.Hex()),
		)
		return false, nil
	}

	r := e.ledger.round(roundID)
	oldWeight := entry.Weight
	entry.ProofVerified = true
	entry.Weight = e.weightFor(entry.Tickets, true)
	r.TotalWeight += entry.Weight - oldWeight

	e.logger.Info("proof verified",
		zap.Uint64("round", roundID),
		zap.String("participant", participant.Hex()),
		zap.Uint64("weight", entry.Weight),
	)
	return true, nil
}

func checkProofShape(participant common.Address, proofValue []byte) error {
	if len(proofValue) == 0 {
		return fmt.Errorf("%w: empty proof", model.ErrProofInvalid)
	}
	allZero := true
	for _, b := range proofValue {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return fmt.Errorf("%w: all-zero proof", model.ErrProofInvalid)
	}
	if bytes.Equal(proofValue, participant.Bytes()) {
		return fmt.Errorf("%w: proof equals submitter address", model.ErrProofInvalid)
	}
	if bytes.Equal(proofValue, crypto.Keccak256(participant.Bytes())) {
		return fmt.Errorf("%w: proof derived from submitter address", model.ErrProofInvalid)
	}
	return nil
}
