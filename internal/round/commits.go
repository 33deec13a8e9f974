package round

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"raffleScope/internal/model"
)

func validateCommit(root common.Hash, pointer string) error {
	if root == (common.Hash{}) {
		return fmt.Errorf("zero commit root")
	}
	if pointer == "" {
		return fmt.Errorf("empty commit pointer")
	}
	return nil
}

func (e *Engine) emitCommit(rec model.CommitRecord) {
	if e.commits == nil {
		return
	}
	if err := e.commits.PutCommitRecord(rec); err != nil {
		// The commitment itself is already durable in the round; a failed
		// emission only delays observers and is retried by operator tooling.
		e.logger.Warn("commit record emission failed",
			zap.Uint64("round", rec.RoundID),
			zap.String("kind", string(rec.Kind)),
			zap.Error(err),
		)
	}
}

// CommitEntrants writes the frozen entrant list's root and file pointer.
// Legal only in Snapshot, once.
func (e *Engine) CommitEntrants(caller common.Address, roundID uint64, root common.Hash, pointer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}

	r, err := e.roundInState(roundID, model.StateSnapshot)
	if err != nil {
		return err
	}
	if r.EntrantsRoot != nil {
		return fmt.Errorf("%w: entrants root for round %d", model.ErrAlreadyCommitted, roundID)
	}
	if err := validateCommit(root, pointer); err != nil {
		return err
	}

	rec := model.CommitRecord{RoundID: roundID, Kind: model.CommitEntrants, Root: root, Pointer: pointer}
	r.EntrantsRoot = &rec
	e.emitCommit(rec)

	e.logger.Info("entrants committed",
		zap.Uint64("round", roundID),
		zap.String("root", root.Hex()),
		zap.String("pointer", pointer),
	)
	return nil
}

// RequestRandomness forwards a request to the oracle and records the
// correlation handle. Legal only in Snapshot and only once the entrants root
// is committed, so the draw can never be seeded against an uncommitted
// entrant set.
func (e *Engine) RequestRandomness(ctx context.Context, caller common.Address, roundID uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return 0, err
	}

	r, err := e.roundInState(roundID, model.StateSnapshot)
	if err != nil {
		return 0, err
	}
	if r.EntrantsRoot == nil {
		return 0, fmt.Errorf("%w: entrants root not committed for round %d", model.ErrInvalidTransition, roundID)
	}

	handle, err := e.oracle.Request(ctx, roundID)
	if err != nil {
		return 0, fmt.Errorf("oracle request: %w", err)
	}
	if _, taken := e.pending[handle]; taken {
		return 0, fmt.Errorf("oracle returned duplicate handle %d", handle)
	}

	r.State = model.StateRandomnessRequested
	r.RequestHandle = handle
	r.RequestedAt = e.now()
	e.pending[handle] = roundID

	e.logger.Info("randomness requested",
		zap.Uint64("round", roundID),
		zap.Uint64("handle", handle),
	)
	return handle, nil
}

// ReissueRandomness re-requests randomness for a round whose outstanding
// request has gone unanswered for at least RandomnessRetryDelay. The stale
// handle is invalidated first, so a late delivery against it rejects.
func (e *Engine) ReissueRandomness(ctx context.Context, caller common.Address, roundID uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return 0, err
	}

	r, err := e.roundInState(roundID, model.StateRandomnessRequested)
	if err != nil {
		return 0, err
	}
	if e.now().Before(r.RequestedAt.Add(e.cfg.RandomnessRetryDelay)) {
		return 0, fmt.Errorf("%w: round %d request is not stale yet", model.ErrInvalidTransition, roundID)
	}

	handle, err := e.oracle.Request(ctx, roundID)
	if err != nil {
		return 0, fmt.Errorf("oracle request: %w", err)
	}
	if _, taken := e.pending[handle]; taken {
		return 0, fmt.Errorf("oracle returned duplicate handle %d", handle)
	}

	delete(e.pending, r.RequestHandle)
	r.RequestHandle = handle
	r.RequestedAt = e.now()
	e.pending[handle] = roundID

	e.logger.Info("randomness reissued",
		zap.Uint64("round", roundID),
		zap.Uint64("handle", handle),
	)
	return handle, nil
}

// ReceiveRandomness accepts the oracle callback. The caller is authenticated
// by identity, the value is matched to an outstanding request by handle, and
// a handle is serviced at most once. A round's randomness, once set, is
// never overwritten.
func (e *Engine) ReceiveRandomness(caller common.Address, handle uint64, value common.Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.cfg.OracleCaller {
		return fmt.Errorf("%w: caller %s is not the oracle", model.ErrUnauthorized, caller.Hex())
	}
	if value == (common.Hash{}) {
		return fmt.Errorf("zero randomness value")
	}

	roundID, ok := e.pending[handle]
	if !ok {
		return fmt.Errorf("%w: no outstanding request with handle %d", model.ErrInvalidTransition, handle)
	}

	r, err := e.roundInState(roundID, model.StateRandomnessRequested)
	if err != nil {
		return err
	}
	if r.Randomness != nil {
		return fmt.Errorf("%w: randomness for round %d", model.ErrAlreadyCommitted, roundID)
	}

	delete(e.pending, handle)
	v := value
	r.Randomness = &v
	r.State = model.StateWinnersReady

	e.logger.Info("randomness received",
		zap.Uint64("round", roundID),
		zap.Uint64("handle", handle),
		zap.String("value", value.Hex()),
	)
	return nil
}

// CommitWinners writes the winner assignment's root and file pointer and
// moves the round to Distributed. Legal only in WinnersReady, once.
func (e *Engine) CommitWinners(caller common.Address, roundID uint64, root common.Hash, pointer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}

	r, err := e.roundInState(roundID, model.StateWinnersReady)
	if err != nil {
		return err
	}
	if r.Randomness == nil {
		return fmt.Errorf("%w: randomness not received for round %d", model.ErrInvalidTransition, roundID)
	}
	if r.WinnersRoot != nil {
		return fmt.Errorf("%w: winners root for round %d", model.ErrAlreadyCommitted, roundID)
	}
	if err := validateCommit(root, pointer); err != nil {
		return err
	}

	rec := model.CommitRecord{RoundID: roundID, Kind: model.CommitWinners, Root: root, Pointer: pointer}
	r.WinnersRoot = &rec
	r.State = model.StateDistributed
	e.emitCommit(rec)

	e.logger.Info("winners committed",
		zap.Uint64("round", roundID),
		zap.String("root", root.Hex()),
		zap.String("pointer", pointer),
	)
	return nil
}
