package round

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"raffleScope/internal/model"
	"raffleScope/internal/raffle"
)

// Config holds the published raffle parameters.
type Config struct {
	Operator             common.Address
	OracleCaller         common.Address
	PrizeSlots           uint32
	MinTickets           uint64
	PerParticipantCap    *big.Int
	BaseWeight           uint64
	BonusNumerator       uint64
	BonusDenominator     uint64
	Bundles              []model.Bundle
	FeeBps               uint64
	RandomnessRetryDelay time.Duration
}

// DefaultConfig returns the published defaults. Operator and OracleCaller
// must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		PrizeSlots:           10,
		MinTickets:           5,
		PerParticipantCap:    new(big.Int).Mul(big.NewInt(500), big.NewInt(1e15)), // 0.5 ether in wei
		BaseWeight:           100,
		BonusNumerator:       3,
		BonusDenominator:     2,
		Bundles:              model.DefaultBundles(),
		FeeBps:               500,
		RandomnessRetryDelay: time.Hour,
	}
}

// Engine is the trusted core: round state machine, entry ledger, commit
// store, randomness intake and claim/refund ledger behind one mutex, so
// every state-mutating operation is atomic with respect to all others.
// Operations validate first and mutate owned state before any outbound call.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	ledger   *Ledger
	oracle   Oracle
	treasury Treasury
	commits  CommitLog
	logger   *zap.Logger

	// pending maps outstanding randomness request handles to rounds. A
	// handle is removed the moment it is serviced, so delivery is at most
	// once.
	pending map[uint64]uint64

	now func() time.Time
}

// NewEngine builds the engine around an explicit ledger and its outbound
// ports.
func NewEngine(cfg Config, ledger *Ledger, oracle Oracle, treasury Treasury, commits CommitLog, logger *zap.Logger) (*Engine, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is nil")
	}
	if oracle == nil {
		return nil, fmt.Errorf("oracle is nil")
	}
	if treasury == nil {
		return nil, fmt.Errorf("treasury is nil")
	}
	if cfg.Operator == (common.Address{}) {
		return nil, fmt.Errorf("operator address is required")
	}
	if cfg.OracleCaller == (common.Address{}) {
		return nil, fmt.Errorf("oracle caller address is required")
	}
	if cfg.PrizeSlots == 0 {
		return nil, fmt.Errorf("prize slots must be greater than zero")
	}
	if cfg.BaseWeight == 0 || cfg.BonusDenominator == 0 {
		return nil, fmt.Errorf("weight parameters must be nonzero")
	}
	if cfg.PerParticipantCap == nil || cfg.PerParticipantCap.Sign() <= 0 {
		return nil, fmt.Errorf("per-participant cap must be positive")
	}
	if len(cfg.Bundles) == 0 {
		return nil, fmt.Errorf("at least one ticket bundle is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cfg:      cfg,
		ledger:   ledger,
		oracle:   oracle,
		treasury: treasury,
		commits:  commits,
		logger:   logger,
		pending:  make(map[uint64]uint64),
		now:      time.Now,
	}, nil
}

func (e *Engine) requireOperator(caller common.Address) error {
	if caller != e.cfg.Operator {
		return fmt.Errorf("%w: caller %s is not the operator", model.ErrUnauthorized, caller.Hex())
	}
	return nil
}

func (e *Engine) roundInState(roundID uint64, want model.RoundState) (*model.Round, error) {
	r := e.ledger.round(roundID)
	if r == nil {
		return nil, fmt.Errorf("%w: round %d does not exist", model.ErrInvalidTransition, roundID)
	}
	if r.State != want {
		return nil, fmt.Errorf("%w: round %d is %s, want %s", model.ErrInvalidTransition, roundID, r.State, want)
	}
	return r, nil
}

// CreateRound registers a new round in the Created state.
func (e *Engine) CreateRound(caller common.Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return 0, err
	}

	r := e.ledger.createRound()
	e.logger.Info("round created", zap.Uint64("round", r.ID))
	return r.ID, nil
}

// OpenRound opens the entry window and fixes the closing deadline.
func (e *Engine) OpenRound(caller common.Address, roundID uint64, window time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}
	if window <= 0 {
		return fmt.Errorf("entry window must be positive")
	}

	r, err := e.roundInState(roundID, model.StateCreated)
	if err != nil {
		return err
	}

	ts := e.now()
	r.State = model.StateOpen
	r.OpenedAt = ts
	r.Deadline = ts.Add(window)
	e.logger.Info("round opened",
		zap.Uint64("round", roundID),
		zap.Time("deadline", r.Deadline),
	)
	return nil
}

// CloseRound ends the entry window. Below the minimum-participation
// threshold the round goes straight to Refunded and every entrant's full
// wager becomes a withdrawable refund credit; otherwise it proceeds to
// Closed.
func (e *Engine) CloseRound(caller common.Address, roundID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}

	r, err := e.roundInState(roundID, model.StateOpen)
	if err != nil {
		return err
	}
	if e.now().Before(r.Deadline) {
		return fmt.Errorf("%w: round %d deadline not reached", model.ErrInvalidTransition, roundID)
	}

	r.ClosedAt = e.now()
	if r.TotalTickets < e.cfg.MinTickets {
		r.State = model.StateRefunded
		for _, entry := range e.ledger.entriesInOrder(r) {
			e.ledger.addRefund(entry.Participant, entry.Wagered)
		}
		e.logger.Info("round refunded",
			zap.Uint64("round", roundID),
			zap.Uint64("tickets", r.TotalTickets),
			zap.Uint64("min_tickets", e.cfg.MinTickets),
		)
		return nil
	}

	r.State = model.StateClosed
	e.logger.Info("round closed",
		zap.Uint64("round", roundID),
		zap.Uint64("tickets", r.TotalTickets),
		zap.Uint64("weight", r.TotalWeight),
	)
	return nil
}

// SnapshotRound freezes the entry ledger ahead of the randomness request.
// The ordering is load-bearing: randomness must never be requested against a
// still-mutable entry set.
func (e *Engine) SnapshotRound(caller common.Address, roundID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}

	r, err := e.roundInState(roundID, model.StateClosed)
	if err != nil {
		return err
	}

	r.State = model.StateSnapshot
	e.logger.Info("round snapshot", zap.Uint64("round", roundID))
	return nil
}

// EntrantSnapshot returns the frozen entrant list in first-stake order.
// Legal once the round has reached Snapshot.
func (e *Engine) EntrantSnapshot(roundID uint64) ([]raffle.Entrant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.ledger.round(roundID)
	if r == nil {
		return nil, fmt.Errorf("%w: round %d does not exist", model.ErrInvalidTransition, roundID)
	}
	if r.State < model.StateSnapshot || r.State == model.StateRefunded {
		return nil, fmt.Errorf("%w: round %d is %s, entrant list not frozen", model.ErrInvalidTransition, roundID, r.State)
	}

	entries := e.ledger.entriesInOrder(r)
	entrants := make([]raffle.Entrant, 0, len(entries))
	for _, entry := range entries {
		entrants = append(entrants, raffle.Entrant{
			Address: entry.Participant,
			Tickets: entry.Tickets,
			Weight:  entry.Weight,
		})
	}
	return entrants, nil
}

// Round returns a copy of the round's persisted state.
func (e *Engine) Round(roundID uint64) (model.Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.ledger.round(roundID)
	if r == nil {
		return model.Round{}, fmt.Errorf("round %d does not exist", roundID)
	}
	out := *r
	out.TotalWagered = new(big.Int).Set(r.TotalWagered)
	out.Participants = append([]common.Address(nil), r.Participants...)
	return out, nil
}

// SetDenied updates the deny list.
func (e *Engine) SetDenied(caller, addr common.Address, denied bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}
	e.ledger.setDenied(addr, denied)
	return nil
}
