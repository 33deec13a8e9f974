package model

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RoundState is the lifecycle position of a raffle round.
type RoundState uint8

const (
	StateCreated RoundState = iota
	StateOpen
	StateClosed
	StateSnapshot
	StateRandomnessRequested
	StateWinnersReady
	StateDistributed
	StateRefunded
)

func (s RoundState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateSnapshot:
		return "snapshot"
	case StateRandomnessRequested:
		return "randomness_requested"
	case StateWinnersReady:
		return "winners_ready"
	case StateDistributed:
		return "distributed"
	case StateRefunded:
		return "refunded"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Round is one complete raffle cycle. Rounds are permanent history: they are
// created by an operator, mutated only through the state machine, never
// deleted.
type Round struct {
	ID            uint64
	State         RoundState
	OpenedAt      time.Time
	Deadline      time.Time
	ClosedAt      time.Time
	TotalTickets  uint64
	TotalWeight   uint64
	TotalWagered  *big.Int
	Randomness    *common.Hash
	RequestHandle uint64
	RequestedAt   time.Time
	EntrantsRoot  *CommitRecord
	WinnersRoot   *CommitRecord
	FeesSettled   bool

	// Participants in first-stake order. This order is the stable walk order
	// of the selector, so it is part of the round's verifiable record.
	Participants []common.Address
}

// NewRound returns a round in the Created state.
func NewRound(id uint64) *Round {
	return &Round{
		ID:           id,
		State:        StateCreated,
		TotalWagered: new(big.Int),
	}
}
