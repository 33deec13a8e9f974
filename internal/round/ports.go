package round

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"raffleScope/internal/model"
)

// Oracle is the outbound port to the verifiable-randomness provider. Request
// returns a correlation handle; the provider later delivers the value through
// Engine.ReceiveRandomness keyed by that handle.
type Oracle interface {
	Request(ctx context.Context, roundID uint64) (uint64, error)
}

// Treasury is the outbound port for asset movement. The engine updates its
// own state before invoking any of these, and reverses the update if the
// call fails.
type Treasury interface {
	TransferPrize(ctx context.Context, to common.Address, tier model.Tier, roundID uint64, slot uint32) error
	PayRefund(ctx context.Context, to common.Address, amount *big.Int) error
	CollectFees(ctx context.Context, roundID uint64, amount *big.Int) error
}

// CommitLog receives the public (root, pointer, round) records emitted when
// a commitment is written, so observers can fetch and verify the backing
// file.
type CommitLog interface {
	PutCommitRecord(rec model.CommitRecord) error
}
