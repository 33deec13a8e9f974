package round

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"raffleScope/internal/merkle"
	"raffleScope/internal/model"
)

// Claim redeems a prize slot. The caller proves membership of
// leaf(caller, tier, slot) in the committed winners tree; the claim count is
// cross-checked against the caller's frozen entry, never against the
// caller's self-report. Claim state is recorded before the prize transfer
// and rolled back if the transfer fails.
func (e *Engine) Claim(ctx context.Context, caller common.Address, roundID uint64, slot uint32, tier model.Tier, proof []common.Hash) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.roundInState(roundID, model.StateDistributed)
	if err != nil {
		return err
	}
	if slot >= e.cfg.PrizeSlots {
		return fmt.Errorf("slot %d out of range, round has %d prize slots", slot, e.cfg.PrizeSlots)
	}

	leaf := model.WinnerLeaf(caller, tier, slot)
	if !merkle.Verify(r.WinnersRoot.Root, leaf, proof) {
		return fmt.Errorf("%w: proof does not connect leaf to winners root", model.ErrProofInvalid)
	}

	if claimant, taken := e.ledger.claimant(roundID, slot); taken {
		return fmt.Errorf("%w: slot %d already claimed by %s", model.ErrDuplicateSubmission, slot, claimant.Hex())
	}

	entry := e.ledger.entry(roundID, caller)
	if entry == nil {
		return fmt.Errorf("%w: %s holds no entry in round %d", model.ErrUnauthorized, caller.Hex(), roundID)
	}
	claimed := e.ledger.claimCount(roundID, caller)
	if claimed >= entry.Tickets {
		return fmt.Errorf("%w: %d slots already claimed with %d tickets", model.ErrCapExceeded, claimed, entry.Tickets)
	}

	e.ledger.setClaimant(roundID, slot, caller)
	e.ledger.setClaimCount(roundID, caller, claimed+1)

	if err := e.treasury.TransferPrize(ctx, caller, tier, roundID, slot); err != nil {
		e.ledger.clearClaimant(roundID, slot)
		e.ledger.setClaimCount(roundID, caller, claimed)
		return fmt.Errorf("%w: prize transfer: %v", model.ErrTransferFailed, err)
	}

	e.logger.Info("prize claimed",
		zap.Uint64("round", roundID),
		zap.Uint32("slot", slot),
		zap.String("tier", tier.String()),
		zap.String("claimant", caller.Hex()),
	)
	return nil
}

// WithdrawRefund pays out the caller's accrued refund balance. The balance
// is zeroed before the transfer and restored if the transfer fails.
func (e *Engine) WithdrawRefund(ctx context.Context, caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	balance := e.ledger.refundBalance(caller)
	if balance.Sign() == 0 {
		return fmt.Errorf("%w: no refund balance for %s", model.ErrInsufficientBalance, caller.Hex())
	}

	e.ledger.setRefund(caller, new(big.Int))
	if err := e.treasury.PayRefund(ctx, caller, balance); err != nil {
		e.ledger.setRefund(caller, balance)
		return fmt.Errorf("%w: refund payout: %v", model.ErrTransferFailed, err)
	}

	e.logger.Info("refund withdrawn",
		zap.String("participant", caller.Hex()),
		zap.String("amount", balance.String()),
	)
	return nil
}

// SettleFees moves the protocol's fee share of the round's pot to the
// treasury. Legal only in Distributed, once per round.
func (e *Engine) SettleFees(ctx context.Context, caller common.Address, roundID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperator(caller); err != nil {
		return err
	}

	r, err := e.roundInState(roundID, model.StateDistributed)
	if err != nil {
		return err
	}
	if r.FeesSettled {
		return fmt.Errorf("%w: fees already settled for round %d", model.ErrDuplicateSubmission, roundID)
	}

	fee := new(big.Int).Mul(r.TotalWagered, new(big.Int).SetUint64(e.cfg.FeeBps))
	fee.Div(fee, big.NewInt(10_000))

	r.FeesSettled = true
	if err := e.treasury.CollectFees(ctx, roundID, fee); err != nil {
		r.FeesSettled = false
		return fmt.Errorf("%w: fee settlement: %v", model.ErrTransferFailed, err)
	}

	e.logger.Info("fees settled",
		zap.Uint64("round", roundID),
		zap.String("fee", fee.String()),
	)
	return nil
}

// Claimant returns the address that redeemed a slot, if any.
func (e *Engine) Claimant(roundID uint64, slot uint32) (common.Address, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.claimant(roundID, slot)
}

// ClaimCount returns how many slots an address has redeemed in a round.
func (e *Engine) ClaimCount(roundID uint64, addr common.Address) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.claimCount(roundID, addr)
}

// RefundBalance returns an address's withdrawable refund balance.
func (e *Engine) RefundBalance(addr common.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.ledger.refundBalance(addr))
}
