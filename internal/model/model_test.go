package model

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestBundlePricesDiscount(t *testing.T) {
	bundles := DefaultBundles()

	single, ok := FindBundle(bundles, 1)
	if !ok {
		t.Fatalf("single-ticket bundle missing")
	}

	// Every larger bundle must cost strictly less per ticket than buying
	// singles.
	for _, b := range bundles[1:] {
		undiscounted := new(big.Int).Mul(single.Price, new(big.Int).SetUint64(b.Tickets))
		if b.Price.Cmp(undiscounted) >= 0 {
			t.Fatalf("bundle of %d carries no discount: %s >= %s", b.Tickets, b.Price, undiscounted)
		}
	}

	if _, ok := FindBundle(bundles, 3); ok {
		t.Fatalf("unpublished bundle size must not resolve")
	}
}

func TestTierRoundTrip(t *testing.T) {
	for _, tier := range []Tier{TierGrand, TierRunnerUp, TierCommon} {
		back, err := ParseTier(tier.String())
		if err != nil {
			t.Fatalf("parse %s: %v", tier, err)
		}
		if back != tier {
			t.Fatalf("tier round-trip mismatch: %s != %s", back, tier)
		}
	}
	if _, err := ParseTier("bronze"); err == nil {
		t.Fatalf("unknown tier must not parse")
	}
}

func TestTierForSlot(t *testing.T) {
	if TierForSlot(0) != TierGrand {
		t.Fatalf("slot 0 must be grand")
	}
	if TierForSlot(1) != TierRunnerUp {
		t.Fatalf("slot 1 must be runner_up")
	}
	for slot := uint32(2); slot < 10; slot++ {
		if TierForSlot(slot) != TierCommon {
			t.Fatalf("slot %d must be common", slot)
		}
	}
}

func TestWinnerLeafBindsAllFields(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	other := common.HexToAddress("0x2222222222222222222222222222222222222222")

	base := WinnerLeaf(addr, TierGrand, 0)
	if WinnerLeaf(other, TierGrand, 0) == base {
		t.Fatalf("leaf must bind the address")
	}
	if WinnerLeaf(addr, TierCommon, 0) == base {
		t.Fatalf("leaf must bind the tier")
	}
	if WinnerLeaf(addr, TierGrand, 1) == base {
		t.Fatalf("leaf must bind the slot")
	}
}

func TestEntryLeafBindsAllFields(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	entry := Entry{Participant: addr, Tickets: 5, Weight: 500}

	base := entry.LeafHash()

	changed := entry
	changed.Tickets = 6
	if changed.LeafHash() == base {
		t.Fatalf("leaf must bind tickets")
	}

	changed = entry
	changed.Weight = 750
	if changed.LeafHash() == base {
		t.Fatalf("leaf must bind weight")
	}
}
