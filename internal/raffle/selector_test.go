package raffle

import (
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"raffleScope/internal/model"
)

var (
	addrA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	addrB = common.HexToAddress("0x2222222222222222222222222222222222222222")
	addrC = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func seedFrom(label string) common.Hash {
	return crypto.Keccak256Hash([]byte(label))
}

func countWins(winners []model.WinnerSlot) map[common.Address]uint64 {
	wins := make(map[common.Address]uint64)
	for _, w := range winners {
		wins[w.Address]++
	}
	return wins
}

func TestSelectNoOverWinning(t *testing.T) {
	entrants := []Entrant{
		{Address: addrA, Tickets: 5, Weight: 500},
		{Address: addrB, Tickets: 3, Weight: 300},
	}

	winners, err := Select(seedFrom("S"), entrants, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(winners) != 8 {
		t.Fatalf("want 8 assigned slots, got %d", len(winners))
	}

	wins := countWins(winners)
	if wins[addrA] > 5 {
		t.Fatalf("A won %d slots with 5 tickets", wins[addrA])
	}
	if wins[addrB] > 3 {
		t.Fatalf("B won %d slots with 3 tickets", wins[addrB])
	}
	if wins[addrA]+wins[addrB] != 8 {
		t.Fatalf("8 slots must be split between A and B: %v", wins)
	}
}

func TestSelectDeterministic(t *testing.T) {
	entrants := []Entrant{
		{Address: addrA, Tickets: 5, Weight: 500},
		{Address: addrB, Tickets: 3, Weight: 450}, // proof bonus
		{Address: addrC, Tickets: 1, Weight: 100},
	}

	first, err := Select(seedFrom("S"), entrants, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Select(seedFrom("S"), entrants, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-derivation mismatch:\n%+v\n%+v", first, second)
	}
}

func TestSelectDifferentSeedsDiffer(t *testing.T) {
	entrants := []Entrant{
		{Address: addrA, Tickets: 10, Weight: 1000},
		{Address: addrB, Tickets: 10, Weight: 1000},
		{Address: addrC, Tickets: 10, Weight: 1000},
		{Address: common.HexToAddress("0x4444444444444444444444444444444444444444"), Tickets: 10, Weight: 1000},
	}

	a, err := Select(seedFrom("S1"), entrants, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Select(seedFrom("S2"), entrants, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reflect.DeepEqual(a, b) {
		t.Fatalf("distinct seeds produced identical assignments")
	}
}

func TestSelectFewerTicketsThanSlots(t *testing.T) {
	entrants := []Entrant{
		{Address: addrA, Tickets: 2, Weight: 200},
		{Address: addrB, Tickets: 1, Weight: 150},
	}

	winners, err := Select(seedFrom("S"), entrants, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(winners) != 3 {
		t.Fatalf("want exactly 3 assigned slots, got %d", len(winners))
	}

	// Slots are assigned in index order from zero; the rest stay empty.
	for i, w := range winners {
		if w.Slot != uint32(i) {
			t.Fatalf("slot %d assigned out of order: %+v", i, w)
		}
	}

	wins := countWins(winners)
	if wins[addrA] != 2 || wins[addrB] != 1 {
		t.Fatalf("every ticket must win when slots exceed tickets: %v", wins)
	}
}

func TestSelectTiers(t *testing.T) {
	entrants := []Entrant{{Address: addrA, Tickets: 5, Weight: 500}}

	winners, err := Select(seedFrom("S"), entrants, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(winners) != 5 {
		t.Fatalf("want 5 slots, got %d", len(winners))
	}
	if winners[0].Tier != model.TierGrand {
		t.Fatalf("slot 0 tier = %s, want grand", winners[0].Tier)
	}
	if winners[1].Tier != model.TierRunnerUp {
		t.Fatalf("slot 1 tier = %s, want runner_up", winners[1].Tier)
	}
	for _, w := range winners[2:] {
		if w.Tier != model.TierCommon {
			t.Fatalf("slot %d tier = %s, want common", w.Slot, w.Tier)
		}
	}
}

func TestSelectEmptyPool(t *testing.T) {
	winners, err := Select(seedFrom("S"), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(winners) != 0 {
		t.Fatalf("empty entrant list must assign zero slots, got %d", len(winners))
	}
}

func TestSelectZeroWeightEntrantNeverWins(t *testing.T) {
	entrants := []Entrant{
		{Address: addrA, Tickets: 2, Weight: 0},
		{Address: addrB, Tickets: 2, Weight: 200},
	}

	winners, err := Select(seedFrom("S"), entrants, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("only B's 2 tickets can win, got %d slots", len(winners))
	}
	for _, w := range winners {
		if w.Address != addrB {
			t.Fatalf("zero-weight entrant won slot %d", w.Slot)
		}
	}
}

func TestSelectRejectsWeightWithoutTickets(t *testing.T) {
	entrants := []Entrant{{Address: addrA, Tickets: 0, Weight: 100}}
	if _, err := Select(seedFrom("S"), entrants, 1); err == nil {
		t.Fatalf("expected error for weight with zero tickets")
	}
}

func TestSelectBonusWeightConsumption(t *testing.T) {
	// B's tickets carry a 150 per-ticket weight from the proof bonus. Every
	// win must consume exactly one per-ticket weight, so after B's tickets
	// are exhausted the remaining slots all go to A.
	entrants := []Entrant{
		{Address: addrA, Tickets: 4, Weight: 400},
		{Address: addrB, Tickets: 2, Weight: 300},
	}

	winners, err := Select(seedFrom("consumption"), entrants, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(winners) != 6 {
		t.Fatalf("want all 6 tickets drawn, got %d", len(winners))
	}

	wins := countWins(winners)
	if wins[addrA] != 4 || wins[addrB] != 2 {
		t.Fatalf("exhaustive draw must hand every ticket a slot: %v", wins)
	}
}

func TestSnapshotRecordsRoundTrip(t *testing.T) {
	entrants := []Entrant{
		{Address: addrA, Tickets: 5, Weight: 500},
		{Address: addrB, Tickets: 3, Weight: 450},
	}

	records := ToRecords(9, entrants)
	back, err := FromRecords(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(entrants, back) {
		t.Fatalf("entrant records round-trip mismatch: %+v != %+v", entrants, back)
	}

	winners, err := Select(seedFrom("S"), entrants, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	winnersBack, err := WinnersFromRecords(WinnerRecords(9, winners))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(winners, winnersBack) {
		t.Fatalf("winner records round-trip mismatch")
	}
}

func TestFromRecordsRejectsBadAddress(t *testing.T) {
	records := []model.EntrantRecord{{RoundID: 1, Address: "not-an-address", Tickets: 1, Weight: 100}}
	if _, err := FromRecords(records); err == nil {
		t.Fatalf("expected error for malformed address")
	}
}
