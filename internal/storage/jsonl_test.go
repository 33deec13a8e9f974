package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"raffleScope/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

func TestSnapshotRoundTripAndPointer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entrants.jsonl")

	rows := []model.EntrantRecord{
		{RoundID: 3, Address: "0x1111111111111111111111111111111111111111", Tickets: 5, Weight: 500},
		{RoundID: 3, Address: "0x2222222222222222222222222222222222222222", Tickets: 3, Weight: 450},
	}

	pointer, err := WriteEntrantsSnapshot(path, rows)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(pointer, "0x") || len(pointer) != 66 {
		t.Fatalf("pointer should be a 32-byte hex digest, got %q", pointer)
	}

	back, err := ReadEntrantsSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(rows, back) {
		t.Fatalf("round-trip mismatch: %+v != %+v", rows, back)
	}

	// The pointer is the digest of the file bytes: any substitution shows.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if Pointer(data) != pointer {
		t.Fatalf("pointer does not match file contents")
	}
	tampered := append([]byte("x"), data...)
	if Pointer(tampered) == pointer {
		t.Fatalf("tampered file kept the same pointer")
	}
}

func TestWinnersSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "winners.jsonl")

	rows := []model.WinnerRecord{
		{RoundID: 3, Slot: 0, Tier: "grand", Address: "0x1111111111111111111111111111111111111111"},
		{RoundID: 3, Slot: 1, Tier: "runner_up", Address: "0x2222222222222222222222222222222222222222"},
	}

	if _, err := WriteWinnersSnapshot(path, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ReadWinnersSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(rows, back) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestCommitLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commits.jsonl")
	log := NewJsonlCommitLog(path)

	first := model.CommitRecord{
		RoundID: 1,
		Kind:    model.CommitEntrants,
		Root:    common.HexToHash("0xaa"),
		Pointer: "0xdeadbeef",
	}
	second := model.CommitRecord{
		RoundID: 1,
		Kind:    model.CommitWinners,
		Root:    common.HexToHash("0xbb"),
		Pointer: "0xfeedface",
	}

	if err := log.PutCommitRecord(first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := log.PutCommitRecord(second); err != nil {
		t.Fatalf("put second: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"entrants"`) || !strings.Contains(lines[1], `"winners"`) {
		t.Fatalf("log lines out of order: %v", lines)
	}
}

func TestRoundExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round-3.json")

	export := model.RoundExport{
		Round: model.RoundRecord{
			RoundID:      3,
			State:        "distributed",
			TotalTickets: 6,
			TotalWeight:  600,
			TotalWagered: "55000000000000000",
			Randomness:   common.HexToHash("0xcc").Hex(),
			FeesSettled:  true,
		},
		Entrants: []model.EntrantRecord{
			{RoundID: 3, Address: "0x1111111111111111111111111111111111111111", Tickets: 5, Weight: 500},
		},
		Commits: []model.CommitRecord{
			{RoundID: 3, Kind: model.CommitEntrants, Root: common.HexToHash("0xaa"), Pointer: "0xdeadbeef"},
			{RoundID: 3, Kind: model.CommitWinners, Root: common.HexToHash("0xbb"), Pointer: "0xfeedface"},
		},
		Claims: []model.ClaimRecord{
			{RoundID: 3, Slot: 0, Tier: "grand", Claimant: "0x1111111111111111111111111111111111111111"},
		},
		Refunds: []model.RefundRecord{
			{Address: "0x2222222222222222222222222222222222222222", Amount: "10000000000000000"},
		},
	}

	pointer, err := WriteRoundExport(path, export)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	back, err := ReadRoundExport(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.Round.RoundID != 3 || back.Round.State != "distributed" || back.Round.TotalWagered != "55000000000000000" {
		t.Fatalf("round row mismatch: %+v", back.Round)
	}
	if !reflect.DeepEqual(export.Entrants, back.Entrants) {
		t.Fatalf("entrants mismatch")
	}
	if !reflect.DeepEqual(export.Commits, back.Commits) {
		t.Fatalf("commits mismatch")
	}
	if !reflect.DeepEqual(export.Claims, back.Claims) {
		t.Fatalf("claims mismatch")
	}
	if !reflect.DeepEqual(export.Refunds, back.Refunds) {
		t.Fatalf("refunds mismatch")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if Pointer(data) != pointer {
		t.Fatalf("pointer does not match file contents")
	}
}

func TestReadRoundExportRejectsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadRoundExport(path); err == nil {
		t.Fatalf("export without a round id must reject")
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	if _, err := ReadEntrantsSnapshot(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}
