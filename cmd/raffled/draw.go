package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"raffleScope/internal/config"
	"raffleScope/internal/merkle"
	"raffleScope/internal/raffle"
	"raffleScope/internal/storage"
)

func runDraw(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDraw(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Entrants == "" {
		return fmt.Errorf("entrants snapshot path is required")
	}
	seed, err := parseHash(cfg.Seed)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if cfg.Slots == 0 {
		return fmt.Errorf("slots must be greater than zero")
	}

	records, err := storage.ReadEntrantsSnapshot(cfg.Entrants)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("entrants snapshot is empty; the round should have been refunded")
	}
	entrants, err := raffle.FromRecords(records)
	if err != nil {
		return err
	}

	entrantsTree, err := merkle.New(raffle.EntrantLeaves(entrants))
	if err != nil {
		return err
	}

	winners, err := raffle.Select(seed, entrants, cfg.Slots)
	if err != nil {
		return err
	}
	if len(winners) == 0 {
		return fmt.Errorf("no slots assigned; total weight is zero")
	}

	roundID := records[0].RoundID
	pointer, err := storage.WriteWinnersSnapshot(cfg.Out, raffle.WinnerRecords(roundID, winners))
	if err != nil {
		return err
	}

	winnersTree, err := merkle.New(raffle.WinnerLeaves(winners))
	if err != nil {
		return err
	}

	logger.Info("draw complete",
		zap.Uint64("round", roundID),
		zap.Int("entrants", len(entrants)),
		zap.Int("assigned", len(winners)),
		zap.Uint32("slots", cfg.Slots),
		zap.String("entrants_root", entrantsTree.Root().Hex()),
		zap.String("winners_root", winnersTree.Root().Hex()),
		zap.String("winners_pointer", pointer),
		zap.String("out", cfg.Out),
	)
	return nil
}

func parseHash(input string) (common.Hash, error) {
	if input == "" {
		return common.Hash{}, fmt.Errorf("value is required")
	}
	b := common.FromHex(input)
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("want %d bytes, got %d", common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
