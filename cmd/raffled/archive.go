package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"raffleScope/internal/config"
	"raffleScope/internal/storage"
	"raffleScope/internal/storage/postgres"
)

func runArchive(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadArchive(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if cfg.Export == "" {
		return fmt.Errorf("round export path is required")
	}

	export, err := storage.ReadRoundExport(cfg.Export)
	if err != nil {
		return err
	}
	roundID := export.Round.RoundID

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	last, ok, err := store.LoadState(ctx, "archive")
	if err != nil {
		return fmt.Errorf("load archive state: %w", err)
	}
	if ok && roundID <= last {
		logger.Info("round already archived",
			zap.Uint64("round", roundID),
			zap.Uint64("last_archived", last),
		)
		return nil
	}

	if err := store.ArchiveRound(ctx, export); err != nil {
		return fmt.Errorf("archive round %d: %w", roundID, err)
	}

	var winners int
	if cfg.Winners != "" {
		records, err := storage.ReadWinnersSnapshot(cfg.Winners)
		if err != nil {
			return err
		}
		if err := store.UpsertWinners(ctx, records); err != nil {
			return fmt.Errorf("archive winners: %w", err)
		}
		winners = len(records)
	}

	if err := store.SaveState(ctx, "archive", roundID); err != nil {
		return fmt.Errorf("save archive state: %w", err)
	}

	logger.Info("archive complete",
		zap.Uint64("round", roundID),
		zap.String("state", export.Round.State),
		zap.Int("entrants", len(export.Entrants)),
		zap.Int("commits", len(export.Commits)),
		zap.Int("claims", len(export.Claims)),
		zap.Int("refunds", len(export.Refunds)),
		zap.Int("winners", winners),
	)
	return nil
}
