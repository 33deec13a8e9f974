package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "raffled",
		Short:        "Verifiable raffle operator tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	drawCmd := &cobra.Command{
		Use:   "draw",
		Short: "Derive the winner assignment from an entrants snapshot and a seed",
		Long: "Runs the deterministic selection off the trusted path. Anyone holding " +
			"the published entrants snapshot and the round's random seed derives the " +
			"identical assignment and root.",
		RunE: runDraw,
	}
	drawCmd.Flags().String("entrants", "", "entrants snapshot JSONL path")
	drawCmd.Flags().String("seed", "", "round randomness (0x-prefixed 32 bytes)")
	drawCmd.Flags().Uint32("slots", 10, "number of prize slots")
	drawCmd.Flags().String("out", "./data/winners.jsonl", "output winners JSONL path")
	drawCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(drawCmd)

	rootCmd := &cobra.Command{
		Use:   "root",
		Short: "Print the commitment root of a published snapshot",
		RunE:  runRoot,
	}
	rootCmd.Flags().String("in", "", "snapshot JSONL path")
	rootCmd.Flags().String("kind", "entrants", "snapshot kind (entrants or winners)")
	root.AddCommand(rootCmd)

	proveCmd := &cobra.Command{
		Use:   "prove",
		Short: "Emit the claim proof for a slot in a winners snapshot",
		RunE:  runProve,
	}
	proveCmd.Flags().String("winners", "", "winners snapshot JSONL path")
	proveCmd.Flags().Uint32("slot", 0, "prize slot index")
	root.AddCommand(proveCmd)

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a claim proof against a committed root",
		RunE:  runVerify,
	}
	verifyCmd.Flags().String("root", "", "committed root (0x-prefixed 32 bytes)")
	verifyCmd.Flags().String("leaf", "", "claim leaf (0x-prefixed 32 bytes)")
	verifyCmd.Flags().String("proof", "", "sibling hashes (comma-separated 0x values)")
	root.AddCommand(verifyCmd)

	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive a round export and its winners snapshot into Postgres",
		RunE:  runArchive,
	}
	archiveCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	archiveCmd.Flags().String("export", "", "round export JSON path")
	archiveCmd.Flags().String("winners", "", "winners snapshot JSONL path")
	archiveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(archiveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
