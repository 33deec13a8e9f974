package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"raffleScope/internal/merkle"
	"raffleScope/internal/raffle"
	"raffleScope/internal/storage"
)

func runRoot(cmd *cobra.Command, _ []string) error {
	in, _ := cmd.Flags().GetString("in")
	kind, _ := cmd.Flags().GetString("kind")
	if in == "" {
		return fmt.Errorf("snapshot path is required")
	}

	var leaves []common.Hash
	switch kind {
	case "entrants":
		records, err := storage.ReadEntrantsSnapshot(in)
		if err != nil {
			return err
		}
		entrants, err := raffle.FromRecords(records)
		if err != nil {
			return err
		}
		leaves = raffle.EntrantLeaves(entrants)
	case "winners":
		records, err := storage.ReadWinnersSnapshot(in)
		if err != nil {
			return err
		}
		winners, err := raffle.WinnersFromRecords(records)
		if err != nil {
			return err
		}
		leaves = raffle.WinnerLeaves(winners)
	default:
		return fmt.Errorf("unknown snapshot kind %q", kind)
	}

	tree, err := merkle.New(leaves)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), tree.Root().Hex())
	return nil
}

func runProve(cmd *cobra.Command, _ []string) error {
	in, _ := cmd.Flags().GetString("winners")
	slot, _ := cmd.Flags().GetUint32("slot")
	if in == "" {
		return fmt.Errorf("winners snapshot path is required")
	}

	records, err := storage.ReadWinnersSnapshot(in)
	if err != nil {
		return err
	}
	winners, err := raffle.WinnersFromRecords(records)
	if err != nil {
		return err
	}

	index := -1
	for i, w := range winners {
		if w.Slot == slot {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("slot %d has no winner in %s", slot, in)
	}

	tree, err := merkle.New(raffle.WinnerLeaves(winners))
	if err != nil {
		return err
	}
	proof, err := tree.Proof(index)
	if err != nil {
		return err
	}

	path := make([]string, 0, len(proof))
	for _, h := range proof {
		path = append(path, h.Hex())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "root:  %s\n", tree.Root().Hex())
	fmt.Fprintf(out, "leaf:  %s\n", winners[index].LeafHash().Hex())
	fmt.Fprintf(out, "proof: %s\n", strings.Join(path, ","))
	return nil
}

func runVerify(cmd *cobra.Command, _ []string) error {
	rootHex, _ := cmd.Flags().GetString("root")
	leafHex, _ := cmd.Flags().GetString("leaf")
	proofStr, _ := cmd.Flags().GetString("proof")

	root, err := parseHash(rootHex)
	if err != nil {
		return fmt.Errorf("root: %w", err)
	}
	leaf, err := parseHash(leafHex)
	if err != nil {
		return fmt.Errorf("leaf: %w", err)
	}

	var proof []common.Hash
	for _, part := range strings.Split(proofStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := parseHash(part)
		if err != nil {
			return fmt.Errorf("proof element: %w", err)
		}
		proof = append(proof, h)
	}

	if !merkle.Verify(root, leaf, proof) {
		return fmt.Errorf("proof does not connect leaf to root")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
