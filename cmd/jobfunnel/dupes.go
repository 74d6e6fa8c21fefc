package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jobfunnel-engine/internal/dedup"
)

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Report near-duplicate company names for manual merging",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, _, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		pairs, err := dedup.FuzzyCandidates(context.Background(), db, cfg.Dedup.FuzzyThreshold)
		if err != nil {
			return err
		}

		if len(pairs) == 0 {
			fmt.Println("No likely duplicates found.")
			return nil
		}
		fmt.Printf("Likely duplicates (threshold %.2f):\n", cfg.Dedup.FuzzyThreshold)
		for _, p := range pairs {
			fmt.Printf("  %.2f  %q <-> %q\n", p.Similarity, p.A, p.B)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dupesCmd)
}
