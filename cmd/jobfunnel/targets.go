package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jobfunnel-engine/internal/domain"
)

var (
	targetsStatus string
	targetsLimit  int
)

var dispositionsByName = map[string]domain.Disposition{
	"rejected": domain.DispositionRejected,
	"pending":  domain.DispositionPendingReview,
	"accepted": domain.DispositionAccepted,
	"reviewed": domain.DispositionHumanReviewed,
	"applied":  domain.DispositionApplied,
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show classified postings by disposition",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, _, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()

		counts, err := db.DispositionCounts(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Dispositions:")
		for _, d := range []domain.Disposition{
			domain.DispositionAccepted,
			domain.DispositionPendingReview,
			domain.DispositionHumanReviewed,
			domain.DispositionApplied,
			domain.DispositionRejected,
		} {
			fmt.Printf("  %-14s %d\n", d.String(), counts[d])
		}

		disp, ok := dispositionsByName[targetsStatus]
		if !ok {
			return fmt.Errorf("unknown status %q (rejected|pending|accepted|reviewed|applied)", targetsStatus)
		}

		rows, err := db.ListTargets(ctx, disp, targetsLimit)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s postings:\n", disp)
		for _, r := range rows {
			intern := ""
			if r.IsIntern {
				intern = " [intern]"
			}
			fmt.Printf("  #%d p%d %.2f  %s: %s (%s)%s\n    %s\n",
				r.JobID, r.Priority, r.Score, r.CompanyName, r.Title, r.Location, intern, r.URL)
		}
		return nil
	},
}

func init() {
	targetsCmd.Flags().StringVar(&targetsStatus, "status", "accepted", "disposition to list")
	targetsCmd.Flags().IntVar(&targetsLimit, "limit", 50, "max rows to show (0 = all)")
	rootCmd.AddCommand(targetsCmd)
}
