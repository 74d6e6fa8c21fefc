package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCompanyID int64

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Return machine-classified postings to the unevaluated pool",
	Long: `Clears rejected, pending and accepted dispositions and re-opens their
postings for the next filter run. Human decisions (reviewed, applied) are
kept. Use --company-id to reset a single company.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ResetEvaluated(context.Background(), resetCompanyID)
		if err != nil {
			return err
		}
		log.Info("reset complete", zap.Int64("postings_reopened", n))
		return nil
	},
}

func init() {
	resetCmd.Flags().Int64Var(&resetCompanyID, "company-id", 0, "restrict the reset to one company")
	rootCmd.AddCommand(resetCmd)
}
