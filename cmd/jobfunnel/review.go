package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/domain"
)

var reviewReason string

var reviewTransitions = map[string]domain.Disposition{
	"accept":   domain.DispositionAccepted,
	"reject":   domain.DispositionRejected,
	"reviewed": domain.DispositionHumanReviewed,
	"applied":  domain.DispositionApplied,
}

var reviewCmd = &cobra.Command{
	Use:   "review <job-id> <accept|reject|reviewed|applied>",
	Short: "Record a human decision on a posting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		jobID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}
		next, ok := reviewTransitions[args[1]]
		if !ok {
			return fmt.Errorf("unknown decision %q (accept|reject|reviewed|applied)", args[1])
		}

		if err := db.UpdateDisposition(context.Background(), jobID, next, nil, reviewReason); err != nil {
			return err
		}
		log.Info("decision recorded", zap.Int64("job_id", jobID), zap.String("disposition", next.String()))
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewReason, "reason", "", "optional note stored with the decision")
	rootCmd.AddCommand(reviewCmd)
}
