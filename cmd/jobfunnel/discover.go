package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/dedup"
	"jobfunnel-engine/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Fetch company leads from aggregators and manual config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		var aggregators []discovery.Aggregator
		if cfg.Discovery.Simplify.Enabled {
			aggregators = append(aggregators, discovery.NewSimplify(cfg.Discovery.Simplify.URL, log))
		}
		if cfg.Discovery.YC.Enabled {
			aggregators = append(aggregators, discovery.NewYC(cfg.Discovery.YC.URL, log))
		}
		if cfg.Discovery.A16Z.Enabled {
			aggregators = append(aggregators, discovery.NewA16Z(cfg.Discovery.A16Z.URL, log))
		}
		if len(cfg.Discovery.Manual.Companies) > 0 {
			aggregators = append(aggregators, discovery.NewManual(cfg.Discovery.Manual.Companies))
		}
		if len(aggregators) == 0 {
			log.Warn("no discovery sources enabled")
			return nil
		}

		resolver := dedup.NewResolver(db, log)
		runner := discovery.NewRunner(db, resolver, aggregators, log)

		sum, err := runner.Run(context.Background())
		if err != nil {
			log.Error("discovery failed", zap.Error(err))
			return err
		}

		log.Info("discovery finished",
			zap.Int("leads", sum.Leads),
			zap.Int("resolved", sum.Resolved),
			zap.Int("failed", sum.Failed),
			zap.Int("direct_postings", sum.DirectJobs),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
