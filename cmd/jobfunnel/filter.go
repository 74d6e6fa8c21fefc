package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/ai"
	"jobfunnel-engine/internal/ai/gemini"
	"jobfunnel-engine/internal/funnel"
	"jobfunnel-engine/internal/runlock"
	"jobfunnel-engine/internal/secrets"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Run unevaluated postings through the classification funnel",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, log, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := cfg.Validate(); err != nil {
			return err
		}

		release, err := runlock.Acquire(cfg.App.DataDir)
		if err != nil {
			return err
		}
		defer func() { _ = release() }()

		ctx := context.Background()

		key, err := secrets.GetAPIKey(cfg.AI.KeyringAccount)
		if err != nil {
			return errors.New("the filter stage needs a gemini api key: " + err.Error())
		}

		triageGen, err := gemini.NewGenerator(ctx, key, cfg.AI.TriageModel)
		if err != nil {
			return err
		}
		classifier := gemini.NewClassifier(triageGen, log, cfg.AI.MaxLogLength)

		var arbiter ai.Arbiter
		if cfg.AI.ArbiterModel != "" {
			arbiterGen, err := gemini.NewGenerator(ctx, key, cfg.AI.ArbiterModel)
			if err != nil {
				return err
			}
			arbiter = gemini.NewArbiter(arbiterGen, log, cfg.AI.MaxLogLength)
		}

		f := funnel.New(db, classifier, arbiter, cfg, log)
		sum, err := f.Run(ctx)
		if err != nil {
			log.Error("funnel failed", zap.Error(err))
			return err
		}

		log.Info("filter finished",
			zap.Int("total", sum.Total),
			zap.Int("accepted", sum.TriageAccepted+sum.ArbiterAccepted),
			zap.Int("rejected", sum.PrefilterReject+sum.TriageRejected+sum.ArbiterRejected),
			zap.Int("pending_review", sum.PendingReview),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
}
