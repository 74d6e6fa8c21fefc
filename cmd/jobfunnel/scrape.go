package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobfunnel-engine/internal/ai"
	"jobfunnel-engine/internal/ai/gemini"
	"jobfunnel-engine/internal/config"
	"jobfunnel-engine/internal/ingest"
	"jobfunnel-engine/internal/runlock"
	"jobfunnel-engine/internal/secrets"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Resolve board slugs and fetch postings for every enabled platform",
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

		// Slug suggestion is optional: without a key the mechanical
		// strategies still run.
		var suggester ai.SlugSuggester
		if gen := maybeGenerator(ctx, cfg, cfg.AI.SlugModel, log); gen != nil {
			suggester = gemini.NewSuggester(gen, log, cfg.AI.MaxLogLength)
		}

		runner := ingest.NewRunner(db, cfg, suggester, log)
		sum, err := runner.Run(ctx)
		if err != nil {
			log.Error("scrape failed", zap.Error(err))
			return err
		}

		log.Info("scrape finished",
			zap.Int("companies", sum.Companies),
			zap.Int("postings_added", sum.PostingsAdded),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

// maybeGenerator builds a Gemini generator when a key is available, nil
// otherwise.
func maybeGenerator(ctx context.Context, cfg config.Config, model string, log *zap.Logger) *gemini.Generator {
	key, err := secrets.GetAPIKey(cfg.AI.KeyringAccount)
	if err != nil {
		log.Warn("no gemini api key, model-backed steps disabled", zap.Error(err))
		return nil
	}
	gen, err := gemini.NewGenerator(ctx, key, model)
	if err != nil {
		log.Warn("gemini client unavailable", zap.Error(err))
		return nil
	}
	return gen
}
