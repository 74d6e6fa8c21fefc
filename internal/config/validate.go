package config

import (
	"fmt"
	"strings"

	"jobfunnel-engine/internal/domain"
)

// Validate rejects configurations that would waste paid calls or corrupt the
// funnel band. It runs before any external call is made; a failure here is
// fatal for the whole run.
func (c Config) Validate() error {
	f := c.Funnel

	if f.AcceptThreshold < 0 || f.AcceptThreshold > 1 {
		return fmt.Errorf("funnel.accept_threshold %.2f out of range [0,1]", f.AcceptThreshold)
	}
	if f.RejectThreshold < 0 || f.RejectThreshold > 1 {
		return fmt.Errorf("funnel.reject_threshold %.2f out of range [0,1]", f.RejectThreshold)
	}
	if f.RejectThreshold >= f.AcceptThreshold {
		return fmt.Errorf("funnel.reject_threshold %.2f must be below accept_threshold %.2f",
			f.RejectThreshold, f.AcceptThreshold)
	}
	if f.TriageBatchSize <= 0 {
		return fmt.Errorf("funnel.triage_batch_size must be positive")
	}

	if strings.TrimSpace(c.AI.TriageModel) == "" {
		return fmt.Errorf("ai.triage_model is required")
	}

	if c.Dedup.FuzzyThreshold < 0 || c.Dedup.FuzzyThreshold > 1 {
		return fmt.Errorf("dedup.fuzzy_threshold %.2f out of range [0,1]", c.Dedup.FuzzyThreshold)
	}

	for _, mc := range c.Discovery.Manual.Companies {
		if strings.TrimSpace(mc.Name) == "" {
			return fmt.Errorf("discovery.manual: company with empty name")
		}
		if mc.Platform != "" && !domain.KnownPlatform(domain.Platform(mc.Platform)) {
			return fmt.Errorf("discovery.manual: company %q has unsupported platform %q", mc.Name, mc.Platform)
		}
	}

	return nil
}
