// Package ats defines the contract every applicant-tracking-system
// connector implements, plus the error types callers branch on.
package ats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobfunnel-engine/internal/domain"
)

// ErrNotFound means the board for a slug does not exist on the platform.
// Callers use it to distinguish "wrong slug" from "platform is down".
var ErrNotFound = errors.New("board not found")

// SchemaDriftError reports that the platform responded 200 but the payload
// no longer matches the shape we decode. These are surfaced loudly instead
// of being treated as an empty board.
type SchemaDriftError struct {
	Platform domain.Platform
	Missing  []string
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("%s: response schema drift, missing %s", e.Platform, strings.Join(e.Missing, ", "))
}

// TransientError wraps failures worth retrying: timeouts, 5xx, rate limits.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried rather than recorded as
// a hard failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Connector fetches live postings for one platform. Implementations share a
// rate limiter keyed by host so concurrent companies never exceed the
// per-platform budget.
type Connector interface {
	Platform() domain.Platform

	// ListPostings returns every open posting on the company's board.
	// Returns ErrNotFound when the slug has no board.
	ListPostings(ctx context.Context, slug string) ([]domain.PostingDraft, error)

	// CheckSlug probes whether a board exists for the slug without pulling
	// the full posting list where the platform allows it.
	CheckSlug(ctx context.Context, slug string) (bool, error)
}
