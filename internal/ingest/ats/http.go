package ats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobfunnel-engine/internal/ingest/util"
)

const userAgent = "JobFunnel/1.0 (+local)"

// NewHTTPClient returns the client connectors share.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}

// GetJSON performs a rate-limited GET and classifies the status code into
// the package error types. The body is returned only for 2xx.
func GetJSON(ctx context.Context, hc *http.Client, limiter *util.HostLimiter, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if limiter != nil {
		if err := limiter.WaitURL(ctx, url); err != nil {
			return nil, err
		}
	}

	res, err := hc.Do(req)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("get %s: %w", url, err)}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, &TransientError{Err: fmt.Errorf("get %s: status %d", url, res.StatusCode)}
	case res.StatusCode >= 400:
		return nil, fmt.Errorf("get %s: status %d", url, res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("read %s: %w", url, err)}
	}
	return data, nil
}
