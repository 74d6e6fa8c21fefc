package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "New York, NY", CleanText("  New York,   NY \n"))
	assert.Equal(t, "", CleanText("   \n\t"))
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Location: San Francisco, CA", "San Francisco, CA"},
		{"New York, NY, New York", "New York, NY"},
		{"Remote, remote", "Remote"},
		{" , , ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLocation(tt.in), "in=%q", tt.in)
	}
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText(`<div><h2>About</h2><p>Build services.</p><script>alert(1)</script><ul><li>Go</li><li>SQL</li></ul></div>`)
	assert.Equal(t, "About\nBuild services.\nGo\nSQL", got)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	boom := errors.New("bad slug")
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return Permanent(boom)
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New("flaky")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrySucceedsMidway(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
