package fan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blauberg/internal/logging"
	"github.com/muurk/blauberg/internal/protocol"
)

// VerificationOptions configures how a write is checked by reading back
type VerificationOptions struct {
	// MaxRetries is the number of extra read-backs after the first
	// Default: 3
	MaxRetries int

	// InitialDelay gives the fan time to apply the write before the first read
	// Default: 200ms
	InitialDelay time.Duration

	// RetryDelay is the delay between read-backs
	// Default: 500ms
	RetryDelay time.Duration

	// UseExponentialBackoff doubles RetryDelay after each attempt, up to MaxRetryDelay
	// Default: true
	UseExponentialBackoff bool

	// MaxRetryDelay caps the delay between read-backs
	// Default: 2s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns the defaults listed on VerificationOptions
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          200 * time.Millisecond,
		RetryDelay:            500 * time.Millisecond,
		UseExponentialBackoff: true,
		MaxRetryDelay:         2 * time.Second,
	}
}

// VerificationResult is the outcome of checking parameters against the fan
type VerificationResult struct {
	// Success is true when every expected value was read back
	Success bool

	// Attempts is the number of read-backs made
	Attempts int

	// Actual holds the values of the last read-back
	Actual protocol.Params

	// Mismatches lists every expected value the last read-back did not match
	Mismatches []string

	// Error is set when verification did not succeed
	Error error
}

// VerifyParams reads the ids of expected back from the fan until every
// value matches or the retries run out. A fan that does not answer counts
// as a failed attempt.
func (c *Client) VerifyParams(ctx context.Context, expected protocol.Params, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}
	result := &VerificationResult{Mismatches: []string{}}

	if err := sleepContext(ctx, opts.InitialDelay); err != nil {
		result.Error = err
		return result
	}

	delay := opts.RetryDelay
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result.Attempts++

		if attempt > 0 {
			if err := sleepContext(ctx, delay); err != nil {
				result.Error = err
				return result
			}
			if opts.UseExponentialBackoff {
				delay *= 2
				if delay > opts.MaxRetryDelay {
					delay = opts.MaxRetryDelay
				}
			}
		}

		actual, err := c.ReadParams(ctx, expected.IDs()...)
		if err != nil {
			// Network errors may be transient
			result.Error = fmt.Errorf("attempt %d: read-back failed: %w", attempt+1, err)
			continue
		}
		result.Actual = actual
		result.Mismatches = compareParams(expected, actual)

		if len(result.Mismatches) == 0 {
			result.Success = true
			result.Error = nil
			return result
		}

		logging.Debug("Read-back mismatch",
			zap.Int("attempt", attempt+1),
			zap.Strings("mismatches", result.Mismatches),
		)
		result.Error = fmt.Errorf("verification failed after %d attempts: %s", result.Attempts, formatMismatches(result.Mismatches))
	}
	return result
}

// WriteAndVerify writes values and checks them by reading back.
func (c *Client) WriteAndVerify(ctx context.Context, values protocol.Params, opts *VerificationOptions) *VerificationResult {
	if _, err := c.WriteValues(ctx, values); err != nil {
		return &VerificationResult{Error: fmt.Errorf("write failed: %w", err)}
	}
	return c.VerifyParams(ctx, values, opts)
}

// compareParams lists the values of expected that actual does not match.
func compareParams(expected, actual protocol.Params) []string {
	var mismatches []string
	for _, id := range expected.IDs() {
		want := expected[id]
		got, ok := actual[id]
		switch {
		case !ok:
			mismatches = append(mismatches, fmt.Sprintf("%s: no value returned", id))
		case !want.Equal(got):
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, got %s", id, want, got))
		}
	}
	return mismatches
}

func formatMismatches(mismatches []string) string {
	switch len(mismatches) {
	case 0:
		return "none"
	case 1:
		return mismatches[0]
	}
	return fmt.Sprintf("%d mismatches: %s", len(mismatches), strings.Join(mismatches, "; "))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
