package control

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// VerificationOptions configures how a state change is read back
type VerificationOptions struct {
	// MaxRetries is the number of extra reads after the first
	// Default: 3
	MaxRetries int

	// InitialDelay is the wait before the first read. Smooth transitions
	// should add their duration here.
	// Default: 300ms
	InitialDelay time.Duration

	// RetryDelay is the first delay between reads; it doubles up to MaxRetryDelay
	// Default: 250ms
	RetryDelay time.Duration

	// MaxRetryDelay caps the delay between reads
	// Default: 2s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:    3,
		InitialDelay:  300 * time.Millisecond,
		RetryDelay:    250 * time.Millisecond,
		MaxRetryDelay: 2 * time.Second,
	}
}

// VerificationResult contains the outcome of a read back
type VerificationResult struct {
	// Success indicates every expected property matched
	Success bool

	// Attempts is the number of get_prop calls made
	Attempts int

	// Actual holds the last values read from the device
	Actual map[string]string

	// Mismatches lists the properties that differed on the last read
	Mismatches []string

	// Error is the last error seen, nil on success
	Error error
}

// ExpectedProps returns the property values a light reports after the
// change. Background lights prefix every name with bg_.
func ExpectedProps(light Light, values map[string]string) map[string]string {
	if light != BackgroundLight {
		return values
	}
	prefixed := make(map[string]string, len(values))
	for k, v := range values {
		prefixed["bg_"+k] = v
	}
	return prefixed
}

// Verify reads the expected properties back until they all match or the
// retries run out. Failed reads are retried only when IsRetryable.
func (c *Conn) Verify(expected map[string]string, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}

	result := &VerificationResult{}
	if len(expected) == 0 {
		result.Success = true
		return result
	}

	props := make([]string, 0, len(expected))
	for k := range expected {
		props = append(props, k)
	}
	sort.Strings(props)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = opts.RetryDelay
	policy.MaxInterval = opts.MaxRetryDelay
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	b := backoff.WithMaxRetries(policy, uint64(max(opts.MaxRetries, 0)))

	time.Sleep(opts.InitialDelay)

	for {
		result.Attempts++

		actual, err := c.Properties(props...)
		if err != nil {
			result.Error = fmt.Errorf("attempt %d: failed to read properties: %w", result.Attempts, err)
			if !IsRetryable(err) {
				return result
			}
		} else {
			result.Actual = actual
			result.Mismatches = mismatches(expected, actual, props)
			if len(result.Mismatches) == 0 {
				result.Success = true
				result.Error = nil
				return result
			}
			result.Error = fmt.Errorf("verification failed after %d attempts: %s",
				result.Attempts, strings.Join(result.Mismatches, "; "))
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			return result
		}
		time.Sleep(delay)
	}
}

func mismatches(expected, actual map[string]string, props []string) []string {
	var out []string
	for _, p := range props {
		if actual[p] != expected[p] {
			out = append(out, fmt.Sprintf("%s: expected %s, got %s", p, expected[p], actual[p]))
		}
	}
	return out
}
