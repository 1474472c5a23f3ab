package audyssey

import (
	"fmt"
	"time"
)

// VerifyOptions configures how settings verification behaves
type VerifyOptions struct {
	// MaxRetries is the maximum number of re-read attempts after the first
	// Default: 3
	MaxRetries int

	// InitialDelay is the wait before the first re-read, giving the
	// receiver time to apply the change
	// Default: 500ms
	InitialDelay time.Duration

	// RetryDelay is the delay between retry attempts
	// Default: 1s
	RetryDelay time.Duration

	// UseExponentialBackoff doubles the retry delay after each attempt
	// when true, capped at MaxRetryDelay
	// Default: true
	UseExponentialBackoff bool

	// MaxRetryDelay is the maximum delay between retries when using
	// exponential backoff
	// Default: 5s
	MaxRetryDelay time.Duration
}

// DefaultVerifyOptions returns sensible defaults for verification
func DefaultVerifyOptions() *VerifyOptions {
	return &VerifyOptions{
		MaxRetries:            3,
		InitialDelay:          500 * time.Millisecond,
		RetryDelay:            1 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         5 * time.Second,
	}
}

// VerifyResult contains the outcome of a settings verification
type VerifyResult struct {
	// Success indicates whether verification succeeded
	Success bool

	// Attempts is the number of read attempts made
	Attempts int

	// Mismatches lists the targets the receiver does not yet report
	Mismatches []string

	// Error is any error that occurred during verification
	Error error
}

// VerifySteps re-reads the receiver until every step's target value is
// reflected in the reported settings. Receivers apply Audyssey changes
// asynchronously, so the first read after a write can still return the
// old value; the retry loop with backoff absorbs that.
func (s *Settings) VerifySteps(steps []Step, opts *VerifyOptions) *VerifyResult {
	if opts == nil {
		opts = DefaultVerifyOptions()
	}

	result := &VerifyResult{
		Success:    false,
		Attempts:   0,
		Mismatches: []string{},
	}

	// Initial delay to give the receiver time to apply changes
	time.Sleep(opts.InitialDelay)

	currentDelay := opts.RetryDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result.Attempts++

		// Delay before retry (not on first attempt)
		if attempt > 0 {
			time.Sleep(currentDelay)

			if opts.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > opts.MaxRetryDelay {
					currentDelay = opts.MaxRetryDelay
				}
			}
		}

		if !s.Update() {
			result.Error = fmt.Errorf("attempt %d: could not read settings back", attempt+1)
			// The receiver may still be busy applying the change - retry
			continue
		}

		mismatches := diffSteps(steps, s)
		result.Mismatches = mismatches

		if len(mismatches) == 0 {
			result.Success = true
			result.Error = nil
			return result
		}

		if attempt < opts.MaxRetries {
			result.Error = fmt.Errorf("attempt %d: settings mismatch (will retry)", attempt+1)
		} else {
			result.Error = fmt.Errorf("verification failed after %d attempts: %s",
				result.Attempts, formatMismatches(mismatches))
		}
	}

	return result
}

// ApplyAndVerify writes every step in order and then verifies the
// receiver reports the new values. A rejected write aborts immediately
// without touching the remaining steps.
func (s *Settings) ApplyAndVerify(steps []Step, opts *VerifyOptions) *VerifyResult {
	for _, st := range steps {
		if !st.Apply(s) {
			return &VerifyResult{
				Success:  false,
				Attempts: 0,
				Error:    fmt.Errorf("receiver rejected %s = %q", DisplayName(st.Parameter), st.Label),
			}
		}
	}

	return s.VerifySteps(steps, opts)
}

// diffSteps compares step targets against the reported settings.
// Returns a list of mismatches (empty if all match).
func diffSteps(steps []Step, s *Settings) []string {
	var mismatches []string

	for _, st := range steps {
		var actual string
		switch st.Parameter {
		case ParamDynamicEQ:
			actual = formatOnOff(s.DynamicEQ)
		case ParamRefLevelOffset:
			actual = formatLabel(s.RefLevelOffset)
		case ParamDynamicVolume:
			actual = formatLabel(s.DynamicVolume)
		case ParamMultiEQ:
			actual = formatLabel(s.MultiEQ)
		default:
			continue
		}

		if actual != st.Label {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, got %s",
				DisplayName(st.Parameter), st.Label, actual))
		}
	}

	return mismatches
}

// formatMismatches creates a human-readable summary of mismatches
func formatMismatches(mismatches []string) string {
	if len(mismatches) == 0 {
		return "none"
	}
	if len(mismatches) == 1 {
		return mismatches[0]
	}
	result := fmt.Sprintf("%d mismatches: ", len(mismatches))
	for i, m := range mismatches {
		if i > 0 {
			result += "; "
		}
		result += m
	}
	return result
}
