package helpers

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Error Taxonomy
// -----------------------------------------------------------------------------

// Sentinel errors for errors.Is checks across package boundaries.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSubmissionFailed     = errors.New("submission failed")
	ErrInitializationFailed = errors.New("initialization failed")
)

// -----------------------------------------------------------------------------

type ObserverError struct {
	Kind    error // one of the sentinels above
	Message string
	Cause   error
}

func (e *ObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ObserverError) Unwrap() error {
	return e.Cause
}

func (e *ObserverError) Is(target error) bool {
	return target == e.Kind
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

// NotFoundError reports an absent subaccount/account.
func NotFoundError(format string, args ...interface{}) error {
	return &ObserverError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// -----------------------------------------------------------------------------

// InvalidInputError reports a form-validation failure (non-numeric,
// non-positive or out-of-range values).
func InvalidInputError(format string, args ...interface{}) error {
	return &ObserverError{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// -----------------------------------------------------------------------------

// SubmissionError wraps a rejection from the external client (insufficient
// funds, network, rejected transaction). The underlying message is attached.
func SubmissionError(cause error, format string, args ...interface{}) error {
	return &ObserverError{Kind: ErrSubmissionFailed, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// -----------------------------------------------------------------------------

// InitializationError wraps a trading-client/account bootstrap failure.
func InitializationError(cause error, format string, args ...interface{}) error {
	return &ObserverError{Kind: ErrInitializationFailed, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}
