package execution

import "errors"

// ErrExecutionRequestFailed is the single caller-facing category for submission failures.
var ErrExecutionRequestFailed = errors.New("execution request failed")

var ErrMissingPayer = errors.New("missing payer")

var ErrInvalidImageID = errors.New("invalid computation image id")

var ErrNoInputs = errors.New("no inputs provided")

var ErrZeroResourceBudget = errors.New("resource budget must be positive")

var ErrInvalidInputHash = errors.New("input hash must be 32 bytes")

// RequestError reports a failed submission. It only ever matches
// ErrExecutionRequestFailed; the underlying cause is kept for logs and tests.
type RequestError struct {
	cause error
}

func (e *RequestError) Error() string {
	return ErrExecutionRequestFailed.Error()
}

func (e *RequestError) Is(target error) bool {
	return target == ErrExecutionRequestFailed
}

// Cause returns the lower-level error that made the submission fail.
func (e *RequestError) Cause() error {
	return e.cause
}

// NewRequestError reports cause under the ErrExecutionRequestFailed category.
func NewRequestError(cause error) error {
	return &RequestError{cause: cause}
}
