package callback

import "errors"

// ErrVerificationFailed is matched by every error returned from a Verifier rejection.
var ErrVerificationFailed = errors.New("verification failed")

var ErrMalformedPayload = errors.New("malformed callback payload")

var ErrImageMismatch = errors.New("payload computed a different image")

var ErrHandleMismatch = errors.New("payload is bound to a different execution request")

var ErrUnauthorizedCaller = errors.New("execution service account did not authorize the callback")

var ErrInvalidSignature = errors.New("invalid prover signature")

var ErrInputHashMismatch = errors.New("payload input digest does not match the requested input hash")

var ErrUnknownHandle = errors.New("unknown execution request handle")

var ErrRequestNotPending = errors.New("execution request is no longer pending")
