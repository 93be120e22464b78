// Package errs defines the closed error taxonomy shared by every layer of
// the contract invocation pipeline. Lower layers wrap their causes into a
// kinded error; upper layers pass kinds through unchanged so callers can
// match on the taxonomy regardless of where the failure originated.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into the closed taxonomy.
type Kind string

const (
	// Encoding means a native value could not be converted to its wire form.
	Encoding Kind = "encoding_error"

	// Decoding means a wire value could not be converted back to native form.
	Decoding Kind = "decoding_error"

	// Simulation means the contract rejected the read-only probe. The
	// contract's own error payload is preserved verbatim in the message.
	Simulation Kind = "simulation_error"

	// Prepare means an envelope could not be built from the simulation input.
	Prepare Kind = "prepare_error"

	// SigningDeclined means the wallet boundary refused to sign.
	SigningDeclined Kind = "signing_declined"

	// Submission means the transport rejected the signed envelope outright.
	Submission Kind = "submission_failed"

	// TransactionFailed means the ledger executed the transaction but the
	// contract logic reverted.
	TransactionFailed Kind = "transaction_failed"

	// TimeoutRejected means polling exceeded the envelope's time bound while
	// the transaction was still pending.
	TimeoutRejected Kind = "timeout_rejected"

	// InvalidResponseFormat means a query result violated its expected shape.
	InvalidResponseFormat Kind = "invalid_response_format"

	// Cancelled means the caller's cancellation signal aborted the operation.
	Cancelled Kind = "cancelled"
)

// Error carries a taxonomy kind, a human-readable message and the original
// cause for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the original cause to errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a kinded error without an underlying cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a kinded error around an underlying cause. A nil cause is
// allowed and behaves like New.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the taxonomy kind of err, or an empty Kind if err does not
// carry one anywhere in its chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
