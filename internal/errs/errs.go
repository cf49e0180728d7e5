// Package errs defines the error kinds from spec.md §7 and wraps them
// with github.com/mdobak/go-xerrors (already a teacher dependency) so
// they carry a stack trace for the structured logger to attach.
package errs

import (
	"fmt"

	"github.com/mdobak/go-xerrors"
)

// Kind is one of the error kinds enumerated in spec.md §7.
type Kind string

const (
	KindDecode              Kind = "decode_error"
	KindInsufficientDuration Kind = "insufficient_duration"
	KindFingerprintTimeout  Kind = "fingerprint_timeout"
	KindStore               Kind = "store_error"
	KindDSP                 Kind = "dsp_error"
	KindProtocol            Kind = "protocol_error"
	KindFatal               Kind = "fatal_error"
)

// DecodeReason distinguishes the three DecodeError reasons from §7/C1.
type DecodeReason string

const (
	ReasonUnsupported DecodeReason = "unsupported"
	ReasonCorrupt     DecodeReason = "corrupt"
	ReasonIO          DecodeReason = "io"
)

// Error is a kinded, stack-carrying error for the control-channel Error
// event and internal logging.
type Error struct {
	Kind    Kind
	Reason  string // optional sub-reason, e.g. DecodeReason
	cause   error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a kinded error, capturing a stack trace via go-xerrors.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, cause: xerrors.New(msg)}
}

// Wrap tags an existing error with a kind, preserving its chain.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, cause: err}
}

// WrapReason tags an existing error with a kind and sub-reason.
func WrapReason(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, cause: err}
}

// Decode builds a DecodeError (spec.md §4.1/§7); all three reasons are
// treated as fatal for the current chunk by callers.
func Decode(reason DecodeReason, err error) *Error {
	return WrapReason(KindDecode, string(reason), err)
}
