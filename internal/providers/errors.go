package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies extraction failures for retry decisions.
type ErrorKind string

const (
	KindTransientNetwork  ErrorKind = "transient_network"
	KindRateLimit         ErrorKind = "rate_limit"
	KindTransientModel    ErrorKind = "transient_model"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
)

// Retryable reports whether another attempt at the same request could
// plausibly produce a different result.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindTransientNetwork, KindRateLimit, KindTransientModel:
		return true
	}
	return false
}

// ExtractError is a classified extraction failure.
type ExtractError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *ExtractError {
	return &ExtractError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification carried by an error chain.
// Errors that match no taxonomy rule are treated as transient model
// glitches, which keeps unknown failures eligible for retry.
func KindOf(err error) ErrorKind {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindTransientModel
}
