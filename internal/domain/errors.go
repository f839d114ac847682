package domain

import "errors"

// ErrorKind classifies failures surfaced to the visitor.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindConfiguration ErrorKind = "configuration"
	KindUpstream      ErrorKind = "upstream"
	KindAuth          ErrorKind = "auth"
	KindInvalidFormat ErrorKind = "invalid_format"
)

// Sentinels for errors.Is checks against a ConversionError of the same kind.
var (
	ErrNotFound      = errors.New("not found")
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream error")
	ErrAuth          = errors.New("authentication error")
	ErrInvalidFormat = errors.New("invalid format")
)

// ConversionError is the single error type returned by the conversion workflow.
// Message is safe to show to visitors; Err keeps the underlying cause for logs.
type ConversionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel of the same kind.
func (e *ConversionError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrUpstream:
		return e.Kind == KindUpstream
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrInvalidFormat:
		return e.Kind == KindInvalidFormat
	}
	return false
}

// NotFound reports a missing article.
func NotFound(message string) error {
	return &ConversionError{Kind: KindNotFound, Message: message}
}

// ConfigurationError reports missing server-side settings.
func ConfigurationError(message string) error {
	return &ConversionError{Kind: KindConfiguration, Message: message}
}

// UpstreamError reports a failed call to the text generator.
func UpstreamError(message string, cause error) error {
	return &ConversionError{Kind: KindUpstream, Message: message, Err: cause}
}

// AuthError reports a rejected request token or credential.
func AuthError(message string) error {
	return &ConversionError{Kind: KindAuth, Message: message}
}

// KindOf extracts the kind of a conversion error; unknown errors map to "".
func KindOf(err error) ErrorKind {
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return convErr.Kind
	}
	return ""
}

// PublicMessage flattens an error into the message shown at the boundary.
func PublicMessage(err error) string {
	var convErr *ConversionError
	if errors.As(err, &convErr) && convErr.Message != "" {
		return convErr.Message
	}
	return "Conversion failed"
}
