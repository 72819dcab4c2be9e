package errs

import "fmt"

// ClientError marks a request the caller got wrong (missing/blank query,
// unparsable wrapped body). Mapped to HTTP 400 and never retried.
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}

func NewClientError(format string, args ...interface{}) *ClientError {
	return &ClientError{Message: fmt.Sprintf(format, args...)}
}

// FormatError marks a provider response whose shape we could not interpret
// (e.g. a generation response with no text block). Fatal for the request:
// we never substitute an empty or fabricated answer.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

func NewFormatError(format string, args ...interface{}) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}
