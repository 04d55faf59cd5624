package client

import "fmt"

// ErrorKind classifies a failed relay call.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindMalformed ErrorKind = "malformed"
)

// RelayError is returned for every failed call to the local relay.
type RelayError struct {
	Kind       ErrorKind
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *RelayError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Message != "" {
			return fmt.Sprintf("%s: relay returned %d: %s", e.Operation, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: relay returned %d", e.Operation, e.StatusCode)
	case KindMalformed:
		return fmt.Sprintf("%s: malformed response: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
}

func (e *RelayError) Unwrap() error {
	return e.Err
}
