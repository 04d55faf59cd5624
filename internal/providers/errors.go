package providers

import (
	"fmt"

	"cav/flightrelay/internal/constants"
)

// ProviderError describes a failed call to the airline web service or the host.
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, endpoint string, body string) error {
	code := constants.ErrCodeUpstreamStatus
	msg := fmt.Sprintf("HTTP %d from %s", statusCode, endpoint)

	switch statusCode {
	case 401, 403:
		code = constants.ErrCodeUnauthorized
		msg = fmt.Sprintf("Authentication failed for endpoint %s", endpoint)
	case 404:
		code = constants.ErrCodeNotFound
		msg = fmt.Sprintf("Resource not found: %s", endpoint)
	case 429:
		code = constants.ErrCodeRateLimited
		msg = constants.GetErrorMessage(constants.ErrCodeRateLimited)
	}

	return &ProviderError{
		Code:       code,
		Message:    msg,
		Details:    body,
		StatusCode: statusCode,
	}
}
