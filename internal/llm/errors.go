package llm

import "fmt"

// TransportError means the provider could not be reached or refused the call
// (network, authentication, quota). Callers decide whether to retry.
type TransportError struct {
	Provider   Provider
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	prefix := fmt.Sprintf("%s call failed", e.Provider)
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s (HTTP %d)", prefix, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// EmptyResponseError means the call succeeded but carried no text.
type EmptyResponseError struct {
	Provider Provider
	Model    string
	Reason   string
}

func (e *EmptyResponseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s returned no text for model %s: %s", e.Provider, e.Model, e.Reason)
	}
	return fmt.Sprintf("%s returned no text for model %s", e.Provider, e.Model)
}
