package parsing

import "fmt"

// MalformedResponseError means the model output held no usable JSON of the expected shape.
type MalformedResponseError struct {
	Message string
	Excerpt string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed response: %s", e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Excerpt != "" {
		msg = fmt.Sprintf("%s (got %q)", msg, e.Excerpt)
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// ValidationError means a parsed record did not conform to the record schema.
type ValidationError struct {
	Message string
	Field   string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// excerpt shortens model output for error messages.
func excerpt(s string) string {
	const limit = 120
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
