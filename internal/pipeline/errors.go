package pipeline

import (
	"errors"
	"fmt"

	"github.com/jonathan/wine-enricher/internal/llm"
	"github.com/jonathan/wine-enricher/internal/parsing"
	"github.com/jonathan/wine-enricher/internal/types"
)

// ErrSkipped is returned by EnrichLine for lines the classifier excludes.
var ErrSkipped = errors.New("line is likely not wine")

// RowError is a per-row failure with its classification.
type RowError struct {
	Kind  types.FailureKind
	Cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *RowError) Unwrap() error {
	return e.Cause
}

// rowError classifies err by the collaborator that produced it.
func rowError(err error) *RowError {
	var re *RowError
	if errors.As(err, &re) {
		return re
	}

	var (
		transport *llm.TransportError
		empty     *llm.EmptyResponseError
		malformed *parsing.MalformedResponseError
		invalid   *parsing.ValidationError
	)
	kind := types.FailureTransport
	switch {
	case errors.As(err, &transport):
		kind = types.FailureTransport
	case errors.As(err, &empty):
		kind = types.FailureEmpty
	case errors.As(err, &malformed):
		kind = types.FailureMalformed
	case errors.As(err, &invalid):
		kind = types.FailureInvalid
	}
	return &RowError{Kind: kind, Cause: err}
}
