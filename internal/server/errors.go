package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/wine-enricher/internal/pipeline"
	"github.com/jonathan/wine-enricher/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		verr *ErrValidation
		rerr *pipeline.RowError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrSkipped):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rerr):
		if rerr.Kind == types.FailureInput {
			return http.StatusBadRequest
		}
		// the model or its transport failed
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
