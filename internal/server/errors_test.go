package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/wine-enricher/internal/pipeline"
	"github.com/jonathan/wine-enricher/internal/types"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "wine_name", Message: "required"}
	assert.Equal(t, "validation error: wine_name - required", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "limit"}, http.StatusBadRequest},
		{"skipped", pipeline.ErrSkipped, http.StatusUnprocessableEntity},
		{"invalid input", &pipeline.RowError{Kind: types.FailureInput, Cause: errors.New("empty")}, http.StatusBadRequest},
		{"transport", &pipeline.RowError{Kind: types.FailureTransport, Cause: errors.New("timeout")}, http.StatusBadGateway},
		{"malformed", &pipeline.RowError{Kind: types.FailureMalformed, Cause: errors.New("no json")}, http.StatusBadGateway},
		{"wrapped row error", fmt.Errorf("lookup: %w", &pipeline.RowError{Kind: types.FailureEmpty}), http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
