package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/types"
)

const maxBodyBytes = 1 << 20

// WineInfoRequest is the body of POST /wine-info. Limit above one asks for candidate profiles.
type WineInfoRequest struct {
	types.WineQuery
	Limit int `json:"limit,omitempty" validate:"gte=0"`
}

// EnrichLineRequest is the body of POST /enrich-line.
type EnrichLineRequest struct {
	Text       string `json:"text" validate:"required"`
	City       string `json:"city,omitempty"`
	Restaurant string `json:"restaurant,omitempty"`
	Section    string `json:"section,omitempty"`
}

// handleWineInfo describes a wine identified by producer and name.
func (s *Server) handleWineInfo(w http.ResponseWriter, r *http.Request) {
	var req WineInfoRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	records, err := s.runner.Lookup(r.Context(), req.WineQuery, req.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handleEnrichLine runs one free-text menu line through the pipeline.
func (s *Server) handleEnrichLine(w http.ResponseWriter, r *http.Request) {
	var req EnrichLineRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	row, err := s.runner.EnrichLine(r.Context(), types.RawMenuLine{
		Text:       req.Text,
		City:       req.City,
		Restaurant: req.Restaurant,
		Section:    req.Section,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, row)
}

// handleListWines returns stored wines, newest first, optionally for one run.
func (s *Server) handleListWines(w http.ResponseWriter, r *http.Request) {
	if s.wines == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "wine store is not configured")
		return
	}

	opts := db.ListOptions{RunID: r.URL.Query().Get("run_id")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		opts.Limit = limit
	}

	wines, err := s.wines.ListWines(r.Context(), opts)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to list wines: %w", err))
		return
	}
	if wines == nil {
		wines = []db.Wine{}
	}
	s.jsonResponse(w, http.StatusOK, wines)
}

// handleFindMatches returns stored wines whose producer and name contain the query's.
func (s *Server) handleFindMatches(w http.ResponseWriter, r *http.Request) {
	if s.wines == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "wine store is not configured")
		return
	}

	var q db.MatchQuery
	if err := s.decode(w, r, &q); err != nil {
		s.writeError(w, err)
		return
	}

	wines, err := s.wines.FindMatches(r.Context(), q)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to search wines: %w", err))
		return
	}
	if wines == nil {
		wines = []db.Wine{}
	}
	s.jsonResponse(w, http.StatusOK, wines)
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed %q check", fe.Tag())}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// writeError maps err to a status and writes it as {"error": "..."}.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request_failed", "status", status, "error", err)
	}
	s.errorResponse(w, status, err.Error())
}

// jsonFieldName reports validation failures by their JSON key.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
