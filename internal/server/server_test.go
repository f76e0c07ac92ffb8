package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/llm"
	"github.com/jonathan/wine-enricher/internal/llm/llmtest"
	"github.com/jonathan/wine-enricher/internal/pipeline"
	"github.com/jonathan/wine-enricher/internal/schemas"
)

const cakebreadJSON = `{"region": "Napa Valley", "state": "California", "country": "USA", "wine_type": "White",
"body": "Medium", "brand": "Cakebread", "producer": "Cakebread Cellars", "varietal": "Chardonnay",
"taste_profile": "apple, citrus", "typical_vintage": "2020", "price": "$38",
"sources": ["https://www.cakebread.com"]}`

type testServer struct {
	*Server
	client *llmtest.Client
	store  *db.SQLiteStore
	logs   *bytes.Buffer
}

func newTestServer(t *testing.T, cfg Config, replies ...llmtest.Reply) *testServer {
	t.Helper()

	store, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	client := llmtest.New(replies...)
	opts := pipeline.DefaultOptions()
	opts.Store = store
	opts.Logger = logger
	opts.Sleep = func(context.Context, time.Duration) {}
	runner, err := pipeline.NewRunner(client, opts)
	require.NoError(t, err)

	cfg.Logger = logger
	s, err := New(cfg, runner, store)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)

	return &testServer{Server: s, client: client, store: store, logs: &logs}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresRunner(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealthAndPing(t *testing.T) {
	ts := newTestServer(t, Config{})

	w := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])

	w = ts.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestWineInfo(t *testing.T) {
	ts := newTestServer(t, Config{}, llmtest.Reply{Text: cakebreadJSON})

	w := ts.do(t, http.MethodPost, "/wine-info", `{"producer": "Cakebread", "wine_name": "Chardonnay", "vintage_hint": "2019"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	records := decodeBody[[]map[string]any](t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "Cakebread Cellars", records[0][schemas.FieldProducer])
	assert.Equal(t, "2019", records[0][schemas.FieldTypicalVintage])

	require.Equal(t, 1, ts.client.CallCount())
	assert.Contains(t, ts.client.Calls[0].Prompt, "Producer: Cakebread")

	wines, err := ts.store.ListWines(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, wines, 1)
}

func TestWineInfo_Candidates(t *testing.T) {
	reply := `[{"producer": "Ridge", "region": "Sonoma"}, {"producer": "Ridge", "region": "Paso Robles"}]`
	ts := newTestServer(t, Config{}, llmtest.Reply{Text: reply})

	w := ts.do(t, http.MethodPost, "/wine-info", `{"producer": "Ridge", "wine_name": "Zinfandel", "limit": 3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBody[[]map[string]any](t, w), 2)
}

func TestWineInfo_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"invalid json", `{"wine_name": `, http.StatusBadRequest, "invalid JSON"},
		{"missing name", `{"producer": "Ridge"}`, http.StatusBadRequest, "wine_name"},
		{"bad vintage", `{"wine_name": "Zinfandel", "vintage_hint": "19"}`, http.StatusBadRequest, "vintage_hint"},
		{"negative limit", `{"wine_name": "Zinfandel", "limit": -1}`, http.StatusBadRequest, "limit"},
		{"blank name", `{"wine_name": "   "}`, http.StatusBadRequest, "wine name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, Config{})
			w := ts.do(t, http.MethodPost, "/wine-info", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, decodeBody[map[string]string](t, w)["error"], tt.wantErr)
			assert.Equal(t, 0, ts.client.CallCount())
		})
	}
}

func TestWineInfo_ModelFailure(t *testing.T) {
	ts := newTestServer(t, Config{},
		llmtest.Reply{Err: &llm.TransportError{Provider: llm.ProviderOpenAI, StatusCode: 500, Message: "upstream down"}})

	w := ts.do(t, http.MethodPost, "/wine-info", `{"wine_name": "Chardonnay"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "upstream down")
	assert.Contains(t, ts.logs.String(), "http.request_failed")
}

func TestEnrichLine(t *testing.T) {
	ts := newTestServer(t, Config{}, llmtest.Reply{Text: cakebreadJSON})

	w := ts.do(t, http.MethodPost, "/enrich-line", `{"text": "Cakebread Chardonnay 2021 42", "city": "Austin", "restaurant": "Uchi"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var row struct {
		Input struct {
			City string `json:"city"`
		} `json:"input"`
		Record   map[string]any `json:"record"`
		Complete bool           `json:"complete"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &row))
	assert.Equal(t, "Austin", row.Input.City)
	assert.Equal(t, "2021", row.Record[schemas.FieldTypicalVintage])
	assert.True(t, row.Complete)
}

func TestEnrichLine_Skipped(t *testing.T) {
	ts := newTestServer(t, Config{})

	w := ts.do(t, http.MethodPost, "/enrich-line", `{"text": "Negroni $14"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, pipeline.ErrSkipped.Error(), decodeBody[map[string]string](t, w)["error"])
	assert.Equal(t, 0, ts.client.CallCount())
}

func TestEnrichLine_MissingText(t *testing.T) {
	ts := newTestServer(t, Config{})

	w := ts.do(t, http.MethodPost, "/enrich-line", `{"city": "Austin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "text")
}

func TestListWinesAndFindMatches(t *testing.T) {
	ts := newTestServer(t, Config{}, llmtest.Reply{Text: cakebreadJSON})

	w := ts.do(t, http.MethodGet, "/wines", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())

	w = ts.do(t, http.MethodPost, "/enrich-line", `{"text": "Cakebread Chardonnay 38"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/wines?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	wines := decodeBody[[]db.Wine](t, w)
	require.Len(t, wines, 1)
	assert.Equal(t, "Cakebread Cellars", wines[0].Producer)
	assert.Equal(t, "Cakebread Chardonnay", wines[0].WineName)

	w = ts.do(t, http.MethodPost, "/find-matches", `{"producer": "CAKEBREAD", "wine_name": "chardonnay"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]db.Wine](t, w), 1)

	w = ts.do(t, http.MethodPost, "/find-matches", `{"producer": "Ridge", "wine_name": "chardonnay"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]db.Wine](t, w))
}

func TestListWines_BadLimit(t *testing.T) {
	ts := newTestServer(t, Config{})

	w := ts.do(t, http.MethodGet, "/wines?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "limit")
}

func TestFindMatches_RequiresFields(t *testing.T) {
	ts := newTestServer(t, Config{})

	w := ts.do(t, http.MethodPost, "/find-matches", `{"producer": "Ridge"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "wine_name")
}

func TestReadEndpoints_NoStore(t *testing.T) {
	runner, err := pipeline.NewRunner(llmtest.New(), pipeline.DefaultOptions())
	require.NoError(t, err)
	s, err := New(Config{}, runner, nil)
	require.NoError(t, err)
	defer s.rateLimiter.Stop()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wines", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Config{RateLimit: 0.001, RateBurst: 2})

	for i := 0; i < 2; i++ {
		w := ts.do(t, http.MethodGet, "/wines", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := ts.do(t, http.MethodGet, "/wines", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, w)["error"])
	assert.Contains(t, ts.logs.String(), "http.rate_limited")

	// probes are never limited
	w = ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	ts := newTestServer(t, Config{})

	w := ts.do(t, http.MethodOptions, "/wine-info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestLoggingMiddleware(t *testing.T) {
	ts := newTestServer(t, Config{})

	ts.do(t, http.MethodGet, "/wines?limit=x", "")
	assert.Contains(t, ts.logs.String(), "msg=http.request")
	assert.Contains(t, ts.logs.String(), "status=400")
	assert.Contains(t, ts.logs.String(), "path=/wines")
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ts := newTestServer(t, Config{Port: 0})
	ts.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
