package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapstyle/pkg/cache"
	"github.com/matzehuels/mapstyle/pkg/catalog"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/pipeline"
	"github.com/matzehuels/mapstyle/pkg/server"
)

func newTestServer(t *testing.T, c cache.Cache) *server.Server {
	t.Helper()
	cat, err := catalog.Load(context.Background(), catalog.Builtin())
	require.NoError(t, err)
	logger := log.New(io.Discard)
	return server.New(":0", pipeline.NewRunner(cat, nil, c, nil, logger), logger)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	version, ok := body["version"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dev", version["version"])
	assert.NotEmpty(t, rec.Header().Get(server.RequestIDHeader))
}

func TestRequestIDIsKept(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(server.RequestIDHeader, "0b0e5b5e-7d7c-4f57-9a43-6f1b0f0a1f11")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "0b0e5b5e-7d7c-4f57-9a43-6f1b0f0a1f11", rec.Header().Get(server.RequestIDHeader))

	req.Header.Set(server.RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(server.RequestIDHeader))
}

func TestStyles(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/styles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]server.StyleSummary](t, rec)
	var found bool
	for _, s := range list {
		if s.ID == "precipitation" {
			found = true
			assert.Equal(t, "precipitation_in_mm", s.Preferred)
			assert.Equal(t, []string{"precipitation_in_mm", "precipitation_in_m"}, s.Styles)
		}
	}
	assert.True(t, found)

	rec = do(t, srv, http.MethodGet, "/styles/precipitation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[server.StyleDetail](t, rec)
	assert.Equal(t, []string{"shortName=tp", "paramId in [228, 228228]", "standard_name=precipitation_amount"}, detail.Criteria)
	assert.Contains(t, detail.Params, "precipitation_in_m")

	rec = do(t, srv, http.MethodGet, "/styles/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody := decode[server.ErrorResponse](t, rec)
	assert.Equal(t, errors.ErrCodeStyleNotFound, errBody.Code)
	assert.NotEmpty(t, errBody.RequestID)
}

func TestMatch(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/match", `{"metadata": {"paramId": 228228}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[server.MatchResponse](t, rec)
	assert.True(t, resp.Matched)
	assert.Equal(t, "precipitation", resp.ID)

	rec = do(t, srv, http.MethodPost, "/match", `{"metadata": {"shortName": "nothing"}}`)
	resp = decode[server.MatchResponse](t, rec)
	assert.False(t, resp.Matched)
	assert.Empty(t, resp.ID)
}

func TestResolve(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	srv := newTestServer(t, fc)

	body := `{"metadata": {"shortName": "tp"}, "units": "m"}`
	rec := do(t, srv, http.MethodPost, "/resolve", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))

	res := decode[map[string]any](t, rec)
	assert.Equal(t, true, res["matched"])
	assert.Equal(t, "precipitation", res["id"])
	assert.Equal(t, "precipitation_in_m", res["style"])
	params, ok := res["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "m", params["units"])

	rec = do(t, srv, http.MethodPost, "/resolve", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get("X-Cache"))
}

func TestResolveErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"metadata": `, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"meta": {}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad layer", `{"metadata": {}, "layer": "hatched"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown sub-style", `{"metadata": {"shortName": "tp"}, "style": "inches"}`, http.StatusNotFound, errors.ErrCodeStyleNotFound},
		{"no fallback", `{"metadata": {"shortName": "nope"}, "no_fallback": true}`, http.StatusNotFound, errors.ErrCodeStyleNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/resolve", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode[server.ErrorResponse](t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestSchema(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "default", body["name"])
	assert.Equal(t, "viridis", body["cmap"])
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, server.Status(errors.New(errors.ErrCodeSchemaNotFound, "x")))
	assert.Equal(t, http.StatusBadRequest, server.Status(errors.New(errors.ErrCodeInvalidLevels, "x")))
	assert.Equal(t, http.StatusBadRequest, server.Status(errors.New(errors.ErrCodeUnsupported, "x")))
	assert.Equal(t, http.StatusInternalServerError, server.Status(errors.New(errors.ErrCodeInternal, "x")))
	assert.Equal(t, http.StatusInternalServerError, server.Status(io.ErrUnexpectedEOF))
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/resolve", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
