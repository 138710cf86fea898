// Package server exposes the style pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz        liveness
//	GET  /styles         record ids with their sub-style names
//	GET  /styles/{id}    one record
//	POST /match          {"metadata": {...}} → {"matched", "id"}
//	POST /resolve        pipeline.Options → pipeline.Result
//	GET  /schema         the defaults schema as JSON
//
// Errors are returned as {"code", "message"} with a status derived from the
// error code.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/mapstyle/pkg/buildinfo"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/observability"
	"github.com/matzehuels/mapstyle/pkg/pipeline"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// RequestIDHeader carries the request id in requests and responses.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves style lookups from a pipeline runner.
type Server struct {
	httpServer *http.Server
	runner     *pipeline.Runner
	logger     *log.Logger
}

// New creates a server listening on addr.
func New(addr string, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/styles", s.handleStyles)
	r.Get("/styles/{id}", s.handleStyle)
	r.Post("/match", s.handleMatch)
	r.Post("/resolve", s.handleResolve)
	r.Get("/schema", s.handleSchema)
	return r
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey struct{}

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestID keeps a caller-supplied X-Request-ID or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration", d,
			"request_id", RequestID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

// StyleSummary describes one catalog record.
type StyleSummary struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Preferred   string   `json:"preferred_style"`
	Styles      []string `json:"styles"`
	Source      string   `json:"source,omitempty"`
}

// StyleDetail is a record with its criteria and sub-style parameters.
type StyleDetail struct {
	StyleSummary
	Criteria []string                `json:"criteria"`
	Params   map[string]style.Params `json:"params"`
}

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	Metadata map[string]any `json:"metadata"`
}

// MatchResponse is the answer of POST /match.
type MatchResponse struct {
	Matched bool   `json:"matched"`
	ID      string `json:"id,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"styles":  s.runner.Catalog.Len(),
		"version": buildinfo.Get(),
	})
}

func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	records := s.runner.Catalog.Records()
	out := make([]StyleSummary, len(records))
	for i, rec := range records {
		out[i] = summarize(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runner.Catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Detail(rec))
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{Metadata: req.Metadata}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, ok := s.runner.Match(r.Context(), opts)
	resp := MatchResponse{Matched: ok}
	if ok {
		resp.ID = rec.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(w, r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	m := s.runner.Schema.Map()
	m["name"] = s.runner.Schema.Name
	writeJSON(w, http.StatusOK, m)
}

func summarize(rec *style.Record) StyleSummary {
	return StyleSummary{
		ID:          rec.ID,
		Description: rec.Description,
		Preferred:   rec.Preferred,
		Styles:      rec.Names(),
		Source:      rec.Source,
	}
}

// Detail returns the full description of a record.
func Detail(rec *style.Record) StyleDetail {
	d := StyleDetail{
		StyleSummary: summarize(rec),
		Criteria:     make([]string, len(rec.Criteria)),
		Params:       make(map[string]style.Params, len(rec.Styles)),
	}
	for i, clause := range rec.Criteria {
		d.Criteria[i] = clause.String()
	}
	for name, p := range rec.Styles {
		d.Params[name] = p.Clone()
	}
	return d
}

// =============================================================================
// Encoding
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	normalizeNumbers(v)
	return nil
}

// normalizeNumbers turns json.Number metadata values into int64 or float64
// so they compare like YAML numbers.
func normalizeNumbers(v any) {
	var md map[string]any
	switch t := v.(type) {
	case *MatchRequest:
		md = t.Metadata
	case *pipeline.Options:
		md = t.Metadata
	}
	for k, val := range md {
		n, ok := val.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			md[k] = i
		} else if f, err := n.Float64(); err == nil {
			md[k] = f
		}
	}
}

// Status maps an error to an HTTP status code.
func Status(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsInvalid(err), errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
