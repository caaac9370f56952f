// Package chi exposes the answer engine over HTTP: a sync answer endpoint,
// an NDJSON streaming endpoint, health, and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/planagent/internal/domain"
	answeruc "github.com/kailas-cloud/planagent/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/planagent/internal/usecase/health"
)

// Error response codes.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeRetrievalFailed        = "retrieval_failed"
	codeGenerationFailed       = "generation_failed"
	codeGenerationUnconfigured = "generation_unconfigured"
	codeUnauthorized           = "unauthorized"
	codeInternalError          = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server carries the HTTP handlers for the answer API.
type Server struct {
	answers       *answeruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(answers *answeruc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		answers: answers,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrInvalidObjects, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrGenerationUnconfigured, http.StatusServiceUnavailable, codeGenerationUnconfigured),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeGenerationFailed),
	}
	return s
}

// Routes mounts the API endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/answer", s.Answer)
	r.Post("/v1/answer/stream", s.AnswerStream)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// answerRequest is the request body for both answer endpoints.
type answerRequest struct {
	Question string                 `json:"question"`
	Objects  []domain.DrawingObject `json:"objects"`
}

// answerResponse is the sync endpoint response. Evidence is omitted for
// guard-resolved answers.
type answerResponse struct {
	Answer         string                `json:"answer"`
	QueryMode      string                `json:"query_mode"`
	Guard          string                `json:"guard,omitempty"`
	SessionSummary domain.SessionSummary `json:"session_summary"`
	Evidence       *domain.Evidence      `json:"evidence,omitempty"`
}

func toAnswerResponse(res answeruc.Result) answerResponse {
	resp := answerResponse{
		Answer:         res.Answer,
		QueryMode:      string(res.Mode),
		SessionSummary: res.Summary,
	}
	if res.Guard != "" && res.Guard != domain.GuardNone {
		resp.Guard = string(res.Guard)
	} else {
		ev := res.Evidence
		resp.Evidence = &ev
	}
	return resp
}

func decodeAnswerRequest(w http.ResponseWriter, r *http.Request) (answerRequest, bool) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return req, false
	}
	return req, true
}

// Answer handles POST /v1/answer.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAnswerRequest(w, r)
	if !ok {
		return
	}

	res, err := s.answers.Answer(r.Context(), answeruc.Request{
		Question: req.Question,
		Objects:  req.Objects,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerResponse(res))
}

// streamEvent is one NDJSON line on the streaming endpoint.
type streamEvent struct {
	T              string                 `json:"t"`
	C              string                 `json:"c,omitempty"`
	Message        string                 `json:"message,omitempty"`
	Answer         string                 `json:"answer,omitempty"`
	QueryMode      string                 `json:"query_mode,omitempty"`
	Guard          string                 `json:"guard,omitempty"`
	SessionSummary *domain.SessionSummary `json:"session_summary,omitempty"`
	Evidence       *domain.Evidence       `json:"evidence,omitempty"`
}

// streamWriter writes NDJSON events and flushes after each one. Headers are
// committed on the first event so early failures can still use plain JSON
// error responses.
type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (sw *streamWriter) event(ev streamEvent) error {
	if !sw.started {
		sw.w.Header().Set("Content-Type", "application/x-ndjson")
		sw.w.WriteHeader(http.StatusOK)
		sw.started = true
	}
	if err := json.NewEncoder(sw.w).Encode(ev); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

func (sw *streamWriter) chunk(fragment string) error {
	return sw.event(streamEvent{T: "chunk", C: fragment})
}

// AnswerStream handles POST /v1/answer/stream. Chunk events carry answer
// fragments that concatenate exactly to the final answer in the done event.
func (s *Server) AnswerStream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAnswerRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternalError, "streaming unsupported")
		return
	}
	sw := &streamWriter{w: w, flusher: flusher}

	res, err := s.answers.AnswerStream(r.Context(), answeruc.Request{
		Question: req.Question,
		Objects:  req.Objects,
	}, sw.chunk)
	if err != nil {
		if !sw.started {
			s.handleDomainError(w, err)
			return
		}
		// Headers are gone; report the failure in-band.
		s.logger.Warn("stream failed mid-flight", zap.Error(err))
		_ = sw.event(streamEvent{T: "error", Message: safeDomainMessage(err)})
		return
	}

	done := streamEvent{
		T:              "done",
		Answer:         res.Answer,
		QueryMode:      string(res.Mode),
		SessionSummary: &res.Summary,
	}
	if res.Guard != "" && res.Guard != domain.GuardNone {
		done.Guard = string(res.Guard)
	} else {
		ev := res.Evidence
		done.Evidence = &ev
	}
	if err := sw.event(done); err != nil {
		s.logger.Warn("failed to write done event", zap.Error(err))
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	sentinels := []error{
		domain.ErrInvalidObjects,
		domain.ErrRetrievalFailed,
		domain.ErrGenerationFailed,
		domain.ErrGenerationUnconfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler handles ValidationError with the full offending field list.
func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    codeValidationFailed,
		Message: msg,
		Fields:  verr.Fields,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
