package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/http/middleware"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/metrics"
	"go.uber.org/zap"
)

const maxJSONBodyBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes a single JSON object. strict rejects unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}, strict bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return &decodeError{err: err}
	}
	if dec.More() {
		return &decodeError{err: errors.New("body must contain a single JSON object")}
	}
	return nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// classify maps an error onto its status code and metric label.
func classify(err error) (int, string) {
	var de *decodeError
	switch {
	case errors.As(err, &de):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusBadRequest, "invalid_operation"
	case errors.Is(err, domain.ErrDuplicateInterest):
		return http.StatusBadRequest, "duplicate_interest"
	case errors.Is(err, domain.ErrConflict):
		// A lost race on a conditional write is a server-side outcome.
		return http.StatusInternalServerError, "conflict"
	case errors.Is(err, middleware.ErrTooManyRequests):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// publicMessage hides server-side causes.
func publicMessage(status int, err error) string {
	switch {
	case errors.Is(err, domain.ErrCropNotFound):
		return "Crop not found"
	case errors.Is(err, domain.ErrInterestNotFound):
		return "Interest not found"
	case err == domain.ErrForbidden:
		return "Not authorized"
	case errors.Is(err, domain.ErrDuplicateInterest):
		return "You have already sent an interest for this crop"
	case errors.Is(err, domain.ErrConflict):
		return "The resource was modified concurrently, please retry"
	case errors.Is(err, domain.ErrUnavailable):
		return "Service temporarily unavailable"
	case status >= http.StatusInternalServerError:
		return "Internal server error"
	}
	return err.Error()
}

type responder struct {
	logger  *logger.Logger
	metrics *metrics.MetricsManager
}

func (rs *responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	route := "unmatched"
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}

	reqID := middleware.RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		rs.logger.Error("Request failed", zap.String("route", route), zap.String("request_id", reqID), zap.Error(err))
	} else {
		rs.logger.Debug("Request rejected", zap.String("route", route), zap.String("request_id", reqID), zap.Error(err))
	}
	if rs.metrics != nil {
		rs.metrics.APIErrorsTotal.WithLabelValues(route, kind).Inc()
	}

	writeJSON(w, status, errorResponse{Error: publicMessage(status, err), RequestID: reqID})
}
