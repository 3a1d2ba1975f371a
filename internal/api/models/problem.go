package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem types.
const (
	ProblemTypeValidation       = "urn:weatherdash:problem:validation-error"
	ProblemTypeNotFound         = "urn:weatherdash:problem:not-found"
	ProblemTypeConflict         = "urn:weatherdash:problem:conflict"
	ProblemTypeUnprocessable    = "urn:weatherdash:problem:unprocessable"
	ProblemTypeUnsupportedMedia = "urn:weatherdash:problem:unsupported-media-type"
	ProblemTypeTooManyRequests  = "urn:weatherdash:problem:too-many-requests"
	ProblemTypeInternal         = "urn:weatherdash:problem:internal-error"
	ProblemTypeUpstream         = "urn:weatherdash:problem:upstream-error"
	ProblemTypeUnavailable      = "urn:weatherdash:problem:service-unavailable"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 problem carrying field errors.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.Detail = detail
	p.Errors = errors
	return p
}

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).WithDetail(detail)
}

// NewConflict creates a 409 problem.
func NewConflict(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeConflict, "Conflict", http.StatusConflict, traceID).WithDetail(detail)
}

// NewUnsupportedMediaType creates a 415 problem.
func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnsupportedMedia, "Unsupported media type", http.StatusUnsupportedMediaType, traceID).WithDetail(detail)
}

// NewUnprocessable creates a 422 problem.
func NewUnprocessable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnprocessable, "Unprocessable entity", http.StatusUnprocessableEntity, traceID).WithDetail(detail)
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).WithDetail(detail)
}

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewBadGateway creates a 502 problem for a failed backend call.
func NewBadGateway(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUpstream, "Backend request failed", http.StatusBadGateway, traceID).WithDetail(detail)
}

// NewServiceUnavailable creates a 503 problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).WithDetail(detail)
}
