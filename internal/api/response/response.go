// Package response writes JSON and Problem responses with request-id
// correlation.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/weatherdash/weatherdash/internal/api/middleware"
	"github.com/weatherdash/weatherdash/internal/api/models"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Created writes a 201 response with a Location header.
func Created(w http.ResponseWriter, r *http.Request, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusCreated, data)
}

// Accepted writes a 202 response for work continuing in the background.
func Accepted(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, r, http.StatusAccepted, data)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	setRequestID(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Error writes problem, filling in the request path and trace id.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	if problem.TraceID == "" {
		problem.TraceID = middleware.GetRequestID(r.Context())
	}
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 Problem.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest("", detail, errors))
}

// NotFound writes a 404 Problem.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound("", detail))
}

// Conflict writes a 409 Problem.
func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewConflict("", detail))
}

// Unprocessable writes a 422 Problem.
func Unprocessable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewUnprocessable("", detail))
}

// InternalError writes a 500 Problem.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError("", detail))
}

// BadGateway writes a 502 Problem.
func BadGateway(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewBadGateway("", detail))
}

// ServiceUnavailable writes a 503 Problem.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewServiceUnavailable("", detail))
}

func setRequestID(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
}
