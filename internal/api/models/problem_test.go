package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherdash/weatherdash/internal/api/models"
)

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(models.ProblemTypeValidation, "Validation error", http.StatusBadRequest, "req_test123").
		WithDetail("latitude and longitude must be numbers").
		WithInstance("/v1/locations").
		WithErrors([]models.FieldError{{Field: "latitude", Message: "must be a number", Code: "numeric"}})

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "latitude and longitude must be numbers", p.Detail)
	assert.Equal(t, "/v1/locations", p.Instance)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "numeric", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid input", []models.FieldError{
		{Field: "name", Message: "required"},
	})
	p.Instance = "/v1/locations"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Validation error", result.Title)
	assert.Equal(t, "invalid input", result.Detail)
	assert.Equal(t, "/v1/locations", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "name", result.Errors[0].Field)
}

func TestProblem_WriteWithoutTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	models.NewNotFound("", "no hourly data").Write(w)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("X-Request-Id"))
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		problem *models.Problem
		typ     string
		title   string
		status  int
	}{
		{"not found", models.NewNotFound("req_1", "d"), models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{"conflict", models.NewConflict("req_1", "d"), models.ProblemTypeConflict, "Conflict", http.StatusConflict},
		{"unsupported media", models.NewUnsupportedMediaType("req_1", "d"), models.ProblemTypeUnsupportedMedia, "Unsupported media type", http.StatusUnsupportedMediaType},
		{"unprocessable", models.NewUnprocessable("req_1", "d"), models.ProblemTypeUnprocessable, "Unprocessable entity", http.StatusUnprocessableEntity},
		{"too many", models.NewTooManyRequests("req_1", "d"), models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{"internal", models.NewInternalError("req_1", "d"), models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{"bad gateway", models.NewBadGateway("req_1", "d"), models.ProblemTypeUpstream, "Backend request failed", http.StatusBadGateway},
		{"unavailable", models.NewServiceUnavailable("req_1", "d"), models.ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.problem.Type)
			assert.Equal(t, tt.title, tt.problem.Title)
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.Equal(t, "d", tt.problem.Detail)
			assert.Equal(t, "req_1", tt.problem.TraceID)
		})
	}
}
