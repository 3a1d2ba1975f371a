package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherdash/weatherdash/internal/api/middleware"
	"github.com/weatherdash/weatherdash/internal/api/models"
	"github.com/weatherdash/weatherdash/internal/api/response"
)

// requestWithID returns a request whose context carries a request ID, as if
// it had passed the RequestID middleware.
func requestWithID(t *testing.T, method, path string) *http.Request {
	t.Helper()
	var processed *http.Request
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processed = r
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, http.NoBody))
	require.NotNil(t, processed)
	return processed
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req := requestWithID(t, http.MethodGet, "/v1/state")
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, middleware.GetRequestID(req.Context()), rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"message":"hello"}`, rec.Body.String())
}

func TestJSON_WithoutRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/state", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
	assert.Empty(t, rec.Body.String())
}

func TestCreated_SetsLocation(t *testing.T) {
	req := requestWithID(t, http.MethodPost, "/v1/locations")
	rec := httptest.NewRecorder()

	response.Created(rec, req, "/v1/locations/loc-1", map[string]string{"id": "loc-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/v1/locations/loc-1", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAcceptedAndNoContent(t *testing.T) {
	req := requestWithID(t, http.MethodPost, "/v1/ingest")

	rec := httptest.NewRecorder()
	response.Accepted(rec, req, map[string]int{"locations": 3})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	response.NoContent(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Empty(t, rec.Body.String())
}

func TestProblemHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		status int
		typ    string
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) { response.BadRequest(w, r, "detail", nil) }, http.StatusBadRequest, models.ProblemTypeValidation},
		{"not found", func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "detail") }, http.StatusNotFound, models.ProblemTypeNotFound},
		{"conflict", func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "detail") }, http.StatusConflict, models.ProblemTypeConflict},
		{"unprocessable", func(w http.ResponseWriter, r *http.Request) { response.Unprocessable(w, r, "detail") }, http.StatusUnprocessableEntity, models.ProblemTypeUnprocessable},
		{"internal", func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "detail") }, http.StatusInternalServerError, models.ProblemTypeInternal},
		{"bad gateway", func(w http.ResponseWriter, r *http.Request) { response.BadGateway(w, r, "detail") }, http.StatusBadGateway, models.ProblemTypeUpstream},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { response.ServiceUnavailable(w, r, "detail") }, http.StatusServiceUnavailable, models.ProblemTypeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithID(t, http.MethodPost, "/v1/hourly:reload")
			rec := httptest.NewRecorder()

			tt.write(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, "detail", p.Detail)
			assert.Equal(t, "/v1/hourly:reload", p.Instance)
			assert.Equal(t, middleware.GetRequestID(req.Context()), p.TraceID)
		})
	}
}
