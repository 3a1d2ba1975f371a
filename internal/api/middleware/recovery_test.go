package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherdash/weatherdash/internal/api/middleware"
	"github.com/weatherdash/weatherdash/internal/api/models"
)

func TestRecovery_WritesProblem(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.RequestID(middleware.Recovery(zerolog.New(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("chart exploded")
	})))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/state", http.NoBody))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeInternal, problem.Type)
	assert.Equal(t, "an unexpected error occurred", problem.Detail)
	assert.Equal(t, "/v1/state", problem.Instance)
	assert.NotEmpty(t, problem.TraceID)

	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "chart exploded")
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	handler := middleware.Recovery(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	})
}
