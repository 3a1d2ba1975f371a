package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weatherdash/weatherdash/internal/api/middleware"
	"github.com/weatherdash/weatherdash/internal/api/response"
	"github.com/weatherdash/weatherdash/internal/chart"
	"github.com/weatherdash/weatherdash/internal/dashboard"
	"github.com/weatherdash/weatherdash/internal/provider/resilience"
	"github.com/weatherdash/weatherdash/internal/weather"
	"github.com/weatherdash/weatherdash/internal/weather/backend"
)

// writeError maps store, chart and backend errors to Problem responses.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, dashboard.HintInvalidCoordinates, nil)
	case errors.Is(err, dashboard.ErrUnknownLocation):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, dashboard.ErrNoSelection),
		errors.Is(err, dashboard.ErrHourlyInFlight),
		errors.Is(err, dashboard.ErrSeedInProgress):
		response.Conflict(w, r, err.Error())
	case errors.Is(err, chart.ErrInsufficientData):
		response.Unprocessable(w, r, err.Error())
	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "weather backend is unavailable, retry shortly")
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusNotFound:
			response.NotFound(w, r, apiErr.Message)
		case http.StatusConflict:
			response.Conflict(w, r, apiErr.Message)
		default:
			response.BadGateway(w, r, apiErr.Message)
		}
	case errors.Is(err, context.DeadlineExceeded):
		response.BadGateway(w, r, "weather backend timed out")
	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		response.BadGateway(w, r, err.Error())
	}
}
