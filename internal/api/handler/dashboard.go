package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/weatherdash/weatherdash/internal/api/models"
	"github.com/weatherdash/weatherdash/internal/api/response"
	"github.com/weatherdash/weatherdash/internal/chart"
	"github.com/weatherdash/weatherdash/internal/dashboard"
	"github.com/weatherdash/weatherdash/internal/weather"
)

const maxBodyBytes = 64 << 10

// DashboardHandler exposes the sync store over HTTP.
type DashboardHandler struct {
	store  *dashboard.Store
	preset []weather.NewLocation
	log    zerolog.Logger
}

// NewDashboardHandler creates a DashboardHandler. preset is the location
// set created by POST /v1/presets:seed.
func NewDashboardHandler(store *dashboard.Store, preset []weather.NewLocation, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{store: store, preset: preset, log: log}
}

// commandContext detaches a command from client disconnects so the store
// always settles the state it moved to Loading.
func commandContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// GetState handles GET /v1/state?q=.
func (h *DashboardHandler) GetState(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	response.JSON(w, r, http.StatusOK, toState(h.store.View(query), query))
}

// RefreshHealth handles POST /v1/health:refresh. A failed probe is part of
// the result, not an error.
func (h *DashboardHandler) RefreshHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RefreshHealth(commandContext(r)); err != nil {
		h.log.Debug().Err(err).Msg("backend health probe failed")
	}
	v := h.store.View("")
	response.JSON(w, r, http.StatusOK, models.BackendHealth{
		Status:    v.Health,
		CheckedAt: models.NewTimestamp(v.HealthCheckedAt),
	})
}

// RefreshLocations handles POST /v1/locations:refresh.
func (h *DashboardHandler) RefreshLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.store.RefreshLocations(commandContext(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	list := models.LocationList{Items: make([]models.Location, 0, len(locations))}
	for _, l := range locations {
		list.Items = append(list.Items, toLocation(l))
	}
	response.JSON(w, r, http.StatusOK, list)
}

// CreateLocation handles POST /v1/locations.
func (h *DashboardHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var input models.CreateLocationRequest
	if !decodeBody(w, r, &input) {
		return
	}

	created, err := h.store.CreateLocation(commandContext(r), input.Name, string(input.Latitude), string(input.Longitude))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	response.Created(w, r, "", toLocation(*created))
}

// SeedPreset handles POST /v1/presets:seed and returns the tally. Ingestion
// of the seeded list continues in the background.
func (h *DashboardHandler) SeedPreset(w http.ResponseWriter, r *http.Request) {
	tally, err := h.store.SeedPreset(commandContext(r), h.preset)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toTally(tally))
}

// Ingest handles POST /v1/ingest over the currently listed locations.
func (h *DashboardHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if err := h.store.IngestAll(commandContext(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	v := h.store.View("")
	response.JSON(w, r, http.StatusOK, models.IngestResult{
		Locations:    v.LocationCount,
		LastIngestAt: models.NewTimestamp(v.LastIngestAt),
	})
}

// Select handles PUT /v1/selection. The forecast loads in the background;
// the response is the state right after the selection moved.
func (h *DashboardHandler) Select(w http.ResponseWriter, r *http.Request) {
	var input models.SelectRequest
	if !decodeBody(w, r, &input) {
		return
	}

	id := ""
	if input.LocationID != nil {
		id = strings.TrimSpace(*input.LocationID)
	}

	if err := h.store.Select(commandContext(r), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toState(h.store.View(""), ""))
}

// ReloadHourly handles POST /v1/hourly:reload.
func (h *DashboardHandler) ReloadHourly(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ReloadHourly(commandContext(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	id, entry := h.store.Hourly()
	if id == "" {
		response.NoContent(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, slot(entry, toHourly))
}

// HourlyChart handles GET /v1/hourly/chart.svg.
func (h *DashboardHandler) HourlyChart(w http.ResponseWriter, r *http.Request) {
	_, entry := h.store.Hourly()
	series, ok := entry.Data()
	if !ok {
		response.NotFound(w, r, "no hourly forecast is loaded")
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderSVG(&buf, series.Points, chart.DefaultCanvas()); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// decodeBody reads a JSON body into dst and writes a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, r, "request body is required", nil)
			return false
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			response.BadRequest(w, r, "invalid JSON body", []models.FieldError{{
				Field:   typeErr.Field,
				Message: "must be " + typeErr.Type.String(),
				Code:    "type",
			}})
		case errors.As(err, &syntaxErr):
			response.BadRequest(w, r, "malformed JSON at offset "+strconv.FormatInt(syntaxErr.Offset, 10), nil)
		default:
			response.BadRequest(w, r, "invalid JSON body: "+err.Error(), nil)
		}
		return false
	}
	return true
}
