// internal/server/handlers/places.go

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/place"
	"geosnap/internal/service/classifier"
)

const maxRefreshRadius = 5000

// PoiRefresher ingests directory POIs around a location
type PoiRefresher interface {
	Refresh(ctx context.Context, center geo.Location, radiusMeters float64) (classifier.IngestResult, error)
}

// PlaceHandler handles place-related HTTP requests
type PlaceHandler struct {
	refresher     PoiRefresher
	defaultRadius float64
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(refresher PoiRefresher, defaultRadius float64) *PlaceHandler {
	return &PlaceHandler{
		refresher:     refresher,
		defaultRadius: defaultRadius,
	}
}

type refreshResponse struct {
	Stored   int               `json:"stored"`
	Excluded int               `json:"excluded"`
	Failed   int               `json:"failed"`
	Pois     []place.GlobalPoi `json:"pois"`
}

// Refresh pulls directory POIs around a location into the place store
func (h *PlaceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	location, err := locationFromQuery(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	radius := h.defaultRadius
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 || radius > maxRefreshRadius {
			respondWithError(w, r, http.StatusBadRequest, "radius must be between 0 and 5000 meters", err)
			return
		}
	}

	result, err := h.refresher.Refresh(r.Context(), location, radius)
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Failed to refresh places", err)
		return
	}

	pois := result.Stored
	if pois == nil {
		pois = []place.GlobalPoi{}
	}

	respondWithJSON(w, http.StatusOK, refreshResponse{
		Stored:   len(result.Stored),
		Excluded: result.Excluded,
		Failed:   result.Failed,
		Pois:     pois,
	})
}
