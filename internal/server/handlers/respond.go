// internal/server/handlers/respond.go

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"geosnap/internal/domain/geo"
	"geosnap/internal/logging"
)

// Common errors
var (
	ErrMissingCoordinates = errors.New("lat and lng query parameters are required")
	ErrInvalidCoordinates = errors.New("lat and lng must be numbers")
)

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, r *http.Request, code int, message string, err error) {
	response := map[string]string{"error": message}

	if err != nil && code >= 500 {
		logging.Ctx(r.Context()).Error().Err(err).Int("code", code).Str("path", r.URL.Path).Msg(message)
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}

// locationFromQuery reads lat and lng query parameters
func locationFromQuery(r *http.Request) (geo.Location, error) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" || lngStr == "" {
		return geo.Location{}, ErrMissingCoordinates
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Location{}, ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return geo.Location{}, ErrInvalidCoordinates
	}

	location := geo.Location{Latitude: lat, Longitude: lng}
	if err := location.Validate(); err != nil {
		return geo.Location{}, err
	}
	return location, nil
}
