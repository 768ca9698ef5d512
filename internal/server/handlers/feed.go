// internal/server/handlers/feed.go

package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"geosnap/internal/domain/feed"
	"geosnap/internal/validation"
)

const maxBodyBytes = 4 << 20

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	service        feed.Service
	maxTrailPoints int
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(service feed.Service, maxTrailPoints int) *FeedHandler {
	return &FeedHandler{
		service:        service,
		maxTrailPoints: maxTrailPoints,
	}
}

// Discover returns live places with unexpired photos around a location
func (h *FeedHandler) Discover(w http.ResponseWriter, r *http.Request) {
	location, err := locationFromQuery(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	items, err := h.service.Discover(r.Context(), location)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidLocation) {
			respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
			return
		}
		respondWithError(w, r, http.StatusInternalServerError, "Failed to build discovery feed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

// Historical returns places visited along the posted trail
func (h *FeedHandler) Historical(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	trail, err := validation.DecodeTrail(body, h.maxTrailPoints)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	items, err := h.service.Historical(r.Context(), trail)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidTrail) {
			respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
			return
		}
		respondWithError(w, r, http.StatusInternalServerError, "Failed to build historical feed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

// Friends returns unexpired friend-visible photos by the posted uploaders
func (h *FeedHandler) Friends(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	req, err := validation.DecodeFriendsRequest(body)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	var since time.Time
	if req.Since != nil {
		since = *req.Since
	}

	photos, err := h.service.FriendsPhotos(r.Context(), req.UploaderIDs, since)
	if err != nil {
		respondWithError(w, r, http.StatusInternalServerError, "Failed to fetch friends photos", err)
		return
	}

	respondWithJSON(w, http.StatusOK, photos)
}
