// internal/validation/trail.go

package validation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/geo"
)

// TrailPoint is the wire form of one historical point. Pointers make a
// missing field distinguishable from a zero value.
type TrailPoint struct {
	Latitude  *float64   `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64   `json:"longitude" validate:"required,min=-180,max=180"`
	Timestamp *time.Time `json:"timestamp" validate:"required"`
}

// FriendsRequest is the body of a friends feed request
type FriendsRequest struct {
	UploaderIDs []string   `json:"uploaderIds" validate:"max=500,dive,required"`
	Since       *time.Time `json:"since,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeTrail parses and validates a JSON trail. An empty body, null and []
// all decode to an empty trail. Every failure wraps feed.ErrInvalidTrail.
func DecodeTrail(body []byte, maxPoints int) ([]feed.HistoricalPoint, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []feed.HistoricalPoint{}, nil
	}

	var points []TrailPoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, fmt.Errorf("%w: %v", feed.ErrInvalidTrail, err)
	}

	if maxPoints > 0 && len(points) > maxPoints {
		return nil, fmt.Errorf("%w: %d points exceeds limit of %d", feed.ErrInvalidTrail, len(points), maxPoints)
	}

	trail := make([]feed.HistoricalPoint, 0, len(points))
	for i := range points {
		if err := validate.Struct(&points[i]); err != nil {
			return nil, fmt.Errorf("%w: point %d: %s", feed.ErrInvalidTrail, i, describe(err))
		}
		trail = append(trail, feed.HistoricalPoint{
			Location: geo.Location{
				Latitude:  *points[i].Latitude,
				Longitude: *points[i].Longitude,
			},
			Timestamp: *points[i].Timestamp,
		})
	}

	return trail, nil
}

// DecodeFriendsRequest parses and validates a friends feed request
func DecodeFriendsRequest(body []byte) (FriendsRequest, error) {
	var req FriendsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(&req); err != nil {
		return req, fmt.Errorf("invalid request: %s", describe(err))
	}
	return req, nil
}

// describe flattens validator errors into a short message
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, ", ")
}
