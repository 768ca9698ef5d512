package place

import (
	"fmt"
	"time"

	"geosnap/internal/domain/geo"
)

// Kind identifies which place taxonomy a record belongs to
type Kind string

const (
	KindGlobalPoi     Kind = "global_poi"
	KindEphemeralSpot Kind = "ephemeral_spot"
)

// AccessPolicy controls how users may join an ephemeral spot
type AccessPolicy string

const (
	AccessOpen     AccessPolicy = "open"
	AccessPassword AccessPolicy = "password"
	AccessQR       AccessPolicy = "qr"
	AccessApproval AccessPolicy = "approval"
)

// MinSpotCaptureRadius is the smallest capture radius an ephemeral spot may carry
const MinSpotCaptureRadius = 10.0

// Ref identifies a place by kind and id
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Key returns a stable string form used for grouping and tie-breaking
func (r Ref) Key() string {
	return string(r.Kind) + ":" + r.ID
}

// IsZero reports whether the reference points at no place
func (r Ref) IsZero() bool {
	return r.Kind == "" || r.ID == ""
}

// GlobalPoi is a durable point of interest sourced from the external directory
type GlobalPoi struct {
	ID                  string       `json:"id"`
	ExternalID          string       `json:"externalId"`
	Name                string       `json:"name"`
	Address             string       `json:"address"`
	Location            geo.Location `json:"location"`
	CaptureRadiusMeters float64      `json:"captureRadiusMeters"`
	ImportanceScore     int          `json:"importanceScore"`
	CreatedAt           time.Time    `json:"createdAt"`
}

// Ref returns the place reference of the POI
func (p GlobalPoi) Ref() Ref {
	return Ref{Kind: KindGlobalPoi, ID: p.ID}
}

// EphemeralSpot is a user-created, time-bounded place
type EphemeralSpot struct {
	ID                  string
	CreatorID           string
	Name                string
	Location            geo.Location
	CaptureRadiusMeters float64
	AccessPolicy        AccessPolicy
	AccessSecret        *string
	IsTrending          bool
	IsLive              bool
	ScheduledLiveAt     *time.Time
	ExpiresAt           time.Time
	ChallengesEnabled   bool
	CreatedAt           time.Time
}

// Ref returns the place reference of the spot
func (s EphemeralSpot) Ref() Ref {
	return Ref{Kind: KindEphemeralSpot, ID: s.ID}
}

// LiveAt reports whether the spot is live and not expired at t
func (s EphemeralSpot) LiveAt(t time.Time) bool {
	return s.IsLive && s.ExpiresAt.After(t)
}

// Validate checks spot invariants
func (s EphemeralSpot) Validate() error {
	if s.CaptureRadiusMeters < MinSpotCaptureRadius {
		return fmt.Errorf("capture radius %.1fm below minimum %.0fm", s.CaptureRadiusMeters, MinSpotCaptureRadius)
	}
	switch s.AccessPolicy {
	case AccessOpen, AccessPassword, AccessQR, AccessApproval:
	default:
		return fmt.Errorf("unknown access policy %q", s.AccessPolicy)
	}
	return s.Location.Validate()
}

// Place is the union of both taxonomies as seen by the aggregator.
// Exactly one of Poi and Spot is set.
type Place struct {
	Poi  *GlobalPoi
	Spot *EphemeralSpot
}

// FromPoi wraps a global POI
func FromPoi(p GlobalPoi) Place {
	return Place{Poi: &p}
}

// FromSpot wraps an ephemeral spot
func FromSpot(s EphemeralSpot) Place {
	return Place{Spot: &s}
}

// Ref returns the reference of the wrapped place
func (p Place) Ref() Ref {
	switch {
	case p.Poi != nil:
		return p.Poi.Ref()
	case p.Spot != nil:
		return p.Spot.Ref()
	default:
		return Ref{}
	}
}
