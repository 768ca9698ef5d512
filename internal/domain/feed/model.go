package feed

import (
	"time"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
)

// HistoricalPoint is one timestamped location of a client-supplied trail
type HistoricalPoint struct {
	Location  geo.Location
	Timestamp time.Time
}

// Match ties a photo to the place it matched and the time that caused the match
type Match struct {
	Place     place.Place
	Photo     photo.Photo
	MatchedAt time.Time
}

// Item is the unified, aggregated representation of a place and its matching photos
type Item struct {
	PlaceKind            place.Kind          `json:"placeKind"`
	Name                 string              `json:"name"`
	Latitude             float64             `json:"latitude"`
	Longitude            float64             `json:"longitude"`
	CoverImageRef        string              `json:"coverImageRef"`
	CoverImageURL        *string             `json:"coverImageUrl"`
	PhotoCount           int                 `json:"photoCount"`
	NewestPhotoTimestamp time.Time           `json:"newestPhotoTimestamp"`
	GlobalPoiID          *string             `json:"globalPoiId"`
	ExternalID           *string             `json:"externalId"`
	EphemeralSpotID      *string             `json:"ephemeralSpotId"`
	Address              *string             `json:"address"`
	CaptureRadiusMeters  *float64            `json:"captureRadiusMeters"`
	AccessPolicy         *place.AccessPolicy `json:"accessPolicy"`
	IsTrending           *bool               `json:"isTrending"`
	IsLive               *bool               `json:"isLive"`
	ExpiresAt            *time.Time          `json:"expiresAt"`

	// EarliestMatch is the first trail time (or query time) that matched the place
	EarliestMatch time.Time `json:"-"`
}

// PlaceKey returns the grouping key of the item's place
func (i Item) PlaceKey() string {
	switch {
	case i.GlobalPoiID != nil:
		return place.Ref{Kind: place.KindGlobalPoi, ID: *i.GlobalPoiID}.Key()
	case i.EphemeralSpotID != nil:
		return place.Ref{Kind: place.KindEphemeralSpot, ID: *i.EphemeralSpotID}.Key()
	default:
		return ""
	}
}

// FriendPhoto is a photo entry of the friends feed
type FriendPhoto struct {
	ID         string           `json:"id"`
	UploaderID string           `json:"uploaderId"`
	Visibility photo.Visibility `json:"visibility"`
	StorageRef string           `json:"storageRef"`
	ImageURL   *string          `json:"imageUrl"`
	Latitude   float64          `json:"latitude"`
	Longitude  float64          `json:"longitude"`
	PlaceKind  *place.Kind      `json:"placeKind"`
	PlaceID    *string          `json:"placeId"`
	UploadedAt time.Time        `json:"uploadedAt"`
	ExpiresAt  time.Time        `json:"expiresAt"`
}
