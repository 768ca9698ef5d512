// internal/adapter/events/publisher.go

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"geosnap/internal/domain/place"
)

// PoiUpsertedEvent is published whenever the classifier stores a POI
type PoiUpsertedEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Poi       place.GlobalPoi `json:"poi"`
	Timestamp time.Time       `json:"timestamp"`
}

// PhotoUploadedEvent announces a new photo. Only the location is needed to
// decide which live discovery sessions should refresh.
type PhotoUploadedEvent struct {
	PhotoID   string  `json:"photoId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Publisher publishes place events to NATS
type Publisher struct {
	nc    *nats.Conn
	topic string
}

// NewPublisher creates a new publisher for the given subject prefix
func NewPublisher(nc *nats.Conn, topic string) *Publisher {
	return &Publisher{
		nc:    nc,
		topic: topic,
	}
}

// PoiUpsertedSubject returns the subject POI upserts are published on
func PoiUpsertedSubject(topic string) string {
	return topic + ".poi.upserted"
}

// PublishPoiUpserted publishes a POI upsert event
func (p *Publisher) PublishPoiUpserted(ctx context.Context, poi place.GlobalPoi) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(PoiUpsertedEvent{
		ID:        uuid.New().String(),
		Type:      "poi_upserted",
		Poi:       poi,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("error marshaling poi event: %w", err)
	}

	if err := p.nc.Publish(PoiUpsertedSubject(p.topic), data); err != nil {
		return fmt.Errorf("error publishing poi event: %w", err)
	}
	return nil
}

// DecodePhotoUploaded parses a photo uploaded message
func DecodePhotoUploaded(data []byte) (PhotoUploadedEvent, error) {
	var event PhotoUploadedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("error decoding photo uploaded event: %w", err)
	}
	return event, nil
}
