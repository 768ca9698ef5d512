// internal/service/classifier/classifier.go

package classifier

import (
	"context"
	"fmt"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/place"
	"geosnap/internal/logging"
	"geosnap/internal/metrics"
)

// EventPublisher announces stored POIs to other subsystems
type EventPublisher interface {
	PublishPoiUpserted(ctx context.Context, poi place.GlobalPoi) error
}

// IngestResult summarizes one ingest run
type IngestResult struct {
	Stored   []place.GlobalPoi
	Excluded int
	Failed   int
}

// Classifier classifies external POI records and upserts them into the place store
type Classifier struct {
	rules     *RuleTable
	places    place.Store
	directory place.Directory
	events    EventPublisher
}

// NewClassifier creates a new classifier. directory and events may be nil.
func NewClassifier(
	rules *RuleTable,
	places place.Store,
	directory place.Directory,
	events EventPublisher,
) *Classifier {
	if rules == nil {
		rules = DefaultRuleTable()
	}

	return &Classifier{
		rules:     rules,
		places:    places,
		directory: directory,
		events:    events,
	}
}

// Classify maps a record's tags to its capture radius and importance
func (c *Classifier) Classify(record place.RawPoiRecord) Classification {
	return c.rules.Classify(record.Tags)
}

// Ingest filters, classifies and upserts records. A record that fails to
// store is skipped; Ingest only fails when ctx is done.
func (c *Classifier) Ingest(ctx context.Context, records []place.RawPoiRecord) (IngestResult, error) {
	var result IngestResult

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if record.ExternalID == "" || c.rules.Excluded(record.Tags) {
			result.Excluded++
			metrics.PoisIngestedTotal.WithLabelValues("excluded").Inc()
			continue
		}

		class := c.rules.Classify(record.Tags)
		poi, err := c.places.UpsertGlobalPoi(ctx, place.GlobalPoi{
			ExternalID:          record.ExternalID,
			Name:                record.Name,
			Address:             record.Address,
			Location:            record.Location,
			CaptureRadiusMeters: class.CaptureRadiusMeters,
			ImportanceScore:     class.ImportanceScore,
		})
		if err != nil {
			result.Failed++
			metrics.PoisIngestedTotal.WithLabelValues("failed").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("external_id", record.ExternalID).Msg("poi upsert failed")
			continue
		}

		result.Stored = append(result.Stored, poi)
		metrics.PoisIngestedTotal.WithLabelValues("stored").Inc()

		if c.events != nil {
			if err := c.events.PublishPoiUpserted(ctx, poi); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("poi_id", poi.ID).Msg("publish poi upserted failed")
			}
		}
	}

	return result, nil
}

// Refresh looks up POIs near center in the external directory and ingests them.
// Directory failures degrade to an empty lookup.
func (c *Classifier) Refresh(ctx context.Context, center geo.Location, radiusMeters float64) (IngestResult, error) {
	if c.directory == nil {
		return IngestResult{}, nil
	}

	records, err := c.directory.LookupNearby(ctx, center, radiusMeters)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Float64("lat", center.Latitude).
			Float64("lng", center.Longitude).
			Msg("directory lookup failed")
		return IngestResult{}, nil
	}

	result, err := c.Ingest(ctx, records)
	if err != nil {
		return result, fmt.Errorf("error ingesting directory records: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Int("stored", len(result.Stored)).
		Int("excluded", result.Excluded).
		Int("failed", result.Failed).
		Msg("poi refresh complete")

	return result, nil
}
