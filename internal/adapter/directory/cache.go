// internal/adapter/directory/cache.go

package directory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/place"
	"geosnap/internal/logging"
	"geosnap/internal/metrics"
)

const cacheKeyPrefix = "geosnap:directory:"

// CachedDirectory memoizes directory lookups in Redis. Lookups are keyed on
// the center rounded to roughly 10m and the radius in whole meters.
type CachedDirectory struct {
	next   place.Directory
	client goredis.UniversalClient
	ttl    time.Duration
}

var _ place.Directory = (*CachedDirectory)(nil)

// NewCachedDirectory wraps next with a Redis cache
func NewCachedDirectory(next place.Directory, client goredis.UniversalClient, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

// LookupNearby serves from cache when possible. Cache failures fall through to the wrapped directory.
func (c *CachedDirectory) LookupNearby(ctx context.Context, center geo.Location, radiusMeters float64) ([]place.RawPoiRecord, error) {
	key := cacheKey(center, radiusMeters)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []place.RawPoiRecord
		if jerr := json.Unmarshal(raw, &records); jerr == nil {
			metrics.DirectoryCacheTotal.WithLabelValues("hit").Inc()
			return records, nil
		}
		logging.Ctx(ctx).Warn().Str("key", key).Msg("discarding undecodable directory cache entry")
	case errors.Is(err, goredis.Nil):
	default:
		logging.Ctx(ctx).Warn().Err(err).Msg("directory cache read failed")
	}
	metrics.DirectoryCacheTotal.WithLabelValues("miss").Inc()

	records, err := c.next.LookupNearby(ctx, center, radiusMeters)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("directory cache write failed")
	}

	return records, nil
}

func cacheKey(center geo.Location, radiusMeters float64) string {
	return fmt.Sprintf("%s%.4f:%.4f:%d",
		cacheKeyPrefix,
		round4(center.Latitude),
		round4(center.Longitude),
		int(math.Round(radiusMeters)),
	)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
