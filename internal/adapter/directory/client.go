// internal/adapter/directory/client.go

package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"

	"geosnap/internal/config"
	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/place"
	"geosnap/internal/logging"
	"geosnap/internal/metrics"
)

const breakerName = "poi-directory"

// ErrUnexpectedStatus is returned when the directory answers with a non-OK status
var ErrUnexpectedStatus = errors.New("unexpected directory status")

// Client queries a Places-style nearby search API
type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
	cb      *gobreaker.CircuitBreaker[[]place.RawPoiRecord]
}

var _ place.Directory = (*Client)(nil)

// NewClient creates a new directory client
func NewClient(cfg config.DirectoryConfig) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = retryLogger{}
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.HTTPClient.Timeout = cfg.Timeout

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]place.RawPoiRecord](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    retryClient,
		cb:      cb,
	}
}

// LookupNearby returns POI records within radiusMeters of center
func (c *Client) LookupNearby(ctx context.Context, center geo.Location, radiusMeters float64) ([]place.RawPoiRecord, error) {
	start := time.Now()
	defer func() {
		metrics.DirectoryDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	records, err := c.cb.Execute(func() ([]place.RawPoiRecord, error) {
		return c.lookup(ctx, center, radiusMeters)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.DirectoryRequestsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.DirectoryRequestsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.DirectoryRequestsTotal.WithLabelValues("ok").Inc()
	return records, nil
}

func (c *Client) lookup(ctx context.Context, center geo.Location, radiusMeters float64) ([]place.RawPoiRecord, error) {
	query := url.Values{}
	query.Set("location", fmt.Sprintf("%f,%f", center.Latitude, center.Longitude))
	query.Set("radius", strconv.Itoa(int(radiusMeters)))
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling directory: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading directory response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return parseNearby(body)
}

// parseNearby decodes a nearby search response body
func parseNearby(body []byte) ([]place.RawPoiRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed body", ErrUnexpectedStatus)
	}

	parsed := gjson.ParseBytes(body)
	switch status := parsed.Get("status").String(); status {
	case "", "OK":
	case "ZERO_RESULTS":
		return []place.RawPoiRecord{}, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrUnexpectedStatus, status, parsed.Get("error_message").String())
	}

	results := parsed.Get("results").Array()
	records := make([]place.RawPoiRecord, 0, len(results))
	for _, r := range results {
		id := r.Get("place_id").String()
		if id == "" {
			continue
		}

		record := place.RawPoiRecord{
			ExternalID: id,
			Name:       r.Get("name").String(),
			Address:    r.Get("vicinity").String(),
			Location: geo.Location{
				Latitude:  r.Get("geometry.location.lat").Float(),
				Longitude: r.Get("geometry.location.lng").Float(),
			},
		}
		for _, tag := range r.Get("types").Array() {
			record.Tags = append(record.Tags, tag.String())
		}
		records = append(records, record)
	}

	return records, nil
}

// retryLogger routes retryablehttp logs through zerolog
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...interface{}) { logging.Error().Fields(kv).Msg(msg) }
func (retryLogger) Info(msg string, kv ...interface{})  { logging.Debug().Fields(kv).Msg(msg) }
func (retryLogger) Debug(msg string, kv ...interface{}) { logging.Debug().Fields(kv).Msg(msg) }
func (retryLogger) Warn(msg string, kv ...interface{})  { logging.Warn().Fields(kv).Msg(msg) }
