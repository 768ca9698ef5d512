package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosnap/internal/domain/feed"
)

func TestDecodeTrail(t *testing.T) {
	body := []byte(`[
		{"latitude": 0, "longitude": 0, "timestamp": "2026-05-01T10:00:00Z"},
		{"latitude": 52.52, "longitude": 13.405, "timestamp": "2026-05-01T12:00:00+02:00"}
	]`)

	trail, err := DecodeTrail(body, 10)
	require.NoError(t, err)
	require.Len(t, trail, 2)

	assert.Equal(t, 0.0, trail[0].Location.Latitude)
	assert.Equal(t, 13.405, trail[1].Location.Longitude)
	assert.True(t, trail[1].Timestamp.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestDecodeTrail_EmptyForms(t *testing.T) {
	for _, body := range []string{``, `  `, `null`, `[]`} {
		trail, err := DecodeTrail([]byte(body), 10)
		require.NoError(t, err, "body %q", body)
		assert.Empty(t, trail)
	}
}

func TestDecodeTrail_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"object instead of array", `{"latitude": 1}`},
		{"missing latitude", `[{"longitude": 1, "timestamp": "2026-05-01T10:00:00Z"}]`},
		{"missing timestamp", `[{"latitude": 1, "longitude": 1}]`},
		{"latitude out of range", `[{"latitude": 91, "longitude": 1, "timestamp": "2026-05-01T10:00:00Z"}]`},
		{"longitude out of range", `[{"latitude": 1, "longitude": -181, "timestamp": "2026-05-01T10:00:00Z"}]`},
		{"bad timestamp", `[{"latitude": 1, "longitude": 1, "timestamp": "yesterday"}]`},
		{"too many points", `[
			{"latitude": 1, "longitude": 1, "timestamp": "2026-05-01T10:00:00Z"},
			{"latitude": 1, "longitude": 1, "timestamp": "2026-05-01T10:00:00Z"},
			{"latitude": 1, "longitude": 1, "timestamp": "2026-05-01T10:00:00Z"}
		]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTrail([]byte(tt.body), 2)
			require.Error(t, err)
			assert.True(t, errors.Is(err, feed.ErrInvalidTrail))
		})
	}
}

func TestDecodeFriendsRequest(t *testing.T) {
	req, err := DecodeFriendsRequest([]byte(`{"uploaderIds": ["a", "b"], "since": "2026-05-01T00:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, req.UploaderIDs)
	require.NotNil(t, req.Since)

	_, err = DecodeFriendsRequest([]byte(`{"uploaderIds": ["a", ""]}`))
	assert.Error(t, err)

	_, err = DecodeFriendsRequest([]byte(`[`))
	assert.Error(t, err)
}
