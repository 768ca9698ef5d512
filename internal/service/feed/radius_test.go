package feed

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"geosnap/internal/adapter/memory"
	"geosnap/internal/domain/geo"
	"geosnap/internal/metrics"
)

func TestRadiusForDensity(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 300},
		{1, 300},
		{2, 300},
		{3, 100},
		{10, 100},
		{11, 50},
		{250, 50},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d pois", tt.count), func(t *testing.T) {
			assert.Equal(t, tt.want, RadiusForDensity(tt.count))
		})
	}
}

func TestAdaptiveRadius_CountsWithinProbe(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{})

	for i := 0; i < 3; i++ {
		addPoi(t, store, fmt.Sprintf("in-%d", i), geo.Offset(origin, float64(i*10), 0))
	}
	// Outside the probe radius
	addPoi(t, store, "out", geo.Offset(origin, 120, 0))

	assert.Equal(t, RadiusModerate, svc.AdaptiveRadius(context.Background(), origin))
}

func TestAdaptiveRadius_ProbeFailureUsesWidest(t *testing.T) {
	svc := NewService(failingPlaces{}, failingPhotos{}, nil, nil, DefaultConfig())

	before := testutil.ToFloat64(metrics.StoreDegradedTotal.WithLabelValues("poi_density"))
	assert.Equal(t, RadiusSparse, svc.AdaptiveRadius(context.Background(), origin))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StoreDegradedTotal.WithLabelValues("poi_density")))
}
