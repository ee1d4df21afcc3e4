package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsManager_Counters(t *testing.T) {
	m := NewMetricsManager("estate-service")

	m.ListingCreated()
	m.ListingCreated()
	m.ReviewDeleted()
	m.MediaCleanup("queued", 3)
	m.MediaCleanup("queued", 0)
	m.ObserveHTTP("GET", "/api/listing", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListingsCreatedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsDeletedTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MediaCleanupTotal.WithLabelValues("queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/listing", "200")))
}

func TestMetricsManager_NilIsNoop(t *testing.T) {
	var m *MetricsManager
	assert.NotPanics(t, func() {
		m.ListingCreated()
		m.ListingDeleted()
		m.ReviewCreated()
		m.ReviewDeleted()
		m.MediaCleanup("abandoned", 1)
		m.ObserveHTTP("GET", "/", 500, time.Second)
	})
}
