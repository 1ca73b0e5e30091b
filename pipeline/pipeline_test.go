package pipeline

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionEventRoundTrip(t *testing.T) {
	event := NewRevisionEvent(3, 12)
	data, err := event.Marshal()
	require.NoError(t, err)

	parsed, err := ParseRevisionEvent(data)
	require.NoError(t, err)
	assert.Equal(t, int64(3), parsed.OntologyID)
	assert.Equal(t, int64(12), parsed.RevisionID)
	assert.False(t, parsed.Timestamp.IsZero())
}

func TestParseRevisionEventIgnoresUnknownFields(t *testing.T) {
	payload := `{"ontologyId": 1, "revisionId": 2, "source": "webhook", "extra": {"a": 1}}`
	event, err := ParseRevisionEvent([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(1), event.OntologyID)
	assert.Equal(t, int64(2), event.RevisionID)
}

func TestParseRevisionEventRejectsMalformed(t *testing.T) {
	_, err := ParseRevisionEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseRevisionEvent([]byte(`{"ontologyId": 0, "revisionId": 1}`))
	assert.Error(t, err)

	_, err = ParseRevisionEvent([]byte(`{"ontologyId": 1, "revisionId": -4}`))
	assert.Error(t, err)
}

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Observe("model", 25*time.Millisecond, nil)
	m.Observe("model", 10*time.Millisecond, assert.AnError)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.processed.WithLabelValues("model")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("model")))
}
