package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNewRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestObserveResolution(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveResolution("index", 10*time.Millisecond, nil)
	m.ObserveResolution("index", 10*time.Millisecond, errors.New("boom"))
	m.ObserveResolution("chain", time.Second, nil)
	m.IncFallback()
	m.ObserveTokenRead(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("index", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("index", StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("chain", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenReads.WithLabelValues(StatusSuccess)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResolution("index", time.Second, nil)
		m.IncFallback()
		m.ObserveTokenRead(nil)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.ObserveResolution("chain", time.Second, nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `blockseek_resolutions_total{status="success",strategy="chain"} 1`)
}
