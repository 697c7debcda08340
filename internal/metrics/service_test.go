package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RecordsLabelledCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncMatchRequests(EngineBasic)
	s.IncMatchRequests(EngineEnhanced)
	s.IncMatchRequests(EngineEnhanced)
	s.IncMatchesFound(EngineEnhanced)
	s.IncRatingUpdates(4)
	s.IncPersistenceFailures("record result")
	s.ObserveMatchDuration(EngineBasic, 0.002)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.MatchRequests.WithLabelValues(EngineBasic)))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.MatchRequests.WithLabelValues(EngineEnhanced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.MatchesFound.WithLabelValues(EngineEnhanced)))
	assert.Equal(t, 4.0, testutil.ToFloat64(s.RatingUpdates))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.PersistenceFailures.WithLabelValues("record result")))

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rallyrank_match_requests_total{engine="enhanced"} 2`)
	assert.Contains(t, rec.Body.String(), "rallyrank_match_duration_seconds_count")
}
