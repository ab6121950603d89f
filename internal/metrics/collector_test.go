package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(t *testing.T, c *Collector, name string) *dto.MetricFamily {
	t.Helper()
	families, err := c.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func labelsOf(m *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestObserve_CountsPerStatus(t *testing.T) {
	c := NewCollector("1.0.0", 0)
	c.Observe("POST", "/webhook", 200, 10*time.Millisecond)
	c.Observe("POST", "/webhook", 200, 20*time.Millisecond)
	c.Observe("POST", "/webhook", 401, 5*time.Millisecond)

	family := findFamily(t, c, "http_requests_total")
	require.NotNil(t, family)

	counts := map[string]float64{}
	for _, m := range family.GetMetric() {
		l := labelsOf(m)
		assert.Equal(t, "POST", l["method"])
		assert.Equal(t, "/webhook", l["path"])
		counts[l["status"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"200": 2, "401": 1}, counts)

	summary := findFamily(t, c, "http_request_duration_seconds")
	require.NotNil(t, summary)
	require.Len(t, summary.GetMetric(), 1)
	s := summary.GetMetric()[0].GetSummary()
	assert.Equal(t, uint64(3), s.GetSampleCount())
	assert.InDelta(t, 0.035, s.GetSampleSum(), 1e-9)
}

func TestObserve_DurationSamplesAreCapped(t *testing.T) {
	c := NewCollector("1.0.0", 3)
	for i := 1; i <= 5; i++ {
		c.Observe("GET", "/messages", 200, time.Duration(i)*time.Second)
	}

	s := findFamily(t, c, "http_request_duration_seconds").GetMetric()[0].GetSummary()
	assert.Equal(t, uint64(3), s.GetSampleCount())
	assert.InDelta(t, 3.0+4.0+5.0, s.GetSampleSum(), 1e-9)

	// The counter is not capped.
	counter := findFamily(t, c, "http_requests_total").GetMetric()[0].GetCounter()
	assert.Equal(t, float64(5), counter.GetValue())
}

func TestObserve_Concurrent(t *testing.T) {
	c := NewCollector("1.0.0", 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Observe("GET", "/health/live", 200, time.Millisecond)
		}()
	}
	wg.Wait()

	counter := findFamily(t, c, "http_requests_total").GetMetric()[0].GetCounter()
	assert.Equal(t, float64(50), counter.GetValue())
}

func TestAppInfoAndStartTime(t *testing.T) {
	c := NewCollector("2.3.4", 0)
	assert.Nil(t, findFamily(t, c, "app_start_time_seconds"))

	started := time.Unix(1700000000, 0)
	c.MarkStarted(started)
	c.MarkStarted(started)

	info := findFamily(t, c, "app_info")
	require.NotNil(t, info)
	assert.Equal(t, "2.3.4", labelsOf(info.GetMetric()[0])["version"])
	assert.Equal(t, float64(1), info.GetMetric()[0].GetGauge().GetValue())

	start := findFamily(t, c, "app_start_time_seconds")
	require.NotNil(t, start)
	assert.Equal(t, float64(1700000000), start.GetMetric()[0].GetGauge().GetValue())
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := NewCollector("1.0.0", 0)
	router := gin.New()
	router.Use(c.Middleware())
	router.GET("/messages", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	router.GET(MetricsPath, gin.WrapH(c.Handler()))

	for _, path := range []string{"/messages", "/messages", "/nope", MetricsPath} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	require.Equal(t, http.StatusOK, w.Code)

	raw, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, `http_requests_total{method="GET",path="/messages",status="200"} 2`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.Contains(t, body, `http_request_duration_seconds_count{method="GET",path="/messages"} 2`)
	assert.Contains(t, body, `http_request_duration_seconds_sum{method="GET",path="/messages"}`)
	assert.Contains(t, body, `app_info{version="1.0.0"} 1`)
	assert.False(t, strings.Contains(body, `path="/metrics"`))
}
