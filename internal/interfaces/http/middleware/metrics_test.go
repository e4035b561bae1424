package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func metricsTestEngine(mw gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(mw)
	engine.GET("/devices/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return engine
}

func TestHTTPMetricsDisabled(t *testing.T) {
	engine := metricsTestEngine(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/devices/1", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetricsNilMeterProvider(t *testing.T) {
	engine := metricsTestEngine(HTTPMetrics(HTTPMetricsConfig{Enabled: true, MeterProvider: nil}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/devices/1", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetricsWithMeterRecordsRequests(t *testing.T) {
	mp, reader := setupTestMeter(t)
	engine := metricsTestEngine(HTTPMetricsWithMeter(mp.Meter("http.server"), true))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/devices/42", nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	rm := collectMetrics(t, reader)

	total := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, total)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	// Route label uses the matched pattern, not the raw path
	route, found := sum.DataPoints[0].Attributes.Value("http.route")
	require.True(t, found)
	assert.Equal(t, "/devices/:id", route.AsString())

	duration := findMetricByName(rm, "http_server_request_duration_seconds")
	require.NotNil(t, duration)
}

func TestHTTPMetricsUnmatchedRoute(t *testing.T) {
	mp, reader := setupTestMeter(t)
	engine := metricsTestEngine(HTTPMetricsWithMeter(mp.Meter("http.server"), true))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	rm := collectMetrics(t, reader)
	total := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, total)
	sum, ok := total.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	route, found := sum.DataPoints[0].Attributes.Value("http.route")
	require.True(t, found)
	assert.Equal(t, "unmatched_404", route.AsString())
}
