package telemetry

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAppMetrics_Records(t *testing.T) {
	RegisterTestingT(t)

	registry := prometheus.NewRegistry()
	metrics := NewAppMetrics(registry)
	ctx := context.Background()

	metrics.RecordTaskOperation(ctx, "add")
	metrics.RecordTaskOperation(ctx, "add")
	metrics.RecordWeatherFetch(ctx, "ok", 20*time.Millisecond)
	metrics.RecordCacheHit(ctx, "weather")
	metrics.RecordRequest(ctx, "GET", "/api/tasks", 200, time.Millisecond)

	Expect(testutil.ToFloat64(metrics.taskOperations.WithLabelValues("add"))).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.weatherFetches.WithLabelValues("ok"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.cacheHits.WithLabelValues("weather"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/api/tasks", "200"))).To(Equal(1.0))
}

func TestAppMetrics_NilSafe(t *testing.T) {
	var metrics *AppMetrics

	metrics.RecordTaskOperation(context.Background(), "add")
	metrics.RecordCacheMiss(context.Background(), "weather")
	metrics.RecordRequest(context.Background(), "GET", "/", 200, time.Millisecond)
}
