package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the OTel instruments recorded by the hooks.
type metrics struct {
	parseLatency  metric.Float64Histogram
	parseErrors   metric.Int64Counter
	layoutLatency metric.Float64Histogram
	layoutErrors  metric.Int64Counter
	renderLatency metric.Float64Histogram
	renderErrors  metric.Int64Counter
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	cacheWrites   metric.Int64Counter
	storeOps      metric.Int64Counter
	storeLatency  metric.Float64Histogram
	httpRequests  metric.Int64Counter
	httpLatency   metric.Float64Histogram
}

var (
	defaultMetrics     *metrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default metrics instance, creating the
// instruments on first call.
func getDefaultMetrics() (*metrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter("flowscope")

	parseLatency, err := meter.Float64Histogram("flowscope.parse.latency_ms",
		metric.WithDescription("Workflow parse latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter("flowscope.parse.errors",
		metric.WithDescription("Number of workflow parse failures"),
	)
	if err != nil {
		return nil, err
	}

	layoutLatency, err := meter.Float64Histogram("flowscope.layout.latency_ms",
		metric.WithDescription("Auto-layout latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	layoutErrors, err := meter.Int64Counter("flowscope.layout.errors",
		metric.WithDescription("Number of auto-layout failures"),
	)
	if err != nil {
		return nil, err
	}

	renderLatency, err := meter.Float64Histogram("flowscope.render.latency_ms",
		metric.WithDescription("Render latency in milliseconds across all requested formats"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	renderErrors, err := meter.Int64Counter("flowscope.render.errors",
		metric.WithDescription("Number of render failures"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter("flowscope.cache.hits",
		metric.WithDescription("Number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter("flowscope.cache.misses",
		metric.WithDescription("Number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	cacheWrites, err := meter.Int64Counter("flowscope.cache.writes",
		metric.WithDescription("Number of cache writes"),
	)
	if err != nil {
		return nil, err
	}

	storeOps, err := meter.Int64Counter("flowscope.store.ops",
		metric.WithDescription("Number of graph store operations"),
	)
	if err != nil {
		return nil, err
	}

	storeLatency, err := meter.Float64Histogram("flowscope.store.latency_ms",
		metric.WithDescription("Graph store operation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter("flowscope.http.requests",
		metric.WithDescription("Number of HTTP requests served"),
	)
	if err != nil {
		return nil, err
	}

	httpLatency, err := meter.Float64Histogram("flowscope.http.latency_ms",
		metric.WithDescription("HTTP request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		parseLatency:  parseLatency,
		parseErrors:   parseErrors,
		layoutLatency: layoutLatency,
		layoutErrors:  layoutErrors,
		renderLatency: renderLatency,
		renderErrors:  renderErrors,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		cacheWrites:   cacheWrites,
		storeOps:      storeOps,
		storeLatency:  storeLatency,
		httpRequests:  httpRequests,
		httpLatency:   httpLatency,
	}, nil
}
