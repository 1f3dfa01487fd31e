package telemetry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/flowscope/flowscope/pkg/observability"
)

// Hooks implements the observability hook interfaces with OpenTelemetry
// instruments. Start events become span events on the current span;
// completion events record counters and latency histograms.
type Hooks struct {
	m *metrics
}

// NewHooks creates OTel-backed hooks using the global meter provider.
func NewHooks() (*Hooks, error) {
	m, err := getDefaultMetrics()
	if err != nil {
		return nil, err
	}
	return &Hooks{m: m}, nil
}

// Register installs OTel-backed hooks as the process-wide observers.
func Register() error {
	h, err := NewHooks()
	if err != nil {
		return err
	}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetStoreHooks(h)
	observability.SetHTTPHooks(h)
	return nil
}

func (h *Hooks) OnParseStart(ctx context.Context, name string) {
	AddSpanEvent(ctx, "parse.start", attribute.String("workflow.name", name))
}

func (h *Hooks) OnParseComplete(ctx context.Context, name string, nodeCount, edgeCount int, duration time.Duration, err error) {
	h.m.parseLatency.Record(ctx, float64(duration.Milliseconds()))
	if err != nil {
		h.m.parseErrors.Add(ctx, 1)
		return
	}
	AddSpanEvent(ctx, "parse.complete",
		attribute.Int("graph.nodes", nodeCount),
		attribute.Int("graph.edges", edgeCount),
	)
}

func (h *Hooks) OnLayoutStart(ctx context.Context, engine string, nodeCount int) {
	AddSpanEvent(ctx, "layout.start",
		attribute.String("layout.engine", engine),
		attribute.Int("graph.nodes", nodeCount),
	)
}

func (h *Hooks) OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("engine", engine))
	h.m.layoutLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		h.m.layoutErrors.Add(ctx, 1, attrs)
	}
}

func (h *Hooks) OnRenderStart(ctx context.Context, formats []string) {
	AddSpanEvent(ctx, "render.start", attribute.String("formats", strings.Join(formats, ",")))
}

func (h *Hooks) OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("formats", strings.Join(formats, ",")))
	h.m.renderLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		h.m.renderErrors.Add(ctx, 1, attrs)
	}
}

func (h *Hooks) OnCacheHit(ctx context.Context, keyType string) {
	h.m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.m.cacheWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.Int("size_bytes", size),
	))
}

func (h *Hooks) OnStoreOp(ctx context.Context, backend, op string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("op", op),
		attribute.Bool("success", err == nil),
	)
	h.m.storeOps.Add(ctx, 1, attrs)
	h.m.storeLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (h *Hooks) OnRequest(ctx context.Context, method, route string) {
	h.m.httpRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

func (h *Hooks) OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	h.m.httpLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(statusCode)),
	))
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.StoreHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
