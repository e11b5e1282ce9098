// Package metrics instrumenta el motor con OpenTelemetry y expone el resultado en formato
// Prometheus.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics contadores del ciclo de vida y gauge de bajo stock.
type Metrics struct {
	registry    *prometheus.Registry
	provider    *sdkmetric.MeterProvider
	transitions metric.Int64Counter
	retries     metric.Int64Counter
	duration    metric.Float64Histogram
}

// New crea un registro Prometheus propio (no el global) y el meter del libro.
// lowStockCount alimenta el gauge ledger_low_stock_products; puede ser nil.
func New(lowStockCount func() int) (*Metrics, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("stock-ledger")

	m := &Metrics{registry: registry, provider: provider}
	if m.transitions, err = meter.Int64Counter(
		"ledger_transitions",
		metric.WithDescription("Transiciones de movimientos por acción y resultado"),
	); err != nil {
		return nil, err
	}
	if m.retries, err = meter.Int64Counter(
		"ledger_commit_retries",
		metric.WithDescription("Reintentos por conflicto de concurrencia"),
	); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram(
		"ledger_transition_duration_seconds",
		metric.WithDescription("Duración de una transición incluyendo reintentos"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if lowStockCount != nil {
		_, err = meter.Int64ObservableGauge(
			"ledger_low_stock_products",
			metric.WithDescription("Productos en o bajo su punto de reorden"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(lowStockCount()))
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordTransition(ctx context.Context, action, result string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("result", result),
	)
	m.transitions.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) RecordRetry(ctx context.Context, action string) {
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// Handler expone el registro en /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown libera el MeterProvider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
