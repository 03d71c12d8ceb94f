// Package metrics wires OpenTelemetry metrics to the Prometheus registry served
// by the API server.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60} //nolint: gochecknoglobals

// MeterName is the instrumentation scope used by the service's own instruments.
const MeterName = "favicon"

// NewMeterProvider creates an OpenTelemetry meter provider that exports through
// the given Prometheus registerer. A nil registerer means prometheus.DefaultRegisterer.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Meter returns the service meter of the given provider.
func Meter(mp metric.MeterProvider) metric.Meter {
	return mp.Meter(MeterName)
}
