package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wolfeidau/figbundle"

// Metrics holds the instruments recorded for each build invocation
type Metrics struct {
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram
	AssetsEmitted    metric.Int64Counter
	AssetBytes       metric.Int64Histogram
	RebuildsSkipped  metric.Int64Counter
}

// NewMetrics creates the instruments from the given provider, or the global
// provider when mp is nil.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"figbundle.builds.total",
		metric.WithDescription("Total number of build invocations"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"figbundle.builds.errors.total",
		metric.WithDescription("Total number of failed builds by error kind"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"figbundle.build.duration",
		metric.WithDescription("Duration of build invocations"),
		metric.WithUnit("ms"),
	)

	m.AssetsEmitted, _ = meter.Int64Counter(
		"figbundle.assets.emitted.total",
		metric.WithDescription("Total number of assets written to the output directory"),
		metric.WithUnit("{asset}"),
	)

	m.AssetBytes, _ = meter.Int64Histogram(
		"figbundle.assets.bytes",
		metric.WithDescription("Size of emitted assets"),
		metric.WithUnit("By"),
	)

	m.RebuildsSkipped, _ = meter.Int64Counter(
		"figbundle.rebuilds.skipped.total",
		metric.WithDescription("Change events ignored because the inputs were byte identical"),
		metric.WithUnit("{event}"),
	)

	return m
}

// RecordBuild records the outcome of one build. kind is empty on success.
func (m *Metrics) RecordBuild(ctx context.Context, started time.Time, kind string) {
	m.BuildsTotal.Add(ctx, 1)
	m.BuildDuration.Record(ctx, float64(time.Since(started).Microseconds())/1000)

	if kind != "" {
		m.BuildErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

// RecordAsset records one asset written to disk.
func (m *Metrics) RecordAsset(ctx context.Context, fileName string, size int) {
	attrs := metric.WithAttributes(attribute.String("file", fileName))
	m.AssetsEmitted.Add(ctx, 1, attrs)
	m.AssetBytes.Record(ctx, int64(size), attrs)
}
