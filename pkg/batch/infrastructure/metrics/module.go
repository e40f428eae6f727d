package metrics

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/metrics"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// decorateRecorder replaces the no-op recorder when metrics are enabled and
// ties the exporter's lifetime to the application.
func decorateRecorder(lc fx.Lifecycle, base metrics.MetricRecorder, cfg *config.MetricsConfig, tracing *config.TracingConfig) (metrics.MetricRecorder, error) {
	if !cfg.Enabled {
		return base, nil
	}

	if cfg.Exporter == config.ExporterOTLP {
		mp, err := NewMeterProvider(context.Background(), cfg, tracing.ServiceName)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: mp.Shutdown})
		recorder, err := NewOpenTelemetryRecorder(mp)
		if err != nil {
			return nil, err
		}
		logger.Infof("Pushing metrics over OTLP/%s to %s", cfg.Protocol, cfg.OTLPEndpoint)
		return recorder, nil
	}

	recorder := NewPrometheusRecorder()
	server := NewServer(cfg.ListenAddress, recorder)
	lc.Append(fx.Hook{OnStart: server.Start, OnStop: server.Stop})
	return recorder, nil
}

// decorateTracer replaces the no-op tracer when tracing is enabled.
func decorateTracer(lc fx.Lifecycle, base metrics.Tracer, cfg *config.TracingConfig) (metrics.Tracer, error) {
	if !cfg.Enabled {
		return base, nil
	}
	tp, err := NewTracerProvider(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: tp.Shutdown})
	logger.Infof("Exporting traces over OTLP/%s to %s", cfg.Protocol, cfg.OTLPEndpoint)
	return NewOpenTelemetryTracer(tp), nil
}

// Module decorates the core metrics module's recorder and tracer with the
// Prometheus, OTLP metric and OTLP trace implementations according to config.
var Module = fx.Options(
	fx.Decorate(decorateRecorder),
	fx.Decorate(decorateTracer),
)
