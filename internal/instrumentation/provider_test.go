package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	config := Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	}

	provider, err := NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider == nil {
		t.Fatal("expected provider to be non-nil")
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil even when disabled")
	}

	// Shutdown should not error for disabled provider
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error on shutdown, got %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, config)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics to be non-nil")
	}
}

func TestNewProvider_OTLPWithoutEndpoint(t *testing.T) {
	config := Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterOTLP,
	}

	_, err := NewProvider(context.Background(), config)
	if err == nil {
		t.Error("expected error for OTLP exporter without endpoint")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"prometheus", Config{MetricsExporter: ExporterPrometheus}, false},
		{"stdout", Config{MetricsExporter: ExporterStdout}, false},
		{"otlp with endpoint", Config{MetricsExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}, false},
		{"otlp without endpoint", Config{MetricsExporter: ExporterOTLP}, true},
		{"unknown exporter", Config{MetricsExporter: "statsd"}, true},
		{"empty exporter", Config{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMetrics_RecordingDoesNotPanic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	metrics := provider.Metrics()
	metrics.RecordHTTPRequest(ctx, "GET", "/auth/url", 200, 100*time.Millisecond)
	metrics.RecordAuthURL(ctx, ResultSuccess)
	metrics.RecordTokenExchange(ctx, ResultFailure)
	metrics.RecordAuthorization(ctx, ResultSuccess)
	metrics.RecordTokenRotation(ctx, ResultSuccess)
}

func TestMetrics_NoOpRecorder(t *testing.T) {
	// The zero-value recorder handed out by a disabled provider must be
	// safe to use.
	m := &Metrics{}
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/auth/url", 200, time.Millisecond)
	m.RecordAuthURL(ctx, ResultSuccess)
	m.RecordTokenExchange(ctx, ResultSuccess)
	m.RecordAuthorization(ctx, ResultFailure)
	m.RecordTokenRotation(ctx, ResultFailure)

	var nilMetrics *Metrics
	nilMetrics.RecordAuthURL(ctx, ResultSuccess)
}
