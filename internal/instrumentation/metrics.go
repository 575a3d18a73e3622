package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod = "method"
	attrPath   = "path"
	attrStatus = "status"
	attrResult = "result"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Account-linking metrics
	authURLsTotal       metric.Int64Counter
	tokenExchangesTotal metric.Int64Counter
	authorizationsTotal metric.Int64Counter
	tokenRotationsTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.authURLsTotal, err = meter.Int64Counter(
		"oauth_auth_urls_total",
		metric.WithDescription("Total number of authorization URLs issued"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_urls_total counter: %w", err)
	}

	m.tokenExchangesTotal, err = meter.Int64Counter(
		"oauth_token_exchanges_total",
		metric.WithDescription("Total number of authorization code exchanges"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_exchanges_total counter: %w", err)
	}

	m.authorizationsTotal, err = meter.Int64Counter(
		"oauth_authorizations_total",
		metric.WithDescription("Total number of authorized-client constructions from stored refresh tokens"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_authorizations_total counter: %w", err)
	}

	m.tokenRotationsTotal, err = meter.Int64Counter(
		"oauth_token_rotations_total",
		metric.WithDescription("Total number of rotated refresh tokens observed during silent refresh"),
		metric.WithUnit("{rotation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_rotations_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAuthURL records an authorization-URL request with its result.
// Result should be one of: "success", "failure".
func (m *Metrics) RecordAuthURL(ctx context.Context, result string) {
	if m == nil || m.authURLsTotal == nil {
		return
	}
	m.authURLsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordTokenExchange records an authorization code exchange with its result.
// Result should be one of: "success", "failure".
func (m *Metrics) RecordTokenExchange(ctx context.Context, result string) {
	if m == nil || m.tokenExchangesTotal == nil {
		return
	}
	m.tokenExchangesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordAuthorization records an attempt to build an authorized client
// from a stored refresh token. Result should be one of: "success", "failure".
func (m *Metrics) RecordAuthorization(ctx context.Context, result string) {
	if m == nil || m.authorizationsTotal == nil {
		return
	}
	m.authorizationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordTokenRotation records an observed refresh-token rotation and
// whether persisting the rotated token succeeded.
func (m *Metrics) RecordTokenRotation(ctx context.Context, result string) {
	if m == nil || m.tokenRotationsTotal == nil {
		return
	}
	m.tokenRotationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}
