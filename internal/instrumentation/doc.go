// Package instrumentation provides OpenTelemetry metrics for the service.
//
// A Provider owns the meter provider and the exporter (Prometheus by
// default, OTLP or stdout optionally) and hands out a Metrics recorder
// used by the HTTP layer and the auth service. Only metrics are set up;
// there is no tracing.
//
// All Metrics methods are safe to call on a recorder from a disabled
// provider; they become no-ops.
package instrumentation
