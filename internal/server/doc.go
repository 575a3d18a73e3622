// Package server exposes the account linking lifecycle over HTTP: the
// endpoint the messaging webhook calls to obtain a consent URL, the
// OAuth redirect callback Google sends the user back to, and the
// first-interaction check. It also provides Kubernetes health probes
// and a dedicated Prometheus metrics listener.
package server
