// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count)
//   - Revision metrics (attempts, provider calls, versions)
//   - Auto-publish metrics (cycle duration, per-outcome counts)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	res, err := svc.Revise(ctx, id, req, nil)
//	metrics.RecordRevision("refresh", err == nil, "generating", time.Since(start))
package metrics
