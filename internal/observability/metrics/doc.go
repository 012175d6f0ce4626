// Package metrics holds the Prometheus collectors for calendar fetches and
// publishes. They register with the default registry and are served by the
// worker's /metrics endpoint.
//
//	start := time.Now()
//	entries, err := source.Fetch(ctx, date)
//	metrics.RecordCalendarFetch("portal", time.Since(start), err)
package metrics
