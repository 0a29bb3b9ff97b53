// Package metrics defines the Prometheus collectors of the rate calendar
// service.
//
// PURPOSE:
//
//	Count batches by outcome, record errors by reason, merges, and audit sink
//	failures, and time each pipeline run. Collectors register on a caller
//	supplied registry so tests and the CLI can use a private one.
//
// All recording methods are safe on a nil *Collectors, which disables metrics.
package metrics
