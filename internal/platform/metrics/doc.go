// Package metrics exposes Prometheus collectors for HTTP latency and the
// flashcard session lifecycle. Flashcard counters are fed by subscribing
// Metrics to the in-memory event emitter.
package metrics
