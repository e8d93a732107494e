// Package progress defines the structured events emitted by the crawl
// engine and the hub that fans them out to sinks. The engine only emits;
// where events end up (logs, metrics) is a sink concern.
package progress
