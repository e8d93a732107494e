// Package sinks provides progress.Sink implementations: a structured log
// sink backed by zap and a Prometheus metrics sink.
package sinks
