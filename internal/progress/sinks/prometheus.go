package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/textsift/textsift/internal/progress"
)

// PrometheusSink exports crawl progress as Prometheus metrics. It owns all
// collectors for run lifecycle, fetch outcomes, and write outcomes.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runDuration   prometheus.Histogram

	fetchPages    *prometheus.CounterVec
	fetchErrors   prometheus.Counter
	fetchBytes    prometheus.Counter
	fetchDuration *prometheus.HistogramVec

	extractErrors prometheus.Counter
	pagesWritten  prometheus.Counter
	writeErrors   prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textsift_runs_started_total",
			Help: "Total crawl runs started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textsift_runs_completed_total",
			Help: "Total crawl runs that reached termination.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "textsift_run_duration_seconds",
			Help:    "Wall time per completed crawl run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		fetchPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textsift_fetch_pages_total",
			Help: "Fetch completions partitioned by status class.",
		}, []string{"status_class"}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textsift_fetch_errors_total",
			Help: "Transport-level fetch failures.",
		}),
		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textsift_fetch_bytes_total",
			Help: "Bytes downloaded across all fetches.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "textsift_fetch_duration_seconds",
			Help:    "Fetch duration partitioned by status class.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"status_class"}),
		extractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textsift_extract_errors_total",
			Help: "Pages whose HTML could not be parsed.",
		}),
		pagesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textsift_pages_written_total",
			Help: "Pages whose text was appended to an output file.",
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textsift_write_errors_total",
			Help: "Output file append failures.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.fetchPages,
		s.fetchErrors,
		s.fetchBytes,
		s.fetchDuration,
		s.extractErrors,
		s.pagesWritten,
		s.writeErrors,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors for one event. Safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, evt progress.Event) error {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.runsCompleted.Inc()
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	case progress.StageFetchDone:
		class := string(evt.StatusClass)
		if class == "" {
			class = string(progress.StatusOther)
		}
		s.fetchPages.WithLabelValues(class).Inc()
		if evt.Bytes > 0 {
			s.fetchBytes.Add(float64(evt.Bytes))
		}
		if evt.Dur > 0 {
			s.fetchDuration.WithLabelValues(class).Observe(evt.Dur.Seconds())
		}
	case progress.StageFetchError:
		s.fetchErrors.Inc()
	case progress.StageExtractError:
		s.extractErrors.Inc()
	case progress.StageWriteDone:
		s.pagesWritten.Inc()
	case progress.StageWriteError:
		s.writeErrors.Inc()
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
