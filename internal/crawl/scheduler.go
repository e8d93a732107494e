package crawl

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/textsift/textsift/internal/progress"
)

// Config controls Scheduler behavior.
type Config struct {
	// MaxDepth bounds how far from the seeds the crawl may follow links.
	MaxDepth int
	// Concurrency is the number of parallel fetch pipelines.
	Concurrency int
}

// Scheduler drives the frontier to completion with bounded concurrency.
// Each worker runs the fetch -> extract -> write -> enqueue-children
// pipeline for one WorkItem at a time.
type Scheduler struct {
	fetcher   Fetcher
	extractor Extractor
	sink      Sink
	clock     Clock
	idGen     IDGenerator
	emitter   progress.Emitter
	cfg       Config
	logger    *zap.Logger

	mu       sync.Mutex
	runID    uuid.UUID
	frontier *Frontier
	stats    *counters
}

type counters struct {
	pagesFetched   atomic.Int64
	pagesWritten   atomic.Int64
	fetchFailures  atomic.Int64
	parseFailures  atomic.Int64
	writeFailures  atomic.Int64
	duplicateSkips atomic.Int64
	invalidLinks   atomic.Int64
}

// NewScheduler constructs a Scheduler.
func NewScheduler(
	fetcher Fetcher,
	extractor Extractor,
	sink Sink,
	clock Clock,
	idGen IDGenerator,
	emitter progress.Emitter,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Scheduler{
		fetcher:   fetcher,
		extractor: extractor,
		sink:      sink,
		clock:     clock,
		idGen:     idGen,
		emitter:   emitter,
		cfg:       cfg,
		logger:    logger,
		stats:     &counters{},
	}
}

// Run crawls from seeds until the frontier terminates and returns the run
// summary. A canceled context stops workers between items; the partial
// summary is still returned alongside the context error. An empty or
// fully invalid seed list yields an immediate empty summary, not an error.
func (s *Scheduler) Run(ctx context.Context, seeds []string) (Summary, error) {
	start := s.clock.Now()
	runID := s.newRunID()
	frontier := NewFrontier(s.cfg.MaxDepth)
	visited := NewVisitedSet()

	stats := &counters{}
	s.mu.Lock()
	s.runID = runID
	s.frontier = frontier
	s.stats = stats
	s.mu.Unlock()

	s.emit(progress.Event{
		RunID: runID,
		TS:    start,
		Stage: progress.StageRunStart,
		Note:  fmt.Sprintf("seeds=%d max_depth=%d concurrency=%d", len(seeds), s.cfg.MaxDepth, s.cfg.Concurrency),
	})

	s.pushSeeds(frontier, visited, seeds)

	stopWatch := context.AfterFunc(ctx, frontier.Stop)
	defer stopWatch()

	g := new(errgroup.Group)
	for i := 0; i < s.cfg.Concurrency; i++ {
		worker := s.logger.With(zap.Int("worker", i))
		g.Go(func() error {
			s.runWorker(ctx, frontier, visited, worker)
			return nil
		})
	}
	_ = g.Wait()

	summary := buildSummary(runID, frontier, stats, s.clock.Now().Sub(start))
	s.emit(progress.Event{
		RunID: runID,
		TS:    s.clock.Now(),
		Stage: progress.StageRunDone,
		Dur:   summary.Duration,
		Note:  fmt.Sprintf("fetched=%d written=%d", summary.PagesFetched, summary.PagesWritten),
	})

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("crawl interrupted: %w", err)
	}
	return summary, nil
}

// Snapshot returns the live counters for the current (or last) run. Safe
// to call concurrently with Run.
func (s *Scheduler) Snapshot() Summary {
	s.mu.Lock()
	runID := s.runID
	frontier := s.frontier
	stats := s.stats
	s.mu.Unlock()
	return buildSummary(runID, frontier, stats, 0)
}

func buildSummary(runID uuid.UUID, frontier *Frontier, stats *counters, dur time.Duration) Summary {
	summary := Summary{
		PagesFetched:   stats.pagesFetched.Load(),
		PagesWritten:   stats.pagesWritten.Load(),
		FetchFailures:  stats.fetchFailures.Load(),
		ParseFailures:  stats.parseFailures.Load(),
		WriteFailures:  stats.writeFailures.Load(),
		DuplicateSkips: stats.duplicateSkips.Load(),
		InvalidLinks:   stats.invalidLinks.Load(),
		Duration:       dur,
	}
	if runID != uuid.Nil {
		summary.RunID = runID.String()
	}
	if frontier != nil {
		summary.OverDepthSkips = frontier.OverDepthSkips()
	}
	return summary
}

// emit forwards to the configured emitter, tolerating a nil one so the
// engine can run without any event consumers (e.g. in tests).
func (s *Scheduler) emit(evt progress.Event) {
	if s.emitter != nil {
		s.emitter.Emit(evt)
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (s *Scheduler) newRunID() uuid.UUID {
	if s.idGen != nil {
		if raw, err := s.idGen.NewID(); err == nil {
			if id, parseErr := uuid.Parse(raw); parseErr == nil {
				return id
			}
		}
	}
	return uuid.New()
}

func (s *Scheduler) pushSeeds(frontier *Frontier, visited *VisitedSet, seeds []string) {
	for _, seed := range seeds {
		normalized, err := Normalize(seed, nil)
		if err != nil {
			s.stats.invalidLinks.Add(1)
			s.logger.Warn("skipping invalid seed", zap.String("seed", seed), zap.Error(err))
			continue
		}
		if !visited.TryClaim(normalized) {
			s.stats.duplicateSkips.Add(1)
			continue
		}
		frontier.Push(WorkItem{URL: normalized, Depth: 0})
	}
}

func (s *Scheduler) runWorker(ctx context.Context, frontier *Frontier, visited *VisitedSet, logger *zap.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}
		item, ok := frontier.Pop()
		if !ok {
			return
		}
		s.processItem(ctx, item, frontier, visited, logger)
		frontier.Done()
	}
}

// processItem runs one URL through fetch -> extract -> write -> enqueue.
// Every failure mode drops the item, bumps a counter, and lets the crawl
// continue; nothing here is fatal to the run.
func (s *Scheduler) processItem(ctx context.Context, item WorkItem, frontier *Frontier, visited *VisitedSet, logger *zap.Logger) {
	runID := s.runID

	resp, err := s.fetcher.Fetch(ctx, item.URL)
	if err != nil {
		s.stats.fetchFailures.Add(1)
		s.emit(progress.Event{
			RunID: runID,
			TS:    s.clock.Now(),
			Stage: progress.StageFetchError,
			URL:   item.URL,
			Depth: item.Depth,
			Note:  err.Error(),
		})
		logger.Warn("fetch failed", zap.String("url", item.URL), zap.Error(err))
		return
	}

	s.emit(progress.Event{
		RunID:       runID,
		TS:          s.clock.Now(),
		Stage:       progress.StageFetchDone,
		URL:         item.URL,
		Depth:       item.Depth,
		StatusClass: progress.ClassifyStatus(resp.StatusCode),
		Bytes:       int64(len(resp.Body)),
		Dur:         resp.Duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.stats.fetchFailures.Add(1)
		logger.Warn("fetch returned non-2xx status",
			zap.String("url", item.URL),
			zap.Int("status", resp.StatusCode),
		)
		return
	}
	s.stats.pagesFetched.Add(1)

	pageURL, err := url.Parse(item.URL)
	if err != nil {
		// Normalized URLs always reparse; treat anything else as a parse failure.
		s.stats.parseFailures.Add(1)
		return
	}

	page, err := s.extractor.Extract(resp.Body, pageURL)
	if err != nil {
		s.stats.parseFailures.Add(1)
		s.emit(progress.Event{
			RunID: runID,
			TS:    s.clock.Now(),
			Stage: progress.StageExtractError,
			URL:   item.URL,
			Depth: item.Depth,
			Note:  err.Error(),
		})
		logger.Warn("extraction failed", zap.String("url", item.URL), zap.Error(err))
		return
	}
	s.stats.invalidLinks.Add(int64(page.InvalidLinks))

	s.writePage(item, page, runID, logger)
	s.enqueueLinks(item, page.Links, frontier, visited)
}

func (s *Scheduler) writePage(item WorkItem, page PageResult, runID uuid.UUID, logger *zap.Logger) {
	if page.Text == "" {
		logger.Debug("no main text extracted", zap.String("url", item.URL))
		return
	}
	if err := s.sink.Write(item.URL, page.Text); err != nil {
		s.stats.writeFailures.Add(1)
		s.emit(progress.Event{
			RunID: runID,
			TS:    s.clock.Now(),
			Stage: progress.StageWriteError,
			URL:   item.URL,
			Depth: item.Depth,
			Note:  err.Error(),
		})
		logger.Warn("write failed", zap.String("url", item.URL), zap.Error(err))
		return
	}
	s.stats.pagesWritten.Add(1)
	s.emit(progress.Event{
		RunID: runID,
		TS:    s.clock.Now(),
		Stage: progress.StageWriteDone,
		URL:   item.URL,
		Depth: item.Depth,
		Bytes: int64(len(page.Text)),
	})
}

// enqueueLinks claims each discovered link and pushes the winners at
// depth+1. Losing the claim counts as a duplicate skip; winning but
// exceeding the depth bound is counted by the frontier.
func (s *Scheduler) enqueueLinks(item WorkItem, links []string, frontier *Frontier, visited *VisitedSet) {
	for _, link := range links {
		if !visited.TryClaim(link) {
			s.stats.duplicateSkips.Add(1)
			continue
		}
		frontier.Push(WorkItem{URL: link, Depth: item.Depth + 1})
	}
}
