package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/biotune/internal/models"
	"github.com/desertthunder/biotune/internal/shared"
)

// DefaultInterval is the fixed period between ticks.
const DefaultInterval = 60 * time.Second

// SchedulerOpts contains the dependencies of a [Scheduler].
type SchedulerOpts struct {
	Store    models.LinkStore // Source of the per-tick link snapshot
	Worker   Syncer           // Runs each link
	Interval time.Duration    // Period between ticks (default: [DefaultInterval])
	Logger   *log.Logger      // Defaults to a discarding logger
}

// Scheduler dispatches one independent sync per stored link on a fixed interval.
//
// Dispatch is fire-and-forget: a tick never waits for the workers it started, and worker failures never reach the
// scheduler loop. A link whose previous sync is still running is skipped for the tick.
type Scheduler struct {
	store    models.LinkStore
	worker   Syncer
	interval time.Duration
	logger   *log.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewScheduler creates a Scheduler. Store and Worker are required.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: link store", shared.ErrMissingArgument)
	}
	if opts.Worker == nil {
		return nil, fmt.Errorf("%w: worker", shared.ErrMissingArgument)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	return &Scheduler{
		store:    opts.Store,
		worker:   opts.Worker,
		interval: opts.Interval,
		logger:   opts.Logger,
		inFlight: make(map[int64]struct{}),
	}, nil
}

// Interval returns the period between ticks.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run ticks every interval until ctx is cancelled. The timer is rearmed as soon as a tick's dispatch returns.
//
// Run returns ctx's error. Workers still running keep going until ctx cancellation reaches them; use [Scheduler.Wait]
// to block on them.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.interval)
		}
	}
}

// Tick loads every link and starts one worker goroutine per link, returning the number started.
//
// A store failure is logged and treated as an empty snapshot.
func (s *Scheduler) Tick(ctx context.Context) int {
	SchedulerTicks.Inc()
	logger := shared.WithLogger(s.logger, "tick", shared.GenerateID())

	links, err := s.store.LoadAll(ctx)
	if err != nil {
		LoadFailures.Inc()
		logger.Error("failed to load links", "error", err)
		return 0
	}

	started := 0
	for _, link := range links {
		if link == nil {
			continue
		}

		id := link.Identity()
		if !s.acquire(id) {
			SyncSkipped.Inc()
			logger.Warn("previous sync still running, skipping link", "link", id)
			continue
		}

		started++
		s.wg.Add(1)
		go s.run(ctx, logger, link.Clone())
	}

	logger.Debug("dispatched workers", "links", len(links), "started", started)
	return started
}

// Wait blocks until every worker started so far has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, logger *log.Logger, link models.Link) {
	id := link.Identity()

	SyncInFlight.Inc()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sync worker panicked", "link", id, "panic", r)
		}
		SyncInFlight.Dec()
		s.release(id)
		s.wg.Done()
	}()

	s.worker.Sync(ctx, link)
}

func (s *Scheduler) acquire(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *Scheduler) release(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
