/*
scheduler.go - Automated annual award generation

PURPOSE:
  Periodically checks whether the previous calendar year has an award set
  and generates it when it does not. Never forces: a year that already has
  records is left alone.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Checks once immediately on start
  - AlreadyGenerated and NoEligibleCandidates are expected outcomes and
    logged at info; anything else is logged at error

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := award.NewScheduler(generator, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - generator.go: Generate
  - api/awards.go: Manual generation endpoint
*/
package award

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler generates the previous year's awards in the background.
type Scheduler struct {
	Generator     *Generator
	CheckInterval time.Duration
	Enabled       bool
	Logger        *zap.Logger

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
}

// NewScheduler creates an enabled scheduler with a one hour interval.
func NewScheduler(g *Generator, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Generator:     g,
		CheckInterval: time.Hour,
		Enabled:       true,
		Logger:        logger.Named("scheduler"),
	}
}

// Start begins the scheduler. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.ticker, s.stop)

	s.Logger.Info("started", zap.Duration("interval", s.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight check to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	ticker, stop := s.ticker, s.stop
	s.ticker = nil
	s.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	s.wg.Wait()
	s.Logger.Info("stopped")
}

func (s *Scheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	s.check(ctx)
	for {
		select {
		case <-ticker.C:
			s.check(ctx)
		case <-stop:
			return
		}
	}
}

// RunNow triggers an immediate check and returns the generation error, if any.
// Expected outcomes (already generated, nobody eligible) return nil.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.check(ctx)
}

// LastRun returns the time of the last completed check.
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Scheduler) check(ctx context.Context) error {
	year := s.Generator.now().Year() - 1
	log := s.Logger.With(zap.Int("year", year))

	defer func() {
		s.mu.Lock()
		s.lastRun = time.Now()
		s.mu.Unlock()
	}()

	if year < MinYear {
		return nil
	}

	res, err := s.Generator.Generate(ctx, GenerateRequest{Year: year})
	switch {
	case err == nil:
		log.Info("generated previous year awards", zap.Int("awarded", len(res.Records)))
		return nil
	case errors.Is(err, ErrAlreadyGenerated):
		log.Info("previous year already generated")
		return nil
	case errors.Is(err, ErrNoEligibleCandidates):
		log.Info("no eligible candidates for previous year", zap.Error(err))
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	default:
		log.Error("scheduled generation failed", zap.Error(err))
		return err
	}
}
