package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Reaper closes sessions that stopped receiving attempts
type Reaper interface {
	ReapInactive(ctx context.Context, now time.Time) (int, error)
}

// CachePurger drops expired cache entries
type CachePurger interface {
	PurgeExpired() int
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	reaper    Reaper
	purger    CachePurger
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a scheduler that runs maintenance every interval. purger may be nil.
func New(reaper Reaper, purger CachePurger, interval time.Duration, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// a slow pass must not overlap the next one
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		reaper:    reaper,
		purger:    purger,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the maintenance job and begins running it in the background.
// The first pass runs immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.runOnce); err != nil {
		return fmt.Errorf("schedule maintenance job: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	closed, err := s.reaper.ReapInactive(ctx, s.now())
	if err != nil {
		s.logger.Error("reaping inactive sessions failed", zap.Error(err))
	} else if closed > 0 {
		s.logger.Info("closed inactive sessions", zap.Int("count", closed))
	}

	if s.purger != nil {
		if n := s.purger.PurgeExpired(); n > 0 {
			s.logger.Debug("purged expired analyses", zap.Int("count", n))
		}
	}
}
