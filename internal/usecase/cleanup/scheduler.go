package cleanup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/internal/usecase/archive"
	"github.com/labops-team/standup-assistant/internal/usecase/audio"
	"github.com/labops-team/standup-assistant/pkg/config"
)

// Scheduler runs the retention and orphan sweeps on a fixed interval. Both
// jobs are idempotent, so an overlapping manual run through the admin
// endpoints is harmless.
type Scheduler struct {
	archives *archive.Service
	audio    *audio.Service
	interval time.Duration
	logger   *zap.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewScheduler creates a cleanup scheduler from config
func NewScheduler(archives *archive.Service, audioSvc *audio.Service, cfg *config.CleanupConfig, logger *zap.Logger) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		archives: archives,
		audio:    audioSvc,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background sweep loop. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go s.run()
	s.logger.Info("cleanup scheduler started", zap.Duration("interval", s.interval))
}

// Stop signals the loop to exit and waits for the in-flight sweep to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("cleanup scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopChan:
			return
		}
	}
}

// RunOnce executes one retention sweep followed by one orphan sweep. Errors
// are logged; a failing job never stops the scheduler.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if result, err := s.archives.CleanupExpired(ctx); err != nil {
		s.logger.Error("transcript retention sweep failed", zap.Error(err))
	} else if result.DeletedCount > 0 {
		s.logger.Info("transcript retention sweep deleted archives",
			zap.Int("deleted", result.DeletedCount))
	}

	if result, err := s.audio.CleanupOrphans(ctx); err != nil {
		s.logger.Error("audio orphan sweep failed", zap.Error(err))
	} else if result.DeletedCount > 0 {
		s.logger.Info("audio orphan sweep deleted files",
			zap.Int("deleted", result.DeletedCount))
	}
}
