package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops expired entries from some state store.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// HousekeepingService periodically drops expired consumption ledger
// records and goal passwords so the state stores don't grow without bound.
// Lookups evict lazily as well; this only reclaims entries nobody asks for.
type HousekeepingService struct {
	Sweepers map[string]Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sweepers map[string]Sweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sweepers: sweepers,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce sweeps every store once and returns the number of entries
// dropped. A failing store doesn't stop the others.
func (s *HousekeepingService) RunOnce(ctx context.Context) int {
	total := 0
	for name, sw := range s.Sweepers {
		n, err := sw.Sweep(ctx)
		if err != nil {
			s.Logger.Error("housekeeping sweep failed", "store", name, "error", err)
			continue
		}
		s.Logger.Debug("housekeeping sweep", "store", name, "deleted", n)
		total += n
	}
	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
	return total
}
