package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-directory/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-directory/internal/core/ports/driving"
)

const sweepLockName = "directory-cache-sweep"

// Sweeper periodically removes expired listing entries from cache backends
// without native expiry (PostgreSQL, bbolt).
//
// For multi-instance deployments, configure a DistributedLock so only one
// instance sweeps per cycle.
type Sweeper struct {
	admin  driving.CacheAdminService
	lock   driven.DistributedLock
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	interval time.Duration
	lockTTL  time.Duration
}

// SweeperConfig holds configuration for the sweeper.
type SweeperConfig struct {
	Admin    driving.CacheAdminService
	Lock     driven.DistributedLock // Optional
	Logger   *slog.Logger
	Interval time.Duration // How often to sweep (default: 10m)
	LockTTL  time.Duration // TTL for the sweep lock (default: interval)
}

// NewSweeper creates a new sweeper.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &Sweeper{
		admin:    cfg.Admin,
		lock:     cfg.Lock,
		logger:   logger,
		interval: interval,
		lockTTL:  lockTTL,
	}
}

// Start begins the sweep loop. It runs until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	s.logger.Info("cache sweeper starting", "interval", s.interval)
	go s.run(ctx, stop, done)
}

// Stop stops the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	done := s.doneCh
	s.mu.Unlock()

	<-done

	s.logger.Info("cache sweeper stopped")
}

// Running reports whether the sweep loop is active
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce runs one sweep, skipping the cycle when another instance holds
// the lock or the lock backend fails.
func (s *Sweeper) sweepOnce(ctx context.Context) int {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, sweepLockName, s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire sweep lock", "error", err)
			return 0
		}
		if !acquired {
			s.logger.Debug("sweep lock held by another instance, skipping cycle")
			return 0
		}
		defer func() {
			if err := s.lock.Release(ctx, sweepLockName); err != nil {
				s.logger.Warn("failed to release sweep lock", "error", err)
			}
		}()
	}

	n, err := s.admin.Sweep(ctx)
	if err != nil {
		s.logger.Error("cache sweep failed", "error", err)
		return 0
	}
	return n
}
