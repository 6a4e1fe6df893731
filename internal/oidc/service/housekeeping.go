package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically sweeps expired authorization codes so
// abandoned flows do not accumulate in the store.
type HousekeepingService struct {
	Codes    *CodeService
	Logger   *slog.Logger
	Interval time.Duration
	Grace    time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one minute and a negative grace to DefaultCodeGracePeriod.
func NewHousekeepingService(codes *CodeService, logger *slog.Logger, interval, grace time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	if grace < 0 {
		grace = DefaultCodeGracePeriod
	}

	return &HousekeepingService{
		Codes:    codes,
		Logger:   logger,
		Interval: interval,
		Grace:    grace,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweeper in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "grace", s.Grace)
}

// Stop shuts the worker down and waits for an in-progress sweep to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	n, err := s.Codes.Sweep(ctx, s.Grace)
	if err != nil {
		s.Logger.Error("failed to sweep expired authorization codes", "error", err)
		return
	}
	if n > 0 {
		s.Logger.Info("swept expired authorization codes", "deleted", n)
	}
}
