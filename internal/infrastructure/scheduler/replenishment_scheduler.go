package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appreplenishment "github.com/mrp/backend/internal/application/replenishment"
	"github.com/mrp/backend/internal/infrastructure/config"
)

// SuggestionGenerator is the slice of the replenishment service the scheduler
// needs.
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, req appreplenishment.GenerateRequest) (*appreplenishment.GenerateResponse, error)
}

// ReplenishmentScheduler periodically runs the threshold scan across all
// warehouses. The scan is idempotent, so an overlapping manual scan or a
// missed tick cannot corrupt anything; the worst case is a skipped interval.
type ReplenishmentScheduler struct {
	generator SuggestionGenerator
	interval  time.Duration
	enabled   bool
	logger    *zap.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewReplenishmentScheduler creates a scheduler from configuration
func NewReplenishmentScheduler(generator SuggestionGenerator, cfg *config.ReplenishmentConfig, logger *zap.Logger) *ReplenishmentScheduler {
	return &ReplenishmentScheduler{
		generator: generator,
		interval:  cfg.ScanInterval,
		enabled:   cfg.ScanEnabled,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the periodic scan loop. Returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (s *ReplenishmentScheduler) Start(ctx context.Context) {
	if !s.enabled {
		s.logger.Info("replenishment scan disabled")
		close(s.doneCh)
		return
	}

	s.logger.Info("replenishment scan scheduled", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *ReplenishmentScheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.scan(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *ReplenishmentScheduler) scan(ctx context.Context) {
	response, err := s.generator.GenerateSuggestions(ctx, appreplenishment.GenerateRequest{})
	if err != nil {
		s.logger.Error("scheduled replenishment scan failed", zap.Error(err))
		return
	}
	if response.Created > 0 || len(response.SkipReasons) > 0 {
		s.logger.Info("scheduled replenishment scan finished",
			zap.Int("scanned", response.Scanned),
			zap.Int("created", response.Created),
			zap.Int("skipped", response.Skipped),
		)
	}
}

// Stop halts the scan loop and waits for it to finish
func (s *ReplenishmentScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}
