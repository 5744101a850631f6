package service

import (
	"context"
	"sync"
	"time"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultReaggregateInterval = 1 * time.Minute
	reaggregateBatch           = 100
)

// ReaggregatorService periodically re-resolves patients whose evidence
// changed after their last resolution.
type ReaggregatorService struct {
	patients    domain.PatientStore
	abstraction *AbstractionService
	logger      *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewReaggregatorService(ps domain.PatientStore, as *AbstractionService, logger *zap.Logger) *ReaggregatorService {
	return &ReaggregatorService{
		patients:    ps,
		abstraction: as,
		logger:      logger,
		interval:    defaultReaggregateInterval,
		stopCh:      make(chan struct{}),
	}
}

func (s *ReaggregatorService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the re-aggregation loop in a background goroutine.
func (s *ReaggregatorService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("reaggregator started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.RunOnce(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("reaggregator stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the reaggregator.
func (s *ReaggregatorService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// RunOnce resolves one batch of stale patients and returns how many
// succeeded.
func (s *ReaggregatorService) RunOnce(ctx context.Context) int {
	stale, err := s.patients.ListStale(ctx, reaggregateBatch)
	if err != nil {
		s.logger.Error("failed to list stale patients", zap.Error(err))
		return 0
	}

	resolved := 0
	for i := range stale {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.abstraction.resolve(ctx, &stale[i]); err != nil {
			s.logger.Warn("failed to re-resolve patient",
				zap.String("patient_id", stale[i].ID.String()),
				zap.Error(err))
			continue
		}
		resolved++
	}
	if resolved > 0 {
		s.logger.Info("re-resolved stale patients", zap.Int("count", resolved))
	}
	return resolved
}
