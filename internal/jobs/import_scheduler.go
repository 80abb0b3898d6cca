package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/importer"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ImportRunner is the importer entry point the scheduler triggers.
type ImportRunner interface {
	Run(ctx context.Context, opts importer.Options) (*model.ImportRun, error)
}

// ImportScheduler runs the inventory/pricing import once a day at a fixed
// local wall-clock time.
type ImportScheduler struct {
	logger   *zap.Logger
	runner   ImportRunner
	opts     importer.Options
	hour     int
	minute   int
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	running  sync.Mutex
}

// NewImportScheduler schedules runner daily at the hour and minute of at.
func NewImportScheduler(logger *zap.Logger, runner ImportRunner, opts importer.Options, at time.Time) *ImportScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportScheduler{
		logger: logger,
		runner: runner,
		opts:   opts,
		hour:   at.Hour(),
		minute: at.Minute(),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// NextRun returns the first scheduled time strictly after from.
func (s *ImportScheduler) NextRun(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start blocks, running the import at each scheduled time until stopped.
func (s *ImportScheduler) Start(ctx context.Context) {
	s.logger.Info("import_scheduler.started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute))

	for {
		next := s.NextRun(s.now())
		s.logger.Info("import_scheduler.next_run", zap.Time("at", next))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			s.RunOnce(ctx)
		case <-s.stopCh:
			timer.Stop()
			s.logger.Info("import_scheduler.stopped (manual stop)")
			return
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("import_scheduler.stopped (context canceled)")
			return
		}
	}
}

// Stop halts the scheduler. Safe to call more than once.
func (s *ImportScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// RunOnce executes one import unless one is already in progress.
func (s *ImportScheduler) RunOnce(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn("import_scheduler.skipped_overlapping_run")
		return
	}
	defer s.running.Unlock()

	start := time.Now()
	s.logger.Info("import_scheduler.running")

	run, err := s.runner.Run(ctx, s.opts)
	if err != nil {
		s.logger.Error("import_scheduler.run_failed", zap.Error(err))
		return
	}
	s.logger.Info("import_scheduler.success",
		zap.String("run_id", run.ID.String()),
		zap.Int("inventory_rows", run.InventoryRows),
		zap.Int("pricing_rows", run.PricingRows),
		zap.Duration("duration", time.Since(start)))
}
