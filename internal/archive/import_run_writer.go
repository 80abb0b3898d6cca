package archive

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/pkg/model"
)

// Execer is the subset of pgxpool.Pool the writer needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ImportRunWriter records inventory/pricing imports in catalog.import_run.
type ImportRunWriter struct {
	db     Execer
	logger *zap.Logger
	source string
}

// NewImportRunWriter constructs a writer. source identifies the binary
// recording the run (e.g. "inventory-import", "sanmar-catalog").
func NewImportRunWriter(db Execer, logger *zap.Logger, source string) *ImportRunWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportRunWriter{
		db:     db,
		logger: logger,
		source: source,
	}
}

// Upsert inserts the run, or updates its counters and status when it already exists.
// A nil writer or nil database is a no-op.
func (w *ImportRunWriter) Upsert(ctx context.Context, run *model.ImportRun) error {
	if w == nil || w.db == nil || run == nil {
		return nil
	}

	const query = `
		INSERT INTO catalog.import_run (
			id,
			mode,
			source,
			style_count,
			inventory_rows,
			pricing_rows,
			failed_styles,
			status,
			error_message,
			started_at,
			finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id)
		DO UPDATE SET
			style_count = EXCLUDED.style_count,
			inventory_rows = EXCLUDED.inventory_rows,
			pricing_rows = EXCLUDED.pricing_rows,
			failed_styles = EXCLUDED.failed_styles,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			finished_at = EXCLUDED.finished_at;
	`

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt
	}

	_, err := w.db.Exec(ctx, query,
		run.ID,
		run.Mode,
		w.source,
		run.Styles,
		run.InventoryRows,
		run.PricingRows,
		strings.Join(run.FailedStyles, ","),
		run.Status,
		run.ErrorMessage,
		run.StartedAt,
		finished,
	)
	if err != nil {
		w.logger.Error("archive.import_run_upsert_failed",
			zap.String("run_id", run.ID.String()),
			zap.String("status", run.Status),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("archive.import_run_upsert",
		zap.String("run_id", run.ID.String()),
		zap.String("status", run.Status),
		zap.Int("inventory_rows", run.InventoryRows),
		zap.Int("pricing_rows", run.PricingRows),
	)
	return nil
}
