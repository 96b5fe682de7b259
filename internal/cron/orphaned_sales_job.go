package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/directsales-backend/pkg/logger"
)

const (
	defaultOrphanGrace = 15 * time.Minute
	defaultOrphanBatch = 200
)

type orphanFlagger interface {
	FlagOrphans(ctx context.Context, grace time.Duration, limit int) (int, error)
}

type OrphanedSalesJobParams struct {
	Logger *logger.Logger
	Sales  orphanFlagger
	Grace  time.Duration
	Batch  int
}

// NewOrphanedSalesJob flags sale headers that never received line items.
func NewOrphanedSalesJob(params OrphanedSalesJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales service required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultOrphanGrace
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultOrphanBatch
	}
	return &orphanedSalesJob{
		logg:  params.Logger,
		sales: params.Sales,
		grace: grace,
		batch: batch,
	}, nil
}

type orphanedSalesJob struct {
	logg  *logger.Logger
	sales orphanFlagger
	grace time.Duration
	batch int
}

func (j *orphanedSalesJob) Name() string { return "orphaned-sales" }

func (j *orphanedSalesJob) Run(ctx context.Context) error {
	flagged, err := j.sales.FlagOrphans(ctx, j.grace, j.batch)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"grace":   j.grace.String(),
		"flagged": flagged,
	})
	if err != nil {
		return fmt.Errorf("flag orphaned sales: %w", err)
	}
	j.logg.Info(logCtx, "orphaned sales scan complete")
	return nil
}
