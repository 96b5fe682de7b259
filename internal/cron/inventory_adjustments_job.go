package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/directsales-backend/internal/sales"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
)

const (
	defaultAdjustmentsBatch = 100
	defaultAdjustmentTries  = 20
)

type adjustmentReconciler interface {
	ReconcileAdjustments(ctx context.Context, limit, maxAttempts int) (sales.ReconcileReport, error)
}

type InventoryAdjustmentsJobParams struct {
	Logger      *logger.Logger
	Sales       adjustmentReconciler
	Batch       int
	MaxAttempts int
}

// NewInventoryAdjustmentsJob re-applies owed inventory decrements.
func NewInventoryAdjustmentsJob(params InventoryAdjustmentsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales service required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultAdjustmentsBatch
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultAdjustmentTries
	}
	return &inventoryAdjustmentsJob{
		logg:        params.Logger,
		sales:       params.Sales,
		batch:       batch,
		maxAttempts: maxAttempts,
	}, nil
}

type inventoryAdjustmentsJob struct {
	logg        *logger.Logger
	sales       adjustmentReconciler
	batch       int
	maxAttempts int
}

func (j *inventoryAdjustmentsJob) Name() string { return "inventory-adjustments" }

func (j *inventoryAdjustmentsJob) Run(ctx context.Context) error {
	report, err := j.sales.ReconcileAdjustments(ctx, j.batch, j.maxAttempts)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":       report.Scanned,
		"applied":       report.Applied,
		"still_short":   report.StillShort,
		"sales_cleared": report.SalesCleared,
	})
	if err != nil {
		return fmt.Errorf("reconcile inventory adjustments: %w", err)
	}
	j.logg.Info(logCtx, "inventory adjustments pass complete")
	return nil
}
