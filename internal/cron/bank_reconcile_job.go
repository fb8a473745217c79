package cron

import (
	"context"
	"fmt"

	"github.com/discope/discope-backend/internal/reconciliation"
	"github.com/discope/discope-backend/pkg/logger"
)

const defaultReconcileBatch = 500

// BankReconcileJobParams configure the statement matching job.
type BankReconcileJobParams struct {
	Logger     *logger.Logger
	Reconciler pendingReconciler
	BatchSize  int
}

type pendingReconciler interface {
	ReconcilePending(ctx context.Context, limit int) (reconciliation.Summary, error)
}

// NewBankReconcileJob builds the job matching pending statement lines.
func NewBankReconcileJob(params BankReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciliation service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	return &bankReconcileJob{logg: params.Logger, reconciler: params.Reconciler, batch: batch}, nil
}

type bankReconcileJob struct {
	logg       *logger.Logger
	reconciler pendingReconciler
	batch      int
}

func (j *bankReconcileJob) Name() string { return "bank-reconcile" }

func (j *bankReconcileJob) Run(ctx context.Context) error {
	summary, err := j.reconciler.ReconcilePending(ctx, j.batch)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"reconciled": summary.Reconciled,
		"unmatched":  summary.Unmatched,
		"failed":     summary.Failed,
	})
	j.logg.Info(logCtx, "bank reconcile complete")
	if err != nil {
		return fmt.Errorf("bank reconcile: %w", err)
	}
	return nil
}
