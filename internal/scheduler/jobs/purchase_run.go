package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/pipeline"
	"github.com/wonny/loancore/pkg/config"
	"github.com/wonny/loancore/pkg/logger"
)

// PurchaseRunJob triggers the weekly purchase pipeline run
// ⭐ SSOT: 주간 매입 run 스케줄은 이 Job에서만
type PurchaseRunJob struct {
	service *pipeline.Service
	cfg     *config.Config
	logger  *logger.Logger
}

// NewPurchaseRunJob creates a new purchase run job
func NewPurchaseRunJob(service *pipeline.Service, cfg *config.Config, log *logger.Logger) *PurchaseRunJob {
	return &PurchaseRunJob{
		service: service,
		cfg:     cfg,
		logger:  log,
	}
}

// Name returns the job name
func (j *PurchaseRunJob) Name() string {
	return "weekly_purchase_run"
}

// Schedule returns the configured cron spec (default Monday 06:00)
func (j *PurchaseRunJob) Schedule() string {
	return j.cfg.Scheduler.RunSpec
}

// Run executes one purchase run with all defaults (purchase date next
// Tuesday, configured tenant scope)
func (j *PurchaseRunJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled purchase run")

	outcome, err := j.service.StartRun(ctx, pipeline.RunParams{
		TenantID:    j.cfg.Scheduler.TenantID,
		TargetYield: j.cfg.Pipeline.TargetYield,
	})
	if errors.Is(err, contracts.ErrRunConflict) {
		// another run in flight: skip this trigger, don't burn retries
		j.logger.Warn("Scheduled run skipped: another run is in progress")
		return nil
	}
	if err != nil {
		return fmt.Errorf("scheduled purchase run failed: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":      outcome.Run.RunID,
		"status":      string(outcome.Run.Status),
		"total_loans": outcome.Run.TotalLoans,
		"exceptions":  outcome.ExceptionCount,
	}).Info("Scheduled purchase run finished")
	return nil
}
