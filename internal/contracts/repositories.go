package contracts

import "context"

// RunStore is the persistence contract for pipeline runs and their
// per-loan outcomes. 구현체는 internal/pipeline의 pgx repository.
type RunStore interface {
	// Create inserts a new run in PENDING state and sets run.ID.
	Create(ctx context.Context, run *PipelineRun) error

	// GetByRunID returns a run by its external run id.
	// Returns ErrRunNotFound when absent.
	GetByRunID(ctx context.Context, runID string) (*PipelineRun, error)

	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]*PipelineRun, error)

	// FindRunning returns the RUNNING run in the tenant scope, or nil.
	// tenantID 0 matches runs without tenant scope.
	FindRunning(ctx context.Context, tenantID int64) (*PipelineRun, error)

	// SetStatus transitions the run status, stamping started/completed
	// timestamps and the error list as appropriate.
	SetStatus(ctx context.Context, id int64, status RunStatus, errs []string) error

	// SetPhase records the last phase reached.
	SetPhase(ctx context.Context, id int64, phase Phase) error

	// PersistOutcome writes summary counters, exceptions and loan facts
	// atomically in one transaction and marks the run COMPLETED.
	PersistOutcome(ctx context.Context, run *PipelineRun, exceptions []LoanException, facts []LoanFact) error
}
