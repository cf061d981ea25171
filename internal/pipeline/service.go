package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/pkg/logger"
)

// Service owns run lifecycle: sequencing, creation, execution and
// cancellation. 동시 실행 금지 — tenant scope당 RUNNING 한 개
type Service struct {
	store contracts.RunStore
	log   *logger.Logger

	// newExecutor builds the executor for one run
	newExecutor func() *Executor

	mu           sync.Mutex
	current      *Executor
	currentRunID string
}

// NewService creates the run service
func NewService(store contracts.RunStore, newExecutor func() *Executor, log *logger.Logger) *Service {
	return &Service{store: store, newExecutor: newExecutor, log: log}
}

// StartRun creates and executes a run synchronously. Returns
// ErrRunConflict when another run is RUNNING in the tenant scope.
func (s *Service) StartRun(ctx context.Context, params RunParams) (*Outcome, error) {
	rc, run, exec, err := s.begin(ctx, params)
	if err != nil {
		return nil, err
	}
	defer s.finish()

	return exec.Execute(ctx, rc, run)
}

// StartRunAsync creates a run and executes it in the background,
// returning the run id immediately. API 트리거 경로
func (s *Service) StartRunAsync(ctx context.Context, params RunParams) (string, error) {
	rc, run, exec, err := s.begin(ctx, params)
	if err != nil {
		return "", err
	}

	go func() {
		defer s.finish()
		// detach from the request context: the run outlives the request
		if _, err := exec.Execute(context.Background(), rc, run); err != nil {
			s.log.WithError(err).WithField("run_id", rc.RunID).Error("background run failed")
		}
	}()
	return rc.RunID, nil
}

// begin claims the single-run slot and creates the PENDING record.
// Check와 create 사이 경합은 in-process mutex로 차단
func (s *Service) begin(ctx context.Context, params RunParams) (contracts.RunContext, *contracts.PipelineRun, *Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return contracts.RunContext{}, nil, nil, contracts.ErrRunConflict
	}

	running, err := s.store.FindRunning(ctx, params.TenantID)
	if err != nil {
		return contracts.RunContext{}, nil, nil, fmt.Errorf("failed to check running runs: %w", err)
	}
	if running != nil {
		return contracts.RunContext{}, nil, nil, contracts.ErrRunConflict
	}

	rc := NewRunContext(params, time.Now())
	run := NewRunRecord(rc)
	if err := s.store.Create(ctx, run); err != nil {
		return contracts.RunContext{}, nil, nil, err
	}

	exec := s.newExecutor()
	s.current = exec
	s.currentRunID = rc.RunID
	s.log.WithField("run_id", rc.RunID).Info("run accepted")
	return rc, run, exec, nil
}

func (s *Service) finish() {
	s.mu.Lock()
	s.current = nil
	s.currentRunID = ""
	s.mu.Unlock()
}

// Cancel requests label-only cancellation of a run. A terminal run
// returns ErrRunTerminal; a PENDING or RUNNING run gets the CANCELLED
// label, and the in-flight executor (if this process owns it) stops at
// its next phase boundary.
func (s *Service) Cancel(ctx context.Context, runID string) error {
	run, err := s.store.GetByRunID(ctx, runID)
	if err != nil {
		return err
	}
	if run.Status.IsTerminal() {
		return contracts.ErrRunTerminal
	}

	s.mu.Lock()
	if s.current != nil && s.currentRunID == runID {
		s.current.RequestCancel()
		s.mu.Unlock()
		s.log.WithField("run_id", runID).Info("cancellation requested")
		return nil
	}
	s.mu.Unlock()

	// Not in-flight here (e.g. PENDING, or orphaned by a crash):
	// label it directly.
	if err := s.store.SetStatus(ctx, run.ID, contracts.RunCancelled, nil); err != nil {
		return err
	}
	s.log.WithField("run_id", runID).Info("run cancelled")
	return nil
}

// Get returns a run by its external id
func (s *Service) Get(ctx context.Context, runID string) (*contracts.PipelineRun, error) {
	return s.store.GetByRunID(ctx, runID)
}

// List returns recent runs, newest first
func (s *Service) List(ctx context.Context, limit int) ([]*contracts.PipelineRun, error) {
	return s.store.List(ctx, limit)
}
