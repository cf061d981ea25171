package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/loancore/internal/contracts"
)

// Repository implements contracts.RunStore on PostgreSQL
// ⭐ SSOT: run/exception/fact 영속화는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new run repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new run in PENDING state
func (r *Repository) Create(ctx context.Context, run *contracts.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (
			run_id, status, tenant_id, purchase_date, weekday, weekday_name,
			target_yield, input_path, output_prefix
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		run.RunID, run.Status, run.TenantID, run.PurchaseDate,
		run.Weekday, run.WeekdayName, run.TargetYield,
		run.InputPath, run.OutputPrefix,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return nil
}

const runColumns = `
	id, run_id, status, tenant_id, purchase_date, weekday, weekday_name,
	target_yield, input_path, output_prefix, last_phase,
	total_loans, total_balance, exception_count, errors,
	started_at, completed_at, created_at
`

func scanRun(row pgx.Row) (*contracts.PipelineRun, error) {
	var run contracts.PipelineRun
	var errsJSON []byte
	err := row.Scan(
		&run.ID, &run.RunID, &run.Status, &run.TenantID,
		&run.PurchaseDate, &run.Weekday, &run.WeekdayName,
		&run.TargetYield, &run.InputPath, &run.OutputPrefix, &run.LastPhase,
		&run.TotalLoans, &run.TotalBalance, &run.ExceptionCount, &errsJSON,
		&run.StartedAt, &run.CompletedAt, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(errsJSON) > 0 {
		if err := json.Unmarshal(errsJSON, &run.Errors); err != nil {
			return nil, fmt.Errorf("failed to decode run errors: %w", err)
		}
	}
	return &run, nil
}

// GetByRunID retrieves a run by its external run id
func (r *Repository) GetByRunID(ctx context.Context, runID string) (*contracts.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE run_id = $1`

	run, err := scanRun(r.pool.QueryRow(ctx, query, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline run: %w", err)
	}
	return run, nil
}

// List retrieves the most recent runs, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]*contracts.PipelineRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + runColumns + ` FROM pipeline_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []*contracts.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return runs, nil
}

// FindRunning retrieves the RUNNING run in the tenant scope, or nil
func (r *Repository) FindRunning(ctx context.Context, tenantID int64) (*contracts.PipelineRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM pipeline_runs
		WHERE status = 'running' AND tenant_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	run, err := scanRun(r.pool.QueryRow(ctx, query, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find running pipeline run: %w", err)
	}
	return run, nil
}

// SetStatus transitions the run status, stamping timestamps
func (r *Repository) SetStatus(ctx context.Context, id int64, status contracts.RunStatus, errs []string) error {
	errsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("failed to encode run errors: %w", err)
	}

	query := `
		UPDATE pipeline_runs
		SET status = $2,
			errors = $3,
			started_at = CASE WHEN $2 = 'running' THEN NOW() ELSE started_at END,
			completed_at = CASE WHEN $2 IN ('completed', 'failed', 'cancelled') THEN NOW() ELSE completed_at END
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, errsJSON)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrRunNotFound
	}
	return nil
}

// SetPhase records the last phase reached
func (r *Repository) SetPhase(ctx context.Context, id int64, phase contracts.Phase) error {
	query := `UPDATE pipeline_runs SET last_phase = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, phase.String())
	if err != nil {
		return fmt.Errorf("failed to update run phase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrRunNotFound
	}
	return nil
}

// PersistOutcome writes the run summary, exceptions and loan facts in
// one transaction and marks the run COMPLETED. 부분 저장 금지
func (r *Repository) PersistOutcome(ctx context.Context, run *contracts.PipelineRun, exceptions []contracts.LoanException, facts []contracts.LoanFact) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE pipeline_runs
		SET status = 'completed',
			total_loans = $2,
			total_balance = $3,
			exception_count = $4,
			last_phase = $5,
			completed_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, run.ID,
		run.TotalLoans, run.TotalBalance, run.ExceptionCount, run.LastPhase); err != nil {
		return fmt.Errorf("failed to update run summary: %w", err)
	}

	excQuery := `
		INSERT INTO loan_exceptions (
			run_id, seller_loan_number, type, category, severity,
			message, rejection_code, loan_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range exceptions {
		exc := &exceptions[i]
		loanJSON, err := json.Marshal(exc.LoanData)
		if err != nil {
			return fmt.Errorf("failed to encode loan data: %w", err)
		}
		if _, err := tx.Exec(ctx, excQuery,
			run.ID, exc.SellerLoanNumber, exc.Type, exc.Category,
			exc.Severity, exc.Message, exc.RejectionCode, loanJSON); err != nil {
			return fmt.Errorf("failed to insert loan exception: %w", err)
		}
	}

	factQuery := `
		INSERT INTO loan_facts (
			run_id, seller_loan_number, channel, program, application_type,
			balance, purchase_price, lender_price_pct, fico, dti, pti,
			term, apr, state, purchase_price_check, disposition,
			rejection_code, loan_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	for i := range facts {
		fact := &facts[i]
		loanJSON, err := json.Marshal(fact.LoanData)
		if err != nil {
			return fmt.Errorf("failed to encode loan data: %w", err)
		}
		if _, err := tx.Exec(ctx, factQuery,
			run.ID, fact.SellerLoanNumber, fact.Channel, fact.Program,
			fact.ApplicationType, fact.Balance, fact.PurchasePrice,
			fact.LenderPricePct, fact.FICO, fact.DTI, fact.PTI,
			fact.Term, fact.APR, fact.State, fact.PurchasePriceCheck,
			fact.Disposition, fact.RejectionCode, loanJSON); err != nil {
			return fmt.Errorf("failed to insert loan fact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
