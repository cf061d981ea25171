package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/enrich"
	"github.com/wonny/loancore/internal/export"
	"github.com/wonny/loancore/internal/normalize"
	"github.com/wonny/loancore/internal/refdata"
	"github.com/wonny/loancore/internal/rules"
	"github.com/wonny/loancore/internal/storage"
	"github.com/wonny/loancore/pkg/logger"
)

// recentAssetCutoff bounds the existing-asset rows carried into the
// working population. Assets purchased on or before this date only
// participate in the full-portfolio eligibility population.
var recentAssetCutoff = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

// Executor runs one pipeline execution end to end.
// 실행 흐름과 phase 경계는 contracts.AllPhases() 참조
type Executor struct {
	store      contracts.RunStore
	inputs     storage.Backend
	outputs    storage.Backend
	share      storage.Backend
	archive    storage.Backend
	thresholds *rules.Thresholds
	log        *logger.Logger

	// remoteInputs stages inputs to local scratch before ingest
	remoteInputs bool

	cancelled atomic.Bool
}

// NewExecutor creates an executor. share and archive may be nil to
// disable the shared drop and archival respectively.
func NewExecutor(
	store contracts.RunStore,
	inputs, outputs, share, archive storage.Backend,
	thresholds *rules.Thresholds,
	remoteInputs bool,
	log *logger.Logger,
) *Executor {
	return &Executor{
		store:        store,
		inputs:       inputs,
		outputs:      outputs,
		share:        share,
		archive:      archive,
		thresholds:   thresholds,
		remoteInputs: remoteInputs,
		log:          log,
	}
}

// RequestCancel flags the execution for label-only cancellation: the
// run stops at the next phase boundary, nothing already written is
// rolled back.
func (e *Executor) RequestCancel() {
	e.cancelled.Store(true)
}

// Outcome is the in-memory result of one completed execution
type Outcome struct {
	Run              *contracts.PipelineRun
	EligibilityPrime contracts.EligibilityResult
	EligibilitySFY   contracts.EligibilityResult
	Reports          []string
	ExceptionCount   int
}

// Execute runs the full pipeline for a prepared PENDING run record.
// Fatal errors mark the run FAILED with the message recorded; a
// cancellation request marks it CANCELLED at the next phase boundary.
func (e *Executor) Execute(ctx context.Context, rc contracts.RunContext, run *contracts.PipelineRun) (*Outcome, error) {
	log := e.log.WithField("run_id", rc.RunID)

	if err := e.store.SetStatus(ctx, run.ID, contracts.RunRunning, nil); err != nil {
		return nil, fmt.Errorf("failed to mark run running: %w", err)
	}
	run.Status = contracts.RunRunning
	log.WithField("purchase_date", rc.PurchaseDate.Format("2006-01-02")).Info("pipeline run started")

	outcome, err := e.execute(ctx, rc, run, log)
	if err != nil {
		log.WithError(err).Error("pipeline run failed")
		if stErr := e.store.SetStatus(ctx, run.ID, contracts.RunFailed, []string{err.Error()}); stErr != nil {
			log.WithError(stErr).Error("failed to mark run failed")
		}
		run.Status = contracts.RunFailed
		return nil, err
	}
	return outcome, nil
}

// phase advances the run's recorded phase and honors cancellation at
// the boundary. Returns true when the run was cancelled.
func (e *Executor) phase(ctx context.Context, run *contracts.PipelineRun, completed contracts.Phase, log *logger.Logger) (bool, error) {
	if err := e.store.SetPhase(ctx, run.ID, completed); err != nil {
		return false, err
	}
	run.LastPhase = completed.String()
	log.WithField("phase", completed.String()).Debug("phase completed")

	if e.cancelled.Load() {
		if err := e.store.SetStatus(ctx, run.ID, contracts.RunCancelled, nil); err != nil {
			return false, err
		}
		run.Status = contracts.RunCancelled
		log.Info("pipeline run cancelled")
		return true, nil
	}
	return false, nil
}

func (e *Executor) execute(ctx context.Context, rc contracts.RunContext, run *contracts.PipelineRun, log *logger.Logger) (*Outcome, error) {
	in := e.inputs
	if e.remoteInputs {
		staged, cleanup, err := StageInputs(ctx, e.inputs, rc.InputPath)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		in = staged
	}

	// --- ingest_reference ---
	ref, err := refdata.LoadReference(ctx, in, rc.InputPath)
	if err != nil {
		return nil, err
	}
	if done, err := e.phase(ctx, run, contracts.PhaseIngestReference, log); err != nil || done {
		return &Outcome{Run: run}, err
	}

	// --- ingest_inputs ---
	files, err := refdata.DiscoverInputs(ctx, in, rc.InputPath, rc.AsOfDate)
	if err != nil {
		return nil, err
	}
	tapeRaw, err := in.Read(ctx, files.Tape)
	if err != nil {
		return nil, err
	}
	sfyRaw, err := in.Read(ctx, files.SFY)
	if err != nil {
		return nil, err
	}
	primeRaw, err := in.Read(ctx, files.Prime)
	if err != nil {
		return nil, err
	}
	if done, err := e.phase(ctx, run, contracts.PhaseIngestInputs, log); err != nil || done {
		return &Outcome{Run: run}, err
	}

	// --- normalize ---
	tapeTable, err := refdata.ReadCSVTable(tapeRaw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", files.Tape, err)
	}
	tape, err := normalize.Tape(tapeTable)
	if err != nil {
		return nil, err
	}
	enrich.TagChannels(tape)
	enrich.AssignSellerNumbers(tape)
	enrich.MarkRepurchased(tape)

	sfyRows, err := firstSheetRows(sfyRaw, files.SFY)
	if err != nil {
		return nil, err
	}
	sfySub, err := normalize.Submission(sfyRows, files.SFY)
	if err != nil {
		return nil, err
	}
	primeRows, err := firstSheetRows(primeRaw, files.Prime)
	if err != nil {
		return nil, err
	}
	primeSub, err := normalize.Submission(primeRows, files.Prime)
	if err != nil {
		return nil, err
	}

	buy, tuLoans := enrich.BuildBuyPopulation(primeSub, sfySub, ref.Programs, rc.PurchaseDate, rc.TargetYield)
	enrich.MarkRepurchasedAssets(ref.ExistingAssets, enrich.RepurchasedSellers(tape))

	rules.CheckPurchasePrice(buy)

	// final: buy candidates plus recently purchased assets.
	// finalAll: buy candidates plus the whole portfolio (eligibility).
	final := make([]contracts.Loan, 0, len(buy)+len(ref.ExistingAssets))
	final = append(final, buy...)
	for _, asset := range ref.ExistingAssets {
		if asset.PurchaseDate.After(recentAssetCutoff) {
			final = append(final, asset)
		}
	}
	finalAll := make([]contracts.Loan, 0, len(buy)+len(ref.ExistingAssets))
	finalAll = append(finalAll, buy...)
	finalAll = append(finalAll, ref.ExistingAssets...)

	// recent assets are price-checked too: a drifted modeled price on a
	// held loan still surfaces as a mismatch exception
	rules.CheckPurchasePrice(final)

	log.WithFields(map[string]interface{}{
		"tape_loans":  len(tape),
		"buy_loans":   len(buy),
		"final_loans": len(final),
		"tu_loans":    len(tuLoans),
	}).Info("populations assembled")
	if done, err := e.phase(ctx, run, contracts.PhaseNormalize, log); err != nil || done {
		return &Outcome{Run: run}, err
	}

	exceptions := rules.PurchasePriceExceptions(final)

	// --- underwriting ---
	tuSet := make(map[string]bool, len(tuLoans))
	for _, s := range tuLoans {
		tuSet[s] = true
	}

	sfyUW := rules.CheckUnderwriting(buy, ref.UnderwritingSFY, false, tuSet)
	primeUW := rules.CheckUnderwriting(buy, ref.UnderwritingPrime, false, tuSet)
	notesUW := rules.CheckUnderwriting(buy, ref.UnderwritingSFYNotes, true, tuSet)

	exceptions = append(exceptions, rules.UnderwritingExceptions(buy, sfyUW.Flagged, contracts.ExceptionUnderwritingSFY)...)
	exceptions = append(exceptions, rules.UnderwritingExceptions(buy, primeUW.Flagged, contracts.ExceptionUnderwritingPrime)...)
	exceptions = append(exceptions, rules.UnderwritingExceptions(buy, notesUW.Flagged, contracts.ExceptionUnderwritingNotes)...)
	exceptions = append(exceptions, rules.MinIncomeExceptions(buy, sfyUW.MinIncome, contracts.ExceptionUnderwritingSFY)...)
	exceptions = append(exceptions, rules.MinIncomeExceptions(buy, primeUW.MinIncome, contracts.ExceptionUnderwritingPrime)...)
	exceptions = append(exceptions, rules.MinIncomeExceptions(buy, notesUW.MinIncome, contracts.ExceptionUnderwritingNotes)...)
	if done, err := e.phase(ctx, run, contracts.PhaseUnderwriting, log); err != nil || done {
		return &Outcome{Run: run}, err
	}

	// --- comap ---
	var comapFailures []rules.CoMAPFailure
	comapFailures = append(comapFailures, rules.CheckCoMAPPrime(buy, ref.CoMAPPrime)...)
	comapFailures = append(comapFailures, rules.CheckCoMAPSFY(buy, ref.CoMAPSFY)...)
	comapFailures = append(comapFailures, rules.CheckCoMAPNotes(buy, ref.CoMAPNotes)...)
	exceptions = append(exceptions, rules.CoMAPExceptions(buy, comapFailures)...)
	if done, err := e.phase(ctx, run, contracts.PhaseCoMAP, log); err != nil || done {
		return &Outcome{Run: run}, err
	}

	// --- eligibility ---
	eligPrime := rules.CheckEligibilityPrime(finalAll, &e.thresholds.Prime)
	eligSFY := rules.CheckEligibilitySFY(finalAll, buy, &e.thresholds.SFY)
	log.WithFields(map[string]interface{}{
		"prime_failed": eligPrime.Failed(),
		"sfy_failed":   eligSFY.Failed(),
	}).Info("eligibility evaluated")
	if done, err := e.phase(ctx, run, contracts.PhaseEligibility, log); err != nil || done {
		return &Outcome{Run: run}, err
	}

	// --- export ---
	writer := export.NewWriter(e.outputs, e.share, e.log)
	reports, err := writer.WriteExceptions(ctx, rc, exceptions)
	if err != nil {
		return nil, err
	}
	eligReports, err := writer.WriteEligibility(ctx, rc, eligPrime, eligSFY)
	if err != nil {
		return nil, err
	}
	reports = append(reports, eligReports...)
	if done, err := e.phase(ctx, run, contracts.PhaseExport, log); err != nil || done {
		return &Outcome{Run: run}, err
	}

	// --- persist ---
	rejections := BuildRejections(exceptions)
	facts := BuildFacts(final, rejections)

	run.TotalLoans = len(final)
	run.TotalBalance = 0
	for i := range final {
		run.TotalBalance += final[i].Balance
	}
	run.ExceptionCount = HardExceptionCount(exceptions)
	run.LastPhase = contracts.PhasePersist.String()

	if err := e.store.PersistOutcome(ctx, run, exceptions, facts); err != nil {
		return nil, err
	}
	run.Status = contracts.RunCompleted

	if e.archive != nil {
		if err := ArchiveRun(ctx, rc.RunID, in, e.outputs, e.archive, rc.InputPath, rc.OutputPrefix); err != nil {
			log.WithError(err).Warn("run archival failed")
		}
	}

	log.WithFields(map[string]interface{}{
		"total_loans": run.TotalLoans,
		"exceptions":  run.ExceptionCount,
	}).Info("pipeline run completed")

	return &Outcome{
		Run:              run,
		EligibilityPrime: eligPrime,
		EligibilitySFY:   eligSFY,
		Reports:          reports,
		ExceptionCount:   run.ExceptionCount,
	}, nil
}

func firstSheetRows(content []byte, source string) ([][]string, error) {
	rows, err := refdata.ReadFirstSheetRows(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return rows, nil
}
