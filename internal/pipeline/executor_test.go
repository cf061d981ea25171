package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
	"github.com/wonny/loancore/internal/rules"
	"github.com/wonny/loancore/internal/storage"
	"github.com/wonny/loancore/pkg/logger"
)

type sheetDef struct {
	name string
	rows [][]interface{}
}

func writeWorkbook(t *testing.T, backend storage.Backend, filePath string, sheets []sheetDef) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), s.name)
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for j := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &s.rows[j]))
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, backend.Write(context.Background(), filePath, buf.Bytes()))
}

// asOf is a Wednesday; the tape file carries Tuesday's date
var testAsOf = time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)

func bandHeader(bands []refdata.FICOBand) []interface{} {
	header := make([]interface{}, len(bands))
	for i, b := range bands {
		header[i] = b.Label
	}
	return header
}

// seedInputs writes a minimal but complete input set:
//   - FX-A (sfy) passes every rule
//   - FX-N (sfy, HD NOTE) passes via the notes grids
//   - HIP25 (prime) fails the purchase price match
func seedInputs(t *testing.T, in storage.Backend) {
	t.Helper()
	ctx := context.Background()
	req := func(name string) string { return path.Join(refdata.RequiredFilesDir, name) }

	writeWorkbook(t, in, req("MASTER_SHEET.xlsx"), []sheetDef{{
		name: "Sheet1",
		rows: [][]interface{}{
			{"Loan Program", "Platform", "Type", "new_programs"},
			{"HIP25", "PRIME", "standard", ""},
			{"FX-A", "SFY", "hybrid", ""},
		},
	}})

	writeWorkbook(t, in, req("MASTER_SHEET - Notes.xlsx"), []sheetDef{{
		name: "Sheet1",
		rows: [][]interface{}{
			{"Loan Program", "Platform", "Type", "new_programs"},
			{"FX-N", "SFY", "standard", ""},
		},
	}})

	assets := "SELLER Loan #,platform,loan program,Orig. Balance,FICO Borrower,Purchase_Date\n" +
		"SFC_900,SFY,FX-A,5000,710,2025-11-04\n" + // recent: joins the working population
		"SFC_901,PRIME,HIP25,7000,720,2024-01-02\n" // old: eligibility population only
	require.NoError(t, in.Write(ctx, req("current_assets.csv"), []byte(assets)))

	// both non-notes grids run over the full buy population, so each
	// sheet carries the union of programs
	gridHeader := []interface{}{"finance_type_name_nls", "monthly_income_min", "fico_min", "approval_high", "dti_max"}
	gridRow := func(program string) []interface{} { return []interface{}{program, 0, 600, 100000, 99} }
	writeWorkbook(t, in, req("Underwriting_Grids_COMAP.xlsx"), []sheetDef{
		{name: "SFY", rows: [][]interface{}{gridHeader, gridRow("FX-A"), gridRow("HIP25")}},
		{name: "Prime", rows: [][]interface{}{gridHeader, gridRow("HIP25"), gridRow("FX-A")}},
		{name: "SFY - Notes", rows: [][]interface{}{gridHeader, gridRow("FX-N")}},
		{name: "Prime - Notes", rows: [][]interface{}{gridHeader, gridRow("HIP25")}},
		{name: "SFY COMAP", rows: [][]interface{}{bandHeader(refdata.SFYBands), {"FX-A"}}},
		{name: "SFY COMAP2", rows: [][]interface{}{bandHeader(refdata.SFYBandsWide), {""}}},
		{name: "Prime CoMAP", rows: [][]interface{}{bandHeader(refdata.PrimeBands), {"HIP25"}}},
		{name: "Notes CoMAP", rows: [][]interface{}{bandHeader(refdata.NotesBands), {"FX-Nnotes"}}},
	})

	tape := "Account Number,Loan Group,Status Codes\n" +
		"1001,FX1-A,\n" +
		"1002,FX1-A,\n" +
		"2001,HE-B,\n"
	tapeName := fmt.Sprintf("Tape20Loans_%s.csv", refdata.TapeDate(testAsOf))
	require.NoError(t, in.Write(ctx, req(tapeName), []byte(tape)))

	subHeader := []interface{}{
		"SELLER Loan #", "Loan Program", "Application Type", "Submit Date",
		"Orig. Balance", "Purchase Price", "Lender Price(%)", "modeled_purchase_price",
		"FICO Borrower", "DTI", "PTI", "Income", "Stamp fee", "Term", "promo_term",
		"APR", "Dealer Fee", "Property State",
	}
	writeWorkbook(t, in, req("SFY_2026_ExhibitAtoFormofSaleNotice - Pre-Funding.xlsx"), []sheetDef{{
		name: "Sheet1",
		rows: [][]interface{}{
			{"Exhibit A"}, // preamble band above the header
			subHeader,
			{"SFC_1001", "FX-A", "", "2025-01-15", 10000, 9900, 99, 0.99, 700, 0.2, 0.05, 60000, 0, 60, 0, 21.5, 2, "TX"},
			{"SFC_1002", "FX-N", "HD NOTE", "2025-01-20", 8000, 7920, 99, 0.99, 700, 0.2, 0.05, 60000, 0, 60, 0, 21.5, 2, "TX"},
		},
	}})
	writeWorkbook(t, in, req("PRIME_2026_ExhibitAtoFormofSaleNotice - Pre-Funding.xlsx"), []sheetDef{{
		name: "Sheet1",
		rows: [][]interface{}{
			subHeader,
			// lender price 98 vs modeled 99 → purchase price mismatch
			{"SFC_2001", "HIP25", "", "2025-02-01", 20000, 19600, 98, 0.99, 720, 0.3, 0.05, 120000, 0, 120, 0, 14.9, 2, "CA"},
		},
	}})
}

func testExecutor(t *testing.T, store contracts.RunStore) (*Executor, storage.Backend, storage.Backend) {
	t.Helper()
	in, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	out, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	archive, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	thresholds, err := rules.DefaultThresholds()
	require.NoError(t, err)

	seedInputs(t, in)
	exec := NewExecutor(store, in, out, nil, archive, thresholds, false, logger.NewNop())
	return exec, out, archive
}

func startRun(t *testing.T, store *fakeStore) (contracts.RunContext, *contracts.PipelineRun) {
	t.Helper()
	rc := NewRunContext(RunParams{}, testAsOf)
	run := NewRunRecord(rc)
	require.NoError(t, store.Create(context.Background(), run))
	return rc, run
}

func TestExecutorFullRun(t *testing.T) {
	store := newFakeStore()
	exec, out, archive := testExecutor(t, store)
	rc, run := startRun(t, store)

	outcome, err := exec.Execute(context.Background(), rc, run)
	require.NoError(t, err)

	assert.Equal(t, contracts.RunCompleted, run.Status)
	assert.Equal(t, contracts.PhasePersist.String(), run.LastPhase)

	// 3 buy loans + 1 recent asset
	assert.Equal(t, 4, run.TotalLoans)
	assert.InDelta(t, 43000.0, run.TotalBalance, 1e-9)
	assert.Equal(t, 1, run.ExceptionCount)
	assert.Equal(t, 1, outcome.ExceptionCount)

	require.Len(t, store.exceptions, 1)
	assert.Equal(t, contracts.ExceptionPurchasePrice, store.exceptions[0].Type)
	assert.Equal(t, "SFC_2001", store.exceptions[0].SellerLoanNumber)

	dispositions := map[string]string{}
	codes := map[string]string{}
	for _, fact := range store.facts {
		dispositions[fact.SellerLoanNumber] = fact.Disposition
		codes[fact.SellerLoanNumber] = fact.RejectionCode
	}
	assert.Equal(t, contracts.DispositionToPurchase, dispositions["SFC_1001"])
	assert.Equal(t, contracts.DispositionToPurchase, dispositions["SFC_1002"])
	assert.Equal(t, contracts.DispositionRejected, dispositions["SFC_2001"])
	assert.Equal(t, contracts.RejectionPurchasePriceMismatch, codes["SFC_2001"])
	assert.Equal(t, contracts.DispositionProjected, dispositions["SFC_900"])
	assert.Empty(t, codes["SFC_900"])

	// eligibility evaluated for both channels
	assert.NotEmpty(t, outcome.EligibilityPrime)
	assert.NotEmpty(t, outcome.EligibilitySFY)

	// reports land under the run prefix
	ctx := context.Background()
	for _, name := range []string{
		"purchase_price_mismatch.xlsx", "flagged_loans.xlsx",
		"notes_flagged_loans.xlsx", "comap_not_passed.xlsx",
		"eligibility_checks.json", "eligibility_checks_summary.xlsx",
	} {
		exists, err := out.Exists(ctx, path.Join(rc.OutputPrefix, name))
		require.NoError(t, err)
		assert.True(t, exists, name)
	}

	// archive snapshots inputs and outputs per run
	exists, err := archive.Exists(ctx, path.Join(rc.RunID, "input", "current_assets.csv"))
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = archive.Exists(ctx, path.Join(rc.RunID, "output", "eligibility_checks.json"))
	require.NoError(t, err)
	assert.True(t, exists)

	// all phases recorded in order
	assert.Equal(t, []contracts.Phase{
		contracts.PhaseIngestReference,
		contracts.PhaseIngestInputs,
		contracts.PhaseNormalize,
		contracts.PhaseUnderwriting,
		contracts.PhaseCoMAP,
		contracts.PhaseEligibility,
		contracts.PhaseExport,
	}, store.phases)
}

func TestExecutorCancellationStopsAtBoundary(t *testing.T) {
	store := newFakeStore()
	exec, _, _ := testExecutor(t, store)
	rc, run := startRun(t, store)

	exec.RequestCancel()

	outcome, err := exec.Execute(context.Background(), rc, run)
	require.NoError(t, err)

	assert.Equal(t, contracts.RunCancelled, run.Status)
	assert.Equal(t, contracts.PhaseIngestReference.String(), run.LastPhase)
	assert.Nil(t, outcome.EligibilityPrime)
	assert.Empty(t, store.facts)
}

func TestExecutorFailsOnMissingInput(t *testing.T) {
	store := newFakeStore()
	in, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	out, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	thresholds, err := rules.DefaultThresholds()
	require.NoError(t, err)
	exec := NewExecutor(store, in, out, nil, nil, thresholds, false, logger.NewNop())
	rc, run := startRun(t, store)

	_, err = exec.Execute(context.Background(), rc, run)
	require.Error(t, err)

	var notFound *contracts.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, contracts.RunFailed, run.Status)
	require.NotEmpty(t, run.Errors)
}
