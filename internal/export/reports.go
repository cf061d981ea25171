// Package export writes run artifacts: exception workbooks for the
// operations team and the eligibility snapshot.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/storage"
	"github.com/wonny/loancore/pkg/logger"
)

// Report artifact names under the run's output prefix
const (
	FilePriceMismatch      = "purchase_price_mismatch.xlsx"
	FileFlaggedLoans       = "flagged_loans.xlsx"
	FileNotesFlaggedLoans  = "notes_flagged_loans.xlsx"
	FileCoMAPNotPassed     = "comap_not_passed.xlsx"
	FileEligibilityJSON    = "eligibility_checks.json"
	FileEligibilitySummary = "eligibility_checks_summary.xlsx"
)

// Writer persists run reports to the outputs area and pushes the
// column-truncated copies to the shared drop area.
type Writer struct {
	outputs storage.Backend
	share   storage.Backend
	log     *logger.Logger
}

// NewWriter creates a report writer. share may be nil to skip the
// shared copies.
func NewWriter(outputs, share storage.Backend, log *logger.Logger) *Writer {
	return &Writer{outputs: outputs, share: share, log: log}
}

// exceptionHeader is the full exception report layout
var exceptionHeader = []interface{}{
	"SELLER Loan #", "Channel", "Program", "Application Type",
	"Orig. Balance", "Purchase Price", "Lender Price(%)", "Modeled Price",
	"FICO", "DTI", "PTI", "Income", "Term", "APR", "Property State",
	"Exception Type", "Category", "Severity", "Message", "Rejection Code",
}

// shareHeader is the truncated layout for the shared drop.
// 공유본에는 소득/DTI 등 민감 컬럼 제외
var shareHeader = []interface{}{
	"SELLER Loan #", "Channel", "Program",
	"Orig. Balance", "FICO", "Exception Type", "Message",
}

// WriteExceptions writes the four exception workbooks. Empty groups
// still produce a header-only workbook so downstream consumers never
// have to special-case a missing file. Min-income audit rows stay in
// the database only — flagged 리포트에는 hard failure만 포함
func (w *Writer) WriteExceptions(ctx context.Context, rc contracts.RunContext, exceptions []contracts.LoanException) ([]string, error) {
	groups := map[string][]contracts.LoanException{}
	for _, exc := range exceptions {
		if exc.Category == contracts.CategoryMinIncome {
			continue
		}
		groups[reportFile(exc.Type)] = append(groups[reportFile(exc.Type)], exc)
	}

	files := []string{FilePriceMismatch, FileFlaggedLoans, FileNotesFlaggedLoans, FileCoMAPNotPassed}
	var written []string
	for _, name := range files {
		group := groups[name]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SellerLoanNumber < group[j].SellerLoanNumber
		})

		full, shared, err := buildExceptionWorkbooks(group)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", name, err)
		}

		outPath := path.Join(rc.OutputPrefix, name)
		if err := w.outputs.Write(ctx, outPath, full); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		written = append(written, outPath)

		if w.share != nil {
			if err := w.share.Write(ctx, name, shared); err != nil {
				return nil, fmt.Errorf("failed to write shared %s: %w", name, err)
			}
		}

		w.log.WithFields(map[string]interface{}{
			"run_id": rc.RunID,
			"file":   name,
			"rows":   len(group),
		}).Debug("exception report written")
	}
	return written, nil
}

// reportFile maps an exception type to its workbook
func reportFile(exceptionType string) string {
	switch exceptionType {
	case contracts.ExceptionPurchasePrice:
		return FilePriceMismatch
	case contracts.ExceptionUnderwritingSFY, contracts.ExceptionUnderwritingPrime:
		return FileFlaggedLoans
	case contracts.ExceptionUnderwritingNotes:
		return FileNotesFlaggedLoans
	case contracts.ExceptionCoMAPPrime, contracts.ExceptionCoMAPSFY, contracts.ExceptionCoMAPNotes:
		return FileCoMAPNotPassed
	}
	return FileFlaggedLoans
}

func buildExceptionWorkbooks(group []contracts.LoanException) (full, shared []byte, err error) {
	full, err = renderExceptions(group, exceptionHeader, fullExceptionRow)
	if err != nil {
		return nil, nil, err
	}
	shared, err = renderExceptions(group, shareHeader, shareExceptionRow)
	if err != nil {
		return nil, nil, err
	}
	return full, shared, nil
}

func renderExceptions(group []contracts.LoanException, header []interface{}, rowFn func(contracts.LoanException) []interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, exc := range group {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := rowFn(exc)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fullExceptionRow(exc contracts.LoanException) []interface{} {
	loan := exc.LoanData
	if loan == nil {
		loan = &contracts.Loan{SellerLoanNumber: exc.SellerLoanNumber}
	}
	return []interface{}{
		loan.SellerLoanNumber, loan.Channel, loan.Program, loan.ApplicationType,
		loan.Balance, loan.PurchasePrice, loan.LenderPricePct, loan.ModeledPrice,
		loan.FICO, loan.DTI, loan.PTI, loan.Income, loan.Term, loan.APR, loan.State,
		exc.Type, exc.Category, exc.Severity, exc.Message, exc.RejectionCode,
	}
}

func shareExceptionRow(exc contracts.LoanException) []interface{} {
	loan := exc.LoanData
	if loan == nil {
		loan = &contracts.Loan{SellerLoanNumber: exc.SellerLoanNumber}
	}
	return []interface{}{
		loan.SellerLoanNumber, loan.Channel, loan.Program,
		loan.Balance, loan.FICO, exc.Type, exc.Message,
	}
}

// WriteEligibility writes the machine-readable snapshot and the
// human summary workbook.
func (w *Writer) WriteEligibility(ctx context.Context, rc contracts.RunContext, prime, sfy contracts.EligibilityResult) ([]string, error) {
	snapshot := map[string]contracts.EligibilityResult{
		"prime": prime,
		"sfy":   sfy,
	}
	encoded, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode eligibility snapshot: %w", err)
	}

	jsonPath := path.Join(rc.OutputPrefix, FileEligibilityJSON)
	if err := w.outputs.Write(ctx, jsonPath, encoded); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}

	summary, err := renderEligibilitySummary(prime, sfy)
	if err != nil {
		return nil, fmt.Errorf("failed to build eligibility summary: %w", err)
	}
	summaryPath := path.Join(rc.OutputPrefix, FileEligibilitySummary)
	if err := w.outputs.Write(ctx, summaryPath, summary); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", summaryPath, err)
	}

	if w.share != nil {
		if err := w.share.Write(ctx, FileEligibilitySummary, summary); err != nil {
			return nil, fmt.Errorf("failed to write shared %s: %w", FileEligibilitySummary, err)
		}
	}
	return []string{jsonPath, summaryPath}, nil
}

func renderEligibilitySummary(prime, sfy contracts.EligibilityResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		result contracts.EligibilityResult
	}{
		{"Prime", prime},
		{"SFY", sfy},
	}

	header := []interface{}{"Check", "Value", "Pass"}
	for i, s := range sheets {
		var sheet string
		if i == 0 {
			sheet = f.GetSheetName(0)
			f.SetSheetName(sheet, s.name)
			sheet = s.name
		} else {
			if _, err := f.NewSheet(s.name); err != nil {
				return nil, err
			}
			sheet = s.name
		}

		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, err
		}

		names := make([]string, 0, len(s.result))
		for name := range s.result {
			names = append(names, name)
		}
		sort.Strings(names)

		for j, name := range names {
			check := s.result[name]
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, err
			}
			row := []interface{}{name, check.Value, check.Pass}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
