package rules

import (
	"sort"
	"strings"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

// UnderwritingResult splits grid failures into hard failures and the
// soft "minimum income" list (relaxed pass, recorded but not flagged)
type UnderwritingResult struct {
	Flagged   []string
	MinIncome []string
}

// CheckUnderwriting evaluates the population subset against one grid.
// notes selects the HD NOTE subset and strips the notes program
// suffix before grid lookup. TU-flagged loans are skipped entirely.
//
// 통과 조건: (program, income≥min, fico≥min) 매칭 행 중
// balance≤approval_high && dti≤dti_max 인 행 존재.
// 미통과 && FICO>700 이면 income 조건 없이 재시도하되 PTI 한도 추가 —
// 이 경로로 통과한 loan은 min income 목록에만 기록됨.
func CheckUnderwriting(loans []contracts.Loan, grid *refdata.UnderwritingGrid, notes bool, tuLoans map[string]bool) UnderwritingResult {
	var result UnderwritingResult

	for i := range loans {
		loan := &loans[i]
		if loan.IsNote() != notes {
			continue
		}
		if tuLoans[loan.SellerLoanNumber] {
			continue
		}

		program := loan.Program
		if notes {
			program = strings.ReplaceAll(program, "notes", "")
		}

		monthlyIncome := loan.MonthlyIncome()
		dtiPct := loan.DTI * 100
		netBalance := loan.NetBalance()

		rows := matchRows(grid, program, loan.FICO, &monthlyIncome)
		pass := false
		for _, rule := range rows {
			if netBalance <= rule.ApprovalHigh && dtiPct <= rule.DTIMax {
				pass = true
				break
			}
		}

		if !pass && loan.FICO > 700 {
			relaxed := matchRows(grid, program, loan.FICO, nil)
			for _, rule := range relaxed {
				if netBalance <= rule.ApprovalHigh && dtiPct <= rule.DTIMax && loan.PTI <= rule.PTIRatio {
					pass = true
					result.MinIncome = append(result.MinIncome, loan.SellerLoanNumber)
					break
				}
			}
		}

		if !pass {
			result.Flagged = append(result.Flagged, loan.SellerLoanNumber)
		}
	}
	return result
}

// matchRows filters grid rows for a program and FICO, optionally
// requiring the income floor, sorted ascending by approval ceiling
func matchRows(grid *refdata.UnderwritingGrid, program string, fico int, monthlyIncome *float64) []refdata.UnderwritingRow {
	var rows []refdata.UnderwritingRow
	for _, r := range grid.RowsFor(program) {
		if r.FICOMin > fico {
			continue
		}
		if monthlyIncome != nil && r.MonthlyIncomeMin > *monthlyIncome {
			continue
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ApprovalHigh < rows[j].ApprovalHigh
	})
	return rows
}

// MinIncomeExceptions records relaxed-retry passes as soft warnings.
// 거절 대상 아님 — rejection code 없이 감사 기록만 남김
func MinIncomeExceptions(loans []contracts.Loan, minIncome []string, exceptionType string) []contracts.LoanException {
	minIncomeSet := make(map[string]bool, len(minIncome))
	for _, s := range minIncome {
		minIncomeSet[s] = true
	}

	var exceptions []contracts.LoanException
	for i := range loans {
		loan := loans[i]
		if !minIncomeSet[loan.SellerLoanNumber] {
			continue
		}
		exceptions = append(exceptions, contracts.LoanException{
			SellerLoanNumber: loan.SellerLoanNumber,
			Type:             exceptionType,
			Category:         contracts.CategoryMinIncome,
			Severity:         contracts.SeverityWarning,
			Message:          "Loan passed underwriting without the income floor",
			LoanData:         &loan,
		})
	}
	return exceptions
}

// UnderwritingExceptions builds hard-failure exceptions for one grid
func UnderwritingExceptions(loans []contracts.Loan, flagged []string, exceptionType string) []contracts.LoanException {
	flaggedSet := make(map[string]bool, len(flagged))
	for _, s := range flagged {
		flaggedSet[s] = true
	}

	var exceptions []contracts.LoanException
	for i := range loans {
		loan := loans[i]
		if !flaggedSet[loan.SellerLoanNumber] {
			continue
		}
		exceptions = append(exceptions, contracts.LoanException{
			SellerLoanNumber: loan.SellerLoanNumber,
			Type:             exceptionType,
			Category:         contracts.CategoryFlagged,
			Severity:         contracts.SeverityError,
			Message:          "Loan failed underwriting criteria",
			RejectionCode:    contracts.RejectionCode(exceptionType, contracts.CategoryFlagged),
			LoanData:         &loan,
		})
	}
	return exceptions
}
