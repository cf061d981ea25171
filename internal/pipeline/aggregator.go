package pipeline

import (
	"github.com/wonny/loancore/internal/contracts"
)

// BuildRejections walks the exception stream in RulePriority order and
// freezes each loan's rejection code at its earliest rule failure.
// ⭐ SSOT: disposition 판정은 이 매핑만 사용 (모듈 재배열에 불변)
func BuildRejections(exceptions []contracts.LoanException) map[string]string {
	byType := make(map[string][]contracts.LoanException)
	for _, exc := range exceptions {
		byType[exc.Type] = append(byType[exc.Type], exc)
	}

	rejections := make(map[string]string)
	for _, excType := range contracts.RulePriority {
		for _, exc := range byType[excType] {
			if exc.RejectionCode == "" || exc.SellerLoanNumber == "" {
				continue
			}
			if _, seen := rejections[exc.SellerLoanNumber]; seen {
				continue
			}
			rejections[exc.SellerLoanNumber] = exc.RejectionCode
		}
	}
	return rejections
}

// HardExceptionCount counts actual rule failures. Warning-severity
// rows (min-income relaxed passes) are audit records and do not count
// against the purchase.
func HardExceptionCount(exceptions []contracts.LoanException) int {
	n := 0
	for i := range exceptions {
		if exceptions[i].Severity != contracts.SeverityWarning {
			n++
		}
	}
	return n
}

// BuildFacts assigns a disposition to every loan of the run's working
// population. Portfolio-context rows are projections, never
// purchases or rejections — their rejection codes stay empty so the
// disposition/code invariant holds.
func BuildFacts(final []contracts.Loan, rejections map[string]string) []contracts.LoanFact {
	facts := make([]contracts.LoanFact, 0, len(final))
	for i := range final {
		loan := final[i]

		disposition := contracts.DispositionToPurchase
		code := ""
		switch {
		case loan.PortfolioContext:
			disposition = contracts.DispositionProjected
		case rejections[loan.SellerLoanNumber] != "":
			disposition = contracts.DispositionRejected
			code = rejections[loan.SellerLoanNumber]
		}

		facts = append(facts, contracts.LoanFact{
			SellerLoanNumber:   loan.SellerLoanNumber,
			Channel:            loan.Channel,
			Program:            loan.Program,
			ApplicationType:    loan.ApplicationType,
			Balance:            loan.Balance,
			PurchasePrice:      loan.PurchasePrice,
			LenderPricePct:     loan.LenderPricePct,
			FICO:               loan.FICO,
			DTI:                loan.DTI,
			PTI:                loan.PTI,
			Term:               loan.Term,
			APR:                loan.APR,
			State:              loan.State,
			PurchasePriceCheck: loan.PurchasePriceCheck,
			Disposition:        disposition,
			RejectionCode:      code,
			LoanData:           &loan,
		})
	}
	return facts
}
