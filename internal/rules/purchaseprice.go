// Package rules implements the compliance rule modules run against
// the enriched loan population. 각 모듈은 독립적이며 side effect 없이
// exception/플래그만 생산한다 (purchase price check 플래그 제외).
package rules

import (
	"fmt"
	"math"

	"github.com/wonny/loancore/internal/contracts"
)

// round2 rounds to two decimals (half away from zero)
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// priceMatches reports whether the lender price percentage equals the
// modeled price re-expressed as a percentage at two decimals
func priceMatches(lenderPct, modeled float64) bool {
	return math.Abs(lenderPct-round2(modeled*100)) < 1e-9
}

// CheckPurchasePrice stamps PurchasePriceCheck on every loan.
// CoMAP은 이 플래그가 true인 loan만 검사함
func CheckPurchasePrice(loans []contracts.Loan) {
	for i := range loans {
		loans[i].PurchasePriceCheck = priceMatches(loans[i].LenderPricePct, loans[i].ModeledPrice)
	}
}

// PurchasePriceExceptions returns one exception per mismatched loan
func PurchasePriceExceptions(loans []contracts.Loan) []contracts.LoanException {
	var exceptions []contracts.LoanException
	for i := range loans {
		loan := loans[i]
		if loan.PurchasePriceCheck {
			continue
		}
		exceptions = append(exceptions, contracts.LoanException{
			SellerLoanNumber: loan.SellerLoanNumber,
			Type:             contracts.ExceptionPurchasePrice,
			Category:         contracts.CategoryMismatch,
			Severity:         contracts.SeverityError,
			Message: fmt.Sprintf("Purchase price mismatch: Lender Price=%.2f, Modeled=%.2f",
				loan.LenderPricePct, loan.ModeledPrice*100),
			RejectionCode: contracts.RejectionCode(contracts.ExceptionPurchasePrice, contracts.CategoryMismatch),
			LoanData:      &loan,
		})
	}
	return exceptions
}
