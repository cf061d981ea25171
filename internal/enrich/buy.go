package enrich

import (
	"strings"
	"time"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/normalize"
)

// programKey joins program name and upper-case platform for the
// reference lookup
func programKey(program, platform string) string {
	return program + "|" + strings.ToUpper(platform)
}

// BuildBuyPopulation merges the two channel submissions into the
// enriched buy population:
//   - HD NOTE rows get the "notes" program suffix before lookup
//   - TU-flagged SFY rows are collected into the exclusion list
//   - the program lookup is a left join: unmatched loans keep empty
//     enrichment columns and stay in the population
//   - purchase metadata is stamped on every row (purchase date, target
//     yield, dealer fee normalized to a decimal, default flags)
//
// Guarantee: output rows are 1:1 with the input submissions.
func BuildBuyPopulation(
	prime, sfy []normalize.SubmissionRow,
	programs []contracts.ProgramInfo,
	purchaseDate time.Time,
	targetYield float64,
) (loans []contracts.Loan, tuLoans []string) {
	lookup := make(map[string]contracts.ProgramInfo, len(programs))
	for _, p := range programs {
		key := programKey(p.Program, p.Channel)
		if _, exists := lookup[key]; !exists {
			lookup[key] = p
		}
	}

	loans = make([]contracts.Loan, 0, len(prime)+len(sfy))
	appendRows := func(rows []normalize.SubmissionRow, platform string) {
		for _, row := range rows {
			program := row.Program
			if row.ApplicationType == contracts.ApplicationTypeNote {
				program += "notes"
			}

			if platform == tagSFY && row.TU144 {
				tuLoans = append(tuLoans, row.SellerLoanNumber)
			}

			loan := contracts.Loan{
				SellerLoanNumber: row.SellerLoanNumber,
				Program:          program,
				ApplicationType:  row.ApplicationType,
				SubmitDate:       row.SubmitDate,
				Balance:          row.Balance,
				PurchasePrice:    row.PurchasePrice,
				LenderPricePct:   row.LenderPricePct,
				ModeledPrice:     row.ModeledPrice,
				FICO:             row.FICO,
				DTI:              row.DTI,
				PTI:              row.PTI,
				Income:           row.Income,
				StampFee:         row.StampFee,
				Term:             row.Term,
				PromoTerm:        row.PromoTerm,
				APR:              row.APR,
				DealerFee:        row.DealerFee / 100,
				State:            row.State,

				PurchaseDate: purchaseDate,
				TargetYield:  targetYield,

				Repurchase:            false,
				ExcessAsset:           false,
				BorrowingBaseEligible: true,
			}

			if info, ok := lookup[programKey(program, platform)]; ok {
				loan.Channel = info.Channel
				loan.Type = info.Type
				loan.NewPrograms = info.NewPrograms
			}

			loans = append(loans, loan)
		}
	}

	appendRows(prime, tagPrime)
	appendRows(sfy, tagSFY)
	return loans, tuLoans
}
