package refdata

import (
	"strings"

	"github.com/wonny/loancore/internal/contracts"
)

// parseCurrentAssets parses the current portfolio extract. These loans
// carry portfolio context: recently purchased rows rejoin the working
// population for the price check, but they are never re-underwritten
// and their disposition stays projected.
func parseCurrentAssets(t *Table) ([]contracts.Loan, error) {
	if err := t.Require("current_assets.csv", "SELLER Loan #", "Orig. Balance", "Purchase_Date"); err != nil {
		return nil, err
	}

	loans := make([]contracts.Loan, 0, len(t.Rows))
	for _, row := range t.Rows {
		seller := t.Get(row, "SELLER Loan #")
		if seller == "" {
			continue
		}
		loans = append(loans, contracts.Loan{
			SellerLoanNumber: seller,
			Channel:          strings.ToLower(t.Get(row, "platform")),
			Program:          t.Get(row, "loan program"),
			ApplicationType:  t.Get(row, "Application Type"),
			SubmitDate:       ParseDateLenient(t.Get(row, "Submit Date")),
			Balance:          ParseFloat(t.Get(row, "Orig. Balance")),
			PurchasePrice:    ParseFloat(t.Get(row, "Purchase Price")),
			LenderPricePct:   ParseFloat(t.Get(row, "Lender Price(%)")),
			ModeledPrice:     ParseFloat(t.Get(row, "modeled_purchase_price")),
			FICO:             ParseInt(t.Get(row, "FICO Borrower")),
			DTI:              ParseFloat(t.Get(row, "DTI")),
			PTI:              ParseFloat(t.Get(row, "PTI")),
			Income:           ParseFloat(t.Get(row, "Income")),
			Term:             ParseInt(t.Get(row, "Term")),
			APR:              ParseFloat(t.Get(row, "APR")),
			DealerFee:        ParseFloat(t.Get(row, "Dealer Fee")),
			State:            t.Get(row, "Property State"),
			Type:             strings.ToLower(t.Get(row, "type")),
			NewPrograms:      ParseBool(t.Get(row, "new_programs")),
			PurchaseDate:     ParseDateLenient(t.Get(row, "Purchase_Date")),
			Repurchase:       ParseBool(t.Get(row, "Repurchase")),
			ExcessAsset:      ParseBool(t.Get(row, "Excess_Asset")),
			PortfolioContext: true,
		})
	}
	return loans, nil
}
