package normalize

import (
	"strings"
	"time"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

// SubmissionRow is one typed row of a channel submission extract
// (the Exhibit A pre-funding workbook)
type SubmissionRow struct {
	SellerLoanNumber string
	Program          string
	ApplicationType  string
	SubmitDate       time.Time // zero when the source value did not parse

	Balance        float64
	PurchasePrice  float64
	LenderPricePct float64
	ModeledPrice   float64
	FICO           int
	DTI            float64
	PTI            float64
	Income         float64
	StampFee       float64
	Term           int
	PromoTerm      int
	APR            float64
	DealerFee      float64
	State          string

	// TU144 marks loans excluded from underwriting (SFY extract only)
	TU144 bool
}

const sellerLoanColumn = "SELLER Loan #"

// Submission normalizes a channel submission sheet: drops the preamble
// band above the header row, standardizes the TU column name and
// returns typed rows. 헤더 행은 "SELLER Loan #" 컬럼으로 식별
func Submission(rows [][]string, source string) ([]SubmissionRow, error) {
	headerIdx := -1
	for i, row := range rows {
		for _, cell := range row {
			if strings.EqualFold(strings.TrimSpace(cell), sellerLoanColumn) {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return nil, &contracts.SchemaError{Source: source, Missing: []string{sellerLoanColumn}}
	}

	header := renameTUColumn(rows[headerIdx])
	table := refdata.NewTable(header, rows[headerIdx+1:])
	if err := table.Require(source, sellerLoanColumn, "Loan Program", "Orig. Balance"); err != nil {
		return nil, err
	}

	out := make([]SubmissionRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		seller := table.Get(row, sellerLoanColumn)
		if seller == "" {
			continue
		}
		out = append(out, SubmissionRow{
			SellerLoanNumber: seller,
			Program:          table.Get(row, "Loan Program"),
			ApplicationType:  table.Get(row, "Application Type"),
			SubmitDate:       refdata.ParseDateLenient(table.Get(row, "Submit Date")),
			Balance:          refdata.ParseFloat(table.Get(row, "Orig. Balance")),
			PurchasePrice:    refdata.ParseFloat(table.Get(row, "Purchase Price")),
			LenderPricePct:   refdata.ParseFloat(table.Get(row, "Lender Price(%)")),
			ModeledPrice:     refdata.ParseFloat(table.Get(row, "modeled_purchase_price")),
			FICO:             refdata.ParseInt(table.Get(row, "FICO Borrower")),
			DTI:              refdata.ParseFloat(table.Get(row, "DTI")),
			PTI:              refdata.ParseFloat(table.Get(row, "PTI")),
			Income:           refdata.ParseFloat(table.Get(row, "Income")),
			StampFee:         refdata.ParseFloat(table.Get(row, "Stamp fee")),
			Term:             refdata.ParseInt(table.Get(row, "Term")),
			PromoTerm:        refdata.ParseInt(table.Get(row, "promo_term")),
			APR:              refdata.ParseFloat(table.Get(row, "APR")),
			DealerFee:        refdata.ParseFloat(table.Get(row, "Dealer Fee")),
			State:            table.Get(row, "Property State"),
			TU144:            refdata.ParseBool(table.Get(row, "TU144")),
		})
	}
	return out, nil
}

// renameTUColumn standardizes the TU-144 column name variants
// ("TU 144", "tu144 flag", ...) to TU144
func renameTUColumn(header []string) []string {
	renamed := make([]string, len(header))
	for i, name := range header {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "tu") && strings.Contains(lower, "144") {
			renamed[i] = "TU144"
			continue
		}
		renamed[i] = name
	}
	return renamed
}
