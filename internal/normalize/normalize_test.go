package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

func TestTapeRequiresColumns(t *testing.T) {
	table := refdata.NewTable([]string{"Account Number", "Open Date"}, nil)

	_, err := Tape(table)
	require.Error(t, err)

	var schemaErr *contracts.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ElementsMatch(t, []string{"Loan Group", "Status Codes"}, schemaErr.Missing)
}

func TestTapeParsesRows(t *testing.T) {
	table := refdata.NewTable(
		[]string{"Account Number", "Loan Group", "Status Codes", "Open Date", "maturityDate"},
		[][]string{
			{"1001", "FX3 GROUP", "ACTIVE; REPURCHASE", "2024-01-15", "2034-01-15"},
			{"1002", "HD GROUP", "", "bad-date", ""},
			{"", "FX1", "", "", ""},
		},
	)

	loans, err := Tape(table)
	require.NoError(t, err)
	require.Len(t, loans, 2) // blank account row dropped

	assert.Equal(t, int64(1001), loans[0].AccountNumber)
	assert.Equal(t, "FX3 GROUP", loans[0].LoanGroup)
	assert.Equal(t, 2024, loans[0].OpenDate.Year())

	// lenient dates: invalid value parses to zero time, row kept
	assert.True(t, loans[1].OpenDate.IsZero())
	assert.Equal(t, "", loans[1].StatusCodes)
}

func TestSubmissionSkipsPreambleAndRenamesTU(t *testing.T) {
	rows := [][]string{
		{"Exhibit A to Form of Sale Notice"},
		{""},
		{"Pre-Funding"},
		{""},
		{"SELLER Loan #", "Loan Program", "Orig. Balance", "FICO Borrower", "TU 144 Flag", "Submit Date"},
		{"SFC_2001", "FX Std - 999", "15000.00", "712", "1", "2026-08-01"},
		{"SFC_2002", "FX Promo - 12", "9,500", "688", "", "2026-07-15"},
		{"", "", "", "", "", ""},
	}

	loans, err := Submission(rows, "SFY submission")
	require.NoError(t, err)
	require.Len(t, loans, 2)

	assert.Equal(t, "SFC_2001", loans[0].SellerLoanNumber)
	assert.Equal(t, 15000.0, loans[0].Balance)
	assert.Equal(t, 712, loans[0].FICO)
	assert.True(t, loans[0].TU144)
	assert.False(t, loans[1].TU144)
	assert.Equal(t, 9500.0, loans[1].Balance)
	assert.Equal(t, 2026, loans[0].SubmitDate.Year())
}

func TestSubmissionMissingHeaderBand(t *testing.T) {
	rows := [][]string{
		{"Exhibit A"},
		{"no header here"},
	}

	_, err := Submission(rows, "PRIME submission")
	require.Error(t, err)

	var schemaErr *contracts.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "PRIME submission", schemaErr.Source)
}
