package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

func comapSetFor(bands []refdata.FICOBand, rows ...[]string) *refdata.CoMAPSet {
	header := make([]string, len(bands))
	for i, b := range bands {
		header[i] = b.Label
	}
	table := refdata.NewTable(header, rows)
	grid := refdata.NewCoMAPGrid(table, "test", bands)
	return &refdata.CoMAPSet{Generations: []refdata.CoMAPGeneration{{Grids: []*refdata.CoMAPGrid{grid}}}}
}

func TestCheckCoMAPPrimeFiltersPopulation(t *testing.T) {
	set := comapSetFor(refdata.PrimeBands,
		[]string{"HIP25", "", "", "", ""},
	)

	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1", Channel: "prime", Program: "HIP25", FICO: 670, PurchasePriceCheck: true},
		{SellerLoanNumber: "SFC_2", Channel: "prime", Program: "GHOST", FICO: 800, PurchasePriceCheck: true},
		// price mismatch: out of scope for CoMAP
		{SellerLoanNumber: "SFC_3", Channel: "prime", Program: "GHOST", FICO: 800, PurchasePriceCheck: false},
		// wrong channel
		{SellerLoanNumber: "SFC_4", Channel: "sfy", Program: "GHOST", FICO: 800, PurchasePriceCheck: true},
		// note loans are checked by the notes rule
		{SellerLoanNumber: "SFC_5", Channel: "prime", Program: "GHOSTnotes", ApplicationType: contracts.ApplicationTypeNote, FICO: 800, PurchasePriceCheck: true},
	}

	failures := CheckCoMAPPrime(loans, set)
	require.Len(t, failures, 1)
	assert.Equal(t, "SFC_2", failures[0].SellerLoanNumber)
	assert.Equal(t, "PRIME", failures[0].Channel)
}

func TestCheckCoMAPNotesSkipsUnknownPrograms(t *testing.T) {
	set := comapSetFor(refdata.NotesBands,
		[]string{"HIP25notes", "", "", ""},
	)

	loans := []contracts.Loan{
		// in grid, FICO below the 680 band minimum → fails
		{SellerLoanNumber: "SFC_1", Program: "HIP25notes", ApplicationType: contracts.ApplicationTypeNote, FICO: 650, PurchasePriceCheck: true},
		// in grid, FICO sufficient → passes
		{SellerLoanNumber: "SFC_2", Program: "HIP25notes", ApplicationType: contracts.ApplicationTypeNote, FICO: 690, PurchasePriceCheck: true},
		// not in grid at all → out of scope, not a failure
		{SellerLoanNumber: "SFC_3", Program: "GHOSTnotes", ApplicationType: contracts.ApplicationTypeNote, FICO: 500, PurchasePriceCheck: true},
	}

	failures := CheckCoMAPNotes(loans, set)
	require.Len(t, failures, 1)
	assert.Equal(t, "SFC_1", failures[0].SellerLoanNumber)
}

func TestCheckCoMAPSFYUsesSubmitDateGeneration(t *testing.T) {
	header := []string{"660-719", "720-779", "780-799", "800+", "780+"}
	table := refdata.NewTable(header, [][]string{{"", "FX-A", "", "", "FX-B"}})
	base := refdata.NewCoMAPGrid(table, "SFY COMAP", refdata.SFYBands)
	oct25 := refdata.NewCoMAPGrid(table, "SFY COMAP oct25", refdata.SFYBandsOct25)

	set := &refdata.CoMAPSet{Generations: []refdata.CoMAPGeneration{
		{Grids: []*refdata.CoMAPGrid{base}},
		{Cutover: refdata.Oct25Cutover, Grids: []*refdata.CoMAPGrid{oct25}},
	}}

	oldSubmit := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	newSubmit := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC)

	loans := []contracts.Loan{
		// FX-B only exists in the post-cutover band layout
		{SellerLoanNumber: "SFC_1", Channel: "sfy", Program: "FX-B", FICO: 790, PurchasePriceCheck: true, SubmitDate: oldSubmit},
		{SellerLoanNumber: "SFC_2", Channel: "sfy", Program: "FX-B", FICO: 790, PurchasePriceCheck: true, SubmitDate: newSubmit},
	}

	failures := CheckCoMAPSFY(loans, set)
	require.Len(t, failures, 1)
	assert.Equal(t, "SFC_1", failures[0].SellerLoanNumber)
}

func TestCoMAPExceptions(t *testing.T) {
	loans := []contracts.Loan{{SellerLoanNumber: "SFC_1", Program: "HIP25", FICO: 650}}
	failures := []CoMAPFailure{
		{SellerLoanNumber: "SFC_1", Program: "HIP25", Channel: "PRIME"},
		{SellerLoanNumber: "SFC_9", Program: "FX-A", Channel: "SFY"},
	}

	exceptions := CoMAPExceptions(loans, failures)
	require.Len(t, exceptions, 2)

	assert.Equal(t, contracts.ExceptionCoMAPPrime, exceptions[0].Type)
	assert.Equal(t, "criteria.comap_prime", exceptions[0].RejectionCode)
	require.NotNil(t, exceptions[0].LoanData)

	// failure without a matching loan row still records the exception
	assert.Equal(t, contracts.ExceptionCoMAPSFY, exceptions[1].Type)
	assert.Nil(t, exceptions[1].LoanData)
}
