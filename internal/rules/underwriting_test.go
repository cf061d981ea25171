package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

func testGrid() *refdata.UnderwritingGrid {
	return &refdata.UnderwritingGrid{
		Name: "SFY",
		Rows: []refdata.UnderwritingRow{
			{Program: "FX Std - 999", MonthlyIncomeMin: 2500, FICOMin: 660, ApprovalHigh: 30000, DTIMax: 45, PTIRatio: 0.12},
			{Program: "FX Std - 999", MonthlyIncomeMin: 2500, FICOMin: 700, ApprovalHigh: 60000, DTIMax: 50, PTIRatio: 0.15},
			{Program: "FX Promo - 12", MonthlyIncomeMin: 3000, FICOMin: 680, ApprovalHigh: 25000, DTIMax: 40, PTIRatio: 0.10},
		},
	}
}

func TestCheckUnderwritingPass(t *testing.T) {
	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1", Program: "FX Std - 999", Income: 48000, FICO: 670, DTI: 0.40, Balance: 25000},
	}

	result := CheckUnderwriting(loans, testGrid(), false, nil)
	assert.Empty(t, result.Flagged)
	assert.Empty(t, result.MinIncome)
}

func TestCheckUnderwritingFlagsHardFailures(t *testing.T) {
	loans := []contracts.Loan{
		// balance above every ceiling the loan qualifies for
		{SellerLoanNumber: "SFC_1", Program: "FX Std - 999", Income: 48000, FICO: 670, DTI: 0.40, Balance: 40000},
		// DTI above the row maximum
		{SellerLoanNumber: "SFC_2", Program: "FX Promo - 12", Income: 60000, FICO: 690, DTI: 0.55, Balance: 20000},
		// unknown program never matches a grid row
		{SellerLoanNumber: "SFC_3", Program: "GHOST", Income: 60000, FICO: 680, DTI: 0.30, Balance: 10000},
	}

	result := CheckUnderwriting(loans, testGrid(), false, nil)
	assert.Equal(t, []string{"SFC_1", "SFC_2", "SFC_3"}, result.Flagged)
}

func TestCheckUnderwritingRelaxedRetry(t *testing.T) {
	// fails the income floor but FICO>700 and PTI within the relaxed limit
	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1", Program: "FX Std - 999", Income: 12000, FICO: 710, DTI: 0.40, PTI: 0.10, Balance: 25000},
	}

	result := CheckUnderwriting(loans, testGrid(), false, nil)
	assert.Empty(t, result.Flagged, "relaxed pass must not flag the loan")
	assert.Equal(t, []string{"SFC_1"}, result.MinIncome)

	// same loan but PTI above the relaxed limit stays flagged
	loans[0].PTI = 0.20
	result = CheckUnderwriting(loans, testGrid(), false, nil)
	assert.Equal(t, []string{"SFC_1"}, result.Flagged)
	assert.Empty(t, result.MinIncome)

	// FICO at exactly 700 never gets the relaxed retry
	loans[0].PTI = 0.10
	loans[0].FICO = 700
	result = CheckUnderwriting(loans, testGrid(), false, nil)
	assert.Equal(t, []string{"SFC_1"}, result.Flagged)
}

func TestCheckUnderwritingStampFeeReducesBalance(t *testing.T) {
	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1", Program: "FX Std - 999", Income: 48000, FICO: 670, DTI: 0.40, Balance: 30500, StampFee: 600},
	}

	result := CheckUnderwriting(loans, testGrid(), false, nil)
	assert.Empty(t, result.Flagged) // net 29900 ≤ 30000
}

func TestCheckUnderwritingSkipsTUAndSplitsNotes(t *testing.T) {
	grid := &refdata.UnderwritingGrid{
		Name: "SFY - Notes",
		Rows: []refdata.UnderwritingRow{
			{Program: "FX Std - 999", MonthlyIncomeMin: 0, FICOMin: 660, ApprovalHigh: 50000, DTIMax: 50, PTIRatio: 999},
		},
	}
	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1", Program: "FX Std - 999notes", ApplicationType: contracts.ApplicationTypeNote, Income: 48000, FICO: 670, DTI: 0.30, Balance: 20000},
		{SellerLoanNumber: "SFC_2", Program: "FX Std - 999", Income: 48000, FICO: 670, DTI: 0.30, Balance: 90000},
		{SellerLoanNumber: "SFC_3", Program: "FX Std - 999notes", ApplicationType: contracts.ApplicationTypeNote, Income: 48000, FICO: 670, DTI: 0.30, Balance: 90000},
	}

	// notes run: non-note SFC_2 ignored, suffix stripped before lookup
	result := CheckUnderwriting(loans, grid, true, map[string]bool{"SFC_3": true})
	assert.Empty(t, result.Flagged) // SFC_1 passes, SFC_3 skipped as TU
}

func TestUnderwritingExceptions(t *testing.T) {
	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1"},
		{SellerLoanNumber: "SFC_2"},
	}

	exceptions := UnderwritingExceptions(loans, []string{"SFC_2"}, contracts.ExceptionUnderwritingPrime)
	require.Len(t, exceptions, 1)
	assert.Equal(t, "SFC_2", exceptions[0].SellerLoanNumber)
	assert.Equal(t, contracts.CategoryFlagged, exceptions[0].Category)
	assert.Equal(t, "criteria.underwriting_prime", exceptions[0].RejectionCode)
}
