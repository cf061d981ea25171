package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/normalize"
)

func TestTagChannels(t *testing.T) {
	loans := []contracts.TapeLoan{
		{LoanGroup: "FX3 CONSUMER"},
		{LoanGroup: "FX1"},
		{LoanGroup: "HD STANDARD"},
		{LoanGroup: ""},
	}
	TagChannels(loans)

	assert.Equal(t, "SFY", loans[0].Channel)
	assert.Equal(t, "SFY", loans[1].Channel)
	assert.Equal(t, "PRIME", loans[2].Channel)
	assert.Equal(t, "PRIME", loans[3].Channel)
}

func TestMarkRepurchased(t *testing.T) {
	loans := []contracts.TapeLoan{
		{AccountNumber: 1001, StatusCodes: "ACTIVE; REPURCHASE"},
		{AccountNumber: 1002, StatusCodes: "REPURCHASED"}, // substring must not match
		{AccountNumber: 1003, StatusCodes: ""},
	}
	AssignSellerNumbers(loans)
	MarkRepurchased(loans)

	assert.True(t, loans[0].Repurchased)
	assert.False(t, loans[1].Repurchased)
	assert.False(t, loans[2].Repurchased)

	sellers := RepurchasedSellers(loans)
	assert.Equal(t, map[string]bool{"SFC_1001": true}, sellers)

	assets := []contracts.Loan{
		{SellerLoanNumber: "SFC_1001"},
		{SellerLoanNumber: "SFC_1002"},
	}
	MarkRepurchasedAssets(assets, sellers)
	assert.True(t, assets[0].Repurchase)
	assert.False(t, assets[1].Repurchase)
}

func TestBuildBuyPopulation(t *testing.T) {
	programs := []contracts.ProgramInfo{
		{Program: "HIP25", Channel: "prime", Type: "standard"},
		{Program: "FX Std - 999", Channel: "sfy", Type: "hybrid", NewPrograms: true},
		{Program: "HIP25notes", Channel: "prime", Type: "standard"},
	}

	prime := []normalize.SubmissionRow{
		{SellerLoanNumber: "SFC_1", Program: "HIP25", Balance: 10000, DealerFee: 5},
		{SellerLoanNumber: "SFC_2", Program: "HIP25", ApplicationType: contracts.ApplicationTypeNote, Balance: 8000},
		{SellerLoanNumber: "SFC_3", Program: "GHOST", Balance: 5000},
	}
	sfy := []normalize.SubmissionRow{
		{SellerLoanNumber: "SFC_4", Program: "FX Std - 999", Balance: 12000, TU144: true},
	}

	pdate := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	loans, tuLoans := BuildBuyPopulation(prime, sfy, programs, pdate, 8.05)

	require.Len(t, loans, 4) // 1:1 with merged submissions
	assert.Equal(t, []string{"SFC_4"}, tuLoans)

	assert.Equal(t, "prime", loans[0].Channel)
	assert.Equal(t, "standard", loans[0].Type)
	assert.Equal(t, 0.05, loans[0].DealerFee) // 5 → 0.05
	assert.Equal(t, pdate, loans[0].PurchaseDate)
	assert.Equal(t, 8.05, loans[0].TargetYield)
	assert.True(t, loans[0].BorrowingBaseEligible)
	assert.False(t, loans[0].Repurchase)

	// HD NOTE gets the notes suffix and resolves via the notes lookup
	assert.Equal(t, "HIP25notes", loans[1].Program)
	assert.Equal(t, "prime", loans[1].Channel)
	assert.True(t, loans[1].IsNote())

	// unmatched program: kept, enrichment columns stay empty
	assert.Equal(t, "", loans[2].Channel)
	assert.Equal(t, "", loans[2].Type)

	assert.Equal(t, "sfy", loans[3].Channel)
	assert.True(t, loans[3].NewPrograms)
}
