package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loancore/internal/contracts"
)

func TestCheckPurchasePrice(t *testing.T) {
	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1", LenderPricePct: 99.00, ModeledPrice: 0.99},
		{SellerLoanNumber: "SFC_2", LenderPricePct: 99.00, ModeledPrice: 0.9899},  // rounds to 98.99
		{SellerLoanNumber: "SFC_3", LenderPricePct: 101.25, ModeledPrice: 1.0125},
		{SellerLoanNumber: "SFC_4", LenderPricePct: 100.00, ModeledPrice: 0.999949}, // rounds to 99.99
	}
	CheckPurchasePrice(loans)

	assert.True(t, loans[0].PurchasePriceCheck)
	assert.False(t, loans[1].PurchasePriceCheck)
	assert.True(t, loans[2].PurchasePriceCheck)
	assert.False(t, loans[3].PurchasePriceCheck)
}

func TestPurchasePriceExceptions(t *testing.T) {
	loans := []contracts.Loan{
		{SellerLoanNumber: "SFC_1", LenderPricePct: 99.00, ModeledPrice: 0.99},
		{SellerLoanNumber: "SFC_2", LenderPricePct: 99.50, ModeledPrice: 0.99},
	}
	CheckPurchasePrice(loans)

	exceptions := PurchasePriceExceptions(loans)
	require.Len(t, exceptions, 1)

	exc := exceptions[0]
	assert.Equal(t, "SFC_2", exc.SellerLoanNumber)
	assert.Equal(t, contracts.ExceptionPurchasePrice, exc.Type)
	assert.Equal(t, contracts.CategoryMismatch, exc.Category)
	assert.Equal(t, contracts.SeverityError, exc.Severity)
	assert.Equal(t, "criteria.purchase_price_mismatch", exc.RejectionCode)
	assert.Contains(t, exc.Message, "99.50")
	require.NotNil(t, exc.LoanData)
	assert.Equal(t, "SFC_2", exc.LoanData.SellerLoanNumber)
}
