// Package enrich tags and joins normalized rows into the canonical
// loan population the rule modules consume.
package enrich

import (
	"fmt"
	"strings"

	"github.com/wonny/loancore/internal/contracts"
)

// Channel tags on raw tape rows (submission 채널 merge 전 단계라
// 대문자 표기를 유지함)
const (
	tagSFY   = "SFY"
	tagPrime = "PRIME"
)

// TagChannels derives the channel tag from the loan group code:
// FX1/FX3 groups fund through SFY, everything else through PRIME.
func TagChannels(loans []contracts.TapeLoan) {
	for i := range loans {
		group := loans[i].LoanGroup
		if strings.Contains(group, "FX1") || strings.Contains(group, "FX3") {
			loans[i].Channel = tagSFY
		} else {
			loans[i].Channel = tagPrime
		}
	}
}

// AssignSellerNumbers derives the seller loan number from the account
// number (SFC_<account>)
func AssignSellerNumbers(loans []contracts.TapeLoan) {
	for i := range loans {
		loans[i].SellerLoanNumber = fmt.Sprintf("SFC_%d", loans[i].AccountNumber)
	}
}

// MarkRepurchased flags rows whose semicolon-separated status codes
// include REPURCHASE
func MarkRepurchased(loans []contracts.TapeLoan) {
	for i := range loans {
		loans[i].Repurchased = false
		for _, code := range strings.Split(loans[i].StatusCodes, ";") {
			if strings.TrimSpace(code) == "REPURCHASE" {
				loans[i].Repurchased = true
				break
			}
		}
	}
}

// RepurchasedSellers returns the seller numbers of repurchased tape rows
func RepurchasedSellers(loans []contracts.TapeLoan) map[string]bool {
	sellers := make(map[string]bool)
	for _, l := range loans {
		if l.Repurchased {
			sellers[l.SellerLoanNumber] = true
		}
	}
	return sellers
}

// MarkRepurchasedAssets propagates tape repurchase flags onto the
// existing portfolio rows
func MarkRepurchasedAssets(assets []contracts.Loan, repurchased map[string]bool) {
	for i := range assets {
		if repurchased[assets[i].SellerLoanNumber] {
			assets[i].Repurchase = true
		}
	}
}
