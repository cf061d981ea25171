package rules

import (
	"fmt"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

// Channel labels carried on CoMAP failures (리포트 표기용 대문자)
const (
	comapLabelPrime = "PRIME"
	comapLabelSFY   = "SFY"
	comapLabelNotes = "NOTES"
)

// CoMAPFailure identifies one loan absent from its CoMAP generation
type CoMAPFailure struct {
	SellerLoanNumber string
	Program          string
	Channel          string
}

// CheckCoMAPPrime checks non-note prime loans that passed the
// purchase price rule
func CheckCoMAPPrime(loans []contracts.Loan, set *refdata.CoMAPSet) []CoMAPFailure {
	var failures []CoMAPFailure
	for i := range loans {
		loan := &loans[i]
		if loan.IsNote() || !loan.PurchasePriceCheck || loan.Channel != contracts.ChannelPrime {
			continue
		}
		if allowed, _ := set.Evaluate(loan.Program, loan.FICO, loan.SubmitDate); !allowed {
			failures = append(failures, CoMAPFailure{loan.SellerLoanNumber, loan.Program, comapLabelPrime})
		}
	}
	return failures
}

// CheckCoMAPSFY checks non-note SFY loans that passed the purchase
// price rule
func CheckCoMAPSFY(loans []contracts.Loan, set *refdata.CoMAPSet) []CoMAPFailure {
	var failures []CoMAPFailure
	for i := range loans {
		loan := &loans[i]
		if loan.IsNote() || !loan.PurchasePriceCheck || loan.Channel != contracts.ChannelSFY {
			continue
		}
		if allowed, _ := set.Evaluate(loan.Program, loan.FICO, loan.SubmitDate); !allowed {
			failures = append(failures, CoMAPFailure{loan.SellerLoanNumber, loan.Program, comapLabelSFY})
		}
	}
	return failures
}

// CheckCoMAPNotes checks note loans that passed the purchase price
// rule. Programs absent from the notes grid are out of scope and pass
// silently; only in-grid programs with insufficient FICO fail.
func CheckCoMAPNotes(loans []contracts.Loan, set *refdata.CoMAPSet) []CoMAPFailure {
	var failures []CoMAPFailure
	for i := range loans {
		loan := &loans[i]
		if !loan.IsNote() || !loan.PurchasePriceCheck {
			continue
		}
		allowed, present := set.Evaluate(loan.Program, loan.FICO, loan.SubmitDate)
		if present && !allowed {
			failures = append(failures, CoMAPFailure{loan.SellerLoanNumber, loan.Program, comapLabelNotes})
		}
	}
	return failures
}

var comapExceptionTypes = map[string]string{
	comapLabelPrime: contracts.ExceptionCoMAPPrime,
	comapLabelSFY:   contracts.ExceptionCoMAPSFY,
	comapLabelNotes: contracts.ExceptionCoMAPNotes,
}

// CoMAPExceptions builds exceptions for the collected failures,
// snapshotting the matching loan when present
func CoMAPExceptions(loans []contracts.Loan, failures []CoMAPFailure) []contracts.LoanException {
	bySeller := make(map[string]*contracts.Loan, len(loans))
	for i := range loans {
		bySeller[loans[i].SellerLoanNumber] = &loans[i]
	}

	var exceptions []contracts.LoanException
	for _, f := range failures {
		excType := comapExceptionTypes[f.Channel]
		var snapshot *contracts.Loan
		if loan, ok := bySeller[f.SellerLoanNumber]; ok {
			copied := *loan
			snapshot = &copied
		}
		exceptions = append(exceptions, contracts.LoanException{
			SellerLoanNumber: f.SellerLoanNumber,
			Type:             excType,
			Category:         contracts.CategoryNotInCoMAP,
			Severity:         contracts.SeverityError,
			Message:          fmt.Sprintf("Loan not in CoMAP grid (%s)", f.Channel),
			RejectionCode:    contracts.RejectionCode(excType, contracts.CategoryNotInCoMAP),
			LoanData:         snapshot,
		})
	}
	return exceptions
}
