// Package normalize turns raw tabular extracts into typed rows.
// 스키마 위반은 SchemaError로 즉시 중단, 날짜는 관대하게 파싱
package normalize

import (
	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

// Tape normalizes the daily loan-tape CSV. Required columns missing
// → SchemaError (fatal). Status codes default to empty, dates parse
// leniently.
func Tape(table *refdata.Table) ([]contracts.TapeLoan, error) {
	if err := table.Require("tape", "Account Number", "Loan Group", "Status Codes"); err != nil {
		return nil, err
	}

	loans := make([]contracts.TapeLoan, 0, len(table.Rows))
	for _, row := range table.Rows {
		account := table.Get(row, "Account Number")
		if account == "" {
			continue
		}
		loans = append(loans, contracts.TapeLoan{
			AccountNumber: int64(refdata.ParseInt(account)),
			LoanGroup:     table.Get(row, "Loan Group"),
			StatusCodes:   table.Get(row, "Status Codes"),
			OpenDate:      refdata.ParseDateLenient(table.Get(row, "Open Date")),
			MaturityDate:  refdata.ParseDateLenient(table.Get(row, "maturityDate")),
		})
	}
	return loans, nil
}
