package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejectionCode(t *testing.T) {
	tests := []struct {
		name          string
		exceptionType string
		category      string
		want          string
	}{
		{"purchase price mismatch", ExceptionPurchasePrice, CategoryMismatch, RejectionPurchasePriceMismatch},
		{"underwriting sfy", ExceptionUnderwritingSFY, CategoryFlagged, RejectionUnderwritingSFY},
		{"underwriting prime", ExceptionUnderwritingPrime, CategoryFlagged, RejectionUnderwritingPrime},
		{"comap notes", ExceptionCoMAPNotes, CategoryNotInCoMAP, RejectionCoMAPNotes},
		{"unknown pair has no code", ExceptionPurchasePrice, "something_else", ""},
		{"unknown type has no code", "soft_min_income", CategoryFlagged, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RejectionCode(tt.exceptionType, tt.category))
		})
	}
}

func TestRulePriorityOrder(t *testing.T) {
	// 가격 검증이 항상 최우선, CoMAP이 마지막
	assert.Equal(t, ExceptionPurchasePrice, RulePriority[0])
	assert.Equal(t, ExceptionCoMAPNotes, RulePriority[len(RulePriority)-1])

	// every prioritized type that rejects loans must have a code mapping
	for _, typ := range RulePriority {
		var category string
		switch typ {
		case ExceptionPurchasePrice:
			category = CategoryMismatch
		case ExceptionCoMAPPrime, ExceptionCoMAPSFY, ExceptionCoMAPNotes:
			category = CategoryNotInCoMAP
		default:
			category = CategoryFlagged
		}
		assert.NotEmpty(t, RejectionCode(typ, category), "missing code for %s", typ)
	}
}

func TestRunStatusIsTerminal(t *testing.T) {
	assert.False(t, RunPending.IsTerminal())
	assert.False(t, RunRunning.IsTerminal())
	assert.True(t, RunCompleted.IsTerminal())
	assert.True(t, RunFailed.IsTerminal())
	assert.True(t, RunCancelled.IsTerminal())
}

func TestMondayWeekday(t *testing.T) {
	// 2025-10-21 is a Tuesday
	tuesday := mustDate(t, "2025-10-21")
	assert.Equal(t, 1, MondayWeekday(tuesday))
	assert.Equal(t, "Tuesday", WeekdayNames[MondayWeekday(tuesday)])

	sunday := mustDate(t, "2025-10-26")
	assert.Equal(t, 6, MondayWeekday(sunday))
}
