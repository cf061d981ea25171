package refdata

// Underwriting grid rows as loaded from the multi-sheet reference
// workbook. 하나의 sheet = 하나의 grid (채널/notes 변형별)

// UnderwritingRow is one approval rule: loans matching the program
// with income and FICO at or above the minima may carry up to
// ApprovalHigh balance at up to DTIMax.
type UnderwritingRow struct {
	Program          string
	MonthlyIncomeMin float64
	FICOMin          int
	ApprovalHigh     float64
	DTIMax           float64

	// PTIRatio applies only on the relaxed (no income floor) retry.
	// 999 when the sheet has no pti_ratio column.
	PTIRatio float64
}

// UnderwritingGrid is one sheet of approval rules
type UnderwritingGrid struct {
	Name string
	Rows []UnderwritingRow
}

const defaultPTIRatio = 999

func parseUnderwritingGrid(t *Table, name string) (*UnderwritingGrid, error) {
	if err := t.Require(name, "finance_type_name_nls", "monthly_income_min", "fico_min", "approval_high", "dti_max"); err != nil {
		return nil, err
	}
	hasPTI := t.HasCol("pti_ratio")

	grid := &UnderwritingGrid{Name: name}
	for _, row := range t.Rows {
		program := t.Get(row, "finance_type_name_nls")
		if program == "" {
			continue
		}
		r := UnderwritingRow{
			Program:          program,
			MonthlyIncomeMin: ParseFloat(t.Get(row, "monthly_income_min")),
			FICOMin:          ParseInt(t.Get(row, "fico_min")),
			ApprovalHigh:     ParseFloat(t.Get(row, "approval_high")),
			DTIMax:           ParseFloat(t.Get(row, "dti_max")),
			PTIRatio:         defaultPTIRatio,
		}
		if hasPTI {
			if v := t.Get(row, "pti_ratio"); v != "" {
				r.PTIRatio = ParseFloat(v)
			}
		}
		grid.Rows = append(grid.Rows, r)
	}
	return grid, nil
}

// RowsFor returns the rows matching a program name
func (g *UnderwritingGrid) RowsFor(program string) []UnderwritingRow {
	var rows []UnderwritingRow
	for _, r := range g.Rows {
		if r.Program == program {
			rows = append(rows, r)
		}
	}
	return rows
}
