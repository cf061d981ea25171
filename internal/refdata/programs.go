package refdata

import (
	"strings"

	"github.com/wonny/loancore/internal/contracts"
)

// parsePrograms parses one master program lookup table. notes variant
// 는 program 이름에 "notes" suffix를 붙여 합쳐짐
func parsePrograms(t *Table, source string, notes bool) ([]contracts.ProgramInfo, error) {
	if err := t.Require(source, "loan program", "platform", "type"); err != nil {
		return nil, err
	}

	programs := make([]contracts.ProgramInfo, 0, len(t.Rows))
	for _, row := range t.Rows {
		program := t.Get(row, "loan program")
		if program == "" && !notes {
			continue
		}
		if notes {
			program += "notes"
		}
		programs = append(programs, contracts.ProgramInfo{
			Program:     program,
			Channel:     strings.ToLower(t.Get(row, "platform")),
			Type:        strings.ToLower(t.Get(row, "type")),
			NewPrograms: ParseBool(t.Get(row, "new_programs")),
		})
	}
	return programs, nil
}
