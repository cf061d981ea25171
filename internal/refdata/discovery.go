package refdata

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/storage"
)

// Dated input file patterns under the required-files prefix
const (
	tapePattern      = "Tape20Loans_%s.csv"
	sfyGlobPattern   = "SFY_*_ExhibitAtoFormofSaleNotice - Pre-Funding.xlsx"
	primeGlobPattern = "PRIME_*_ExhibitAtoFormofSaleNotice - Pre-Funding.xlsx"
	fxPattern        = "FX%d_%s.xlsx"
	RequiredFilesDir = "files_required"
)

// InputFiles holds the resolved storage paths of one run's dated inputs
type InputFiles struct {
	Tape  string
	SFY   string
	Prime string

	// Optional monthly servicing extracts, empty when absent
	FX3 string
	FX4 string
}

// DiscoverInputs resolves the dated input files for a run under dir.
// Required files missing → NotFoundError. 같은 패턴에 여러 파일이
// 매칭되면 가장 최근 수정본 사용
func DiscoverInputs(ctx context.Context, in storage.Backend, dir string, asOf time.Time) (*InputFiles, error) {
	files, err := in.List(ctx, dir, false)
	if err != nil {
		return nil, fmt.Errorf("list input files: %w", err)
	}

	inputs := &InputFiles{}

	inputs.Tape, err = findByPattern(files, fmt.Sprintf(tapePattern, TapeDate(asOf)), true)
	if err != nil {
		return nil, err
	}
	inputs.SFY, err = findByPattern(files, sfyGlobPattern, true)
	if err != nil {
		return nil, err
	}
	inputs.Prime, err = findByPattern(files, primeGlobPattern, true)
	if err != nil {
		return nil, err
	}

	lastEnd := LastMonthEnd(asOf)
	inputs.FX3, _ = findByPattern(files, fmt.Sprintf(fxPattern, 3, lastEnd), false)
	inputs.FX4, _ = findByPattern(files, fmt.Sprintf(fxPattern, 4, lastEnd), false)

	return inputs, nil
}

// findByPattern matches file names against a glob-style pattern
// (* and ? wildcards). Most recent modification wins on ties.
func findByPattern(files []storage.FileInfo, pattern string, required bool) (string, error) {
	re, err := globToRegexp(pattern)
	if err != nil {
		return "", fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var matches []storage.FileInfo
	for _, f := range files {
		if f.IsDirectory {
			continue
		}
		if re.MatchString(path.Base(f.Path)) {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		if required {
			return "", &contracts.NotFoundError{Kind: "file", Name: pattern}
		}
		return "", nil
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Modified.After(matches[j].Modified)
	})
	return matches[0].Path, nil
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)
	return regexp.Compile("^" + quoted + "$")
}
