package refdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/storage"
)

func fileAt(name string, modified string) storage.FileInfo {
	mod, _ := time.Parse("2006-01-02", modified)
	return storage.FileInfo{Path: RequiredFilesDir + "/" + name, Modified: mod}
}

func TestFindByPatternExactName(t *testing.T) {
	files := []storage.FileInfo{
		fileAt("Tape20Loans_08-29-2026.csv", "2026-08-30"),
		fileAt("Tape20Loans_08-28-2026.csv", "2026-08-29"),
	}

	got, err := findByPattern(files, "Tape20Loans_08-29-2026.csv", true)
	require.NoError(t, err)
	assert.Equal(t, RequiredFilesDir+"/Tape20Loans_08-29-2026.csv", got)
}

func TestFindByPatternGlobPrefersMostRecent(t *testing.T) {
	files := []storage.FileInfo{
		fileAt("SFY_08-20-2026_ExhibitAtoFormofSaleNotice - Pre-Funding.xlsx", "2026-08-20"),
		fileAt("SFY_08-27-2026_ExhibitAtoFormofSaleNotice - Pre-Funding.xlsx", "2026-08-27"),
		fileAt("PRIME_08-27-2026_ExhibitAtoFormofSaleNotice - Pre-Funding.xlsx", "2026-08-27"),
	}

	got, err := findByPattern(files, sfyGlobPattern, true)
	require.NoError(t, err)
	assert.Contains(t, got, "SFY_08-27-2026")
}

func TestFindByPatternMissingRequired(t *testing.T) {
	_, err := findByPattern(nil, "Tape20Loans_08-29-2026.csv", true)
	require.Error(t, err)

	var notFound *contracts.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "file", notFound.Kind)

	// optional files resolve to empty without error
	got, err := findByPattern(nil, "FX3_2026_007_31.xlsx", false)
	require.NoError(t, err)
	assert.Empty(t, got)
}
