package refdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comapTable(header []string, rows ...[]string) *Table {
	return NewTable(header, rows)
}

func TestBuildCoMAPGridIndexesBandMinima(t *testing.T) {
	table := comapTable(
		[]string{"660-699", "700-739", "740-749", "750-769", "770+"},
		[]string{"HIP25", "HIP20", "", "HIP25", ""},
		[]string{"", "HIP15", "", "", "HIP15"},
	)
	grid := NewCoMAPGrid(table, "Prime CoMAP", PrimeBands)

	assert.True(t, grid.Contains("HIP25"))
	assert.True(t, grid.Allows("HIP25", 660))
	assert.True(t, grid.Allows("HIP25", 755))

	// HIP15 only appears from the 700 band upward
	assert.True(t, grid.Contains("HIP15"))
	assert.False(t, grid.Allows("HIP15", 660))
	assert.True(t, grid.Allows("HIP15", 700))

	assert.False(t, grid.Contains("UNKNOWN"))
	assert.False(t, grid.Allows("UNKNOWN", 850))
}

func TestBuildCoMAPGridSkipsMissingBandColumns(t *testing.T) {
	// sheet migrated to the post-Oct-2025 layout: no 750-769/770+ split
	table := comapTable(
		[]string{"660-699", "700-739", "740-749", "750+"},
		[]string{"HIP25", "", "", "HIP10"},
	)
	grid := NewCoMAPGrid(table, "Prime CoMAP", PrimeBands)

	assert.True(t, grid.Allows("HIP25", 660))
	assert.False(t, grid.Contains("HIP10")) // lives only in a column PrimeBands does not know
}

func TestCoMAPSetSelectByCutover(t *testing.T) {
	base := &CoMAPGrid{Name: "base"}
	mid := &CoMAPGrid{Name: "mid"}
	late := &CoMAPGrid{Name: "late"}

	set := &CoMAPSet{
		Generations: []CoMAPGeneration{
			{Grids: []*CoMAPGrid{base}},
			{Cutover: PrimeNewCutover, Grids: []*CoMAPGrid{mid}},
			{Cutover: Oct25Cutover, Grids: []*CoMAPGrid{late}},
		},
	}

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	assert.Equal(t, "base", set.Select(day("2019-05-01")).Grids[0].Name)
	assert.Equal(t, "base", set.Select(day("2020-06-11")).Grids[0].Name) // cutover day itself stays on the old generation
	assert.Equal(t, "mid", set.Select(day("2020-06-12")).Grids[0].Name)
	assert.Equal(t, "mid", set.Select(day("2025-10-24")).Grids[0].Name)
	assert.Equal(t, "late", set.Select(day("2025-10-25")).Grids[0].Name)

	// unknown submit date falls back to the base generation
	assert.Equal(t, "base", set.Select(time.Time{}).Grids[0].Name)
}

func TestCoMAPSetEvaluateFallsBackAcrossGrids(t *testing.T) {
	narrow := NewCoMAPGrid(comapTable(
		[]string{"660-719", "720-779", "780+"},
		[]string{"", "FX-A", ""},
	), "SFY COMAP", SFYBandsOct25)
	wide := NewCoMAPGrid(comapTable(
		[]string{"660-699", "700-739", "740-749", "750-769", "770+"},
		[]string{"FX-B", "", "", "", ""},
	), "SFY COMAP2", SFYBandsWide)

	set := &CoMAPSet{Generations: []CoMAPGeneration{{Grids: []*CoMAPGrid{narrow, wide}}}}

	allowed, present := set.Evaluate("FX-A", 730, time.Time{})
	assert.True(t, allowed)
	assert.True(t, present)

	// FX-B is only in the fallback grid
	allowed, present = set.Evaluate("FX-B", 665, time.Time{})
	assert.True(t, allowed)
	assert.True(t, present)

	// present but FICO below every band minimum
	allowed, present = set.Evaluate("FX-A", 700, time.Time{})
	assert.False(t, allowed)
	assert.True(t, present)

	// absent everywhere
	allowed, present = set.Evaluate("FX-C", 800, time.Time{})
	assert.False(t, allowed)
	assert.False(t, present)
}
