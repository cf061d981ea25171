package refdata

import (
	"sort"
	"strings"
	"time"
)

// CoMAP grids: each sheet column is a FICO band whose cells list the
// program names approved in that band. A loan is in CoMAP when some
// band lists its program and the borrower FICO meets the band minimum.
//
// 밴드 구성은 세대(cutover)별로 다르며 loan의 Submit Date 기준으로 선택됨

// FICOBand is one band column with its minimum score
type FICOBand struct {
	Label string
	Min   int
}

// Band tables per channel and generation. The post-Oct-2025 tables
// collapse or split the upper bands, so they read the same sheet with
// a different column set.
var (
	PrimeBands = []FICOBand{
		{"660-699", 660}, {"700-739", 700}, {"740-749", 740}, {"750-769", 750}, {"770+", 770},
	}
	PrimeBandsOct25 = []FICOBand{
		{"660-699", 660}, {"700-739", 700}, {"740-749", 740}, {"750+", 750},
	}
	SFYBands = []FICOBand{
		{"660-719", 660}, {"720-779", 720}, {"780-799", 780}, {"800+", 800},
	}
	SFYBandsWide = []FICOBand{
		{"660-699", 660}, {"700-739", 700}, {"740-749", 740}, {"750-769", 750}, {"770+", 770},
	}
	SFYBandsOct25 = []FICOBand{
		{"660-719", 660}, {"720-779", 720}, {"780+", 780},
	}
	NotesBands = []FICOBand{
		{"680-749", 680}, {"750-769", 750}, {"770-789", 770}, {"790+", 790},
	}
)

// Generation cutover dates. A loan's submit date strictly after a
// cutover selects that generation.
var (
	PrimeNewCutover = time.Date(2020, time.June, 11, 0, 0, 0, 0, time.UTC)
	Oct25Cutover    = time.Date(2025, time.October, 24, 0, 0, 0, 0, time.UTC)
)

// CoMAPGrid is one sheet read against one band table, precomputed as
// program → sorted band minima. 조회는 O(밴드 수)
type CoMAPGrid struct {
	Name   string
	Bands  []FICOBand
	minima map[string][]int
}

// NewCoMAPGrid indexes the band columns of a sheet. Band columns
// missing from the sheet are skipped, matching how partially migrated
// reference workbooks are handled.
func NewCoMAPGrid(t *Table, name string, bands []FICOBand) *CoMAPGrid {
	g := &CoMAPGrid{Name: name, Bands: bands, minima: make(map[string][]int)}
	for _, band := range bands {
		col, ok := t.Col(band.Label)
		if !ok {
			continue
		}
		for _, row := range t.Rows {
			if col >= len(row) {
				continue
			}
			program := strings.TrimSpace(row[col])
			if program == "" {
				continue
			}
			g.minima[program] = append(g.minima[program], band.Min)
		}
	}
	for program := range g.minima {
		sort.Ints(g.minima[program])
	}
	return g
}

// Contains reports whether the program appears in any band
func (g *CoMAPGrid) Contains(program string) bool {
	_, ok := g.minima[program]
	return ok
}

// Allows reports whether some band lists the program with a minimum
// the FICO meets
func (g *CoMAPGrid) Allows(program string, fico int) bool {
	for _, min := range g.minima[program] {
		if fico >= min {
			return true
		}
	}
	return false
}

// CoMAPGeneration is the ordered grid list in force after Cutover
// (zero Cutover = base generation). Later grids are fallbacks.
type CoMAPGeneration struct {
	Cutover time.Time
	Grids   []*CoMAPGrid
}

// CoMAPSet holds a channel's generations in ascending cutover order
type CoMAPSet struct {
	Channel     string
	Generations []CoMAPGeneration
}

// Select returns the generation in force for a submit date: the last
// generation whose cutover the date is strictly after. A zero submit
// date falls back to the base generation.
func (s *CoMAPSet) Select(submit time.Time) CoMAPGeneration {
	selected := s.Generations[0]
	if submit.IsZero() {
		return selected
	}
	for _, gen := range s.Generations[1:] {
		if submit.After(gen.Cutover) {
			selected = gen
		}
	}
	return selected
}

// Evaluate checks one loan against the generation its submit date
// selects. present reports whether any grid of that generation lists
// the program at all (Notes treats unknown programs as out of scope
// rather than failures).
func (s *CoMAPSet) Evaluate(program string, fico int, submit time.Time) (allowed, present bool) {
	gen := s.Select(submit)
	for _, grid := range gen.Grids {
		if grid.Contains(program) {
			present = true
		}
		if grid.Allows(program, fico) {
			return true, true
		}
	}
	return false, present
}
