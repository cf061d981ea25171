package refdata

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/storage"
)

// Fixed reference artifacts inside the input folder
const (
	fileMasterSheet      = "MASTER_SHEET.xlsx"
	fileMasterSheetNotes = "MASTER_SHEET - Notes.xlsx"
	fileCurrentAssets    = "current_assets.csv"
	fileGridWorkbook     = "Underwriting_Grids_COMAP.xlsx"
)

// Sheets of the grid workbook
const (
	sheetUnderwritingSFY        = "SFY"
	sheetUnderwritingPrime      = "Prime"
	sheetUnderwritingSFYNotes   = "SFY - Notes"
	sheetUnderwritingPrimeNotes = "Prime - Notes"
	sheetCoMAPSFY               = "SFY COMAP"
	sheetCoMAPSFY2              = "SFY COMAP2"
	sheetCoMAPPrime             = "Prime CoMAP"
	sheetCoMAPNotes             = "Notes CoMAP"
)

// ReferenceData is everything the rule modules need that is not a
// dated daily input. 한 run 시작 시 한 번 로드됨 (phase ingest_reference)
type ReferenceData struct {
	// Programs merges the master lookup with its notes variant
	// (notes programs already carry the "notes" suffix).
	Programs []contracts.ProgramInfo

	// ExistingAssets is the current portfolio (portfolio-context rows)
	ExistingAssets []contracts.Loan

	UnderwritingSFY        *UnderwritingGrid
	UnderwritingPrime      *UnderwritingGrid
	UnderwritingSFYNotes   *UnderwritingGrid
	UnderwritingPrimeNotes *UnderwritingGrid

	CoMAPPrime *CoMAPSet
	CoMAPSFY   *CoMAPSet
	CoMAPNotes *CoMAPSet
}

// LoadReference reads and indexes all reference artifacts under dir
func LoadReference(ctx context.Context, in storage.Backend, dir string) (*ReferenceData, error) {
	ref := &ReferenceData{}

	master, err := readSheetOne(ctx, in, dir, fileMasterSheet)
	if err != nil {
		return nil, err
	}
	ref.Programs, err = parsePrograms(master, fileMasterSheet, false)
	if err != nil {
		return nil, err
	}

	notes, err := readSheetOne(ctx, in, dir, fileMasterSheetNotes)
	if err != nil {
		return nil, err
	}
	notePrograms, err := parsePrograms(notes, fileMasterSheetNotes, true)
	if err != nil {
		return nil, err
	}
	ref.Programs = append(ref.Programs, notePrograms...)

	assets, err := readFile(ctx, in, dir, fileCurrentAssets)
	if err != nil {
		return nil, err
	}
	assetTable, err := ReadCSVTable(assets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileCurrentAssets, err)
	}
	ref.ExistingAssets, err = parseCurrentAssets(assetTable)
	if err != nil {
		return nil, err
	}

	workbook, err := readFile(ctx, in, dir, fileGridWorkbook)
	if err != nil {
		return nil, err
	}
	if err := ref.loadGrids(workbook); err != nil {
		return nil, err
	}
	if err := ref.loadCoMAP(workbook); err != nil {
		return nil, err
	}

	return ref, nil
}

func (ref *ReferenceData) loadGrids(workbook []byte) error {
	sheets := []struct {
		name string
		dst  **UnderwritingGrid
	}{
		{sheetUnderwritingSFY, &ref.UnderwritingSFY},
		{sheetUnderwritingPrime, &ref.UnderwritingPrime},
		{sheetUnderwritingSFYNotes, &ref.UnderwritingSFYNotes},
		{sheetUnderwritingPrimeNotes, &ref.UnderwritingPrimeNotes},
	}
	for _, s := range sheets {
		table, err := ReadSheetTable(workbook, s.name)
		if err != nil {
			return err
		}
		grid, err := parseUnderwritingGrid(table, s.name)
		if err != nil {
			return err
		}
		*s.dst = grid
	}
	return nil
}

// loadCoMAP builds the per-channel generation sets. Prime reads one
// sheet under the band tables of each generation; SFY keeps its two
// sheets as an in-generation fallback chain.
func (ref *ReferenceData) loadCoMAP(workbook []byte) error {
	primeSheet, err := ReadSheetTable(workbook, sheetCoMAPPrime)
	if err != nil {
		return err
	}
	sfySheet, err := ReadSheetTable(workbook, sheetCoMAPSFY)
	if err != nil {
		return err
	}
	sfySheet2, err := ReadSheetTable(workbook, sheetCoMAPSFY2)
	if err != nil {
		return err
	}
	notesSheet, err := ReadSheetTable(workbook, sheetCoMAPNotes)
	if err != nil {
		return err
	}

	primeBase := NewCoMAPGrid(primeSheet, sheetCoMAPPrime, PrimeBands)
	primeOct25 := NewCoMAPGrid(primeSheet, sheetCoMAPPrime, PrimeBandsOct25)
	ref.CoMAPPrime = &CoMAPSet{
		Channel: contracts.ChannelPrime,
		Generations: []CoMAPGeneration{
			{Grids: []*CoMAPGrid{primeBase}},
			{Cutover: PrimeNewCutover, Grids: []*CoMAPGrid{primeBase}},
			{Cutover: Oct25Cutover, Grids: []*CoMAPGrid{primeOct25, primeBase}},
		},
	}

	sfyBase := NewCoMAPGrid(sfySheet, sheetCoMAPSFY, SFYBands)
	sfyWide := NewCoMAPGrid(sfySheet2, sheetCoMAPSFY2, SFYBandsWide)
	sfyOct25 := NewCoMAPGrid(sfySheet, sheetCoMAPSFY, SFYBandsOct25)
	ref.CoMAPSFY = &CoMAPSet{
		Channel: contracts.ChannelSFY,
		Generations: []CoMAPGeneration{
			{Grids: []*CoMAPGrid{sfyBase, sfyWide}},
			{Cutover: Oct25Cutover, Grids: []*CoMAPGrid{sfyOct25, sfyWide}},
		},
	}

	ref.CoMAPNotes = &CoMAPSet{
		Channel: "notes",
		Generations: []CoMAPGeneration{
			{Grids: []*CoMAPGrid{NewCoMAPGrid(notesSheet, sheetCoMAPNotes, NotesBands)}},
		},
	}
	return nil
}

func readFile(ctx context.Context, in storage.Backend, dir, name string) ([]byte, error) {
	content, err := in.Read(ctx, path.Join(dir, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &contracts.NotFoundError{Kind: "file", Name: name}
		}
		return nil, err
	}
	return content, nil
}

// readSheetOne reads a single-sheet workbook's first sheet
func readSheetOne(ctx context.Context, in storage.Backend, dir, name string) (*Table, error) {
	content, err := readFile(ctx, in, dir, name)
	if err != nil {
		return nil, err
	}
	table, err := ReadFirstSheetTable(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return table, nil
}
