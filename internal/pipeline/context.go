// Package pipeline orchestrates purchase runs: run identity, the
// phase-tracked executor, exception aggregation and persistence.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/loancore/internal/contracts"
	"github.com/wonny/loancore/internal/refdata"
)

// DefaultTargetYield is the purchase yield target stamped on loans
// when the caller does not override it
const DefaultTargetYield = 8.05

// RunParams are the caller-supplied knobs for one run; zero values
// select the defaults (next Tuesday, DefaultTargetYield)
type RunParams struct {
	TenantID     int64
	PurchaseDate time.Time
	TargetYield  float64

	// InputPath overrides the input folder, e.g. to replay a run from
	// an archived snapshot. Empty selects the standard required-files
	// folder.
	InputPath string
}

// NewRunContext mints the immutable per-run identity.
// run_id 형식: run_<12 hex>_<yyyymmdd_hhmmss>
func NewRunContext(params RunParams, now time.Time) contracts.RunContext {
	purchaseDate := params.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = refdata.NextTuesday(now)
	}
	targetYield := params.TargetYield
	if targetYield == 0 {
		targetYield = DefaultTargetYield
	}
	inputPath := params.InputPath
	if inputPath == "" {
		inputPath = refdata.RequiredFilesDir
	}

	hex := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	runID := fmt.Sprintf("run_%s_%s", hex, now.Format("20060102_150405"))

	return contracts.RunContext{
		RunID:        runID,
		TenantID:     params.TenantID,
		PurchaseDate: purchaseDate,
		AsOfDate:     now,
		TargetYield:  targetYield,
		InputPath:    inputPath,
		OutputPrefix: "runs/" + runID,
	}
}

// NewRunRecord builds the persistent PENDING record for a context
func NewRunRecord(rc contracts.RunContext) *contracts.PipelineRun {
	weekday := contracts.MondayWeekday(rc.PurchaseDate)
	return &contracts.PipelineRun{
		RunID:        rc.RunID,
		Status:       contracts.RunPending,
		TenantID:     rc.TenantID,
		PurchaseDate: rc.PurchaseDate,
		Weekday:      weekday,
		WeekdayName:  contracts.WeekdayNames[weekday],
		TargetYield:  rc.TargetYield,
		InputPath:    rc.InputPath,
		OutputPrefix: rc.OutputPrefix,
	}
}
