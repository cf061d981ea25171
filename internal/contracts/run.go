package contracts

import "time"

// Pipeline Phase 정의 (SSOT)
// 모든 로그, run record, DB row에서 이 상수를 사용해야 함
//
// 실행 흐름:
//   ingest_reference → ingest_inputs → normalize → underwriting → comap →
//   eligibility → export → persist

// Phase represents a pipeline execution phase
type Phase string

const (
	// PhaseIngestReference 기준 데이터 적재 (master sheets, grids)
	PhaseIngestReference Phase = "ingest_reference"

	// PhaseIngestInputs 일별 입력 파일 적재 (tape, channel submissions)
	PhaseIngestInputs Phase = "ingest_inputs"

	// PhaseNormalize 정규화 + 보강 (canonical schema, enrichment)
	PhaseNormalize Phase = "normalize"

	// PhaseUnderwriting 심사 그리드 검증
	PhaseUnderwriting Phase = "underwriting"

	// PhaseCoMAP CoMAP FICO/program 밴드 검증
	PhaseCoMAP Phase = "comap"

	// PhaseEligibility 포트폴리오 적격성 비율 검사
	PhaseEligibility Phase = "eligibility"

	// PhaseExport 예외/적격성 리포트 출력
	PhaseExport Phase = "export"

	// PhasePersist run 요약 + exception/fact 영속화
	PhasePersist Phase = "persist"
)

// String returns the phase name
func (p Phase) String() string {
	return string(p)
}

// AllPhases returns all pipeline phases in execution order
func AllPhases() []Phase {
	return []Phase{
		PhaseIngestReference,
		PhaseIngestInputs,
		PhaseNormalize,
		PhaseUnderwriting,
		PhaseCoMAP,
		PhaseEligibility,
		PhaseExport,
		PhasePersist,
	}
}

// RunStatus represents the pipeline run state machine
// PENDING → RUNNING → {COMPLETED, FAILED, CANCELLED}
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether the status is a terminal state
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled:
		return true
	}
	return false
}

// RunContext holds the immutable per-run identity and parameters
// 실행 요청마다 한 번 생성되며 caller가 소유함
type RunContext struct {
	RunID        string
	TenantID     int64 // 0 = no tenant scope
	PurchaseDate time.Time
	AsOfDate     time.Time
	TargetYield  float64
	InputPath    string
	OutputPrefix string
}

// PipelineRun is the persistent record of one pipeline execution
type PipelineRun struct {
	ID           int64
	RunID        string
	Status       RunStatus
	TenantID     int64
	PurchaseDate time.Time
	Weekday      int // 0=Monday .. 6=Sunday, derived from purchase date
	WeekdayName  string
	TargetYield  float64
	InputPath    string
	OutputPrefix string

	// Last pipeline phase reached (diagnoses stuck runs: data vs code)
	LastPhase string

	// Results summary
	TotalLoans     int
	TotalBalance   float64
	ExceptionCount int
	Errors         []string

	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// WeekdayNames maps the Monday-based weekday index to its name
var WeekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// MondayWeekday returns the Monday-based weekday index (0=Monday .. 6=Sunday)
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
