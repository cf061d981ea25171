package contracts

import "time"

// Exception severity levels
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Exception types emitted by the rule modules
const (
	ExceptionPurchasePrice     = "purchase_price"
	ExceptionUnderwritingSFY   = "underwriting_sfy"
	ExceptionUnderwritingPrime = "underwriting_prime"
	ExceptionUnderwritingNotes = "underwriting_notes"
	ExceptionCoMAPPrime        = "comap_prime"
	ExceptionCoMAPSFY          = "comap_sfy"
	ExceptionCoMAPNotes        = "comap_notes"
)

// Exception categories
const (
	CategoryMismatch   = "mismatch"
	CategoryFlagged    = "flagged"
	CategoryNotInCoMAP = "not_in_comap"

	// CategoryMinIncome marks relaxed-retry underwriting passes.
	// Soft — never maps to a rejection code.
	CategoryMinIncome = "min_income"
)

// LoanException records one rule violation for one loan.
// 생성 이후 불변 — 감사 대상이므로 절대 수정하지 않음
type LoanException struct {
	ID               int64
	RunID            int64
	SellerLoanNumber string
	Type             string
	Category         string
	Severity         string
	Message          string
	RejectionCode    string // canonical code, empty when the type has no mapping
	LoanData         *Loan  // snapshot at evaluation time
	CreatedAt        time.Time
}

// Disposition values for LoanFact
const (
	DispositionToPurchase = "to_purchase"
	DispositionProjected  = "projected"
	DispositionRejected   = "rejected"
)

// LoanFact is the persistent per-loan outcome of a run.
// Invariant: Disposition == rejected iff RejectionCode != ""
type LoanFact struct {
	ID               int64
	RunID            int64
	SellerLoanNumber string

	Channel         string
	Program         string
	ApplicationType string
	Balance         float64
	PurchasePrice   float64
	LenderPricePct  float64
	FICO            int
	DTI             float64
	PTI             float64
	Term            int
	APR             float64
	State           string

	PurchasePriceCheck bool
	Disposition        string
	RejectionCode      string
	LoanData           *Loan
	CreatedAt          time.Time
}

// EligibilityCheck is the outcome of one portfolio eligibility check
type EligibilityCheck struct {
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`

	// Distribution carries informational breakdowns (e.g. state shares);
	// set only for informational checks, Value is 0 in that case.
	Distribution map[string]float64 `json:"distribution,omitempty"`
}

// EligibilityResult maps check name → outcome for one channel
type EligibilityResult map[string]EligibilityCheck

// Passed counts passing checks
func (r EligibilityResult) Passed() int {
	n := 0
	for _, c := range r {
		if c.Pass {
			n++
		}
	}
	return n
}

// Failed counts failing checks
func (r EligibilityResult) Failed() int {
	return len(r) - r.Passed()
}
