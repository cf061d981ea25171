package contracts

import "time"

// Channel labels for the three origination tracks
// 원천 데이터에서는 lookup merge 이후 소문자 값으로 유지됨
const (
	ChannelPrime = "prime"
	ChannelSFY   = "sfy"
)

// ApplicationTypeNote marks loans belonging to the notes channel
const ApplicationTypeNote = "HD NOTE"

// Loan is the canonical enriched loan row consumed by all rule modules.
// 모든 rule module의 입력 스키마 (SSOT)
type Loan struct {
	SellerLoanNumber string
	Channel          string // prime | sfy (lowercase, from program lookup)
	Program          string
	ApplicationType  string
	SubmitDate       time.Time // zero when the source value did not parse

	// Financial attributes
	Balance        float64 // original balance
	PurchasePrice  float64
	LenderPricePct float64 // whole percentage, e.g. 99.00
	ModeledPrice   float64 // fraction, e.g. 0.99
	FICO           int
	DTI            float64 // fraction, e.g. 0.42
	PTI            float64
	Income         float64 // annual
	StampFee       float64
	Term           int
	PromoTerm      int
	APR            float64
	DealerFee      float64 // decimal-normalized (source /100)
	State          string

	// Program lookup enrichment (null-equivalent zero values when unmatched)
	Type        string // standard | hybrid | ninp | epni | wpdi | wpdi_bd | standard_bd
	NewPrograms bool

	// Purchase metadata stamped during enrichment
	PurchaseDate time.Time
	TargetYield  float64

	// Compliance flags (defaults pending rule evaluation)
	Repurchase            bool
	ExcessAsset           bool
	BorrowingBaseEligible bool

	// Rule evaluation state
	PurchasePriceCheck bool

	// PortfolioContext marks loans carried in for portfolio-level checks
	// only (previously purchased, not part of the new purchase candidates)
	PortfolioContext bool
}

// IsNote reports whether the loan belongs to the notes channel
func (l *Loan) IsNote() bool {
	return l.ApplicationType == ApplicationTypeNote
}

// NetBalance returns the balance net of any stamp fee
func (l *Loan) NetBalance() float64 {
	return l.Balance - l.StampFee
}

// MonthlyIncome returns annual income divided over twelve months
func (l *Loan) MonthlyIncome() float64 {
	return l.Income / 12
}

// TapeLoan is a normalized daily loan-tape row
type TapeLoan struct {
	AccountNumber    int64
	SellerLoanNumber string
	LoanGroup        string
	StatusCodes      string
	Channel          string // SFY | PRIME tag derived from the group code
	OpenDate         time.Time
	MaturityDate     time.Time
	Repurchased      bool
}

// ProgramInfo is one row of the reference loan-program lookup
type ProgramInfo struct {
	Program     string
	Channel     string // lowercase platform value carried into Loan.Channel
	Type        string
	NewPrograms bool
}
