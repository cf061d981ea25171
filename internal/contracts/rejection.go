package contracts

// Canonical rejection codes. Stable identifiers for why a loan was
// rejected, independent of the rule-internal type/category strings.
// ⭐ SSOT: exception 저장과 disposition 판정이 모두 이 매핑을 사용
const (
	RejectionPurchasePriceMismatch = "criteria.purchase_price_mismatch"
	RejectionUnderwritingSFY       = "criteria.underwriting_sfy"
	RejectionUnderwritingPrime     = "criteria.underwriting_prime"
	RejectionUnderwritingNotes     = "criteria.underwriting_notes"
	RejectionCoMAPPrime            = "criteria.comap_prime"
	RejectionCoMAPSFY              = "criteria.comap_sfy"
	RejectionCoMAPNotes            = "criteria.comap_notes"
)

type rejectionKey struct {
	exceptionType string
	category      string
}

// rejectionCriteria maps (exception type, category) → canonical code
var rejectionCriteria = map[rejectionKey]string{
	{ExceptionPurchasePrice, CategoryMismatch}:    RejectionPurchasePriceMismatch,
	{ExceptionUnderwritingSFY, CategoryFlagged}:   RejectionUnderwritingSFY,
	{ExceptionUnderwritingPrime, CategoryFlagged}: RejectionUnderwritingPrime,
	{ExceptionUnderwritingNotes, CategoryFlagged}: RejectionUnderwritingNotes,
	{ExceptionCoMAPPrime, CategoryNotInCoMAP}:     RejectionCoMAPPrime,
	{ExceptionCoMAPSFY, CategoryNotInCoMAP}:       RejectionCoMAPSFY,
	{ExceptionCoMAPNotes, CategoryNotInCoMAP}:     RejectionCoMAPNotes,
}

// RejectionCode returns the canonical rejection code for an exception
// type + category, or "" when the pair has no mapping (e.g. soft
// informational exceptions that never reject a loan).
func RejectionCode(exceptionType, category string) string {
	if code, ok := rejectionCriteria[rejectionKey{exceptionType, category}]; ok {
		return code
	}
	return rejectionCriteria[rejectionKey{exceptionType, ""}]
}

// RulePriority fixes the disposition order: a loan's rejection code is
// frozen at its earliest failure in this order. Reordering rule modules
// must never silently change dispositions, so the aggregator consumes
// this list instead of relying on iteration order.
var RulePriority = []string{
	ExceptionPurchasePrice,
	ExceptionUnderwritingSFY,
	ExceptionUnderwritingPrime,
	ExceptionUnderwritingNotes,
	ExceptionCoMAPPrime,
	ExceptionCoMAPSFY,
	ExceptionCoMAPNotes,
}
