package refdata

import "time"

// Date helpers for purchase scheduling and input file naming.
// 파일명 규약: tape는 전일(MM-DD-YYYY), FX 추출은 전월 말일

// NextTuesday returns the next Tuesday after from (7 days away when
// from itself is a Tuesday), normalized to midnight.
func NextTuesday(from time.Time) time.Time {
	mw := (int(from.Weekday()) + 6) % 7 // Monday-based
	days := (1 - mw + 7) % 7
	if days == 0 {
		days = 7
	}
	next := from.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())
}

// TapeDate formats the daily tape suffix (MM-DD-YYYY) for the day
// before the as-of date.
func TapeDate(asOf time.Time) string {
	return asOf.AddDate(0, 0, -1).Format("01-02-2006")
}

// LastMonthEnd formats the last day of the month before asOf as
// YYYY_MMM_DD (zero-padded month to three digits, legacy convention).
func LastMonthEnd(asOf time.Time) string {
	firstOfMonth := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	last := firstOfMonth.AddDate(0, 0, -1)
	return last.Format("2006") + "_0" + last.Format("01") + "_" + last.Format("02")
}

// ParseDateLenient parses the date formats seen across the input
// extracts. Invalid or empty values yield a zero time instead of an
// error — date columns never fail a whole batch.
func ParseDateLenient(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"01/02/2006",
		"1/2/2006",
		"01-02-2006",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
