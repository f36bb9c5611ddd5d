// Package schedule derives watering dates from a last-watered date and a
// free-text watering frequency such as "every 3 days".
//
// All functions are pure and safe for concurrent use.
package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Unknown is returned by ComputeNextWateringDate when no date can be derived.
const Unknown = ""

// DateFormatError reports a date that is not a valid calendar date.
type DateFormatError struct {
	Input string
	Err   error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Input)
}

func (e *DateFormatError) Unwrap() error { return e.Err }

// ExtractIntervalDays returns the first run of decimal digits found in
// frequency as a day count. ok is false when there is no digit run or the
// number is not positive. Signs and trailing ranges are ignored, so
// "-3 days" and "3-5 days" both yield 3.
func ExtractIntervalDays(frequency string) (days int, ok bool) {
	start := strings.IndexFunc(frequency, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(frequency) && isDigit(rune(frequency[end])) {
		end++
	}

	n, err := strconv.ParseInt(frequency[start:end], 10, 64)
	if err != nil || n <= 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// ParseDate parses a calendar date. RFC 3339 timestamps are accepted and
// truncated to their calendar date. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &DateFormatError{Input: s}
	}

	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t, nil
	}
	if ts, tsErr := time.Parse(time.RFC3339, s); tsErr == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, &DateFormatError{Input: s, Err: err}
}

// FormatDate renders t's calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays adds n calendar days to the date part of t. Wall-clock time and
// zone offsets are discarded so DST transitions never shift the result.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, time.UTC)
}

// maxYear bounds derived dates to what DateLayout can render.
const maxYear = 9999

// NextWateringDate returns last plus the interval parsed from frequency.
// A zero last means the plant was never watered.
func NextWateringDate(last time.Time, frequency string) (time.Time, bool) {
	if last.IsZero() {
		return time.Time{}, false
	}
	return addInterval(last, frequency)
}

func addInterval(last time.Time, frequency string) (time.Time, bool) {
	days, ok := ExtractIntervalDays(frequency)
	if !ok {
		return time.Time{}, false
	}
	next := AddDays(last, days)
	if next.Year() > maxYear {
		return time.Time{}, false
	}
	return next, true
}

// ComputeNextWateringDate returns the next watering date as YYYY-MM-DD, or
// Unknown when lastWatered is not a valid date, frequency carries no
// positive day count, or the result falls past year 9999.
func ComputeNextWateringDate(lastWatered, frequency string) string {
	last, err := ParseDate(lastWatered)
	if err != nil {
		return Unknown
	}
	next, ok := addInterval(last, frequency)
	if !ok {
		return Unknown
	}
	return FormatDate(next)
}

// NormalizeDateForSubmission returns date in canonical YYYY-MM-DD form.
func NormalizeDateForSubmission(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t), nil
}

// Today returns the current local calendar date as midnight UTC, the same
// representation ParseDate produces.
func Today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
