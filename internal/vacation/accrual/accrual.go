// Package accrual computes cumulative vacation entitlement from years of service.
package accrual

import (
	"fmt"
	"math"
	"strings"
	"time"

	e "github.com/gartstein/vacation/internal/vacation/errors"
)

// DateLayout is the canonical textual form of an anniversary date.
const DateLayout = "2006/01/02"

// parseLayout also accepts single-digit months and days.
const parseLayout = "2006/1/2"

const daysPerYear = 365.25

// Rate returns the annual accrual rate for the given years of service.
// [2,3) and [5,6) fall through to the top rate.
func Rate(years float64) int {
	switch {
	case years < 2:
		return 5
	case years >= 3 && years < 5:
		return 10
	case years >= 6 && years < 9:
		return 15
	default:
		return 20
	}
}

// ForYears returns the entitlement for a fractional number of years,
// truncated toward zero.
func ForYears(years float64) int {
	return int(years * float64(Rate(years)))
}

// YearsOfService returns the whole days elapsed between anniversary and asOf
// divided by 365.25. It is negative for a future anniversary. Days are
// counted on wall-clock time so a daylight saving shift never drops one.
func YearsOfService(anniversary, asOf time.Time) float64 {
	days := math.Floor(wallClock(asOf).Sub(wallClock(anniversary)).Hours() / 24)
	return days / daysPerYear
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Entitlement returns the cumulative number of days earned as of asOf.
// The result grows with asOf, so callers must not cache it.
func Entitlement(anniversary, asOf time.Time) int {
	return ForYears(YearsOfService(anniversary, asOf))
}

// ParseAnniversary parses a YYYY/MM/DD date in loc.
func ParseAnniversary(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(parseLayout, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", e.ErrInvalidDateFormat, text)
	}
	return t, nil
}

// FormatAnniversary renders t in the canonical form.
func FormatAnniversary(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeSeparators rewrites legacy dash-separated dates to the slash form.
func NormalizeSeparators(text string) string {
	return strings.ReplaceAll(text, "-", "/")
}
