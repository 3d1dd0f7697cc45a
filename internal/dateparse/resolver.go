// Package dateparse turns Korean date expressions into calendar dates.
//
// All dates are represented as time.Time values at midnight in the location of
// the reference time; no timezone conversion happens here.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	tokenToday    = "오늘"
	tokenTomorrow = "내일"
)

var (
	monthDayKorean = regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
	// A bare M/D must not be part of a full Y-M-D date; trailing punctuation is fine.
	monthDayNumeric = regexp.MustCompile(`(?:^|[^\d./-])(\d{1,2})[./-](\d{1,2})(?:$|[^\d./-]|[./-](?:$|\D))`)
	yearMonthDay    = regexp.MustCompile(`(?:^|\D)(20\d{2})[./-](\d{1,2})[./-](\d{1,2})(?:$|\D)`)
)

// Resolve extracts a date from text. Rules are checked in a fixed order and the
// first matching rule decides the result:
//
//	오늘             -> ref
//	내일             -> ref + 1 day
//	9월 3일          -> ref's year
//	9/3, 09.03, 9-3  -> ref's year
//	2025-09-03       -> explicit year (2000 or later)
//
// ok is false when nothing matched or the matched month/day does not exist.
func Resolve(text string, ref time.Time) (date time.Time, ok bool) {
	t := strings.TrimSpace(text)
	ref = Day(ref)

	if strings.Contains(t, tokenToday) {
		return ref, true
	}
	if strings.Contains(t, tokenTomorrow) {
		return ref.AddDate(0, 0, 1), true
	}
	if m := monthDayKorean.FindStringSubmatch(t); m != nil {
		return build(ref.Year(), m[1], m[2], ref.Location())
	}
	if m := monthDayNumeric.FindStringSubmatch(t); m != nil {
		return build(ref.Year(), m[1], m[2], ref.Location())
	}
	if m := yearMonthDay.FindStringSubmatch(t); m != nil {
		year, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		return build(year, m[2], m[3], ref.Location())
	}
	return time.Time{}, false
}

// ResolveOrDefault is Resolve falling back to the day of ref.
func ResolveOrDefault(text string, ref time.Time) time.Time {
	if d, ok := Resolve(text, ref); ok {
		return d
	}
	return Day(ref)
}

func build(year int, month, day string, loc *time.Location) (time.Time, bool) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	return Date(year, m, d, loc)
}

// Date returns the given calendar day, rejecting values time.Date would normalise
// (for example 9/31 becoming 10/1).
func Date(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
