package dateparse

import (
	"fmt"
	"time"
)

var weekdayNames = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekRange returns Monday and Sunday of the week containing t.
func WeekRange(t time.Time) (start, end time.Time) {
	day := Day(t)
	offset := (int(day.Weekday()) + 6) % 7
	start = day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of t's month.
func MonthRange(t time.Time) (start, end time.Time) {
	day := Day(t)
	start = day.AddDate(0, 0, 1-day.Day())
	return start, start.AddDate(0, 1, -1)
}

// WeekOffset is the number of whole weeks between the week of ref and the week
// of target, counted Monday to Monday.
func WeekOffset(ref, target time.Time) int {
	refMonday, _ := WeekRange(ref)
	targetMonday, _ := WeekRange(target.In(ref.Location()))
	days := int(targetMonday.Sub(refMonday).Round(24*time.Hour) / (24 * time.Hour))
	return days / 7
}

// Weekday returns the one-letter Korean weekday name.
func Weekday(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// ShortLabel formats t as "09/03(수)".
func ShortLabel(t time.Time) string {
	return fmt.Sprintf("%02d/%02d(%s)", int(t.Month()), t.Day(), Weekday(t))
}

// ISO formats t as "2025-09-03".
func ISO(t time.Time) string {
	return t.Format("2006-01-02")
}
