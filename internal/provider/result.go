// Package provider fetches timetable, meal and calendar content for the bot.
//
// Providers never return errors to their callers. A failed lookup is folded into
// a Result whose lines describe the failure in user-facing text, so the router
// can reply the same way whether the lookup worked or not.
package provider

import (
	"fmt"
	"strings"
)

// Result is either content lines or a failure description.
type Result struct {
	Lines  []string
	Failed bool
	// Cause is the underlying error of a failed lookup, for logging.
	Cause error
}

// OK wraps successful content. Zero lines means "nothing found".
func OK(lines ...string) Result {
	return Result{Lines: lines}
}

// Failure describes a lookup of what that could not be completed.
func Failure(what string, err error) Result {
	return Result{
		Lines:  []string{fmt.Sprintf("%s 불러오기 실패: %v", what, err)},
		Failed: true,
		Cause:  err,
	}
}

// Text joins the lines with newlines.
func (r Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Empty reports a successful lookup that found nothing.
func (r Result) Empty() bool {
	return !r.Failed && len(r.Lines) == 0
}
