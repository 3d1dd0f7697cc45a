package provider

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xaenox/school-bot/internal/dateparse"
)

const (
	noTimetableWeekend = "주말에는 시간표가 없습니다."
	noTimetableClass   = "해당 학년/반 시간표가 없습니다."
)

// periodLines renders subjects as "1교시: 국어" lines.
func periodLines(subjects []string) []string {
	lines := make([]string, 0, len(subjects))
	for i, subject := range subjects {
		s := strings.TrimSpace(subject)
		if s == "" || s == "None" {
			s = "-"
		}
		lines = append(lines, fmt.Sprintf("%d교시: %s", i+1, s))
	}
	return lines
}

// StaticTimetable serves a timetable maintained by hand in a YAML file:
//
//	weeks:
//	  - "2-8":            # this week, key is "<grade>-<class>"
//	      - [국어, 수학]   # Monday
//	      - [영어, 과학]   # Tuesday ...
//	  - "2-8": ...        # next week (optional)
//
// The week is chosen by the Monday-to-Monday offset between the clock and the
// target date, clamped to [0, 1] and to the number of weeks in the file.
type StaticTimetable struct {
	weeks []map[string][][]string
	clock func() time.Time
}

type staticTimetableFile struct {
	Weeks []map[string][][]string `yaml:"weeks"`
}

// LoadStaticTimetable reads a timetable file from disk.
func LoadStaticTimetable(path string, clock func() time.Time) (*StaticTimetable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timetable file: %w", err)
	}
	return ParseStaticTimetable(data, clock)
}

// ParseStaticTimetable decodes timetable YAML.
func ParseStaticTimetable(data []byte, clock func() time.Time) (*StaticTimetable, error) {
	var file staticTimetableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse timetable yaml: %w", err)
	}
	if len(file.Weeks) == 0 {
		return nil, fmt.Errorf("timetable file has no weeks")
	}
	if clock == nil {
		clock = time.Now
	}
	return &StaticTimetable{weeks: file.Weeks, clock: clock}, nil
}

func (t *StaticTimetable) Timetable(ctx context.Context, grade, classNumber int, date time.Time) Result {
	if dateparse.IsWeekend(date) {
		return OK(noTimetableWeekend)
	}

	week := dateparse.WeekOffset(t.clock(), date)
	week = max(0, min(1, week))
	if week >= len(t.weeks) {
		week = len(t.weeks) - 1
	}

	days := t.weeks[week][fmt.Sprintf("%d-%d", grade, classNumber)]
	weekday := int(date.Weekday()) - 1 // Monday is index 0
	if weekday >= len(days) || len(days[weekday]) == 0 {
		return OK(noTimetableClass)
	}
	return OK(periodLines(days[weekday])...)
}
