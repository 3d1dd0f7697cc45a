package classifier

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	commandWords = []string{"학년변경", "학년/반"}

	bareNumbers = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*$`)
	gradeClass  = regexp.MustCompile(`^\s*(\d+)\s*학년\s*(\d+)\s*반\s*(?:입니다|이에요|예요)?[.!]?\s*$`)

	ErrMissingNumbers = errors.New("grade and class are required")
)

// Registration is a parsed "set my grade/class" utterance. Err is non-nil when
// the utterance is a registration but the numbers cannot be used.
type Registration struct {
	Grade       int
	ClassNumber int
	Err         error
}

// ParseRegistration reports whether text asks to register or change the user's
// grade and class. Accepted forms:
//
//	학년변경 2 8   학년/반 2 8   학년반 2 8   2 8   2학년 8반
func ParseRegistration(text string) (Registration, bool) {
	t := strings.TrimSpace(strings.ReplaceAll(text, "학년반", "학년/반"))

	for _, word := range commandWords {
		if !strings.HasPrefix(t, word) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(t, word))
		if m := gradeClass.FindStringSubmatch(rest); m != nil {
			return newRegistration(m[1], m[2]), true
		}
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			return Registration{Err: ErrMissingNumbers}, true
		}
		return newRegistration(fields[0], fields[1]), true
	}

	if m := bareNumbers.FindStringSubmatch(t); m != nil {
		return newRegistration(m[1], m[2]), true
	}
	if m := gradeClass.FindStringSubmatch(t); m != nil {
		return newRegistration(m[1], m[2]), true
	}
	return Registration{}, false
}

func newRegistration(grade, classNumber string) Registration {
	g, err := positiveInt(grade)
	if err != nil {
		return Registration{Err: fmt.Errorf("grade: %w", err)}
	}
	c, err := positiveInt(classNumber)
	if err != nil {
		return Registration{Err: fmt.Errorf("class: %w", err)}
	}
	return Registration{Grade: g, ClassNumber: c}
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
