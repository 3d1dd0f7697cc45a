package provider

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xaenox/school-bot/internal/dateparse"
)

const DefaultSchoolInfoURL = "https://www.schoolinfo.go.kr/ei/ss/Pneiss_b01_s0.do"

// "09. 03 화 - 전국연합학력평가"
var scheduleItem = regexp.MustCompile(`(\d{2})\.\s*(\d{2})\s*[월화수목금토일]\s*-\s*([^\n\r]+)`)

// SchoolInfoCalendar reads the school schedule published on schoolinfo.go.kr.
// The page has no month filter, so every "MM. DD 요일 - 행사" entry in its text is
// matched and filtered by range. Entries carry no year; they are placed in the
// range's year(s).
type SchoolInfoCalendar struct {
	baseURL  string
	schoolID string
	fetcher  *Fetcher
}

func NewSchoolInfoCalendar(baseURL, schoolID string, fetcher *Fetcher) *SchoolInfoCalendar {
	if baseURL == "" {
		baseURL = DefaultSchoolInfoURL
	}
	return &SchoolInfoCalendar{baseURL: baseURL, schoolID: schoolID, fetcher: fetcher}
}

func (c *SchoolInfoCalendar) Events(ctx context.Context, from, to time.Time) Result {
	pageURL := c.baseURL + "?" + url.Values{"SHL_IDF_CD": {c.schoolID}}.Encode()
	doc, err := c.fetcher.Document(ctx, pageURL)
	if err != nil {
		return Failure("학사일정", err)
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	return OK(scheduleItems(strings.Join(textLines(body), "\n"), from, to)...)
}

func scheduleItems(text string, from, to time.Time) []string {
	from, to = dateparse.Day(from), dateparse.Day(to)
	seen := make(map[string]bool)
	var items []string
	for _, m := range scheduleItem.FindAllStringSubmatch(text, -1) {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		d, ok := dateInRange(month, day, from, to)
		if !ok {
			continue
		}
		item := dateparse.ShortLabel(d) + " - " + strings.TrimSpace(m[3])
		if seen[item] {
			continue
		}
		seen[item] = true
		items = append(items, item)
	}
	return items
}

// dateInRange places month/day in the year of from, or of to when the range
// crosses a new year.
func dateInRange(month, day int, from, to time.Time) (time.Time, bool) {
	for year := from.Year(); year <= to.Year(); year++ {
		d, ok := dateparse.Date(year, month, day, from.Location())
		if ok && !d.Before(from) && !d.After(to) {
			return d, true
		}
	}
	return time.Time{}, false
}
