package provider

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/xaenox/school-bot/internal/dateparse"
)

const (
	DefaultKoreaChartsURL = "https://school.koreacharts.com"

	noMealTable   = "급식 정보를 찾을 수 없습니다."
	noMealForDate = "해당 날짜의 급식 정보가 없습니다."
)

var (
	cellFullDate  = regexp.MustCompile(`(\d{4})[./-](\d{1,2})[./-](\d{1,2})`)
	cellShortDate = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})`)
	menuSplit     = regexp.MustCompile(`[\n;]`)
)

// KoreaChartsMeal scrapes the monthly meal table of school.koreacharts.com.
// The page lists one row per school day: date | weekday | menu | allergens.
type KoreaChartsMeal struct {
	baseURL    string
	schoolCode string
	fetcher    *Fetcher
}

func NewKoreaChartsMeal(baseURL, schoolCode string, fetcher *Fetcher) *KoreaChartsMeal {
	if baseURL == "" {
		baseURL = DefaultKoreaChartsURL
	}
	return &KoreaChartsMeal{
		baseURL:    strings.TrimRight(baseURL, "/"),
		schoolCode: schoolCode,
		fetcher:    fetcher,
	}
}

func (m *KoreaChartsMeal) Meal(ctx context.Context, date time.Time) Result {
	pageURL := fmt.Sprintf("%s/school/meals/%s/%s", m.baseURL, m.schoolCode, date.Format("200601"))
	doc, err := m.fetcher.Document(ctx, pageURL)
	if err != nil {
		return Failure("급식", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return OK(noMealTable)
	}

	menu, ok := monthlyMenus(table, date)[dateparse.ISO(date)]
	if !ok {
		return OK(noMealForDate)
	}
	lines := menuLines(menu)
	if len(lines) == 0 {
		return OK(noMealForDate)
	}
	return OK(lines...)
}

// monthlyMenus maps ISO dates to raw menu text. Rows whose date cell cannot be
// read are skipped; short dates take the year of target.
func monthlyMenus(table *goquery.Selection, target time.Time) map[string]string {
	menus := make(map[string]string)
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cells := tr.Find("td, th")
		if cells.Length() < 3 {
			return
		}
		dateText := strings.Join(textLines(cells.Eq(0)), " ")
		day, ok := cellDate(dateText, target)
		if !ok {
			return
		}
		menu := strings.Join(textLines(cells.Eq(2)), "\n")
		menus[dateparse.ISO(day)] = strings.ReplaceAll(menu, `\n`, "\n")
	})
	return menus
}

func cellDate(text string, target time.Time) (time.Time, bool) {
	if m := cellFullDate.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return dateparse.Date(y, mo, d, target.Location())
	}
	if m := cellShortDate.FindStringSubmatch(text); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		return dateparse.Date(target.Year(), mo, d, target.Location())
	}
	return time.Time{}, false
}

func menuLines(menu string) []string {
	var lines []string
	for _, part := range menuSplit.Split(menu, -1) {
		if s := strings.Trim(part, " ・-·•"); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}
