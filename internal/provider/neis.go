package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xaenox/school-bot/internal/dateparse"
)

const (
	DefaultNEISBaseURL = "https://open.neis.go.kr/hub"

	neisOK     = "INFO-000"
	neisNoData = "INFO-200"
)

// NEISClient queries the NEIS education open data API.
type NEISClient struct {
	baseURL    string
	apiKey     string
	officeCode string
	schoolCode string
	fetcher    *Fetcher
}

func NewNEISClient(baseURL, apiKey, officeCode, schoolCode string, fetcher *Fetcher) *NEISClient {
	if baseURL == "" {
		baseURL = DefaultNEISBaseURL
	}
	return &NEISClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		officeCode: officeCode,
		schoolCode: schoolCode,
		fetcher:    fetcher,
	}
}

type neisStatus struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type neisPart struct {
	Head []struct {
		Result *neisStatus `json:"RESULT"`
	} `json:"head"`
	Row json.RawMessage `json:"row"`
}

// query calls service and decodes its rows into out. found is false when NEIS
// answers that there is no data for the query.
func (c *NEISClient) query(ctx context.Context, service string, params url.Values, out any) (found bool, err error) {
	params.Set("Type", "json")
	params.Set("pIndex", "1")
	params.Set("pSize", "100")
	params.Set("ATPT_OFCDC_SC_CODE", c.officeCode)
	params.Set("SD_SCHUL_CODE", c.schoolCode)
	if c.apiKey != "" {
		params.Set("KEY", c.apiKey)
	}

	var envelope map[string]json.RawMessage
	if err := c.fetcher.JSON(ctx, c.baseURL+"/"+service+"?"+params.Encode(), &envelope); err != nil {
		return false, err
	}

	if raw, ok := envelope["RESULT"]; ok {
		var status neisStatus
		if err := json.Unmarshal(raw, &status); err != nil {
			return false, fmt.Errorf("decode neis result: %w", err)
		}
		if status.Code == neisNoData {
			return false, nil
		}
		return false, fmt.Errorf("neis %s: %s", status.Code, status.Message)
	}

	raw, ok := envelope[service]
	if !ok {
		return false, fmt.Errorf("neis response has no %s section", service)
	}
	var parts []neisPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return false, fmt.Errorf("decode neis %s: %w", service, err)
	}
	for _, part := range parts {
		for _, h := range part.Head {
			if h.Result != nil && h.Result.Code != neisOK {
				return false, fmt.Errorf("neis %s: %s", h.Result.Code, h.Result.Message)
			}
		}
		if part.Row != nil {
			if err := json.Unmarshal(part.Row, out); err != nil {
				return false, fmt.Errorf("decode neis rows: %w", err)
			}
			return true, nil
		}
	}
	return false, nil
}

// NEISTimetable reads the high school timetable (hisTimetable) for an exact date,
// so no week offset is involved.
type NEISTimetable struct {
	client *NEISClient
}

func NewNEISTimetable(client *NEISClient) *NEISTimetable {
	return &NEISTimetable{client: client}
}

type neisTimetableRow struct {
	Period  string `json:"PERIO"`
	Subject string `json:"ITRT_CNTNT"`
}

func (t *NEISTimetable) Timetable(ctx context.Context, grade, classNumber int, date time.Time) Result {
	if dateparse.IsWeekend(date) {
		return OK(noTimetableWeekend)
	}

	params := url.Values{}
	params.Set("ALL_TI_YMD", date.Format("20060102"))
	params.Set("GRADE", strconv.Itoa(grade))
	params.Set("CLASS_NM", strconv.Itoa(classNumber))

	var rows []neisTimetableRow
	found, err := t.client.query(ctx, "hisTimetable", params, &rows)
	if err != nil {
		return Failure("시간표", err)
	}
	if !found || len(rows) == 0 {
		return OK(noTimetableClass)
	}

	byPeriod := make(map[int]string, len(rows))
	last := 0
	for _, row := range rows {
		p, err := strconv.Atoi(strings.TrimSpace(row.Period))
		if err != nil || p < 1 {
			continue
		}
		byPeriod[p] = strings.TrimPrefix(strings.TrimSpace(row.Subject), "-")
		last = max(last, p)
	}
	if last == 0 {
		return OK(noTimetableClass)
	}
	subjects := make([]string, last)
	for p := 1; p <= last; p++ {
		subjects[p-1] = byPeriod[p]
	}
	return OK(periodLines(subjects)...)
}

// NEISMeal reads mealServiceDietInfo for one date.
type NEISMeal struct {
	client *NEISClient
}

func NewNEISMeal(client *NEISClient) *NEISMeal {
	return &NEISMeal{client: client}
}

type neisMealRow struct {
	Kind   string `json:"MMEAL_SC_NM"`
	Code   string `json:"MMEAL_SC_CODE"`
	Dishes string `json:"DDISH_NM"`
}

var (
	neisBreak    = regexp.MustCompile(`(?i)<br\s*/?>`)
	allergenTail = regexp.MustCompile(`\s*\((?:\d+\.)+\d*\)\s*$`)
)

func (m *NEISMeal) Meal(ctx context.Context, date time.Time) Result {
	params := url.Values{}
	params.Set("MLSV_YMD", date.Format("20060102"))

	var rows []neisMealRow
	found, err := m.client.query(ctx, "mealServiceDietInfo", params, &rows)
	if err != nil {
		return Failure("급식", err)
	}
	if !found || len(rows) == 0 {
		return OK(noMealForDate)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })

	var lines []string
	for _, row := range rows {
		if len(rows) > 1 {
			lines = append(lines, "["+strings.TrimSpace(row.Kind)+"]")
		}
		for _, dish := range neisBreak.Split(row.Dishes, -1) {
			dish = allergenTail.ReplaceAllString(strings.TrimSpace(dish), "")
			if dish != "" {
				lines = append(lines, dish)
			}
		}
	}
	return OK(lines...)
}
