package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, kst)
}

const timetableYAML = `
weeks:
  - "2-8":
      - [국어, 수학, 영어]
      - [과학, "", 체육]
      - []
      - [음악]
      - [미술, 한문]
  - "2-8":
      - [다음주국어]
      - [다음주과학]
      - [다음주음악]
      - [다음주미술]
      - [다음주체육]
`

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStaticTimetable(t *testing.T) {
	// Thursday
	now := time.Date(2025, time.September, 4, 9, 0, 0, 0, kst)
	tt, err := ParseStaticTimetable([]byte(timetableYAML), fixedClock(now))
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name  string
		grade int
		class int
		date  time.Time
		want  []string
	}{
		{"monday this week", 2, 8, date(2025, 9, 1), []string{"1교시: 국어", "2교시: 수학", "3교시: 영어"}},
		{"blank subject", 2, 8, date(2025, 9, 2), []string{"1교시: 과학", "2교시: -", "3교시: 체육"}},
		{"empty day", 2, 8, date(2025, 9, 3), []string{noTimetableClass}},
		{"friday", 2, 8, date(2025, 9, 5), []string{"1교시: 미술", "2교시: 한문"}},
		{"next week", 2, 8, date(2025, 9, 8), []string{"1교시: 다음주국어"}},
		{"two weeks out clamps to next week", 2, 8, date(2025, 9, 16), []string{"1교시: 다음주과학"}},
		{"past week clamps to this week", 2, 8, date(2025, 8, 28), []string{"1교시: 음악"}},
		{"weekend", 2, 8, date(2025, 9, 6), []string{noTimetableWeekend}},
		{"unknown class", 1, 1, date(2025, 9, 1), []string{noTimetableClass}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := tt.Timetable(ctx, tc.grade, tc.class, tc.date)
			assert.False(t, res.Failed)
			assert.Equal(t, tc.want, res.Lines)
		})
	}
}

func TestStaticTimetable_SingleWeekFile(t *testing.T) {
	data := []byte("weeks:\n  - \"1-1\":\n      - [국어]\n")
	tt, err := ParseStaticTimetable(data, fixedClock(date(2025, 9, 5)))
	require.NoError(t, err)

	res := tt.Timetable(context.Background(), 1, 1, date(2025, 9, 8))
	assert.Equal(t, []string{"1교시: 국어"}, res.Lines)
}

func TestParseStaticTimetable_Errors(t *testing.T) {
	_, err := ParseStaticTimetable([]byte("weeks: []"), nil)
	assert.Error(t, err)

	_, err = ParseStaticTimetable([]byte("weeks: [unclosed"), nil)
	assert.Error(t, err)

	_, err = LoadStaticTimetable("/does/not/exist.yaml", nil)
	assert.Error(t, err)
}

func TestResult(t *testing.T) {
	ok := OK("a", "b")
	assert.Equal(t, "a\nb", ok.Text())
	assert.False(t, ok.Empty())
	assert.True(t, OK().Empty())

	failed := Failure("급식", assert.AnError)
	assert.True(t, failed.Failed)
	assert.False(t, failed.Empty())
	assert.Contains(t, failed.Text(), "급식 불러오기 실패")
	assert.ErrorIs(t, failed.Cause, assert.AnError)
}
