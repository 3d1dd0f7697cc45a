package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name      string
		in        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"wednesday", day(2025, 9, 3), day(2025, 9, 1), day(2025, 9, 7)},
		{"monday", day(2025, 9, 1), day(2025, 9, 1), day(2025, 9, 7)},
		{"sunday", day(2025, 9, 7), day(2025, 9, 1), day(2025, 9, 7)},
		{"across year", day(2026, 1, 1), day(2025, 12, 29), day(2026, 1, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekRange(tt.in.Add(15 * time.Hour))
			assert.True(t, tt.wantStart.Equal(start), "start %s", start)
			assert.True(t, tt.wantEnd.Equal(end), "end %s", end)
		})
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(day(2024, 2, 17))
	assert.True(t, day(2024, 2, 1).Equal(start))
	assert.True(t, day(2024, 2, 29).Equal(end))

	start, end = MonthRange(day(2025, 12, 31))
	assert.True(t, day(2025, 12, 1).Equal(start))
	assert.True(t, day(2025, 12, 31).Equal(end))
}

func TestWeekOffset(t *testing.T) {
	ref := day(2025, 9, 4) // Thursday
	assert.Equal(t, 0, WeekOffset(ref, day(2025, 9, 5)))
	assert.Equal(t, 1, WeekOffset(ref, day(2025, 9, 8)))
	assert.Equal(t, 2, WeekOffset(ref, day(2025, 9, 15)))
	assert.Equal(t, -1, WeekOffset(ref, day(2025, 8, 29)))
}

func TestLabels(t *testing.T) {
	d := day(2025, 9, 3)
	assert.Equal(t, "09/03(수)", ShortLabel(d))
	assert.Equal(t, "2025-09-03", ISO(d))
	assert.True(t, IsWeekend(day(2025, 9, 6)))
	assert.True(t, IsWeekend(day(2025, 9, 7)))
	assert.False(t, IsWeekend(d))
}
