package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistration(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		matched   bool
		wantErr   bool
		wantGrade int
		wantClass int
	}{
		{"bare numbers", "3 5", true, false, 3, 5},
		{"bare numbers padded", "  2   8 ", true, false, 2, 8},
		{"change command", "학년변경 9 99", true, false, 9, 99},
		{"slash command", "학년/반 1 1", true, false, 1, 1},
		{"compact command", "학년반 2 8", true, false, 2, 8},
		{"command with korean form", "학년변경 2학년 3반", true, false, 2, 3},
		{"korean form", "2학년 8반", true, false, 2, 8},
		{"korean form spaced", "2 학년 8 반이에요", true, false, 2, 8},
		{"command without numbers", "학년변경", true, true, 0, 0},
		{"command with one number", "학년/반 2", true, true, 0, 0},
		{"command with words", "학년변경 둘 여덟", true, true, 0, 0},
		{"zero grade", "0 5", true, true, 0, 0},
		{"zero class via command", "학년변경 2 0", true, true, 0, 0},
		{"overflow", "99999999999999999999 1", true, true, 0, 0},
		{"timetable query", "오늘 시간표", false, false, 0, 0},
		{"three numbers", "1 2 3", false, false, 0, 0},
		{"korean form inside a question", "2학년 8반 시간표", false, false, 0, 0},
		{"date", "9/3 급식", false, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, ok := ParseRegistration(tt.text)
			require.Equal(t, tt.matched, ok)
			if !ok {
				return
			}
			if tt.wantErr {
				assert.Error(t, reg.Err)
				return
			}
			require.NoError(t, reg.Err)
			assert.Equal(t, tt.wantGrade, reg.Grade)
			assert.Equal(t, tt.wantClass, reg.ClassNumber)
		})
	}
}

func TestParseRegistration_MissingNumbersSentinel(t *testing.T) {
	reg, ok := ParseRegistration("학년/반 도움말")
	require.True(t, ok)
	assert.ErrorIs(t, reg.Err, ErrMissingNumbers)
}
