package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Formats(t *testing.T) {
	june1 := time.Date(2025, 6, 1, 0, 0, 0, 0, seoul)
	june1At16 := time.Date(2025, 6, 1, 16, 0, 0, 0, seoul)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"iso date", "2025-06-01", june1},
		{"iso minutes", "2025-06-01T16:00", june1At16},
		{"iso seconds", "2025-06-01T16:00:00", june1At16},
		{"iso space", "2025-06-01 16:00", june1At16},
		{"rfc3339 utc", "2025-06-01T07:00:00Z", june1At16},
		{"korean date", "2025년 6월 1일", june1},
		{"korean clock", "2025년 6월 1일 16:00", june1At16},
		{"korean pm", "2025년 6월 1일 오후 4:00", june1At16},
		{"korean weekday and hour words", "2025년 6월 1일 (일) 오후 4시 30분", time.Date(2025, 6, 1, 16, 30, 0, 0, seoul)},
		{"korean midnight am", "2025년 6월 1일 오전 12시", june1},
		{"dotted", "2025.06.01", june1},
		{"dotted spaced", "2025. 6. 1.", june1},
		{"ymd slash", "2025/06/01", june1},
		{"ymd slash time", "2025/06/01 16:00", june1At16},
		{"mdy slash", "06/01/2025", june1},
		{"english short", "Jun 1, 2025", june1},
		{"english long", "June 1, 2025", june1},
		{"english weekday", "Sun, Jun 1, 2025", june1},
		{"day first", "1 Jun 2025", june1},
		{"padded whitespace", "  2025-06-01  ", june1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			require.True(t, ok, "expected %q to parse", tt.raw)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not a date",
		"2025-02-30",
		"2025.02.30",
		"2025년 13월 1일",
		"2025/06/01 25:00",
	} {
		t.Run(raw, func(t *testing.T) {
			got, ok := ParseDate(raw)
			assert.False(t, ok)
			assert.True(t, got.IsZero())
		})
	}
}

func TestDateParser_ConvertsIntoItsZone(t *testing.T) {
	utc, err := NewDateParser(time.UTC, 8)
	require.NoError(t, err)

	got, ok := utc.Parse("2025-06-01T16:00:00+09:00")
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 7, got.Hour())
}

func TestDateParser_Memoizes(t *testing.T) {
	p, err := NewDateParser(seoul, 2)
	require.NoError(t, err)

	first, ok1 := p.Parse("2025-06-01")
	second, ok2 := p.Parse("2025-06-01")
	assert.Equal(t, ok1, ok2)
	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, p.cache.Len())

	_, ok := p.Parse("garbage")
	assert.False(t, ok)
	_, ok = p.Parse("garbage")
	assert.False(t, ok)
	assert.Equal(t, 2, p.cache.Len())

	p.Parse("2025-06-02")
	assert.Equal(t, 2, p.cache.Len(), "cache must stay bounded")
}

func TestNewDateParser_NilLocation(t *testing.T) {
	_, err := NewDateParser(nil, 10)
	assert.Error(t, err)
}

func TestEachDay(t *testing.T) {
	days := EachDay(at(t, "2025-06-01T23:00"), at(t, "2025-06-03T01:00"), seoul)
	require.Len(t, days, 3)
	assert.Equal(t, "2025-06-01", DateKey(days[0]))
	assert.Equal(t, "2025-06-03", DateKey(days[2]))

	assert.Nil(t, EachDay(at(t, "2025-06-03"), at(t, "2025-06-01"), seoul))
}

func TestDayOnly(t *testing.T) {
	d := DayOnly(at(t, "2025-06-01T16:45"), seoul)
	assert.True(t, d.Equal(at(t, "2025-06-01")))
}

func TestOverlaps_Boundaries(t *testing.T) {
	a := Interval{Start: at(t, "2025-06-01T10:00"), End: at(t, "2025-06-01T13:00")}
	touching := Interval{Start: at(t, "2025-06-01T13:00"), End: at(t, "2025-06-01T15:00")}
	inside := Interval{Start: at(t, "2025-06-01T11:00"), End: at(t, "2025-06-01T12:00")}

	assert.False(t, Overlaps(a, touching, false))
	assert.True(t, Overlaps(a, touching, true))
	assert.True(t, Overlaps(a, inside, false))
	assert.True(t, Overlaps(inside, a, false))
}

func TestLoadLocation_FallsBack(t *testing.T) {
	assert.Equal(t, LoadLocation(""), LoadLocation("Not/AZone"))
}
