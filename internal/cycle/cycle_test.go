package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecordLengthDays(t *testing.T) {
	t.Parallel()

	r := Record{
		UserID:    "u1",
		StartDate: date(2024, time.January, 1),
		EndDate:   date(2024, time.January, 29),
	}
	assert.Equal(t, 28, r.LengthDays())

	// Length is derived from the dates, so corrective edits are reflected.
	r.EndDate = date(2024, time.January, 31)
	assert.Equal(t, 30, r.LengthDays())
}

func TestRecordCovers(t *testing.T) {
	t.Parallel()

	r := Record{
		StartDate: date(2024, time.March, 10),
		EndDate:   date(2024, time.April, 6),
	}

	assert.True(t, r.Covers(date(2024, time.March, 10)), "start date is covered")
	assert.True(t, r.Covers(date(2024, time.April, 6)), "end date is covered")
	assert.True(t, r.Covers(date(2024, time.March, 25)))
	assert.False(t, r.Covers(date(2024, time.March, 9)))
	assert.False(t, r.Covers(date(2024, time.April, 7)))

	// Covers normalizes times of day before comparing.
	assert.True(t, r.Covers(time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)))
}

func TestLengths(t *testing.T) {
	t.Parallel()

	records := []Record{
		{StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 28)},
		{StartDate: date(2024, time.January, 29), EndDate: date(2024, time.February, 25)},
		{StartDate: date(2024, time.February, 27), EndDate: date(2024, time.March, 26)},
	}

	lengths := Lengths(records)
	require.Len(t, lengths, 2)
	assert.Equal(t, []int{28, 29}, lengths)
}

func TestLengthsInsufficientRecords(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Lengths(nil))
	assert.Nil(t, Lengths([]Record{{StartDate: date(2024, time.January, 1)}}))
}

func TestPredictionAccuracy(t *testing.T) {
	t.Parallel()

	p := Prediction{
		UserID:         "u1",
		PredictionDate: date(2024, time.January, 15),
		PredictedStart: date(2024, time.February, 1),
	}

	_, ok := p.Accuracy()
	assert.False(t, ok, "accuracy is undefined until the actual start is observed")

	actual := date(2024, time.February, 4)
	p.ActualStart = &actual
	days, ok := p.Accuracy()
	require.True(t, ok)
	assert.Equal(t, 3, days)

	// Absolute error: an early actual start yields the same magnitude.
	early := date(2024, time.January, 29)
	p.ActualStart = &early
	days, ok = p.Accuracy()
	require.True(t, ok)
	assert.Equal(t, 3, days)
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2024, time.May, 1), date(2024, time.May, 1), 0},
		{"forward", date(2024, time.May, 1), date(2024, time.May, 15), 14},
		{"backward", date(2024, time.May, 15), date(2024, time.May, 1), -14},
		{"across month boundary", date(2024, time.January, 30), date(2024, time.February, 2), 3},
		{"leap day", date(2024, time.February, 28), date(2024, time.March, 1), 2},
		{"ignores time of day", time.Date(2024, time.May, 1, 23, 0, 0, 0, time.UTC), time.Date(2024, time.May, 2, 1, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}
