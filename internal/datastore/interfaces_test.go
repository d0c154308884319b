package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/cycle"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestStore opens a fresh SQLite store in a temporary directory.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Database.SQLite.Enabled = true
	settings.Database.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetProfileCreatesDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	profile, err := store.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, cycle.DefaultCycleLength, profile.CycleLength)
	assert.Equal(t, cycle.DefaultPeriodLength, profile.PeriodLength)
	assert.Nil(t, profile.LastOvulation)

	// A second read returns the same row, not a new one.
	again, err := store.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
}

func TestSaveProfileRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	profile, err := store.GetProfile("u1")
	require.NoError(t, err)

	ovulation := date(2024, time.January, 15)
	profile.CycleLength = 31
	profile.LastOvulation = &ovulation
	require.NoError(t, store.SaveProfile(profile))

	got, err := store.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, 31, got.CycleLength)
	require.NotNil(t, got.LastOvulation)
	assert.True(t, got.LastOvulation.Equal(ovulation))
}

func TestCyclesOrderedByStartDate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	// Inserted out of order on purpose.
	for _, start := range []time.Time{
		date(2024, time.February, 1),
		date(2024, time.January, 1),
		date(2024, time.March, 2),
	} {
		require.NoError(t, store.SaveCycle(&Cycle{
			UserID:    "u1",
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 28),
		}))
	}

	cycles, err := store.GetCycles("u1")
	require.NoError(t, err)
	require.Len(t, cycles, 3)
	assert.True(t, cycles[0].StartDate.Before(cycles[1].StartDate))
	assert.True(t, cycles[1].StartDate.Before(cycles[2].StartDate))
}

func TestGetCyclesInRangeOverlap(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	require.NoError(t, store.SaveCycle(&Cycle{
		UserID:    "u1",
		StartDate: date(2024, time.January, 1),
		EndDate:   date(2024, time.January, 29),
	}))
	require.NoError(t, store.SaveCycle(&Cycle{
		UserID:    "u1",
		StartDate: date(2024, time.January, 29),
		EndDate:   date(2024, time.February, 26),
	}))

	// A window straddling the boundary overlaps both cycles.
	cycles, err := store.GetCyclesInRange("u1", date(2024, time.January, 25), date(2024, time.February, 2))
	require.NoError(t, err)
	assert.Len(t, cycles, 2)

	// A window fully outside any cycle matches nothing.
	cycles, err = store.GetCyclesInRange("u1", date(2024, time.March, 1), date(2024, time.March, 31))
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestCycleScopedToUser(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	c := &Cycle{UserID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 29)}
	require.NoError(t, store.SaveCycle(c))

	_, err := store.GetCycle("u2", c.ID)
	assert.Error(t, err, "another user's cycle must not be readable")

	err = store.DeleteCycle("u2", c.ID)
	assert.Error(t, err, "another user's cycle must not be deletable")

	require.NoError(t, store.DeleteCycle("u1", c.ID))
	_, err = store.GetCycle("u1", c.ID)
	assert.Error(t, err)
}

func TestSaveDailyEntryUpserts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	day := date(2024, time.January, 10)

	require.NoError(t, store.SaveDailyEntry(&DailyEntry{
		UserID: "u1", Date: day, Cramps: 2, Mood: 1, CervicalMucus: "sticky",
	}))
	require.NoError(t, store.SaveDailyEntry(&DailyEntry{
		UserID: "u1", Date: day, Cramps: 4, Mood: 3, SleepQuality: 2, CervicalMucus: "watery", Notes: "updated",
	}))

	entries, err := store.GetDailyEntries("u1", day, day)
	require.NoError(t, err)
	require.Len(t, entries, 1, "same-day submission must overwrite, not duplicate")
	assert.Equal(t, 4, entries[0].Cramps)
	assert.Equal(t, 3, entries[0].Mood)
	assert.Equal(t, 2, entries[0].SleepQuality)
	assert.Equal(t, "watery", entries[0].CervicalMucus)
	assert.Equal(t, "updated", entries[0].Notes)
}

func TestResolvePredictionLatestUnresolved(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	require.NoError(t, store.SavePrediction(&Prediction{
		UserID:         "u1",
		PredictionDate: date(2024, time.January, 1),
		PredictedStart: date(2024, time.January, 29),
	}))
	require.NoError(t, store.SavePrediction(&Prediction{
		UserID:         "u1",
		PredictionDate: date(2024, time.January, 15),
		PredictedStart: date(2024, time.January, 30),
	}))

	resolved, err := store.ResolvePrediction("u1", date(2024, time.February, 1))
	require.NoError(t, err)
	assert.True(t, resolved)

	predictions, err := store.GetPredictions("u1", 0)
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	// Most recent first: the newer prediction got the actual start.
	require.NotNil(t, predictions[0].ActualStart)
	assert.True(t, predictions[0].ActualStart.Equal(date(2024, time.February, 1)))
	assert.Nil(t, predictions[1].ActualStart, "older prediction stays untouched")
}

func TestResolvePredictionNoneOutstanding(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	resolved, err := store.ResolvePrediction("u1", date(2024, time.February, 1))
	require.NoError(t, err, "nothing to resolve is a normal outcome")
	assert.False(t, resolved)
}

func TestGetPredictionsLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SavePrediction(&Prediction{
			UserID:         "u1",
			PredictionDate: date(2024, time.January, 1+i),
			PredictedStart: date(2024, time.January, 29+i),
		}))
	}

	predictions, err := store.GetPredictions("u1", 2)
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	assert.True(t, predictions[0].PredictionDate.After(predictions[1].PredictionDate))
}

func TestGetUserIDsDistinct(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	for _, c := range []Cycle{
		{UserID: "u1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 29)},
		{UserID: "u1", StartDate: date(2024, time.January, 29), EndDate: date(2024, time.February, 26)},
		{UserID: "u2", StartDate: date(2024, time.January, 5), EndDate: date(2024, time.February, 2)},
	} {
		require.NoError(t, store.SaveCycle(&Cycle{
			UserID: c.UserID, StartDate: c.StartDate, EndDate: c.EndDate,
		}))
	}

	ids, err := store.GetUserIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)
}

func TestGetCycleRecordsMapsSymptoms(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	require.NoError(t, store.SaveCycle(&Cycle{
		UserID:          "u1",
		StartDate:       date(2024, time.January, 1),
		EndDate:         date(2024, time.January, 29),
		AverageSymptoms: map[string]float64{"cramps": 2.5, "mood": 1.0},
	}))

	records, err := store.GetCycleRecords("u1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, 28, records[0].LengthDays())
	assert.Equal(t, map[string]float64{"cramps": 2.5, "mood": 1.0}, records[0].AverageSymptoms)
}
