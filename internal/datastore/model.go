// model.go this code defines the data model for the application
package datastore

import (
	"time"

	"github.com/cyclesync/cyclesync-go/internal/cycle"
)

// Profile holds a user's baseline cycle parameters. One row per user,
// created on first access with the shared defaults.
type Profile struct {
	ID            uint       `gorm:"primaryKey"`
	UserID        string     `gorm:"uniqueIndex;not null"`
	CycleLength   int        `gorm:"default:28"`
	PeriodLength  int        `gorm:"default:5"`
	LastOvulation *time.Time // reference date anchoring heuristic projection
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Cycle represents one recorded cycle between two menstrual onsets.
// EndDate is the next onset; length is always derived from the dates.
type Cycle struct {
	ID                 uint      `gorm:"primaryKey"`
	UserID             string    `gorm:"index:idx_cycles_user;uniqueIndex:idx_cycles_user_start;not null"`
	StartDate          time.Time `gorm:"uniqueIndex:idx_cycles_user_start;not null"`
	EndDate            time.Time `gorm:"not null"`
	PredictedNextStart *time.Time
	// Symptom averages computed over the cycle's daily entries at
	// finalization time, keyed by symptom name.
	AverageSymptoms map[string]float64 `gorm:"serializer:json"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ToRecord converts the stored row into the domain record the projector and
// forecaster operate on.
func (c *Cycle) ToRecord() cycle.Record {
	r := cycle.Record{
		UserID:             c.UserID,
		StartDate:          cycle.Midnight(c.StartDate),
		EndDate:            cycle.Midnight(c.EndDate),
		PredictedNextStart: c.PredictedNextStart,
	}
	if len(c.AverageSymptoms) > 0 {
		r.AverageSymptoms = c.AverageSymptoms
	}
	return r
}

// DailyEntry is one day of self-reported symptoms. Scores use a 0-5 scale,
// cervical mucus is a categorical observation; one entry per user per day,
// later submissions overwrite.
type DailyEntry struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        string    `gorm:"index:idx_entries_user;uniqueIndex:idx_entries_user_date;not null"`
	Date          time.Time `gorm:"uniqueIndex:idx_entries_user_date;not null"`
	Cramps        int
	Bloating      int
	Mood          int
	Stress        int
	Energy        int
	SleepQuality  int
	CervicalMucus string `gorm:"size:16"`
	Notes         string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Prediction is one forecast outcome. Rows are never deleted; once the
// actual start is known it is filled in and the row becomes part of the
// accuracy audit trail.
type Prediction struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         string    `gorm:"index:idx_predictions_user;not null"`
	PredictionDate time.Time `gorm:"index"`
	PredictedStart time.Time `gorm:"not null"`
	Confidence     *float64
	ActualStart    *time.Time
	CreatedAt      time.Time
}

// ToDomain converts the stored row into the domain prediction type.
func (p *Prediction) ToDomain() cycle.Prediction {
	return cycle.Prediction{
		UserID:         p.UserID,
		PredictionDate: p.PredictionDate,
		PredictedStart: p.PredictedStart,
		Confidence:     p.Confidence,
		ActualStart:    p.ActualStart,
	}
}
