// Package cycle defines the core domain model for cycle tracking: recorded
// cycles, per-user profile baselines, predictions, and the deterministic
// phase classifier shared by the calendar projector and the forecaster.
package cycle

import (
	"time"
)

// Default profile baselines, used when a profile carries no explicit values.
const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

// Record represents one recorded cycle: the span between two menstrual
// onsets. EndDate is inclusive and must not precede StartDate. Length is
// always derived from the two dates, never stored independently.
type Record struct {
	UserID             string
	StartDate          time.Time
	EndDate            time.Time
	PredictedNextStart *time.Time
	AverageSymptoms    map[string]float64
}

// LengthDays returns the cycle length in whole days, derived from the
// record's dates.
func (r *Record) LengthDays() int {
	return DaysBetween(r.StartDate, r.EndDate)
}

// Covers reports whether the given day falls within the record's
// [StartDate, EndDate] span.
func (r *Record) Covers(day time.Time) bool {
	d := Midnight(day)
	return !d.Before(Midnight(r.StartDate)) && !d.After(Midnight(r.EndDate))
}

// Profile holds the per-user baseline used when recorded history is absent
// or does not cover a queried day. Baselines never override recorded cycles.
type Profile struct {
	UserID        string
	CycleLength   int
	PeriodLength  int
	LastOvulation *time.Time
}

// Prediction is a single forecast outcome: when it was made, the predicted
// next start, and the observed start once known. Predictions are never
// deleted, they form the audit trail for confidence calibration.
type Prediction struct {
	UserID         string
	PredictionDate time.Time
	PredictedStart time.Time
	Confidence     *float64
	ActualStart    *time.Time
}

// Accuracy returns the absolute error in days between the predicted and the
// observed start. The second return value is false until ActualStart is set.
func (p *Prediction) Accuracy() (int, bool) {
	if p.ActualStart == nil {
		return 0, false
	}
	days := DaysBetween(p.PredictedStart, *p.ActualStart)
	if days < 0 {
		days = -days
	}
	return days, true
}

// Lengths derives the chronological start-to-start cycle length sequence
// from ordered records. This is the sequence the forecasting model trains
// on and predicts from; it needs at least two records to produce anything.
func Lengths(records []Record) []int {
	if len(records) < 2 {
		return nil
	}
	lengths := make([]int, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		lengths = append(lengths, DaysBetween(records[i-1].StartDate, records[i].StartDate))
	}
	return lengths
}

// Midnight truncates a time to midnight UTC. All day arithmetic in this
// package operates on midnight-normalized dates so that subtraction is an
// exact multiple of 24 hours.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)) / (24 * time.Hour))
}
