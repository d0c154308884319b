// Package calendar composes the phase classifier over date ranges. Every
// calendar-facing view resolves each day through the same three-tier rule:
// prefer a recorded cycle, fall back to the profile's periodic heuristic,
// and otherwise report unknown.
package calendar

import (
	"time"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/errors"
	"github.com/cyclesync/cyclesync-go/internal/observability/metrics"
)

// DayProjection is one calendar day decorated for display: its phase plus
// the presentation flags circular and monthly layouts need.
type DayProjection struct {
	Date       time.Time   `json:"date"`
	Phase      cycle.Phase `json:"phase"`
	IsToday    bool        `json:"is_today"`
	IsPast     bool        `json:"is_past"`
	IsNewMonth bool        `json:"new_month"`
	Angle      float64     `json:"angle"`
}

// Projector classifies date ranges against a user's recorded cycles and
// profile baseline.
type Projector struct {
	defaultCycleLength  int
	defaultPeriodLength int
	metrics             *metrics.CalendarMetrics

	// now is injected for tests; defaults to time.Now.
	now func() time.Time
}

// NewProjector creates a calendar projector. Settings provide the fallback
// cycle and period lengths for profiles that carry none; a nil settings
// uses the shared defaults.
func NewProjector(settings *conf.Settings, m *metrics.CalendarMetrics) *Projector {
	p := &Projector{
		defaultCycleLength:  cycle.DefaultCycleLength,
		defaultPeriodLength: cycle.DefaultPeriodLength,
		metrics:             m,
		now:                 time.Now,
	}
	if settings != nil && settings.Calendar.DefaultCycleLength > 0 {
		p.defaultCycleLength = settings.Calendar.DefaultCycleLength
	}
	if settings != nil && settings.Calendar.DefaultPeriodLength > 0 {
		p.defaultPeriodLength = settings.Calendar.DefaultPeriodLength
	}
	return p
}

// cycleLength returns the profile cycle length or the configured fallback.
func (p *Projector) cycleLength(profile *cycle.Profile) int {
	if profile != nil && profile.CycleLength > 0 {
		return profile.CycleLength
	}
	return p.defaultCycleLength
}

// periodLength returns the profile period length or the configured fallback.
func (p *Projector) periodLength(profile *cycle.Profile) int {
	if profile != nil && profile.PeriodLength > 0 {
		return profile.PeriodLength
	}
	return p.defaultPeriodLength
}

// Project returns one DayProjection per day in [from, to], inclusive, in
// chronological order. Records must be the user's cycles ordered by start
// date; profile may be nil.
func (p *Projector) Project(profile *cycle.Profile, records []cycle.Record, from, to time.Time) ([]DayProjection, error) {
	start := cycle.Midnight(from)
	end := cycle.Midnight(to)
	if end.Before(start) {
		return nil, errors.Newf("projection range ends %s before it starts %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly)).
			Component("calendar").
			Category(errors.CategoryValidation).
			Build()
	}

	began := p.now()
	today := cycle.Midnight(began)
	totalDays := cycle.DaysBetween(start, end) + 1

	projections := make([]DayProjection, 0, totalDays)
	dayModes := make(map[string]int, 3)
	unknownDays := 0
	var prevMonth time.Month

	for i := 0; i < totalDays; i++ {
		day := start.AddDate(0, 0, i)

		phase, angle, dayMode := p.classifyDay(profile, records, day)
		dayModes[dayMode]++
		if phase == cycle.PhaseUnknown {
			unknownDays++
		}

		projections = append(projections, DayProjection{
			Date:       day,
			Phase:      phase,
			IsToday:    day.Equal(today),
			IsPast:     day.Before(today),
			IsNewMonth: i == 0 || day.Month() != prevMonth,
			Angle:      angle,
		})
		prevMonth = day.Month()
	}

	p.metrics.ObserveProjection(time.Since(began), dayModes, unknownDays)
	return projections, nil
}

// ProjectCurrentCycle projects the profile-heuristic cycle containing today,
// one entry per cycle day. This backs the circular "cycle ring" view.
func (p *Projector) ProjectCurrentCycle(profile *cycle.Profile, records []cycle.Record) ([]DayProjection, error) {
	today := cycle.Midnight(p.now())

	cycleStart, ok := p.cycleStartFor(profile, records, today)
	if !ok {
		return nil, errors.Newf("no recorded cycle or ovulation reference covers today").
			Component("calendar").
			Category(errors.CategoryInsufficientData).
			Build()
	}

	cycleLength := p.cycleLength(profile)
	if record := coveringRecord(records, today); record != nil {
		cycleLength = record.LengthDays()
	}

	return p.Project(profile, records, cycleStart, cycleStart.AddDate(0, 0, cycleLength-1))
}

// classifyDay applies the three-tier resolution for a single day and
// returns the phase, the day's angular position, and which tier resolved
// it.
func (p *Projector) classifyDay(profile *cycle.Profile, records []cycle.Record, day time.Time) (cycle.Phase, float64, string) {
	// Tier 1: a recorded cycle covering the day wins, classified with the
	// cycle's own length and the profile period default.
	if record := coveringRecord(records, day); record != nil {
		offset := cycle.DaysBetween(record.StartDate, day)
		total := record.LengthDays()
		phase := cycle.Classify(offset, total, p.periodLength(profile))
		return phase, angleFor(offset, total), "recorded"
	}

	// Tier 2: periodic projection anchored at the profile's ovulation
	// reference date.
	if profile != nil && profile.LastOvulation != nil {
		cycleLength := p.cycleLength(profile)
		daysSince := cycle.DaysBetween(*profile.LastOvulation, day)
		cycleIndex := daysSince / cycleLength
		syntheticStart := cycle.Midnight(*profile.LastOvulation).AddDate(0, 0, cycleIndex*cycleLength)
		offset := cycle.DaysBetween(syntheticStart, day)
		// Reference-date skew can push the offset out of range; report
		// unknown rather than wrapping into a neighboring cycle.
		if offset < 0 || offset >= cycleLength {
			return cycle.PhaseUnknown, 0, "heuristic"
		}
		phase := cycle.Classify(offset, cycleLength, p.periodLength(profile))
		return phase, angleFor(offset, cycleLength), "heuristic"
	}

	// Tier 3: nothing to project from.
	return cycle.PhaseUnknown, 0, "unresolved"
}

// cycleStartFor finds the start date of the cycle containing the day, via
// the same two lookup tiers as classification.
func (p *Projector) cycleStartFor(profile *cycle.Profile, records []cycle.Record, day time.Time) (time.Time, bool) {
	if record := coveringRecord(records, day); record != nil {
		return cycle.Midnight(record.StartDate), true
	}
	if profile != nil && profile.LastOvulation != nil {
		cycleLength := p.cycleLength(profile)
		daysSince := cycle.DaysBetween(*profile.LastOvulation, day)
		cycleIndex := daysSince / cycleLength
		if cycleIndex < 0 {
			cycleIndex = 0
		}
		return cycle.Midnight(*profile.LastOvulation).AddDate(0, 0, cycleIndex*cycleLength), true
	}
	return time.Time{}, false
}

// coveringRecord returns the latest record whose span contains the day.
// Adjacent cycles share their boundary day (one cycle's end is the next
// one's start); scanning newest-first assigns it to the starting cycle.
func coveringRecord(records []cycle.Record, day time.Time) *cycle.Record {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Covers(day) {
			return &records[i]
		}
	}
	return nil
}

// angleFor places a day offset on a circular layout of its cycle.
func angleFor(offset, totalDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	return 360.0 * float64(offset) / float64(totalDays)
}
