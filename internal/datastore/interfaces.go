// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/cycle"
)

// Interface abstracts the underlying database implementation and defines the
// operations the engine performs against storage.
type Interface interface {
	Open() error
	Close() error

	// profiles
	GetProfile(userID string) (*Profile, error)
	SaveProfile(profile *Profile) error

	// cycles
	GetCycle(userID string, id uint) (*Cycle, error)
	GetCycles(userID string) ([]Cycle, error)
	GetCyclesInRange(userID string, from, to time.Time) ([]Cycle, error)
	SaveCycle(c *Cycle) error
	DeleteCycle(userID string, id uint) error

	// daily entries
	GetDailyEntries(userID string, from, to time.Time) ([]DailyEntry, error)
	SaveDailyEntry(entry *DailyEntry) error

	// predictions
	SavePrediction(p *Prediction) error
	GetPredictions(userID string, limit int) ([]Prediction, error)
	ResolvePrediction(userID string, actualStart time.Time) (bool, error)

	// training history
	GetUserIDs() ([]string, error)
	GetCycleRecords(userID string) ([]cycle.Record, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Database.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Database.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// GetProfile retrieves the user's profile, creating one with the shared
// defaults on first access.
func (ds *DataStore) GetProfile(userID string) (*Profile, error) {
	profile := Profile{
		UserID:       userID,
		CycleLength:  cycle.DefaultCycleLength,
		PeriodLength: cycle.DefaultPeriodLength,
	}
	if err := ds.DB.Where(&Profile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, fmt.Errorf("getting profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// SaveProfile persists profile changes.
func (ds *DataStore) SaveProfile(profile *Profile) error {
	if err := ds.DB.Save(profile).Error; err != nil {
		return fmt.Errorf("saving profile for user %s: %w", profile.UserID, err)
	}
	return nil
}

// GetCycle retrieves a single cycle, scoped to the user.
func (ds *DataStore) GetCycle(userID string, id uint) (*Cycle, error) {
	var c Cycle
	if err := ds.DB.Where("user_id = ?", userID).First(&c, id).Error; err != nil {
		return nil, fmt.Errorf("getting cycle %d for user %s: %w", id, userID, err)
	}
	return &c, nil
}

// GetCycles retrieves all recorded cycles for the user, ordered by start
// date ascending.
func (ds *DataStore) GetCycles(userID string) ([]Cycle, error) {
	var cycles []Cycle
	if err := ds.DB.Where("user_id = ?", userID).
		Order("start_date ASC").
		Find(&cycles).Error; err != nil {
		return nil, fmt.Errorf("getting cycles for user %s: %w", userID, err)
	}
	return cycles, nil
}

// GetCyclesInRange retrieves cycles overlapping the [from, to] date range,
// ordered by start date ascending.
func (ds *DataStore) GetCyclesInRange(userID string, from, to time.Time) ([]Cycle, error) {
	var cycles []Cycle
	if err := ds.DB.Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, to, from).
		Order("start_date ASC").
		Find(&cycles).Error; err != nil {
		return nil, fmt.Errorf("getting cycles in range for user %s: %w", userID, err)
	}
	return cycles, nil
}

// SaveCycle persists a cycle, inserting or updating as needed.
func (ds *DataStore) SaveCycle(c *Cycle) error {
	if err := ds.DB.Save(c).Error; err != nil {
		return fmt.Errorf("saving cycle for user %s: %w", c.UserID, err)
	}
	return nil
}

// DeleteCycle removes a cycle, scoped to the user.
func (ds *DataStore) DeleteCycle(userID string, id uint) error {
	result := ds.DB.Where("user_id = ?", userID).Delete(&Cycle{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting cycle %d for user %s: %w", id, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("deleting cycle %d for user %s: %w", id, userID, gorm.ErrRecordNotFound)
	}
	return nil
}

// GetDailyEntries retrieves the user's daily entries within [from, to],
// ordered by date ascending.
func (ds *DataStore) GetDailyEntries(userID string, from, to time.Time) ([]DailyEntry, error) {
	var entries []DailyEntry
	if err := ds.DB.Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("getting daily entries for user %s: %w", userID, err)
	}
	return entries, nil
}

// SaveDailyEntry upserts a daily entry keyed by (user, date). A later
// submission for the same day overwrites the earlier one.
func (ds *DataStore) SaveDailyEntry(entry *DailyEntry) error {
	err := ds.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cramps", "bloating", "mood", "stress", "energy",
			"sleep_quality", "cervical_mucus", "notes", "updated_at",
		}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("saving daily entry for user %s: %w", entry.UserID, err)
	}
	return nil
}

// SavePrediction appends a prediction row. Predictions are append-only.
func (ds *DataStore) SavePrediction(p *Prediction) error {
	if err := ds.DB.Create(p).Error; err != nil {
		return fmt.Errorf("saving prediction for user %s: %w", p.UserID, err)
	}
	return nil
}

// GetPredictions retrieves the user's predictions, most recent first.
// A limit of 0 returns all rows.
func (ds *DataStore) GetPredictions(userID string, limit int) ([]Prediction, error) {
	query := ds.DB.Where("user_id = ?", userID).Order("prediction_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var predictions []Prediction
	if err := query.Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("getting predictions for user %s: %w", userID, err)
	}
	return predictions, nil
}

// ResolvePrediction fills in the actual start on the user's most recent
// unresolved prediction. It reports whether a prediction was resolved;
// having none outstanding is not an error.
func (ds *DataStore) ResolvePrediction(userID string, actualStart time.Time) (bool, error) {
	var p Prediction
	err := ds.DB.Where("user_id = ? AND actual_start IS NULL", userID).
		Order("prediction_date DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("finding unresolved prediction for user %s: %w", userID, err)
	}

	day := cycle.Midnight(actualStart)
	if err := ds.DB.Model(&p).Update("actual_start", &day).Error; err != nil {
		return false, fmt.Errorf("resolving prediction %d for user %s: %w", p.ID, userID, err)
	}
	return true, nil
}

// GetUserIDs returns the distinct users with at least one recorded cycle.
// This drives the periodic retrain sweep.
func (ds *DataStore) GetUserIDs() ([]string, error) {
	var ids []string
	if err := ds.DB.Model(&Cycle{}).Distinct("user_id").Order("user_id ASC").Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("getting user IDs: %w", err)
	}
	return ids, nil
}

// GetCycleRecords returns the user's cycles as domain records, ordered by
// start date ascending.
func (ds *DataStore) GetCycleRecords(userID string) ([]cycle.Record, error) {
	cycles, err := ds.GetCycles(userID)
	if err != nil {
		return nil, err
	}
	records := make([]cycle.Record, 0, len(cycles))
	for i := range cycles {
		records = append(records, cycles[i].ToRecord())
	}
	return records, nil
}
