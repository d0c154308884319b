// convert.go: datastore row to domain type conversion helpers
package api

import (
	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
)

func toProfile(p *datastore.Profile) *cycle.Profile {
	if p == nil {
		return nil
	}
	return &cycle.Profile{
		UserID:        p.UserID,
		CycleLength:   p.CycleLength,
		PeriodLength:  p.PeriodLength,
		LastOvulation: p.LastOvulation,
	}
}

func toRecords(cycles []datastore.Cycle) []cycle.Record {
	records := make([]cycle.Record, 0, len(cycles))
	for i := range cycles {
		records = append(records, cycles[i].ToRecord())
	}
	return records
}
