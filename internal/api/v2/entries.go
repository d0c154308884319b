// entries.go: daily symptom entry endpoints
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
	"github.com/cyclesync/cyclesync-go/internal/errors"
)

// symptomScaleMax is the upper bound of the self-reported 0-5 scales.
const symptomScaleMax = 5

// cervicalMucusKinds are the accepted categorical mucus observations.
var cervicalMucusKinds = map[string]bool{
	"none":      true,
	"sticky":    true,
	"watery":    true,
	"egg-white": true,
	"creamy":    true,
	"atypical":  true,
}

// initEntryRoutes registers daily entry API endpoints
func (c *Controller) initEntryRoutes() {
	c.Group.GET("/entries", c.GetDailyEntries)
	c.Group.POST("/entries", c.SaveDailyEntry)
}

// DailyEntryRequest is the JSON body for recording one day of symptoms.
type DailyEntryRequest struct {
	Date          string `json:"date"`
	Cramps        int    `json:"cramps"`
	Bloating      int    `json:"bloating"`
	Mood          int    `json:"mood"`
	Stress        int    `json:"stress"`
	Energy        int    `json:"energy"`
	SleepQuality  int    `json:"sleep_quality"`
	CervicalMucus string `json:"cervical_mucus"`
	Notes         string `json:"notes"`
}

// DailyEntryResponse is the JSON representation of a daily entry.
type DailyEntryResponse struct {
	Date          string `json:"date"`
	Cramps        int    `json:"cramps"`
	Bloating      int    `json:"bloating"`
	Mood          int    `json:"mood"`
	Stress        int    `json:"stress"`
	Energy        int    `json:"energy"`
	SleepQuality  int    `json:"sleep_quality"`
	CervicalMucus string `json:"cervical_mucus"`
	Notes         string `json:"notes,omitempty"`
}

func toEntryResponse(entry *datastore.DailyEntry) DailyEntryResponse {
	return DailyEntryResponse{
		Date:          cycle.Midnight(entry.Date).Format(time.DateOnly),
		Cramps:        entry.Cramps,
		Bloating:      entry.Bloating,
		Mood:          entry.Mood,
		Stress:        entry.Stress,
		Energy:        entry.Energy,
		SleepQuality:  entry.SleepQuality,
		CervicalMucus: entry.CervicalMucus,
		Notes:         entry.Notes,
	}
}

// GetDailyEntries handles GET /api/v2/entries?from=...&to=...
func (c *Controller) GetDailyEntries(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	from, err := time.Parse(time.DateOnly, ctx.QueryParam("from"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid from date", http.StatusBadRequest)
	}
	to, err := time.Parse(time.DateOnly, ctx.QueryParam("to"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid to date", http.StatusBadRequest)
	}

	entries, err := c.DS.GetDailyEntries(userID, cycle.Midnight(from), cycle.Midnight(to))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load entries", http.StatusInternalServerError)
	}

	responses := make([]DailyEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toEntryResponse(&entries[i]))
	}
	return ctx.JSON(http.StatusOK, responses)
}

// SaveDailyEntry handles POST /api/v2/entries. A second submission for the
// same day overwrites the first.
func (c *Controller) SaveDailyEntry(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	var req DailyEntryRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	day, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid date", http.StatusBadRequest)
	}

	for name, value := range map[string]int{
		"cramps":        req.Cramps,
		"bloating":      req.Bloating,
		"mood":          req.Mood,
		"stress":        req.Stress,
		"energy":        req.Energy,
		"sleep_quality": req.SleepQuality,
	} {
		if value < 0 || value > symptomScaleMax {
			verr := errors.Newf("%s must be between 0 and %d", name, symptomScaleMax).
				Component("api").
				Category(errors.CategoryValidation).
				Build()
			return c.HandleError(ctx, verr, "Invalid symptom value", http.StatusBadRequest)
		}
	}

	if req.CervicalMucus == "" {
		req.CervicalMucus = "none"
	}
	if !cervicalMucusKinds[req.CervicalMucus] {
		verr := errors.Newf("unrecognized cervical mucus observation %q", req.CervicalMucus).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
		return c.HandleError(ctx, verr, "Invalid symptom value", http.StatusBadRequest)
	}

	entry := &datastore.DailyEntry{
		UserID:        userID,
		Date:          cycle.Midnight(day),
		Cramps:        req.Cramps,
		Bloating:      req.Bloating,
		Mood:          req.Mood,
		Stress:        req.Stress,
		Energy:        req.Energy,
		SleepQuality:  req.SleepQuality,
		CervicalMucus: req.CervicalMucus,
		Notes:         req.Notes,
	}
	if err := c.DS.SaveDailyEntry(entry); err != nil {
		return c.HandleError(ctx, err, "Failed to save entry", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, toEntryResponse(entry))
}
