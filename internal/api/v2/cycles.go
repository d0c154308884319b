// cycles.go: recorded cycle endpoints and the finalization flow
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
)

// initCycleRoutes registers cycle-related API endpoints
func (c *Controller) initCycleRoutes() {
	c.Group.GET("/cycles", c.GetCycles)
	c.Group.POST("/cycles", c.CreateCycle)
	c.Group.PUT("/cycles/:id", c.UpdateCycle)
	c.Group.DELETE("/cycles/:id", c.DeleteCycle)
}

// CycleRequest is the JSON body for creating or updating a cycle.
type CycleRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CycleResponse is the JSON representation of a recorded cycle.
type CycleResponse struct {
	ID                 uint               `json:"id"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	LengthDays         int                `json:"length_days"`
	PredictedNextStart *string            `json:"predicted_next_start,omitempty"`
	AverageSymptoms    map[string]float64 `json:"average_symptoms,omitempty"`
}

func toCycleResponse(row *datastore.Cycle) CycleResponse {
	record := row.ToRecord()
	resp := CycleResponse{
		ID:              row.ID,
		StartDate:       record.StartDate.Format(time.DateOnly),
		EndDate:         record.EndDate.Format(time.DateOnly),
		LengthDays:      record.LengthDays(),
		AverageSymptoms: record.AverageSymptoms,
	}
	if row.PredictedNextStart != nil {
		s := row.PredictedNextStart.Format(time.DateOnly)
		resp.PredictedNextStart = &s
	}
	return resp
}

// GetCycles handles GET /api/v2/cycles
func (c *Controller) GetCycles(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	cycles, err := c.DS.GetCycles(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load cycles", http.StatusInternalServerError)
	}

	responses := make([]CycleResponse, 0, len(cycles))
	for i := range cycles {
		responses = append(responses, toCycleResponse(&cycles[i]))
	}
	return ctx.JSON(http.StatusOK, responses)
}

// CreateCycle handles POST /api/v2/cycles. Recording a cycle finalizes it:
// symptom averages are computed from the daily entries in its span, the
// outstanding prediction is resolved against the observed start, and a
// retrain for the user is queued.
func (c *Controller) CreateCycle(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	start, end, err := c.parseCycleRequest(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid cycle dates", http.StatusBadRequest)
	}

	row := &datastore.Cycle{UserID: userID, StartDate: start, EndDate: end}
	if err := c.averageSymptoms(row); err != nil {
		return c.HandleError(ctx, err, "Failed to compute symptom averages", http.StatusInternalServerError)
	}

	if err := c.DS.SaveCycle(row); err != nil {
		return c.HandleError(ctx, err, "Failed to save cycle", http.StatusInternalServerError)
	}

	// The observed start settles whatever was last predicted. Failures here
	// must not fail the write that already happened.
	if resolved, err := c.DS.ResolvePrediction(userID, start); err != nil {
		c.apiLogger.Warn("Failed to resolve prediction", "user_id", userID, "error", err)
	} else if resolved {
		c.apiLogger.Info("Prediction resolved", "user_id", userID, "actual_start", start.Format(time.DateOnly))
	}

	if c.Worker != nil {
		c.Worker.Trigger(userID)
	}

	resp := toCycleResponse(row)
	return ctx.JSON(http.StatusCreated, resp)
}

// UpdateCycle handles PUT /api/v2/cycles/:id
func (c *Controller) UpdateCycle(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid cycle ID", http.StatusBadRequest)
	}

	row, err := c.DS.GetCycle(userID, uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Cycle not found", http.StatusNotFound)
	}

	start, end, err := c.parseCycleRequest(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid cycle dates", http.StatusBadRequest)
	}

	row.StartDate = start
	row.EndDate = end
	if err := c.averageSymptoms(row); err != nil {
		return c.HandleError(ctx, err, "Failed to compute symptom averages", http.StatusInternalServerError)
	}
	if err := c.DS.SaveCycle(row); err != nil {
		return c.HandleError(ctx, err, "Failed to save cycle", http.StatusInternalServerError)
	}

	// Corrected dates change the training sequence.
	if c.Worker != nil {
		c.Worker.Trigger(userID)
	}

	resp := toCycleResponse(row)
	return ctx.JSON(http.StatusOK, resp)
}

// DeleteCycle handles DELETE /api/v2/cycles/:id
func (c *Controller) DeleteCycle(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid cycle ID", http.StatusBadRequest)
	}

	if err := c.DS.DeleteCycle(userID, uint(id)); err != nil {
		return c.HandleError(ctx, err, "Cycle not found", http.StatusNotFound)
	}

	if c.Worker != nil {
		c.Worker.Trigger(userID)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// parseCycleRequest parses and validates the cycle request body.
func (c *Controller) parseCycleRequest(ctx echo.Context) (start, end time.Time, err error) {
	var req CycleRequest
	if err = ctx.Bind(&req); err != nil {
		return start, end, err
	}
	start, err = time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return start, end, err
	}
	end, err = time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return start, end, err
	}
	start = cycle.Midnight(start)
	end = cycle.Midnight(end)
	if end.Before(start) {
		return start, end, echo.NewHTTPError(http.StatusBadRequest, "end_date must not be before start_date")
	}
	return start, end, nil
}

// averageSymptoms fills the cycle's symptom summary from the daily entries
// recorded within its span. No entries leaves the summary unset.
func (c *Controller) averageSymptoms(row *datastore.Cycle) error {
	entries, err := c.DS.GetDailyEntries(row.UserID, row.StartDate, row.EndDate)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		row.AverageSymptoms = nil
		return nil
	}

	sums := map[string]float64{}
	for i := range entries {
		sums["cramps"] += float64(entries[i].Cramps)
		sums["bloating"] += float64(entries[i].Bloating)
		sums["mood"] += float64(entries[i].Mood)
		sums["stress"] += float64(entries[i].Stress)
		sums["energy"] += float64(entries[i].Energy)
		sums["sleep_quality"] += float64(entries[i].SleepQuality)
	}
	n := float64(len(entries))
	for name := range sums {
		sums[name] /= n
	}
	row.AverageSymptoms = sums
	return nil
}
