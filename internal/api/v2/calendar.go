// calendar.go: calendar projection endpoints
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cyclesync/cyclesync-go/internal/calendar"
)

// initCalendarRoutes registers calendar-related API endpoints
func (c *Controller) initCalendarRoutes() {
	c.Group.GET("/calendar/:year/:month", c.GetMonthProjection)
	c.Group.GET("/calendar/cycle", c.GetCurrentCycle)
}

// MonthProjectionResponse is the month view payload.
type MonthProjectionResponse struct {
	Year  int                      `json:"year"`
	Month int                      `json:"month"`
	Days  []calendar.DayProjection `json:"days"`
}

// GetMonthProjection handles GET /api/v2/calendar/:year/:month
func (c *Controller) GetMonthProjection(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil || year < 1900 || year > 2200 {
		return c.HandleError(ctx, err, "Invalid year", http.StatusBadRequest)
	}
	month, err := strconv.Atoi(ctx.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return c.HandleError(ctx, err, "Invalid month", http.StatusBadRequest)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	profile, err := c.DS.GetProfile(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}

	cycles, err := c.DS.GetCyclesInRange(userID, from, to)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load cycles", http.StatusInternalServerError)
	}

	days, err := c.Projector.Project(toProfile(profile), toRecords(cycles), from, to)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to project calendar", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, &MonthProjectionResponse{
		Year:  year,
		Month: month,
		Days:  days,
	})
}

// CurrentCycleResponse is the circular cycle view payload.
type CurrentCycleResponse struct {
	CycleLength int                      `json:"cycle_length"`
	Days        []calendar.DayProjection `json:"days"`
}

// GetCurrentCycle handles GET /api/v2/calendar/cycle
func (c *Controller) GetCurrentCycle(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	profile, err := c.DS.GetProfile(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}

	cycles, err := c.DS.GetCycles(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load cycles", http.StatusInternalServerError)
	}

	days, err := c.Projector.ProjectCurrentCycle(toProfile(profile), toRecords(cycles))
	if err != nil {
		return c.HandleError(ctx, err, "No cycle data to project", http.StatusNotFound)
	}

	return ctx.JSON(http.StatusOK, &CurrentCycleResponse{
		CycleLength: len(days),
		Days:        days,
	})
}
