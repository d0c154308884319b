// stats.go: cycle statistics and the hormone reference dashboard
package api

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cyclesync/cyclesync-go/internal/cycle"
)

// initStatsRoutes registers statistics API endpoints
func (c *Controller) initStatsRoutes() {
	c.Group.GET("/stats", c.GetStats)
	c.Group.GET("/dashboard/hormones", c.GetHormoneDashboard)
}

// StatsResponse summarizes a user's recorded history and forecast accuracy.
type StatsResponse struct {
	CycleCount          int      `json:"cycle_count"`
	AverageCycleLength  *float64 `json:"average_cycle_length,omitempty"`
	ShortestCycleLength *int     `json:"shortest_cycle_length,omitempty"`
	LongestCycleLength  *int     `json:"longest_cycle_length,omitempty"`
	PredictionCount     int      `json:"prediction_count"`
	ResolvedCount       int      `json:"resolved_count"`
	MeanAbsErrorDays    *float64 `json:"mean_abs_error_days,omitempty"`
}

// GetStats handles GET /api/v2/stats
func (c *Controller) GetStats(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	records, err := c.DS.GetCycleRecords(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load cycle history", http.StatusInternalServerError)
	}

	resp := StatsResponse{CycleCount: len(records)}

	// Lengths are start-to-start, the same sequence the model trains on.
	if lengths := cycle.Lengths(records); len(lengths) > 0 {
		sum, shortest, longest := 0, lengths[0], lengths[0]
		for _, length := range lengths {
			sum += length
			shortest = min(shortest, length)
			longest = max(longest, length)
		}
		avg := float64(sum) / float64(len(lengths))
		resp.AverageCycleLength = &avg
		resp.ShortestCycleLength = &shortest
		resp.LongestCycleLength = &longest
	}

	predictions, err := c.DS.GetPredictions(userID, 0)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load predictions", http.StatusInternalServerError)
	}
	resp.PredictionCount = len(predictions)

	var errSum float64
	for i := range predictions {
		domain := predictions[i].ToDomain()
		if accuracy, ok := domain.Accuracy(); ok {
			resp.ResolvedCount++
			errSum += float64(accuracy)
		}
	}
	if resp.ResolvedCount > 0 {
		mae := errSum / float64(resp.ResolvedCount)
		resp.MeanAbsErrorDays = &mae
	}

	return ctx.JSON(http.StatusOK, &resp)
}

// hormoneCurveDays is the fixed length of the reference hormone curves.
const hormoneCurveDays = 30

// HormonePoint is one day of the reference hormone dashboard.
type HormonePoint struct {
	Day          int     `json:"day"`
	FSH          float64 `json:"fsh"`
	LH           float64 `json:"lh"`
	Estradiol    float64 `json:"estradiol"`
	Progesterone float64 `json:"progesterone"`
}

// GetHormoneDashboard handles GET /api/v2/dashboard/hormones. The curves
// are a fixed textbook reference over a 30-day cycle, not derived from the
// user's data.
func (c *Controller) GetHormoneDashboard(ctx echo.Context) error {
	points := make([]HormonePoint, 0, hormoneCurveDays)
	for day := 1; day <= hormoneCurveDays; day++ {
		d := float64(day)
		points = append(points, HormonePoint{
			Day:          day,
			FSH:          5 + 2*math.Exp(-math.Pow((d-1)/5, 2)) + 0.5*math.Sin(d/30*2*math.Pi),
			LH:           1 + 10*math.Exp(-math.Pow((d-14)/1.5, 2)),
			Estradiol:    5 + 8*math.Exp(-math.Pow((d-12)/3, 2)) + 2*math.Exp(-math.Pow((d-21)/4, 2)),
			Progesterone: 1 + 5*math.Exp(-math.Pow((d-21)/3, 2)),
		})
	}
	return ctx.JSON(http.StatusOK, points)
}
