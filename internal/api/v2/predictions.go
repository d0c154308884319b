// predictions.go: next cycle prediction endpoints
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
	"github.com/cyclesync/cyclesync-go/internal/errors"
)

// initPredictionRoutes registers prediction API endpoints
func (c *Controller) initPredictionRoutes() {
	c.Group.POST("/predictions/next", c.PredictNextCycle)
	c.Group.GET("/predictions", c.GetPredictions)
}

// PredictionResponse is the JSON representation of one prediction.
type PredictionResponse struct {
	Available      bool     `json:"available"`
	Reason         string   `json:"reason,omitempty"`
	PredictionDate string   `json:"prediction_date,omitempty"`
	PredictedStart string   `json:"predicted_start,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
	ActualStart    string   `json:"actual_start,omitempty"`
	AccuracyDays   *int     `json:"accuracy_days,omitempty"`
}

// PredictNextCycle handles POST /api/v2/predictions/next. It runs the
// forecaster over the user's recorded history and persists the outcome.
// Too little history or an unusable model degrade to "not available"
// rather than an error status.
func (c *Controller) PredictNextCycle(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	records, err := c.DS.GetCycleRecords(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load cycle history", http.StatusInternalServerError)
	}
	if len(records) == 0 {
		return ctx.JSON(http.StatusOK, &PredictionResponse{Available: false, Reason: "no recorded cycles"})
	}

	lengths := cycle.Lengths(records)
	lastStart := records[len(records)-1].StartDate

	prediction, err := c.Forecaster.Predict(userID, lengths, lastStart)
	if err != nil {
		if errors.Is(err, errors.ErrPredictionUnavailable) {
			return ctx.JSON(http.StatusOK, &PredictionResponse{Available: false, Reason: "prediction unavailable"})
		}
		return c.HandleError(ctx, err, "Failed to predict next cycle", http.StatusInternalServerError)
	}
	if prediction == nil {
		return ctx.JSON(http.StatusOK, &PredictionResponse{Available: false, Reason: "insufficient cycle history"})
	}

	row := &datastore.Prediction{
		UserID:         userID,
		PredictionDate: prediction.PredictionDate,
		PredictedStart: prediction.PredictedStart,
		Confidence:     prediction.Confidence,
	}
	if err := c.DS.SavePrediction(row); err != nil {
		return c.HandleError(ctx, err, "Failed to save prediction", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, &PredictionResponse{
		Available:      true,
		PredictionDate: prediction.PredictionDate.Format(time.DateOnly),
		PredictedStart: prediction.PredictedStart.Format(time.DateOnly),
		Confidence:     prediction.Confidence,
	})
}

// GetPredictions handles GET /api/v2/predictions?limit=N, most recent first.
func (c *Controller) GetPredictions(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.HandleError(ctx, err, "Invalid limit", http.StatusBadRequest)
		}
	}

	rows, err := c.DS.GetPredictions(userID, limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load predictions", http.StatusInternalServerError)
	}

	responses := make([]PredictionResponse, 0, len(rows))
	for i := range rows {
		domain := rows[i].ToDomain()
		resp := PredictionResponse{
			Available:      true,
			PredictionDate: domain.PredictionDate.Format(time.DateOnly),
			PredictedStart: domain.PredictedStart.Format(time.DateOnly),
			Confidence:     domain.Confidence,
		}
		if domain.ActualStart != nil {
			resp.ActualStart = domain.ActualStart.Format(time.DateOnly)
		}
		if accuracy, ok := domain.Accuracy(); ok {
			resp.AccuracyDays = &accuracy
		}
		responses = append(responses, resp)
	}
	return ctx.JSON(http.StatusOK, responses)
}
