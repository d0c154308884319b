// profile.go: user profile baseline endpoints
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
	"github.com/cyclesync/cyclesync-go/internal/errors"
)

// ProfileRequest is the JSON body for updating the profile baseline.
type ProfileRequest struct {
	CycleLength   int     `json:"cycle_length"`
	PeriodLength  int     `json:"period_length"`
	LastOvulation *string `json:"last_ovulation"`
}

// ProfileResponse is the JSON representation of a profile.
type ProfileResponse struct {
	UserID        string  `json:"user_id"`
	CycleLength   int     `json:"cycle_length"`
	PeriodLength  int     `json:"period_length"`
	LastOvulation *string `json:"last_ovulation,omitempty"`
}

func toProfileResponse(p *datastore.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		UserID:       p.UserID,
		CycleLength:  p.CycleLength,
		PeriodLength: p.PeriodLength,
	}
	if p.LastOvulation != nil {
		s := p.LastOvulation.Format(time.DateOnly)
		resp.LastOvulation = &s
	}
	return resp
}

// GetProfile handles GET /api/v2/profile
func (c *Controller) GetProfile(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	profile, err := c.DS.GetProfile(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, toProfileResponse(profile))
}

// UpdateProfile handles PUT /api/v2/profile
func (c *Controller) UpdateProfile(ctx echo.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "User identification required", http.StatusBadRequest)
	}

	var req ProfileRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.CycleLength <= 0 || req.PeriodLength <= 0 || req.PeriodLength >= req.CycleLength {
		verr := errors.Newf("period length must be positive and shorter than cycle length").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
		return c.HandleError(ctx, verr, "Invalid profile values", http.StatusBadRequest)
	}

	profile, err := c.DS.GetProfile(userID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}

	profile.CycleLength = req.CycleLength
	profile.PeriodLength = req.PeriodLength
	if req.LastOvulation != nil {
		day, err := time.Parse(time.DateOnly, *req.LastOvulation)
		if err != nil {
			return c.HandleError(ctx, err, "Invalid last ovulation date", http.StatusBadRequest)
		}
		normalized := cycle.Midnight(day)
		profile.LastOvulation = &normalized
	}

	if err := c.DS.SaveProfile(profile); err != nil {
		return c.HandleError(ctx, err, "Failed to save profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, toProfileResponse(profile))
}
