package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type occupancyDTO struct {
	ZoneID          string `json:"zone_id"`
	CurrentVisitors int    `json:"current_visitors"`
}

type updateOccupancyRequest struct {
	Visitors *int `json:"visitors"`
}

// ListOccupancy handles GET /api/zones.
func (c *Controller) ListOccupancy(ctx echo.Context) error {
	occ, err := c.svc.GetOccupancy(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Database error")
	}
	out := make([]occupancyDTO, len(occ))
	for i, o := range occ {
		out[i] = occupancyDTO{ZoneID: o.ZoneID, CurrentVisitors: o.Visitors}
	}
	return ctx.JSON(http.StatusOK, out)
}

// LoadSnapshot handles GET /api/zones/load.
func (c *Controller) LoadSnapshot(ctx echo.Context) error {
	snap, err := c.svc.Snapshot(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Database error")
	}
	return ctx.JSON(http.StatusOK, snap)
}

// UpdateOccupancy handles POST /api/zones/:zoneId.
func (c *Controller) UpdateOccupancy(ctx echo.Context) error {
	var req updateOccupancyRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, badRequest("visitors must be an integer"), "Invalid request body")
	}
	if req.Visitors == nil {
		return c.HandleError(ctx, badRequest("visitors is required"), "Invalid request body")
	}
	if err := c.svc.SetOccupancy(ctx.Request().Context(), ctx.Param("zoneId"), *req.Visitors); err != nil {
		return c.HandleError(ctx, err, "Failed to update zone")
	}
	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}
