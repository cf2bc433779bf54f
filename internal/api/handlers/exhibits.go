package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zoneheat/zoneheat/internal/auth"
	"github.com/zoneheat/zoneheat/internal/datastore"
)

type exhibitDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"exhibition_name"`
}

type zoneInfoResponse struct {
	Zone        string       `json:"zone"`
	Exhibitions []exhibitDTO `json:"exhibitions"`
}

type replaceExhibitsRequest struct {
	Exhibitions *[]string `json:"exhibitions"`
}

type addExhibitRequest struct {
	ExhibitName *string `json:"exhibitName"`
}

func toExhibitDTOs(in []datastore.Exhibit) []exhibitDTO {
	out := make([]exhibitDTO, len(in))
	for i, e := range in {
		out[i] = exhibitDTO{ID: e.ID, Name: e.Name}
	}
	return out
}

// GetZoneInfo handles GET /api/zone-info/:zoneName.
func (c *Controller) GetZoneInfo(ctx echo.Context) error {
	zoneName := ctx.Param("zoneName")
	exhibits, err := c.svc.GetExhibits(ctx.Request().Context(), zoneName)
	if err != nil {
		return c.HandleError(ctx, err, "Database connection or query failed")
	}
	return ctx.JSON(http.StatusOK, zoneInfoResponse{Zone: zoneName, Exhibitions: toExhibitDTOs(exhibits)})
}

// ReplaceZoneInfo handles POST /api/zone-info/:zoneName.
func (c *Controller) ReplaceZoneInfo(ctx echo.Context) error {
	var req replaceExhibitsRequest
	if err := ctx.Bind(&req); err != nil || req.Exhibitions == nil {
		return c.HandleError(ctx, badRequest("exhibitions array must be provided"), "Invalid request body")
	}

	zoneName := ctx.Param("zoneName")
	r := ctx.Request()
	exhibits, err := c.svc.ReplaceExhibits(r.Context(), auth.FromContext(r.Context()), zoneName, *req.Exhibitions)
	if err != nil {
		return c.HandleError(ctx, err, "Database connection or transaction failed")
	}
	return ctx.JSON(http.StatusOK, zoneInfoResponse{Zone: zoneName, Exhibitions: toExhibitDTOs(exhibits)})
}

// AddExhibit handles POST /api/zone-info/:zoneName/exhibit.
func (c *Controller) AddExhibit(ctx echo.Context) error {
	var req addExhibitRequest
	if err := ctx.Bind(&req); err != nil || req.ExhibitName == nil {
		return c.HandleError(ctx, badRequest("exhibitName is required"), "Invalid request body")
	}

	r := ctx.Request()
	ex, err := c.svc.AddExhibit(r.Context(), auth.FromContext(r.Context()), ctx.Param("zoneName"), *req.ExhibitName)
	if err != nil {
		return c.HandleError(ctx, err, "Database insert failed")
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"exhibition": exhibitDTO{ID: ex.ID, Name: ex.Name},
	})
}

// DeleteExhibit handles DELETE /api/zone-info/:zoneName/exhibit/:id.
func (c *Controller) DeleteExhibit(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.HandleError(ctx, badRequest("exhibit id must be a positive integer"), "Invalid exhibit id")
	}

	r := ctx.Request()
	if err := c.svc.RemoveExhibit(r.Context(), auth.FromContext(r.Context()), ctx.Param("zoneName"), uint(id)); err != nil {
		return c.HandleError(ctx, err, "Database delete failed")
	}
	return ctx.JSON(http.StatusOK, map[string]any{"success": true, "deletedId": uint(id)})
}
