package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type searchRequest struct {
	Query *string `json:"query"`
}

type searchResponse struct {
	Zone   string `json:"zone"`
	ZoneID string `json:"zone_id,omitempty"`
	Note   string `json:"note,omitempty"`
}

// SearchZone handles POST /api/search-zone. The note names the fallback
// path and is omitted when the remote classifier answered.
func (c *Controller) SearchZone(ctx echo.Context) error {
	var req searchRequest
	if err := ctx.Bind(&req); err != nil || req.Query == nil {
		return c.HandleError(ctx, badRequest("Query string required"), "Invalid request body")
	}

	res, err := c.svc.ClassifyInterest(ctx.Request().Context(), *req.Query)
	if err != nil {
		return c.HandleError(ctx, err, "Query string required")
	}

	out := searchResponse{Zone: res.ZoneLabel, ZoneID: res.ZoneID}
	if res.Source.IsFallback() {
		out.Note = string(res.Source)
	}
	return ctx.JSON(http.StatusOK, out)
}
