package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/notabase/internal/middleware"
	"github.com/suteetoe/notabase/internal/service"
	"github.com/suteetoe/notabase/prometheus"
)

// ActivityHandler exposes the tenant's audit trail.
type ActivityHandler struct {
	activity *service.ActivityService
}

// NewActivityHandler wires the activity handler.
func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// ListActivity returns the tenant's audit entries, most recent first.
func (h *ActivityHandler) ListActivity(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	defer prometheus.TrackDBOperation("query")(time.Now())
	entries, err := h.activity.List(c.Request().Context(), middleware.GetPrincipal(c), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}
