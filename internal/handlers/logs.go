package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"building_energy/internal/models"
	"building_energy/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLoadLogs    = "failed to load logs"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List control events
// @Description  Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), type and building. A date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from         query   string  false  "Start of range"  example(2025-08-01)
// @Param        to           query   string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        type         query   string  false  "Event type"  Enums(CREATE,ADJUST,MODE_CHANGE,DELETE)
// @Param        building_id  query   string  false  "Only events of this building"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	filter := service.LogFilter{
		From:       from,
		To:         to,
		Type:       c.Query("type"),
		BuildingID: c.Query("building_id"),
	}
	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	if err != nil {
		h.respondServiceError(c, err, errLoadLogs, "logs_list_failed",
			"from", from, "to", to, "type", filter.Type, "building_id", filter.BuildingID)
		return
	}
	if events == nil {
		events = []models.ControlEvent{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// parseQueryTime accepts the supported layouts and normalizes to UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: RFC3339, 'YYYY-MM-DD HH:MM:SS', 'YYYY-MM-DD'", s)
}
