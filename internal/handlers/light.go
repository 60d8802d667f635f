package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lahn92/AquaTimer/internal/service"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusSaved    = "saved"
	statusTimezone = "timezone_set"

	errMissingSchedule = "missing schedule data"
	errBadSchedule     = "malformed schedule JSON"
	errSaveSchedule    = "failed to save schedule"
	errGetSchedule     = "failed to load schedule"
	errMissingOffset   = "missing timezone offset"
	errSaveTimezone    = "failed to save timezone"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// scheduleEnvelope allows clients to POST either a bare JSON array or
// {"schedule": [...]}.
type scheduleEnvelope struct {
	Schedule json.RawMessage `json:"schedule"`
}

// timezoneRequest uses a pointer so an explicit offset of 0 (UTC) passes the
// required check.
type timezoneRequest struct {
	Offset *int `json:"offset" binding:"required"`
}

// SetTimezoneRequest is an exported model for Swagger docs of the timezone payload.
type SetTimezoneRequest struct {
	// Whole-hour offset from UTC, -12..12
	Offset int `json:"offset" example:"2"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get schedule
// @Description  Returns the breakpoint list in the persisted format: [{"time":"HH:MM","duty":0-100}, ...]
// @Tags         schedule
// @Produce      json
// @Success      200  {array}   object
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/schedule [get]
func (h *Handler) getSchedule(c *gin.Context) {
	body, err := h.services.Schedule.WireJSON()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSchedule, "schedule_marshal_failed", err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// @Summary      Replace schedule
// @Description  Replaces the whole breakpoint set. Malformed JSON clears the schedule (lights off) and returns 400.
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        body  body   object  true  "JSON array of points, or {\"schedule\":[...]}"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/schedule [post]
func (h *Handler) replaceSchedule(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingSchedule})
		return
	}

	payload := body
	var env scheduleEnvelope
	if json.Unmarshal(body, &env) == nil && len(env.Schedule) > 0 {
		payload = env.Schedule
	}

	ctx := c.Request.Context()
	if err := h.services.Schedule.Replace(ctx, string(payload)); err != nil {
		if errors.Is(err, service.ErrScheduleParse) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errBadSchedule})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveSchedule, "schedule_save_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusSaved,
		"points": h.services.Schedule.PointCount(),
	})
}

// @Summary      Get status
// @Description  Current time, actuator duty, schedule target and point count.
// @Tags         status
// @Produce      json
// @Success      200  {object}  models.LightStatus
// @Router       /api/v1/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Status())
}

// @Summary      Set timezone offset
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body   SetTimezoneRequest  true  "Offset payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/settings/timezone [post]
func (h *Handler) setTimezone(c *gin.Context) {
	var req timezoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingOffset})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Settings.SetTimezoneOffset(ctx, *req.Offset); err != nil {
		// Range validation failures come back as client errors; persistence
		// failures as internal ones.
		if errors.Is(err, service.ErrInvalidTimezone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveTimezone, "set_timezone_failed", err, "offset", *req.Offset)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusTimezone,
		"offset": *req.Offset,
	})
}
