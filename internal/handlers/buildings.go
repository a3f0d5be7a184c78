package handlers

import (
	"errors"
	"net/http"

	"building_energy/internal/models"
	"building_energy/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAdjusted = "adjusted"
	statusDeleted  = "deleted"

	errCreateBuilding  = "failed to create building"
	errAdjustBuilding  = "failed to apply signal"
	errDeleteBuilding  = "failed to delete building"
	errGetState        = "failed to load state"
	errListBuildings   = "failed to list buildings"
	errNotFound        = "building not found"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondServiceError maps service sentinels to status codes; anything
// unrecognised is logged and reported as 500 with fallbackMsg.
func (h *Handler) respondServiceError(c *gin.Context, err error, fallbackMsg, logKey string, kv ...interface{}) {
	switch {
	case errors.Is(err, service.ErrBuildingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errNotFound})
	case errors.Is(err, service.ErrInvalidName), errors.Is(err, service.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, fallbackMsg, logKey, err, kv...)
	}
}

// CreateBuildingRequest is the payload for registering a building.
type CreateBuildingRequest struct {
	// Human readable building name
	Name string `json:"name" binding:"required" example:"HQ"`
}

// SignalRequest is the price signal payload. Price is required; 0 is a valid price.
type SignalRequest struct {
	// Energy price per kWh. Above 0.15 enters energy saving.
	Price *float32 `json:"price" binding:"required" example:"0.2"`
	// Signal duration in minutes. Recorded but has no effect on control.
	DurationMinutes uint32 `json:"duration_minutes" example:"60"`
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

// @Summary      Register building
// @Description  Creates a controller at 5.0 kW HVAC, 2.0 kW lighting, NORMAL mode
// @Tags         buildings
// @Accept       json
// @Produce      json
// @Param        body  body      CreateBuildingRequest  true  "Building"
// @Success      201   {object}  models.BuildingState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/buildings [post]
// @Security     BearerAuth
func (h *Handler) createBuilding(c *gin.Context) {
	var req CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.Buildings.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.respondServiceError(c, err, errCreateBuilding, "building_create_failed", "name", req.Name)
		return
	}
	if h.log != nil {
		h.log.Infow("building_created", "building_id", st.ID, "name", st.Name)
	}
	c.JSON(http.StatusCreated, st)
}

// @Summary      List buildings
// @Tags         buildings
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, buildings"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/buildings [get]
// @Security     BearerAuth
func (h *Handler) listBuildings(c *gin.Context) {
	list, err := h.services.Monitoring.ListStates(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListBuildings, "building_list_failed", err)
		return
	}
	if list == nil {
		list = []models.BuildingState{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(list),
		"buildings": list,
	})
}

// @Summary      Get building state
// @Tags         buildings
// @Produce      json
// @Param        id   path      string  true  "Building ID"
// @Success      200  {object}  models.BuildingState
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/buildings/{id} [get]
// @Security     BearerAuth
func (h *Handler) getBuilding(c *gin.Context) {
	id := c.Param("id")
	st, err := h.services.Monitoring.GetState(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, errGetState, "building_get_state_failed", "building_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Delete building
// @Tags         buildings
// @Produce      json
// @Param        id   path      string  true  "Building ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/buildings/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteBuilding(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Buildings.Delete(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err, errDeleteBuilding, "building_delete_failed", "building_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}

// @Summary      Apply price signal
// @Description  price > 0.15 scales HVAC by 0.7 and lighting by 0.8 (compounding) and sets ENERGY_SAVING; otherwise resets to NORMAL defaults
// @Tags         buildings
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Building ID"
// @Param        body  body      SignalRequest  true  "Price signal"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/buildings/{id}/signal [post]
// @Security     BearerAuth
func (h *Handler) adjustBuilding(c *gin.Context) {
	var req SignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id := c.Param("id")
	sig := models.Signal{Price: *req.Price, DurationMinutes: req.DurationMinutes}

	st, err := h.services.Buildings.Adjust(c.Request.Context(), id, sig)
	if err != nil {
		h.respondServiceError(c, err, errAdjustBuilding, "building_adjust_failed", "building_id", id, "price", sig.Price)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusAdjusted,
		"state":  st,
	})
}
