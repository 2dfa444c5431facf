package handlers

import (
	"context"
	"errors"
	"net/http"

	"hvac/internal/hvac"
	"hvac/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errControl         = "failed to apply request"
	errClockBackwards  = "clock went backwards"
	errGetState        = "failed to load state"
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

// fanRequest is the body of POST /hvac/fan.
type fanRequest struct {
	Auto *bool `json:"auto" binding:"required"`
}

// tickRequest is the body of POST /hvac/tick.
type tickRequest struct {
	Now *uint64 `json:"now" binding:"required"`
}

// SetFanRequest documents the fan payload for Swagger.
type SetFanRequest struct {
	// true: fan follows heat/cool; false: fan holds its current state
	Auto bool `json:"auto" example:"false"`
}

// TickRequest documents the tick payload for Swagger.
type TickRequest struct {
	// Controller time in whole seconds; must not go backwards
	Now uint64 `json:"now" example:"120"`
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

// respondControl writes the snapshot of a control call, or maps its error.
func (h *Handler) respondControl(c *gin.Context, status, logKey string, st models.ControllerState, err error) {
	if err != nil {
		if errors.Is(err, hvac.ErrClockWentBackwards) {
			h.logAndJSONError(c, http.StatusConflict, errClockBackwards, logKey, err, "clock_s", st.ClockS)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errControl, logKey, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "state": st})
}

func (h *Handler) request(c *gin.Context, status, logKey string, call func(context.Context) (models.ControllerState, error)) {
	st, err := call(c.Request.Context())
	h.respondControl(c, status, logKey, st, err)
}

// @Summary      Request heat
// @Tags         hvac
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/heat [post]
// @Security     BearerAuth
func (h *Handler) heat(c *gin.Context) {
	h.request(c, "heat_requested", "hvac_heat_failed", h.services.Control.Heat)
}

// @Summary      Request cool
// @Tags         hvac
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/cool [post]
// @Security     BearerAuth
func (h *Handler) cool(c *gin.Context) {
	h.request(c, "cool_requested", "hvac_cool_failed", h.services.Control.Cool)
}

// @Summary      Request idle
// @Tags         hvac
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/idle [post]
// @Security     BearerAuth
func (h *Handler) idle(c *gin.Context) {
	h.request(c, "idle_requested", "hvac_idle_failed", h.services.Control.Idle)
}

// @Summary      Set fan mode
// @Description  auto=false holds the fan in whatever state it is in now
// @Tags         hvac
// @Accept       json
// @Produce      json
// @Param        body  body   SetFanRequest  true  "Fan payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/hvac/fan [post]
// @Security     BearerAuth
func (h *Handler) setFan(c *gin.Context) {
	var req fanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.Control.SetFanAuto(c.Request.Context(), *req.Auto)
	h.respondControl(c, "fan_mode_set", "hvac_fan_failed", st, err)
}

// @Summary      Advance controller clock
// @Tags         hvac
// @Accept       json
// @Produce      json
// @Param        body  body   TickRequest  true  "Tick payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "clock went backwards"
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/hvac/tick [post]
// @Security     BearerAuth
func (h *Handler) tick(c *gin.Context) {
	var req tickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.Control.Tick(c.Request.Context(), hvac.Seconds(*req.Now))
	h.respondControl(c, "ticked", "hvac_tick_failed", st, err)
}

// @Summary      Get controller state
// @Tags         hvac
// @Produce      json
// @Success      200  {object}  models.ControllerState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/hvac/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "hvac_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
