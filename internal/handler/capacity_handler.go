package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-booking-api/internal/models"
	"github.com/noah-isme/academy-booking-api/internal/service"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
	"github.com/noah-isme/academy-booking-api/pkg/response"
)

// CapacityHandler exposes capacity lookup endpoints.
type CapacityHandler struct {
	capacity *service.CapacityService
}

// NewCapacityHandler constructs CapacityHandler.
func NewCapacityHandler(capacity *service.CapacityService) *CapacityHandler {
	return &CapacityHandler{capacity: capacity}
}

// Get godoc
// @Summary Capacity info for a day-type and time-slot combination
// @Tags Capacity
// @Produce json
// @Param seasonId path string true "Season ID"
// @Param dayType query string true "Day type (MWF, TTH, WEEKEND)"
// @Param timeSlot query string true "Time slot (HH:MM-HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /seasons/{seasonId}/capacity [get]
func (h *CapacityHandler) Get(c *gin.Context) {
	dayType := models.DayType(c.Query("dayType"))
	if !dayType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid dayType, expected MWF, TTH or WEEKEND"))
		return
	}
	timeSlot := c.Query("timeSlot")
	if _, _, err := models.ParseTimeSlot(timeSlot); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timeSlot, expected HH:MM-HH:MM"))
		return
	}
	info, err := h.capacity.GetCapacityInfo(c.Request.Context(), c.Param("seasonId"), dayType, timeSlot)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}
