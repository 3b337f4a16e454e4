package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-booking-api/internal/models"
	"github.com/noah-isme/academy-booking-api/internal/service"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
	"github.com/noah-isme/academy-booking-api/pkg/response"
)

// SlotHandler exposes the monthly slot catalog endpoints.
type SlotHandler struct {
	slots *service.SlotService
}

// NewSlotHandler constructs SlotHandler.
func NewSlotHandler(slots *service.SlotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

// ListByMonth godoc
// @Summary List slots for a season month with occupied seat counts
// @Tags Slots
// @Produce json
// @Param seasonId path string true "Season ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /seasons/{seasonId}/slots [get]
func (h *SlotHandler) ListByMonth(c *gin.Context) {
	month, err := models.ParseMonth(c.Query("month"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid month, expected YYYY-MM"))
		return
	}
	slots, err := h.slots.GetByMonth(c.Request.Context(), c.Param("seasonId"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Generate godoc
// @Summary Generate slot-month documents for a season from its templates
// @Tags Slots
// @Produce json
// @Param seasonId path string true "Season ID"
// @Success 200 {object} response.Envelope
// @Router /seasons/{seasonId}/slots/generate [post]
func (h *SlotHandler) Generate(c *gin.Context) {
	created, err := h.slots.GenerateForSeason(c.Request.Context(), c.Param("seasonId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"created": created}, nil)
}

// Resync godoc
// @Summary Resync slot capacities from the season templates
// @Tags Slots
// @Produce json
// @Param seasonId path string true "Season ID"
// @Success 200 {object} response.Envelope
// @Router /seasons/{seasonId}/slots/resync [post]
func (h *SlotHandler) Resync(c *gin.Context) {
	updated, err := h.slots.ResyncCapacity(c.Request.Context(), c.Param("seasonId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": updated}, nil)
}
