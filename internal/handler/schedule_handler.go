package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-booking-api/internal/service"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
	"github.com/noah-isme/academy-booking-api/pkg/response"
)

// ScheduleHandler exposes the weekly schedule sync endpoint.
type ScheduleHandler struct {
	sync *service.ScheduleSyncService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(sync *service.ScheduleSyncService) *ScheduleHandler {
	return &ScheduleHandler{sync: sync}
}

// Sync godoc
// @Summary Sync a student's weekly pattern into monthly enrollments
// @Tags Schedules
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body service.SyncScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/schedule-sync [post]
func (h *ScheduleHandler) Sync(c *gin.Context) {
	var req service.SyncScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.sync.SyncWeeklyPattern(c.Request.Context(), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
