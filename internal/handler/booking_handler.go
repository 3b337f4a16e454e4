package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-booking-api/internal/service"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
	"github.com/noah-isme/academy-booking-api/pkg/response"
)

// BookingHandler exposes seat enrollment and attendance endpoints.
type BookingHandler struct {
	bookings *service.BookingService
	metrics  *service.MetricsService
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings *service.BookingService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, metrics: metrics}
}

type enrollRequest struct {
	StudentID string `json:"studentId" binding:"required"`
}

type attendanceRequest struct {
	Date     string `json:"date" binding:"required"`
	Attended bool   `json:"attended"`
}

// Enroll godoc
// @Summary Enroll a student into a slot month
// @Tags Bookings
// @Accept json
// @Produce json
// @Param slotId path string true "Slot ID"
// @Param payload body enrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /slots/{slotId}/enrollments [post]
func (h *BookingHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.bookings.Enroll(c.Request.Context(), c.Param("slotId"), req.StudentID)
	if err != nil {
		h.metrics.RecordBookingOperation("enroll", "rejected")
		response.Error(c, err)
		return
	}
	h.metrics.RecordBookingOperation("enroll", "ok")
	response.Created(c, enrollment)
}

// Unenroll godoc
// @Summary Remove a student's enrollment from a slot month
// @Tags Bookings
// @Produce json
// @Param slotId path string true "Slot ID"
// @Param studentId path string true "Student ID"
// @Success 204
// @Router /slots/{slotId}/enrollments/{studentId} [delete]
func (h *BookingHandler) Unenroll(c *gin.Context) {
	err := h.bookings.Unenroll(c.Request.Context(), c.Param("slotId"), c.Param("studentId"))
	if err != nil {
		h.metrics.RecordBookingOperation("unenroll", "rejected")
		response.Error(c, err)
		return
	}
	h.metrics.RecordBookingOperation("unenroll", "ok")
	response.NoContent(c)
}

// MarkAttendance godoc
// @Summary Mark or clear attendance for an enrolled student
// @Tags Bookings
// @Accept json
// @Produce json
// @Param slotId path string true "Slot ID"
// @Param studentId path string true "Student ID"
// @Param payload body attendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /slots/{slotId}/enrollments/{studentId}/attendance [put]
func (h *BookingHandler) MarkAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD"))
		return
	}
	record, err := h.bookings.MarkAttendance(c.Request.Context(), c.Param("slotId"), c.Param("studentId"), date, req.Attended)
	if err != nil {
		h.metrics.RecordBookingOperation("mark_attendance", "rejected")
		response.Error(c, err)
		return
	}
	h.metrics.RecordBookingOperation("mark_attendance", "ok")
	response.JSON(c, http.StatusOK, record, nil)
}
