package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-booking-api/internal/service"
	"github.com/noah-isme/academy-booking-api/pkg/response"
)

// CreditHandler exposes the reconciled credit balance endpoint.
type CreditHandler struct {
	credits *service.CreditService
}

// NewCreditHandler constructs CreditHandler.
func NewCreditHandler(credits *service.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits}
}

// Get godoc
// @Summary Real remaining credits for a student
// @Tags Credits
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/credits [get]
func (h *CreditHandler) Get(c *gin.Context) {
	remaining, err := h.credits.RealRemaining(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"realRemaining": remaining}, nil)
}
