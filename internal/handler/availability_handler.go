package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-api/internal/service"
	"github.com/classgrid/classgrid-api/pkg/response"
)

// AvailabilityHandler serves the weekly slot grid and teacher availability.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler creates a new handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// TimeSlots godoc
// @Summary List the weekly time-slot grid
// @Tags Scheduling
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /time-slots [get]
func (h *AvailabilityHandler) TimeSlots(c *gin.Context) {
	slots, err := h.service.TimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// TeacherAvailability godoc
// @Summary List a teacher's availability windows
// @Tags Scheduling
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /availability/{teacherId} [get]
func (h *AvailabilityHandler) TeacherAvailability(c *gin.Context) {
	windows, err := h.service.TeacherAvailability(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}
