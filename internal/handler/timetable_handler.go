package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-api/internal/dto"
	"github.com/classgrid/classgrid-api/internal/models"
	"github.com/classgrid/classgrid-api/internal/scheduler"
	appErrors "github.com/classgrid/classgrid-api/pkg/errors"
	"github.com/classgrid/classgrid-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, classID string, req dto.GenerateTimetableRequest) (*scheduler.Result, error)
	Resolve(ctx context.Context, classID string, req dto.ResolveTimetableRequest) (*scheduler.Result, error)
	Get(ctx context.Context, classID string) ([]models.TimetableEntryDetail, error)
	Activate(ctx context.Context, classID string) (int64, error)
	Export(ctx context.Context, classID, format string) ([]byte, string, error)
	GenerateAll(ctx context.Context, req dto.BulkGenerateRequest) (int, error)
}

// TimetableHandler wires HTTP endpoints to the timetable service.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a class timetable
// @Description Run the scheduling engine and store the result as the class draft
// @Tags Timetables
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param payload body dto.GenerateTimetableRequest false "Generation options"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{classId}/timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}

	result, err := h.service.Generate(c.Request.Context(), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Resolve godoc
// @Summary Resolve ambiguous teacher slots
// @Description Apply manual teacher selections to the latest generation result
// @Tags Timetables
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param payload body dto.ResolveTimetableRequest true "Slot to teacher selections"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{classId}/timetable/resolve [post]
func (h *TimetableHandler) Resolve(c *gin.Context) {
	var req dto.ResolveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolve payload"))
		return
	}

	result, err := h.service.Resolve(c.Request.Context(), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get a class timetable
// @Tags Timetables
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{classId}/timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	entries, err := h.service.Get(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Activate godoc
// @Summary Activate the class draft timetable
// @Description Promote the reviewed draft to the active timetable
// @Tags Timetables
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{classId}/timetable/activate [post]
func (h *TimetableHandler) Activate(c *gin.Context) {
	promoted, err := h.service.Activate(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"activatedEntries": promoted}, nil)
}

// Export godoc
// @Summary Export a class timetable
// @Description Download the class timetable as CSV or PDF
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param classId path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{classId}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	classID := c.Param("classId")
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.service.Export(c.Request.Context(), classID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	extension := "csv"
	if contentType == "application/pdf" {
		extension = "pdf"
	}
	filename := fmt.Sprintf("timetable-%s.%s", classID, extension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// GenerateAll godoc
// @Summary Generate timetables for every class
// @Description Queue background generation jobs for all classes
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.BulkGenerateRequest false "Generation options"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables/generate [post]
func (h *TimetableHandler) GenerateAll(c *gin.Context) {
	var req dto.BulkGenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
			return
		}
	}

	queued, err := h.service.GenerateAll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, dto.BulkGenerateResponse{ClassesQueued: queued}, nil)
}
