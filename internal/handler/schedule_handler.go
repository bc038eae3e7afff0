package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Anandhg36/RMIT-Hackathon/internal/middleware"
	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	"github.com/Anandhg36/RMIT-Hackathon/internal/service"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/response"
)

type scheduleProvider interface {
	Refresh(ctx context.Context, userID string) ([]models.CourseSchedule, models.Selection, error)
	Current(ctx context.Context, userID string) ([]models.CourseSchedule, bool, error)
}

type selectionManager interface {
	Current(ctx context.Context, userID string) (models.Selection, error)
	SelectCourse(ctx context.Context, userID string, index int) (models.Selection, error)
	SwitchTab(ctx context.Context, userID string, tab models.SessionTab) (models.Selection, error)
	Reset(ctx context.Context, userID string) (models.Selection, error)
}

type scheduleExporter interface {
	Generate(schedules []models.CourseSchedule, format service.ExportFormat) (*service.ExportResult, error)
}

// ScheduleView pairs the reconciled collection with the user's selection.
type ScheduleView struct {
	Schedules []models.CourseSchedule `json:"schedules"`
	Selection models.Selection        `json:"selection"`
}

// ScheduleHandler wires the schedule, selection and export services to HTTP.
type ScheduleHandler struct {
	schedules  scheduleProvider
	selections selectionManager
	exporter   scheduleExporter
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedules scheduleProvider, selections selectionManager, exporter scheduleExporter) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, selections: selections, exporter: exporter}
}

// Get godoc
// @Summary Reconciled course schedule
// @Description Return the merged per-course schedule with classmate rosters. Pass refresh=true to force a new upstream pass.
// @Tags Schedule
// @Produce json
// @Param refresh query bool false "Force a fresh reconciliation pass"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ctx := c.Request.Context()

	if c.Query("refresh") != "true" {
		if cached, hit, err := h.schedules.Current(ctx, claims.UserID); err == nil && hit {
			sel, err := h.selections.Current(ctx, claims.UserID)
			if err != nil {
				response.Error(c, err)
				return
			}
			response.JSON(c, http.StatusOK, ScheduleView{Schedules: cached, Selection: sel})
			return
		}
	}

	schedules, sel, err := h.schedules.Refresh(ctx, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ScheduleView{Schedules: schedules, Selection: sel})
}

// GetSelection godoc
// @Summary Current dashboard selection
// @Tags Selection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedule/selection [get]
func (h *ScheduleHandler) GetSelection(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sel, err := h.selections.Current(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sel)
}

// SelectCourse godoc
// @Summary Select a course by index
// @Description Move the selection to the given index. Switching courses resets the tab to theory.
// @Tags Selection
// @Accept json
// @Produce json
// @Param payload body models.SelectCourseRequest true "Course index"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/selection/course [put]
func (h *ScheduleHandler) SelectCourse(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SelectCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}

	sel, err := h.selections.SelectCourse(c.Request.Context(), claims.UserID, req.Index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sel)
}

// SwitchTab godoc
// @Summary Switch between theory and practical panes
// @Tags Selection
// @Accept json
// @Produce json
// @Param payload body models.SwitchTabRequest true "Session tab"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/selection/tab [put]
func (h *ScheduleHandler) SwitchTab(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SwitchTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tab payload"))
		return
	}

	sel, err := h.selections.SwitchTab(c.Request.Context(), claims.UserID, req.Tab)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sel)
}

// ResetSelection godoc
// @Summary Reset the selection to its default
// @Tags Selection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedule/selection/reset [post]
func (h *ScheduleHandler) ResetSelection(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sel, err := h.selections.Reset(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sel)
}

// Export godoc
// @Summary Download the schedule as CSV or PDF
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ctx := c.Request.Context()

	schedules, hit, err := h.schedules.Current(ctx, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !hit {
		schedules, _, err = h.schedules.Refresh(ctx, claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exporter.Generate(schedules, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
