package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studycycle/internal/db"
	"github.com/studycycle/internal/locale"
	"github.com/studycycle/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type createCyclePayload struct {
	WeeklyHours *float64 `json:"weekly_hours"`
}

type adjustHoursPayload struct {
	Delta *float64 `json:"delta"`
}

// GetOverview 返回看板数据：当前周期、分配、整体进度与是否需要设置周学时
func (a *API) GetOverview(c *gin.Context) {
	overview, err := a.cycles.Overview(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load overview")
		return
	}

	var cycle any
	if overview.Cycle != nil {
		cycle = cycleToPayload(*overview.Cycle)
	}

	c.JSON(http.StatusOK, gin.H{
		"cycle":             cycle,
		"assignments":       assignmentsToPayload(overview.Assignments),
		"subject_count":     overview.SubjectCount,
		"total_assigned":    overview.TotalAssigned,
		"total_completed":   overview.TotalCompleted,
		"overall_progress":  overview.OverallProgress,
		"needs_hours_setup": overview.NeedsHoursSetup,
		"settings": gin.H{
			"ask_hours":        overview.Settings.AskHours,
			"weekly_hours":     overview.Settings.WeeklyHours,
			"current_cycle_id": overview.Settings.CurrentCycleID,
		},
	})
}

// ListCycles 返回周期历史，最新的在前
func (a *API) ListCycles(c *gin.Context) {
	summaries, err := a.cycles.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to list cycles")
		return
	}

	items := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		item := cycleToPayload(summary.Cycle)
		item["assignment_count"] = summary.AssignmentCount
		item["total_assigned"] = summary.TotalAssigned
		item["total_completed"] = summary.TotalCompleted
		item["overall_progress"] = summary.OverallProgress
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{"cycles": items})
}

// CreateCycle 按周学时生成新的学习周期
func (a *API) CreateCycle(c *gin.Context) {
	language := a.requestLanguage(c)

	var payload createCyclePayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.WeeklyHours == nil {
		respondFailure(c, http.StatusBadRequest, "weekly_hours is required", noticeWeeklyHoursInvalid.render(language))
		return
	}

	detail, err := a.cycles.CreateCycle(c.Request.Context(), currentUserID(c), *payload.WeeklyHours)
	if err != nil {
		a.handleCycleError(c, err, noticeCycleCreateFailed.render(language))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"cycle":       cycleToPayload(detail.Cycle),
		"assignments": assignmentsToPayload(detail.Assignments),
		"notice":      noticeCycleCreated.render(language),
	})
}

// ResetCycle 结束当前周期并重新询问周学时
func (a *API) ResetCycle(c *gin.Context) {
	language := a.requestLanguage(c)

	if err := a.cycles.ResetCycle(c.Request.Context(), currentUserID(c)); err != nil {
		a.handleCycleError(c, err, noticeCycleResetFailed.render(language))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reset":  true,
		"notice": noticeCycleReset.render(language),
	})
}

// AdjustAssignmentHours 以 delta 调整某科已完成时长
func (a *API) AdjustAssignmentHours(c *gin.Context) {
	language := a.requestLanguage(c)
	failure := noticeHoursUpdateFailed.render(language)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid assignment id", failure)
		return
	}

	var payload adjustHoursPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Delta == nil {
		respondFailure(c, http.StatusBadRequest, "delta is required", failure)
		return
	}

	assignment, err := a.cycles.AdjustHours(c.Request.Context(), currentUserID(c), id, *payload.Delta)
	if err != nil {
		a.handleCycleError(c, err, failure)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignmentToPayload(*assignment)})
}

// ExportCycle 导出周期为 xlsx
func (a *API) ExportCycle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid cycle id")
		return
	}

	buf, filename, err := a.exports.ExportCycle(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrCycleNotFound) {
			respondError(c, http.StatusNotFound, "cycle not found")
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to export cycle")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ActiveCycleBadge 生成当前周期的进度徽章 PNG，没有周期时进度为 0
func (a *API) ActiveCycleBadge(c *gin.Context) {
	percent := 0.0
	detail, err := a.cycles.ActiveDetail(c.Request.Context(), currentUserID(c))
	switch {
	case err == nil:
		percent = service.OverallProgress(detail.Assignments)
	case !errors.Is(err, service.ErrCycleNotFound):
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load cycle")
		return
	}

	label := locale.Pick(a.requestLanguage(c), "Progress", "Progresso")
	png, err := service.RenderProgressBadge(label, percent)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to render badge")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (a *API) handleCycleError(c *gin.Context, err error, failure notice) {
	language := a.requestLanguage(c)
	switch {
	case errors.Is(err, service.ErrWeeklyHoursOutOfRange):
		respondFailure(c, http.StatusBadRequest, err.Error(), noticeWeeklyHoursInvalid.render(language))
	case errors.Is(err, service.ErrNoSubjects):
		respondFailure(c, http.StatusConflict, err.Error(), noticeNoSubjects.render(language))
	case errors.Is(err, service.ErrInvalidDelta):
		respondFailure(c, http.StatusBadRequest, err.Error(), failure)
	case errors.Is(err, service.ErrAssignmentNotFound):
		respondFailure(c, http.StatusNotFound, "assignment not found", failure)
	case errors.Is(err, service.ErrCycleNotFound):
		respondFailure(c, http.StatusNotFound, "cycle not found", failure)
	default:
		c.Error(err)
		respondFailure(c, http.StatusInternalServerError, "operation failed", failure)
	}
}

func cycleToPayload(cycle db.Cycle) gin.H {
	return gin.H{
		"id":           cycle.ID,
		"name":         cycle.Name,
		"weekly_hours": cycle.WeeklyHours,
		"status":       cycle.Status,
		"created_at":   cycle.CreatedAt,
	}
}

func assignmentToPayload(assignment db.Assignment) gin.H {
	payload := gin.H{
		"id":              assignment.ID,
		"cycle_id":        assignment.CycleID,
		"subject_id":      assignment.SubjectID,
		"hours_assigned":  assignment.HoursAssigned,
		"hours_completed": assignment.HoursCompleted,
		"progress":        service.SubjectRatio(assignment) * 100,
		"is_complete":     service.IsComplete(assignment),
	}
	if assignment.Subject.ID != 0 {
		payload["subject"] = subjectToPayload(assignment.Subject)
	}
	return payload
}

func assignmentsToPayload(assignments []db.Assignment) []gin.H {
	items := make([]gin.H, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, assignmentToPayload(assignment))
	}
	return items
}
