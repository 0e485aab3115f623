package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studycycle/internal/allocation"
	"github.com/studycycle/internal/db"
	"github.com/studycycle/internal/service"
)

type subjectPayload struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
	Weight     string `json:"weight"`
	Notes      string `json:"notes"`
}

// ListSubjects 返回当前用户的全部科目
func (a *API) ListSubjects(c *gin.Context) {
	subjects, err := a.subjects.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to list subjects")
		return
	}

	items := make([]gin.H, 0, len(subjects))
	for _, subject := range subjects {
		items = append(items, subjectToPayload(subject))
	}
	c.JSON(http.StatusOK, gin.H{"subjects": items})
}

// CreateSubject 登记新科目，新科目在下一个周期才参与分配
func (a *API) CreateSubject(c *gin.Context) {
	language := a.requestLanguage(c)

	var payload subjectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request body", noticeSubjectAddFailed.render(language))
		return
	}

	subject, err := a.subjects.Create(c.Request.Context(), currentUserID(c), service.SubjectInput{
		Name:       payload.Name,
		Difficulty: payload.Difficulty,
		Weight:     payload.Weight,
		Notes:      payload.Notes,
	})
	if err != nil {
		handleSubjectError(c, err, noticeSubjectAddFailed.render(language))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"subject": subjectToPayload(*subject),
		"notice":  noticeSubjectAdded.render(language, subject.Name),
	})
}

// DeleteSubject 删除科目及其在各周期中的分配
func (a *API) DeleteSubject(c *gin.Context) {
	language := a.requestLanguage(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid subject id", noticeSubjectRemoveFailed.render(language))
		return
	}

	if err := a.subjects.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		handleSubjectError(c, err, noticeSubjectRemoveFailed.render(language))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": true,
		"notice":  noticeSubjectRemoved.render(language),
	})
}

func subjectToPayload(subject db.Subject) gin.H {
	return gin.H{
		"id":               subject.ID,
		"name":             subject.Name,
		"difficulty":       subject.Difficulty,
		"difficulty_label": allocation.Difficulty(subject.Difficulty).Label(),
		"weight":           subject.Weight,
		"weight_label":     allocation.Weight(subject.Weight).Label(),
		"notes":            subject.Notes,
		"notes_html":       service.RenderNotes(subject.Notes),
		"created_at":       subject.CreatedAt,
	}
}

func handleSubjectError(c *gin.Context, err error, n notice) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		respondFailure(c, http.StatusNotFound, "subject not found", n)
	case errors.Is(err, service.ErrSubjectNameRequired),
		errors.Is(err, service.ErrSubjectNameTooLong),
		errors.Is(err, allocation.ErrInvalidInput):
		respondFailure(c, http.StatusBadRequest, err.Error(), n)
	default:
		c.Error(err)
		respondFailure(c, http.StatusInternalServerError, "operation failed", n)
	}
}
