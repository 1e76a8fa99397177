package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/repository"
	"github.com/eslsoft/cyberpath/internal/usecase"
)

func userIDParam(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respondDomainError(c, entity.ErrInvalidUserID)
		return 0, false
	}
	return userID, true
}

func pageQuery(c *gin.Context) repository.Pagination {
	pageNo, _ := strconv.ParseInt(c.DefaultQuery("page_no", "1"), 10, 32)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 32)
	return repository.Pagination{PageNo: int32(pageNo), PageSize: int32(pageSize)}
}

func (h *Handler) RecordChallengeProgress(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	var req struct {
		EntityID       string `json:"entity_id"`
		CorrectAnswers int32  `json:"correct_answers"`
		TotalQuestions int32  `json:"total_questions"`
		TimeSpentSecs  int64  `json:"time_spent_secs"`
		Difficulty     string `json:"difficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	result, err := h.progress.RecordChallengeProgress(c.Request.Context(), userID, usecase.RecordChallengeInput{
		EntityID:       req.EntityID,
		CorrectAnswers: req.CorrectAnswers,
		TotalQuestions: req.TotalQuestions,
		TimeSpent:      time.Duration(req.TimeSpentSecs) * time.Second,
		Difficulty:     entity.ParseDifficulty(req.Difficulty),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, toProgressResultView(result))
}

func (h *Handler) RecordCourseProgress(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	var req struct {
		EntityID        string `json:"entity_id"`
		ProgressPercent int32  `json:"progress_percent"`
		TimeSpentSecs   int64  `json:"time_spent_secs"`
		Difficulty      string `json:"difficulty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	result, err := h.progress.RecordCourseProgress(c.Request.Context(), userID, usecase.RecordCourseInput{
		EntityID:        req.EntityID,
		ProgressPercent: req.ProgressPercent,
		TimeSpent:       time.Duration(req.TimeSpentSecs) * time.Second,
		Difficulty:      entity.ParseDifficulty(req.Difficulty),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, toProgressResultView(result))
}

func (h *Handler) GetProgress(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	kind := entity.ParseEntityKind(c.Param("kind"))
	if kind == entity.KindUnspecified {
		respondDomainError(c, entity.ErrInvalidEntityKind)
		return
	}

	record, err := h.progress.GetProgress(c.Request.Context(), userID, kind, c.Param("entity_id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, toProgressView(record))
}

func (h *Handler) ListProgress(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	records, total, err := h.progress.ListProgress(c.Request.Context(), userID, pageQuery(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	items := make([]progressView, 0, len(records))
	for _, record := range records {
		items = append(items, toProgressView(record))
	}
	RespondOK(c, pagedView[progressView]{Items: items, Total: total})
}
