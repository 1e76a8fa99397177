package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eslsoft/cyberpath/internal/repository"
)

func (h *Handler) CreateAccount(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	stats, err := h.stats.CreateAccount(c.Request.Context(), req.UserID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, toStatsView(stats, h.curve))
}

func (h *Handler) GetStats(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	stats, err := h.stats.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, toStatsView(stats, h.curve))
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 32)

	rows, err := h.stats.Leaderboard(c.Request.Context(), int32(limit))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"entries": rows})
}

func (h *Handler) ListActivities(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	query := &repository.ListActivityQuery{
		Pagination: pageQuery(c),
		FilterOrder: repository.FilterOrder{
			Filter:  c.Query("filter"),
			OrderBy: c.Query("order_by"),
		},
		UserID: userID,
	}

	entries, total, err := h.stats.ActivityFeed(c.Request.Context(), query)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	items := make([]activityView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toActivityView(entry))
	}
	RespondOK(c, pagedView[activityView]{Items: items, Total: total})
}

func (h *Handler) CheckLedger(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	report, err := h.stats.CheckLedger(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, report)
}
