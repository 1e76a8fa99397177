package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/eslsoft/cyberpath/internal/entity"
)

func (h *Handler) ListAchievements(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	achievements, err := h.achievements.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	items := make([]achievementView, 0, len(achievements))
	for _, achievement := range achievements {
		items = append(items, toAchievementView(achievement))
	}
	RespondOK(c, gin.H{"achievements": items})
}

func (h *Handler) ShareAchievement(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	achievement, err := h.achievements.Share(c.Request.Context(), userID, entity.AchievementType(c.Param("type")))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, toAchievementView(achievement))
}
