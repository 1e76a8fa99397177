package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/infrastructure/server"
	"github.com/eslsoft/cyberpath/internal/usecase"
)

// Handler serves the progression engine's REST surface.
type Handler struct {
	progress     usecase.ProgressUsecase
	stats        usecase.StatsUsecase
	achievements usecase.AchievementService
	curve        entity.LevelCurve
	logger       *logrus.Logger
}

// NewHandler creates the REST handler.
func NewHandler(
	progress usecase.ProgressUsecase,
	stats usecase.StatsUsecase,
	achievements usecase.AchievementService,
	curve entity.LevelCurve,
	logger *logrus.Logger,
) *Handler {
	if len(curve) == 0 {
		curve = entity.DefaultLevelCurve
	}
	return &Handler{
		progress:     progress,
		stats:        stats,
		achievements: achievements,
		curve:        curve,
		logger:       logger,
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, logger *logrus.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), server.RequestLogger(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/users", h.CreateAccount)
		v1.GET("/leaderboard", h.Leaderboard)

		users := v1.Group("/users/:user_id")
		{
			users.GET("/stats", h.GetStats)
			users.GET("/ledger", h.CheckLedger)
			users.GET("/activities", h.ListActivities)

			users.POST("/progress/challenges", h.RecordChallengeProgress)
			users.POST("/progress/courses", h.RecordCourseProgress)
			users.GET("/progress", h.ListProgress)
			users.GET("/progress/:kind/:entity_id", h.GetProgress)

			users.GET("/achievements", h.ListAchievements)
			users.POST("/achievements/:type/share", h.ShareAchievement)
		}
	}

	return engine
}
