//go:build wireinject
// +build wireinject

package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/eslsoft/cyberpath/internal/adapter/httpapi"
	"github.com/eslsoft/cyberpath/internal/adapter/repository"
	"github.com/eslsoft/cyberpath/internal/entity"
	"github.com/eslsoft/cyberpath/internal/infrastructure/config"
	"github.com/eslsoft/cyberpath/internal/infrastructure/database"
	"github.com/eslsoft/cyberpath/internal/infrastructure/server"
	"github.com/eslsoft/cyberpath/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
	provideXPTable,
	provideLevelCurve,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
	database.NewRedisClient,
)

var repositorySet = wire.NewSet(
	repository.NewProgressRepository,
	repository.NewStatsRepository,
	repository.NewActivityRepository,
	repository.NewAchievementRepository,
	repository.NewLeaderboardRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewAwardService,
	usecase.NewAchievementService,
	usecase.NewProgressUsecase,
	usecase.NewStatsUsecase,
)

var serverSet = wire.NewSet(
	server.NewLogger,
	httpapi.NewHandler,
	httpapi.NewRouter,
	wire.Bind(new(http.Handler), new(*gin.Engine)),
	server.NewServer,
)

func provideXPTable(cfg *config.Config) entity.XPTable {
	return cfg.XPTable()
}

func provideLevelCurve(cfg *config.Config) entity.LevelCurve {
	return cfg.LevelCurve()
}

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server"),
	)
	return nil, nil, nil
}
