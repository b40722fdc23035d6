package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/quorumfed/aggregator/internal/api/handlers"
)

func registerTrainerRoutes(router *gin.RouterGroup, trainerHandler *handlers.TrainerHandler) {
	trainers := router.Group("/trainers")
	{
		trainers.POST("", trainerHandler.RegisterTrainer)
		trainers.GET("", trainerHandler.ListTrainers)
	}
}

func registerRoundRoutes(router *gin.RouterGroup, aggregationHandler *handlers.AggregationHandler) {
	router.POST("/updates", aggregationHandler.SubmitUpdate)

	rounds := router.Group("/rounds")
	{
		rounds.POST("/commit", aggregationHandler.Commit)
		rounds.GET("/status", aggregationHandler.RoundState)
	}
}

func registerModelRoutes(router *gin.RouterGroup, modelHandler *handlers.ModelHandler) {
	models := router.Group("/models")
	{
		models.GET("/latest", modelHandler.GetLatest)
		models.GET("/:version", modelHandler.GetByVersion)
	}
}

func RegisterRoutes(api *gin.RouterGroup, trainerHandler *handlers.TrainerHandler, aggregationHandler *handlers.AggregationHandler, modelHandler *handlers.ModelHandler) {
	registerTrainerRoutes(api, trainerHandler)
	registerRoundRoutes(api, aggregationHandler)
	registerModelRoutes(api, modelHandler)
}
