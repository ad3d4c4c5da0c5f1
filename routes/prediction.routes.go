package routes

import (
	"incomify/internal/controllers"
	"incomify/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterPredictionRoutes(router *gin.Engine, predictionController *controllers.PredictionController) {
	predictionRoutes := router.Group("/prediction")
	predictionRoutes.GET("/health", predictionController.TestMLConnection)
	predictionRoutes.Use(middleware.SessionMiddleware())
	{
		predictionRoutes.POST("/", predictionController.MakePrediction)
		predictionRoutes.PUT("/form", predictionController.UpdateForm)
		predictionRoutes.GET("/state", predictionController.GetState)

		predictionRoutes.POST("/what-if", predictionController.SimulateWhatIf)
		predictionRoutes.PUT("/what-if/form", predictionController.UpdateWhatIfForm)
		predictionRoutes.GET("/what-if/result", predictionController.GetWhatIfResult)

		predictionRoutes.GET("/:id", predictionController.GetRecordByID)
		predictionRoutes.DELETE("/:id", predictionController.DeleteRecord)

		predictionRoutes.GET("/me", predictionController.GetSessionRecords)
		predictionRoutes.GET("/me/date-range", predictionController.GetRecordsByDateRange)
		predictionRoutes.GET("/me/series", predictionController.GetIncomeSeries)
	}
}
