package routes

import (
	"incomify/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterModelInfoRoutes(router *gin.Engine, modelInfoController *controllers.ModelInfoController) {
	router.GET("/model-info", modelInfoController.GetModelInfo)
}
