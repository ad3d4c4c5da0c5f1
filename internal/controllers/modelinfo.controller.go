package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"incomify/internal/services"
)

type ModelInfoController struct {
	service *services.ModelInfoService
}

func NewModelInfoController(service *services.ModelInfoService) *ModelInfoController {
	return &ModelInfoController{service: service}
}

// GetModelInfo godoc
// @Summary Get model metadata
// @Description Return the cached model metadata, fetching it from the prediction service on first use. While the upstream is unavailable this keeps answering "loading" rather than an error
// @Tags model-info
// @Produce json
// @Success 200 {object} map[string]interface{} "Model metadata"
// @Success 202 {object} map[string]interface{} "Metadata not available yet"
// @Router /model-info [get]
func (mc *ModelInfoController) GetModelInfo(c *gin.Context) {
	info := mc.service.Get(c.Request.Context())
	if info == nil {
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "loading",
			"message": "Model info is not available yet",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Model info retrieved successfully",
		"data":    info,
	})
}
