package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"incomify/internal/models"
	"incomify/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetModelInfo(t *testing.T) {
	t.Run("available metadata is returned", func(t *testing.T) {
		mockClient := new(MockMLClient)
		mockClient.On("FetchModelInfo", mock.Anything).Return(&models.ModelInfo{
			DatasetName: "Family Income and Expenditure Survey",
			Rows:        41544,
		}, nil)

		controller := NewModelInfoController(services.NewModelInfoService(mockClient, nil))

		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/model-info", controller.GetModelInfo)

		req := httptest.NewRequest(http.MethodGet, "/model-info", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "success", response["status"])
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "Family Income and Expenditure Survey", data["dataset_name"])
	})

	t.Run("unavailable upstream keeps answering loading", func(t *testing.T) {
		mockClient := new(MockMLClient)
		mockClient.On("FetchModelInfo", mock.Anything).Return(nil, errors.New("service unavailable"))

		controller := NewModelInfoController(services.NewModelInfoService(mockClient, nil))

		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/model-info", controller.GetModelInfo)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/model-info", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusAccepted, w.Code)

			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "loading", response["status"])
		}
	})
}
