package ml

import (
	"context"
	"encoding/json"
	"errors"
	"incomify/internal/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func samplePayload() *models.PredictionPayload {
	return &models.PredictionPayload{
		Region:               "NCR",
		TotalFoodExpenditure: 60000,
		EducationExpenditure: 14400,
		HouseFloorArea:       52.5,
		NumberOfAppliances:   7,
	}
}

func TestPredictSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload models.PredictionPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "NCR", payload.Region)
		assert.Equal(t, 60000.0, payload.TotalFoodExpenditure)

		std := 15200.0
		json.NewEncoder(w).Encode(models.PredictionResult{
			PredictedIncome:    312540,
			PredictionStd:      &std,
			ImportantFeatures:  []string{"Region", "Total Food Expenditure", "Education Expenditure"},
			FeatureImportances: []float64{0.7, 0.4, 0.1},
		})
	}))
	defer server.Close()

	client := NewHTTPMLClient(server.URL)
	defer client.Close()

	result, err := client.Predict(context.Background(), samplePayload())
	assert.NoError(t, err)
	assert.Equal(t, 312540.0, result.PredictedIncome)
	assert.NotNil(t, result.PredictionStd)
	assert.Equal(t, 15200.0, *result.PredictionStd)
	assert.Len(t, result.ImportantFeatures, 3)
}

func TestPredictErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "columns are missing: {'Region'}"})
	}))
	defer server.Close()

	client := NewHTTPMLClient(server.URL)
	defer client.Close()

	_, err := client.Predict(context.Background(), samplePayload())

	var respErr *ResponseError
	assert.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
	assert.Equal(t, "columns are missing: {'Region'}", respErr.Detail)
	assert.Equal(t, "columns are missing: {'Region'}", respErr.Error())
}

func TestPredictErrorWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
	}))
	defer server.Close()

	client := NewHTTPMLClient(server.URL)
	defer client.Close()

	_, err := client.Predict(context.Background(), samplePayload())

	var respErr *ResponseError
	assert.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusInternalServerError, respErr.StatusCode)
	assert.Empty(t, respErr.Detail)
	assert.Contains(t, respErr.Error(), "500")
}

func TestPredictNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewHTTPMLClient(server.URL)
	defer client.Close()

	_, err := client.Predict(context.Background(), samplePayload())
	assert.Error(t, err)

	var respErr *ResponseError
	assert.False(t, errors.As(err, &respErr), "transport failures are not response errors")
}

func TestFetchModelInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/model-info", r.URL.Path)

		json.NewEncoder(w).Encode(models.ModelInfo{
			DatasetName:   "Family Income and Expenditure Survey",
			DatasetSource: "Kaggle",
			Rows:          41544,
			Model: &models.ModelSpec{
				Type: "RandomForestRegressor",
			},
			Metrics: &models.ModelMetrics{
				R2:   0.41,
				RMSE: 182000,
				MAE:  98000,
			},
			FeaturesUsed: []string{"Region", "Total Food Expenditure", "Education Expenditure", "House Floor Area", "Number of Appliances"},
		})
	}))
	defer server.Close()

	client := NewHTTPMLClient(server.URL)
	defer client.Close()

	info, err := client.FetchModelInfo(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Family Income and Expenditure Survey", info.DatasetName)
	assert.Equal(t, 41544, info.Rows)
	assert.Equal(t, "RandomForestRegressor", info.Model.Type)
	assert.Len(t, info.FeaturesUsed, 5)
}

func TestHealthCheck(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ModelInfo{DatasetName: "x"})
	}))
	defer healthy.Close()

	client := NewHTTPMLClient(healthy.URL)
	assert.NoError(t, client.HealthCheck(context.Background()))

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()

	client = NewHTTPMLClient(unhealthy.URL)
	assert.Error(t, client.HealthCheck(context.Background()))
}
