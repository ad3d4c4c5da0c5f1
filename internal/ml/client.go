package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"incomify/internal/models"
	"io"
	"net/http"
	"time"
)

const (
	predictTimeout   = 30 * time.Second
	modelInfoTimeout = 10 * time.Second
)

// MLClient talks to the income prediction service.
type MLClient interface {
	Predict(ctx context.Context, payload *models.PredictionPayload) (*models.PredictionResult, error)
	FetchModelInfo(ctx context.Context) (*models.ModelInfo, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// ResponseError is a non-2xx answer from the prediction service. Detail
// carries the upstream "detail" field when the service provided one.
type ResponseError struct {
	StatusCode int
	Detail     string
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("prediction service returned status %d", e.StatusCode)
}

type httpMLClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPMLClient creates a client for the prediction service at baseURL.
func NewHTTPMLClient(baseURL string) MLClient {
	return &httpMLClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: predictTimeout,
		},
	}
}

// Predict sends the coerced form payload to POST /predict and returns the
// parsed result.
func (c *httpMLClient) Predict(ctx context.Context, payload *models.PredictionPayload) (*models.PredictionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, predictTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeResponseError(resp)
	}

	var result models.PredictionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode prediction response: %w", err)
	}

	return &result, nil
}

// FetchModelInfo retrieves static model metadata from GET /model-info.
// Callers treat this endpoint as non-critical and may discard the error.
func (c *httpMLClient) FetchModelInfo(ctx context.Context) (*models.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, modelInfoTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/model-info", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create model info request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeResponseError(resp)
	}

	var info models.ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode model info response: %w", err)
	}

	return &info, nil
}

// HealthCheck probes the service with a cheap model-info request.
func (c *httpMLClient) HealthCheck(ctx context.Context) error {
	if _, err := c.FetchModelInfo(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (c *httpMLClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func decodeResponseError(resp *http.Response) error {
	respErr := &ResponseError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return respErr
	}

	// FastAPI-style error bodies carry a "detail" string.
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		respErr.Detail = detail.Detail
	}

	return respErr
}
