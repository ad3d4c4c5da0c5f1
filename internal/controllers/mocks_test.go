package controllers

import (
	"context"
	"incomify/internal/models"
	"incomify/internal/repository"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockMLClient struct {
	mock.Mock
}

func (m *MockMLClient) Predict(ctx context.Context, payload *models.PredictionPayload) (*models.PredictionResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionResult), args.Error(1)
}

func (m *MockMLClient) FetchModelInfo(ctx context.Context) (*models.ModelInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModelInfo), args.Error(1)
}

func (m *MockMLClient) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMLClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) SaveRecord(record *models.PredictionRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetRecordsBySessionID(sessionID string, limit int) ([]models.PredictionRecord, error) {
	args := m.Called(sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) GetRecordsBySessionIDAndDateRange(sessionID string, startDate, endDate time.Time) ([]models.PredictionRecord, error) {
	args := m.Called(sessionID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) GetRecordByID(id uint) (*models.PredictionRecord, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) DeleteRecord(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetIncomeSeriesBySessionID(sessionID string, startDate, endDate time.Time) ([]repository.IncomePoint, error) {
	args := m.Called(sessionID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.IncomePoint), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(record *models.PredictionRecord) error {
	args := m.Called(record)
	return args.Error(0)
}
