package repository

import (
	"incomify/internal/models"
	"time"

	"gorm.io/gorm"
)

type PredictionRepository interface {
	SaveRecord(record *models.PredictionRecord) error
	GetRecordsBySessionID(sessionID string, limit int) ([]models.PredictionRecord, error)
	GetRecordsBySessionIDAndDateRange(sessionID string, startDate, endDate time.Time) ([]models.PredictionRecord, error)
	GetRecordByID(id uint) (*models.PredictionRecord, error)
	DeleteRecord(id uint) error
	GetIncomeSeriesBySessionID(sessionID string, startDate, endDate time.Time) ([]IncomePoint, error)
}

type predictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db}
}

func (r *predictionRepository) SaveRecord(record *models.PredictionRecord) error {
	return r.db.Create(record).Error
}

func (r *predictionRepository) GetRecordsBySessionID(sessionID string, limit int) ([]models.PredictionRecord, error) {
	var records []models.PredictionRecord
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *predictionRepository) GetRecordsBySessionIDAndDateRange(sessionID string, startDate, endDate time.Time) ([]models.PredictionRecord, error) {
	var records []models.PredictionRecord
	err := r.db.Where("session_id = ? AND created_at BETWEEN ? AND ?", sessionID, startDate, endDate).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *predictionRepository) GetRecordByID(id uint) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	err := r.db.First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *predictionRepository) DeleteRecord(id uint) error {
	return r.db.Delete(&models.PredictionRecord{}, id).Error
}

// IncomePoint represents the predicted income and creation date of a record.
type IncomePoint struct {
	PredictedIncome float64   `json:"predicted_income"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *predictionRepository) GetIncomeSeriesBySessionID(sessionID string, startDate, endDate time.Time) ([]IncomePoint, error) {
	var records []models.PredictionRecord
	err := r.db.Model(&models.PredictionRecord{}).
		Select("predicted_income, created_at").
		Where("session_id = ? AND created_at BETWEEN ? AND ?", sessionID, startDate, endDate).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	var points []IncomePoint
	for _, record := range records {
		points = append(points, IncomePoint{
			PredictedIncome: record.PredictedIncome,
			CreatedAt:       record.CreatedAt,
		})
	}

	return points, nil
}
