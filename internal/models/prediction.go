package models

import (
	"time"

	"gorm.io/gorm"
)

// PredictionResult is the upstream /predict response. PredictionStd and
// FeatureImportances are optional: older deployments of the model service
// only return the income and the feature names.
type PredictionResult struct {
	PredictedIncome    float64   `json:"predicted_income"`
	PredictionStd      *float64  `json:"prediction_std,omitempty"`
	ImportantFeatures  []string  `json:"important_features"`
	FeatureImportances []float64 `json:"feature_importances,omitempty"`
}

// ModelInfo is the upstream /model-info response. All fields are optional on
// the wire; the renderer tolerates whatever subset the service provides.
type ModelInfo struct {
	DatasetName           string                   `json:"dataset_name,omitempty"`
	DatasetSource         string                   `json:"dataset_source,omitempty"`
	Target                string                   `json:"target,omitempty"`
	Rows                  int                      `json:"rows,omitempty"`
	FeaturesUsed          []string                 `json:"features_used,omitempty"`
	Model                 *ModelSpec               `json:"model,omitempty"`
	Metrics               *ModelMetrics            `json:"metrics,omitempty"`
	TopFeatureImportances []FeatureImportance      `json:"top_feature_importances,omitempty"`
	PreviewColumns        []string                 `json:"preview_columns,omitempty"`
	PreviewRows           []map[string]interface{} `json:"preview_rows,omitempty"`
}

type ModelSpec struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type ModelMetrics struct {
	R2   float64 `json:"r2"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

type FeatureImportance struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// PredictionRecord is the persisted history row for a completed prediction.
type PredictionRecord struct {
	ID                   uint           `gorm:"primaryKey" json:"id" example:"1"`
	CreatedAt            time.Time      `gorm:"index" json:"created_at" example:"2025-01-01T00:00:00Z"`
	UpdatedAt            time.Time      `json:"updated_at" example:"2025-01-01T00:00:00Z"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-" swaggerignore:"true"`
	SessionID            string         `gorm:"index;size:36" json:"session_id" example:"3e8f0f8e-0000-0000-0000-000000000000"`
	Region               string         `json:"region" example:"NCR"`
	TotalFoodExpenditure float64        `json:"total_food_expenditure" example:"60000"`
	EducationExpenditure float64        `json:"education_expenditure" example:"12000"`
	HouseFloorArea       float64        `json:"house_floor_area" example:"52.5"`
	NumberOfAppliances   int            `json:"number_of_appliances" example:"7"`
	PredictedIncome      float64        `json:"predicted_income" example:"312540"`
	PredictionStd        *float64       `json:"prediction_std,omitempty" example:"15200"`
	TopFeatures          string         `gorm:"type:text" json:"top_features"`
	IsWhatIf             bool           `json:"is_what_if" example:"false"`
}

func (p *PredictionRecord) TableName() string {
	return "prediction_records"
}
