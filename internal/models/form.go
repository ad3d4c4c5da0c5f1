package models

import (
	"fmt"
	"strconv"
)

// Regions is the fixed set of region values accepted by the upstream model,
// matching the categories of the FIES training data.
var Regions = []string{
	"NCR",
	"CAR",
	"I - Ilocos Region",
	"II - Cagayan Valley",
	"III - Central Luzon",
	"IVA - CALABARZON",
	"IVB - MIMAROPA",
	"V - Bicol Region",
	"VI - Western Visayas",
	"VII - Central Visayas",
	"VIII - Eastern Visayas",
	"IX - Zamboanga Peninsula",
	"X - Northern Mindanao",
	"XI - Davao Region",
	"XII - SOCCSKSARGEN",
	"XIII - Caraga",
	"ARMM",
}

// MonthsPerYear converts the monthly expenditure entries collected by the
// form into the annual values the upstream model was trained on.
const MonthsPerYear = 12

// InputForm is the raw form state. Numeric fields stay as user-entered
// strings until submission; Coerce parses them.
type InputForm struct {
	Region               string `json:"region"`
	TotalFoodExpenditure string `json:"total_food_expenditure"`
	EducationExpenditure string `json:"education_expenditure"`
	HouseFloorArea       string `json:"house_floor_area"`
	NumberOfAppliances   string `json:"number_of_appliances"`
}

// FieldUpdate carries a partial form update. Only non-nil fields are merged.
type FieldUpdate struct {
	Region               *string `json:"region,omitempty"`
	TotalFoodExpenditure *string `json:"total_food_expenditure,omitempty"`
	EducationExpenditure *string `json:"education_expenditure,omitempty"`
	HouseFloorArea       *string `json:"house_floor_area,omitempty"`
	NumberOfAppliances   *string `json:"number_of_appliances,omitempty"`
}

// Merge applies the update to the form in place, leaving untouched fields as
// they were.
func (f *InputForm) Merge(u FieldUpdate) {
	if u.Region != nil {
		f.Region = *u.Region
	}
	if u.TotalFoodExpenditure != nil {
		f.TotalFoodExpenditure = *u.TotalFoodExpenditure
	}
	if u.EducationExpenditure != nil {
		f.EducationExpenditure = *u.EducationExpenditure
	}
	if u.HouseFloorArea != nil {
		f.HouseFloorArea = *u.HouseFloorArea
	}
	if u.NumberOfAppliances != nil {
		f.NumberOfAppliances = *u.NumberOfAppliances
	}
}

// PredictionPayload is the coerced request body sent to the upstream
// /predict endpoint.
type PredictionPayload struct {
	Region               string  `json:"region"`
	TotalFoodExpenditure float64 `json:"total_food_expenditure"`
	EducationExpenditure float64 `json:"education_expenditure"`
	HouseFloorArea       float64 `json:"house_floor_area"`
	NumberOfAppliances   int     `json:"number_of_appliances"`
}

// ValidRegion reports whether r is one of the accepted region values.
func ValidRegion(r string) bool {
	for _, region := range Regions {
		if region == r {
			return true
		}
	}
	return false
}

// Coerce validates the form and converts it to the upstream payload. The
// monthly food and education entries are multiplied by MonthsPerYear because
// the model was trained on annual figures. A validation failure here means
// no request is issued.
func (f *InputForm) Coerce() (*PredictionPayload, error) {
	if !ValidRegion(f.Region) {
		return nil, fmt.Errorf("region %q is not a recognized region", f.Region)
	}

	food, err := parseRequiredFloat("total_food_expenditure", f.TotalFoodExpenditure)
	if err != nil {
		return nil, err
	}
	education, err := parseRequiredFloat("education_expenditure", f.EducationExpenditure)
	if err != nil {
		return nil, err
	}
	floorArea, err := parseRequiredFloat("house_floor_area", f.HouseFloorArea)
	if err != nil {
		return nil, err
	}

	if f.NumberOfAppliances == "" {
		return nil, fmt.Errorf("number_of_appliances is required")
	}
	appliances, err := strconv.Atoi(f.NumberOfAppliances)
	if err != nil {
		return nil, fmt.Errorf("number_of_appliances must be an integer: %w", err)
	}

	return &PredictionPayload{
		Region:               f.Region,
		TotalFoodExpenditure: food * MonthsPerYear,
		EducationExpenditure: education * MonthsPerYear,
		HouseFloorArea:       floorArea,
		NumberOfAppliances:   appliances,
	}, nil
}

func parseRequiredFloat(name, value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, err)
	}
	return v, nil
}
