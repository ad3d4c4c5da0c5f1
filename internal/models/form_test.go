package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() InputForm {
	return InputForm{
		Region:               "NCR",
		TotalFoodExpenditure: "5000",
		EducationExpenditure: "1200",
		HouseFloorArea:       "52.5",
		NumberOfAppliances:   "7",
	}
}

func TestCoerceAnnualizesMonthlyExpenditures(t *testing.T) {
	form := validForm()

	payload, err := form.Coerce()
	assert.NoError(t, err)

	// Monthly entries are multiplied by 12 for the annually-trained model.
	assert.Equal(t, 60000.0, payload.TotalFoodExpenditure)
	assert.Equal(t, 14400.0, payload.EducationExpenditure)
	assert.Equal(t, 52.5, payload.HouseFloorArea)
	assert.Equal(t, 7, payload.NumberOfAppliances)
	assert.Equal(t, "NCR", payload.Region)
}

func TestCoerceValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InputForm)
		errMsg string
	}{
		{
			name:   "unknown region",
			mutate: func(f *InputForm) { f.Region = "Atlantis" },
			errMsg: "not a recognized region",
		},
		{
			name:   "empty food expenditure",
			mutate: func(f *InputForm) { f.TotalFoodExpenditure = "" },
			errMsg: "total_food_expenditure is required",
		},
		{
			name:   "empty education expenditure",
			mutate: func(f *InputForm) { f.EducationExpenditure = "" },
			errMsg: "education_expenditure is required",
		},
		{
			name:   "non-numeric floor area",
			mutate: func(f *InputForm) { f.HouseFloorArea = "big" },
			errMsg: "house_floor_area must be a number",
		},
		{
			name:   "empty appliances",
			mutate: func(f *InputForm) { f.NumberOfAppliances = "" },
			errMsg: "number_of_appliances is required",
		},
		{
			name:   "fractional appliances",
			mutate: func(f *InputForm) { f.NumberOfAppliances = "2.5" },
			errMsg: "number_of_appliances must be an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			payload, err := form.Coerce()
			assert.Nil(t, payload)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestMergeIsPartial(t *testing.T) {
	form := validForm()

	region := "CAR"
	appliances := "3"
	form.Merge(FieldUpdate{
		Region:             &region,
		NumberOfAppliances: &appliances,
	})

	assert.Equal(t, "CAR", form.Region)
	assert.Equal(t, "3", form.NumberOfAppliances)
	// Untouched fields keep their values.
	assert.Equal(t, "5000", form.TotalFoodExpenditure)
	assert.Equal(t, "1200", form.EducationExpenditure)
	assert.Equal(t, "52.5", form.HouseFloorArea)
}

func TestRegionsAreFixedSet(t *testing.T) {
	assert.Len(t, Regions, 17)
	assert.True(t, ValidRegion("XIII - Caraga"))
	assert.False(t, ValidRegion(""))
	assert.False(t, ValidRegion("ncr"))
}
