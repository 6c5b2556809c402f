package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validObservation() ClinicalObservation {
	return ClinicalObservation{
		Age:              45,
		Gender:           1,
		BMI:              28.5,
		SystolicBP:       145,
		DiastolicBP:      92,
		HeartRate:        78,
		Cholesterol:      220,
		Glucose:          100,
		Smoking:          0,
		Alcohol:          1,
		PhysicalActivity: 3,
		StressLevel:      7,
	}
}

func TestValidateObservation_Valid(t *testing.T) {
	assert.NoError(t, ValidateObservation(validObservation()))
}

func TestValidateObservation_BoundaryValues(t *testing.T) {
	obs := validObservation()
	obs.Age = 1
	assert.NoError(t, ValidateObservation(obs))

	obs.Age = 120
	assert.NoError(t, ValidateObservation(obs))

	obs.Age = 0
	assert.Error(t, ValidateObservation(obs))

	obs.Age = 121
	assert.Error(t, ValidateObservation(obs))
}

func TestValidateObservation_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ClinicalObservation)
		field  string
	}{
		{"systolic too high", func(o *ClinicalObservation) { o.SystolicBP = 260 }, "systolic_bp"},
		{"diastolic too low", func(o *ClinicalObservation) { o.DiastolicBP = 30 }, "diastolic_bp"},
		{"bmi too low", func(o *ClinicalObservation) { o.BMI = 5 }, "bmi"},
		{"heart rate too high", func(o *ClinicalObservation) { o.HeartRate = 240 }, "heart_rate"},
		{"cholesterol too low", func(o *ClinicalObservation) { o.Cholesterol = 50 }, "cholesterol"},
		{"glucose too high", func(o *ClinicalObservation) { o.Glucose = 600 }, "glucose"},
		{"gender not binary", func(o *ClinicalObservation) { o.Gender = 2 }, "gender"},
		{"smoking not binary", func(o *ClinicalObservation) { o.Smoking = 3 }, "smoking"},
		{"activity too high", func(o *ClinicalObservation) { o.PhysicalActivity = 50 }, "physical_activity"},
		{"stress zero", func(o *ClinicalObservation) { o.StressLevel = 0 }, "stress_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := validObservation()
			tt.mutate(&obs)

			err := ValidateObservation(obs)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestScalerSubvector_Order(t *testing.T) {
	vec := EncodedFeatureVector{
		Age:           3,
		Severity:      2,
		WhenDiagnosed: 1,
		Systolic:      3,
		Diastolic:     2,
	}

	assert.Equal(t, []float64{3, 2, 1, 3, 2}, vec.ScalerSubvector())
}

func TestModelFeatureOrder_Stable(t *testing.T) {
	require.Len(t, ModelFeatureOrder, 13)
	require.Len(t, ScalerFeatureOrder, 5)

	assert.Equal(t, FeatureGender, ModelFeatureOrder[0])
	assert.Equal(t, FeatureControlledDiet, ModelFeatureOrder[12])
	assert.Equal(t, FeatureAge, ScalerFeatureOrder[0])
	assert.Equal(t, FeatureDiastolic, ScalerFeatureOrder[4])
}
