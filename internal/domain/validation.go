package domain

import (
	"fmt"
	"strconv"
)

// FeatureRange is the closed valid range for one clinical field.
type FeatureRange struct {
	Min float64
	Max float64
}

// FeatureRanges holds the inclusive valid ranges for every clinical field.
// An observation outside any of these never reaches the encoder.
var FeatureRanges = map[string]FeatureRange{
	"age":               {1, 120},
	"gender":            {0, 1},
	"bmi":               {10, 70},
	"systolic_bp":       {60, 250},
	"diastolic_bp":      {40, 150},
	"heart_rate":        {30, 220},
	"cholesterol":       {100, 400},
	"glucose":           {40, 500},
	"smoking":           {0, 1},
	"alcohol":           {0, 1},
	"physical_activity": {0, 40},
	"stress_level":      {1, 10},
}

// observationFields is kept in request-body order for stable error reporting.
var observationFields = []string{
	"age", "gender", "bmi", "systolic_bp", "diastolic_bp",
	"heart_rate", "cholesterol", "glucose", "smoking",
	"alcohol", "physical_activity", "stress_level",
}

func (o ClinicalObservation) fieldValue(name string) float64 {
	switch name {
	case "age":
		return o.Age
	case "gender":
		return o.Gender
	case "bmi":
		return o.BMI
	case "systolic_bp":
		return o.SystolicBP
	case "diastolic_bp":
		return o.DiastolicBP
	case "heart_rate":
		return o.HeartRate
	case "cholesterol":
		return o.Cholesterol
	case "glucose":
		return o.Glucose
	case "smoking":
		return o.Smoking
	case "alcohol":
		return o.Alcohol
	case "physical_activity":
		return o.PhysicalActivity
	case "stress_level":
		return o.StressLevel
	}
	return 0
}

// ValidateObservation checks every clinical field against its closed range.
// It returns the first violation found, in field order.
func ValidateObservation(o ClinicalObservation) error {
	for _, field := range observationFields {
		r := FeatureRanges[field]
		v := o.fieldValue(field)
		if v < r.Min || v > r.Max {
			msg := fmt.Sprintf("must be between %s and %s",
				strconv.FormatFloat(r.Min, 'f', -1, 64),
				strconv.FormatFloat(r.Max, 'f', -1, 64))
			return NewValidationError(field, msg, v)
		}
	}
	return nil
}
