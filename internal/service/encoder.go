package service

import (
	"github.com/pulseguard-risk-server/internal/domain"
)

// EncodeObservation deterministically maps a range-validated clinical
// observation into the categorical feature space the classifier was trained
// on. The bucket boundaries are load-bearing: they decide which categorical
// bin a continuous measurement lands in, so they must match the training
// encoding exactly.
func EncodeObservation(obs domain.ClinicalObservation) domain.EncodedFeatureVector {
	ageBucket := encodeAge(obs.Age)
	sysBucket := encodeSystolic(obs.SystolicBP)
	diaBucket := encodeDiastolic(obs.DiastolicBP)

	bpMax := sysBucket
	if diaBucket > bpMax {
		bpMax = diaBucket
	}

	return domain.EncodedFeatureVector{
		Gender:          int(obs.Gender),
		Age:             ageBucket,
		History:         boolToInt(obs.StressLevel > 6 || obs.Smoking > 0),
		PatientType:     domain.DefaultPatientType,
		TakeMedication:  domain.DefaultTakeMedication,
		Severity:        encodeSeverity(bpMax),
		BreathShortness: boolToInt(obs.HeartRate > 90),
		VisualChanges:   boolToInt(bpMax >= 3),
		NoseBleeding:    domain.DefaultNoseBleeding,
		WhenDiagnosed:   domain.WhenDiagnosedRecently,
		Systolic:        sysBucket,
		Diastolic:       diaBucket,
		ControlledDiet:  boolToInt(obs.PhysicalActivity >= 4),
	}
}

// encodeAge: 1=young(<30), 2=middle(30-49), 3=senior(50-65), 4=elderly(>65)
func encodeAge(age float64) int {
	switch {
	case age < 30:
		return 1
	case age < 50:
		return 2
	case age <= 65:
		return 3
	default:
		return 4
	}
}

// encodeSystolic: 0=Normal(<120), 1=Elevated(120-129), 2=Stage1(130-139),
// 3=Stage2+(>=140)
func encodeSystolic(systolic float64) int {
	switch {
	case systolic < 120:
		return 0
	case systolic < 130:
		return 1
	case systolic < 140:
		return 2
	default:
		return 3
	}
}

// encodeDiastolic: 0=Normal(<80), 1=Stage1(80-89), 2=Stage2(90-99),
// 3=Crisis(>=100)
func encodeDiastolic(diastolic float64) int {
	switch {
	case diastolic < 80:
		return 0
	case diastolic < 90:
		return 1
	case diastolic < 100:
		return 2
	default:
		return 3
	}
}

// encodeSeverity derives 0=low, 1=moderate, 2=severe from the worse of the
// two blood pressure buckets.
func encodeSeverity(bpMaxBucket int) int {
	switch {
	case bpMaxBucket >= 3:
		return 2
	case bpMaxBucket >= 2:
		return 1
	default:
		return 0
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
