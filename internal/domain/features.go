package domain

// FeatureName identifies one field of the model's trained feature space.
type FeatureName string

// Encoded feature names. "Whendiagnoused" keeps the spelling the model was
// trained with; renaming it would silently break the artifact contract.
const (
	FeatureGender          FeatureName = "Gender"
	FeatureAge             FeatureName = "Age"
	FeatureHistory         FeatureName = "History"
	FeaturePatientType     FeatureName = "Patient"
	FeatureTakeMedication  FeatureName = "TakeMedication"
	FeatureSeverity        FeatureName = "Severity"
	FeatureBreathShortness FeatureName = "BreathShortness"
	FeatureVisualChanges   FeatureName = "VisualChanges"
	FeatureNoseBleeding    FeatureName = "NoseBleeding"
	FeatureWhenDiagnosed   FeatureName = "Whendiagnoused"
	FeatureSystolic        FeatureName = "Systolic"
	FeatureDiastolic       FeatureName = "Diastolic"
	FeatureControlledDiet  FeatureName = "ControlledDiet"
)

// ModelFeatureOrder is the fixed 13-field ordering the classifier was trained
// on. Both the encoder and the predictor consume this single constant; it must
// never be duplicated or reordered.
var ModelFeatureOrder = []FeatureName{
	FeatureGender,
	FeatureAge,
	FeatureHistory,
	FeaturePatientType,
	FeatureTakeMedication,
	FeatureSeverity,
	FeatureBreathShortness,
	FeatureVisualChanges,
	FeatureNoseBleeding,
	FeatureWhenDiagnosed,
	FeatureSystolic,
	FeatureDiastolic,
	FeatureControlledDiet,
}

// ScalerFeatureOrder is the fixed 5-field ordering of the companion scaler.
var ScalerFeatureOrder = []FeatureName{
	FeatureAge,
	FeatureSeverity,
	FeatureWhenDiagnosed,
	FeatureSystolic,
	FeatureDiastolic,
}

// Fixed encodings for fields with no corresponding frontend input. They are
// deliberate simplifications, kept as named constants so a future input
// expansion is a one-line change.
const (
	DefaultNoseBleeding   = 0
	DefaultTakeMedication = 0
	DefaultPatientType    = 0 // outpatient
	WhenDiagnosedRecently = 1 // 1=recently, 2=some time ago, 3=long time ago
)

// EncodedFeatureVector is the categorical feature representation the
// classifier expects, derived deterministically from a ClinicalObservation.
// It is never persisted; it is always recomputed from its observation.
type EncodedFeatureVector struct {
	Gender          int `json:"Gender"`
	Age             int `json:"Age"`
	History         int `json:"History"`
	PatientType     int `json:"Patient"`
	TakeMedication  int `json:"TakeMedication"`
	Severity        int `json:"Severity"`
	BreathShortness int `json:"BreathShortness"`
	VisualChanges   int `json:"VisualChanges"`
	NoseBleeding    int `json:"NoseBleeding"`
	WhenDiagnosed   int `json:"Whendiagnoused"`
	Systolic        int `json:"Systolic"`
	Diastolic       int `json:"Diastolic"`
	ControlledDiet  int `json:"ControlledDiet"`
}

// Value returns the encoded value of one named feature.
func (v EncodedFeatureVector) Value(name FeatureName) float64 {
	switch name {
	case FeatureGender:
		return float64(v.Gender)
	case FeatureAge:
		return float64(v.Age)
	case FeatureHistory:
		return float64(v.History)
	case FeaturePatientType:
		return float64(v.PatientType)
	case FeatureTakeMedication:
		return float64(v.TakeMedication)
	case FeatureSeverity:
		return float64(v.Severity)
	case FeatureBreathShortness:
		return float64(v.BreathShortness)
	case FeatureVisualChanges:
		return float64(v.VisualChanges)
	case FeatureNoseBleeding:
		return float64(v.NoseBleeding)
	case FeatureWhenDiagnosed:
		return float64(v.WhenDiagnosed)
	case FeatureSystolic:
		return float64(v.Systolic)
	case FeatureDiastolic:
		return float64(v.Diastolic)
	case FeatureControlledDiet:
		return float64(v.ControlledDiet)
	}
	return 0
}

// ScalerSubvector extracts the scaler's five designated fields in their fixed
// order.
func (v EncodedFeatureVector) ScalerSubvector() []float64 {
	sub := make([]float64, len(ScalerFeatureOrder))
	for i, name := range ScalerFeatureOrder {
		sub[i] = v.Value(name)
	}
	return sub
}
