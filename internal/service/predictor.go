package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
)

// PredictionCache memoizes prediction results. Sound because the predictor is
// a pure function of the encoded vector for a fixed model.
type PredictionCache interface {
	Get(key string) (domain.PredictionResult, bool)
	Add(key string, result domain.PredictionResult)
}

// RiskPredictor turns a clinical observation into a stage prediction and
// risk score using an injected classifier/scaler capability. The capability
// is loaded once and treated as read-only, so a single predictor is safe for
// concurrent use.
type RiskPredictor struct {
	log        *logrus.Logger
	classifier domain.Classifier
	scaler     domain.Scaler
	cache      PredictionCache
}

// NewRiskPredictor creates a predictor around an explicit scoring capability.
// The cache is optional; pass nil to disable memoization.
func NewRiskPredictor(log *logrus.Logger, classifier domain.Classifier, scaler domain.Scaler, cache PredictionCache) *RiskPredictor {
	return &RiskPredictor{
		log:        log,
		classifier: classifier,
		scaler:     scaler,
		cache:      cache,
	}
}

// Predict encodes the observation, assembles the model's fixed-order feature
// vector with the scaler applied to its designated subvector, and invokes the
// classifier. If the scoring capability is not provisioned the call fails
// with ErrModelUnavailable; it never substitutes a default score.
func (p *RiskPredictor) Predict(obs domain.ClinicalObservation) (*domain.PredictionResult, error) {
	if p.classifier == nil || p.scaler == nil {
		return nil, fmt.Errorf("scoring capability not provisioned: %w", domain.ErrModelUnavailable)
	}

	encoded := EncodeObservation(obs)

	key := encodedVectorKey(encoded)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			return &cached, nil
		}
	}

	scaled, err := p.scaler.Transform(encoded.ScalerSubvector())
	if err != nil {
		return nil, fmt.Errorf("scaling features: %w", err)
	}

	features := assembleFeatureVector(encoded, scaled)

	stage, err := p.classifier.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("predicting stage: %w", err)
	}

	proba, err := p.classifier.PredictProba(features)
	if err != nil {
		return nil, fmt.Errorf("predicting probabilities: %w", err)
	}
	if len(proba) != domain.StageCount {
		return nil, fmt.Errorf("classifier returned %d probabilities, want %d: %w",
			len(proba), domain.StageCount, domain.ErrModelUnavailable)
	}

	// Risk score = probability mass of the two most severe stages.
	riskScore := (proba[domain.StageTwo] + proba[domain.StageCrisis]) * 100

	probabilities := make(map[string]float64, domain.StageCount)
	for i, pct := range proba {
		probabilities[domain.Stage(i).Label()] = round2(pct * 100)
	}

	result := domain.PredictionResult{
		Stage:         stage,
		StageLabel:    stage.Label(),
		RiskScore:     round2(riskScore),
		Probabilities: probabilities,
		Color:         stage.Color(),
	}

	if p.cache != nil {
		p.cache.Add(key, result)
	}

	p.log.WithFields(logrus.Fields{
		"stage":      result.StageLabel,
		"risk_score": result.RiskScore,
	}).Debug("Prediction completed")

	return &result, nil
}

// assembleFeatureVector builds the full ordered feature vector, substituting
// scaled values for the scaler's fields and leaving the rest as raw encoded
// integers.
func assembleFeatureVector(encoded domain.EncodedFeatureVector, scaled []float64) []float64 {
	scaledByName := make(map[domain.FeatureName]float64, len(domain.ScalerFeatureOrder))
	for i, name := range domain.ScalerFeatureOrder {
		scaledByName[name] = scaled[i]
	}

	features := make([]float64, len(domain.ModelFeatureOrder))
	for i, name := range domain.ModelFeatureOrder {
		if v, ok := scaledByName[name]; ok {
			features[i] = v
		} else {
			features[i] = encoded.Value(name)
		}
	}
	return features
}

func encodedVectorKey(encoded domain.EncodedFeatureVector) string {
	raw := make([]byte, 0, len(domain.ModelFeatureOrder)*4)
	for _, name := range domain.ModelFeatureOrder {
		raw = append(raw, fmt.Sprintf("%s=%d;", name, int(encoded.Value(name)))...)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
