package model

import (
	"fmt"
	"math"

	"github.com/pulseguard-risk-server/internal/domain"
)

// SoftmaxClassifier is a multinomial linear classifier over the fixed
// 13-field feature ordering. Immutable after loading.
type SoftmaxClassifier struct {
	weights    [][]float64
	intercepts []float64
}

// Predict returns the stage with the highest probability.
func (c *SoftmaxClassifier) Predict(features []float64) (domain.Stage, error) {
	proba, err := c.PredictProba(features)
	if err != nil {
		return 0, err
	}

	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return domain.Stage(best), nil
}

// PredictProba returns the softmax probability distribution over the four
// stages.
func (c *SoftmaxClassifier) PredictProba(features []float64) ([]float64, error) {
	if len(features) != len(domain.ModelFeatureOrder) {
		return nil, fmt.Errorf("feature vector has %d fields, want %d",
			len(features), len(domain.ModelFeatureOrder))
	}

	logits := make([]float64, len(c.weights))
	maxLogit := math.Inf(-1)
	for i, w := range c.weights {
		z := c.intercepts[i]
		for j, x := range features {
			z += w[j] * x
		}
		logits[i] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	// Subtract the max logit before exponentiation for numerical stability.
	var sum float64
	proba := make([]float64, len(logits))
	for i, z := range logits {
		proba[i] = math.Exp(z - maxLogit)
		sum += proba[i]
	}
	for i := range proba {
		proba[i] /= sum
	}
	return proba, nil
}

// StandardScaler applies the linear transform (x - mean) / scale to the
// designated 5-field subvector in its fixed order. Immutable after loading.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// Transform rescales the subvector. The input length must match the scaler's
// trained parameter count.
func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.mean) {
		return nil, fmt.Errorf("scaler subvector has %d fields, want %d", len(values), len(s.mean))
	}

	out := make([]float64, len(values))
	for i, v := range values {
		divisor := s.scale[i]
		if divisor == 0 {
			divisor = 1
		}
		out[i] = (v - s.mean[i]) / divisor
	}
	return out, nil
}
