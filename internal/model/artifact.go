// Package model loads the pre-trained classifier and scaler artifacts and
// exposes them as immutable scoring capabilities. Artifacts are loaded once
// at startup and never mutated, so the returned capabilities are safe for
// unbounded concurrent reads.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/domain"
)

// scalerArtifact is the on-disk format of the exported standard scaler.
type scalerArtifact struct {
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// classifierArtifact is the on-disk format of the exported classifier:
// per-class weight vectors and intercepts over the 13-field feature order.
type classifierArtifact struct {
	Features   []string    `json:"features"`
	Classes    []int       `json:"classes"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// LoadCapability loads the classifier and scaler artifacts from disk. A
// missing or malformed artifact fails loudly with ErrModelUnavailable; the
// service must surface that instead of scoring with a default.
func LoadCapability(log *logrus.Logger, modelPath, scalerPath string) (*SoftmaxClassifier, *StandardScaler, error) {
	classifier, err := loadClassifier(modelPath)
	if err != nil {
		return nil, nil, err
	}

	scaler, err := loadScaler(scalerPath)
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(logrus.Fields{
		"model_path":  modelPath,
		"scaler_path": scalerPath,
		"classes":     domain.StageCount,
	}).Info("Model artifacts loaded")

	return classifier, scaler, nil
}

func loadClassifier(path string) (*SoftmaxClassifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading classifier artifact %s: %w: %v", path, domain.ErrModelUnavailable, err)
	}

	var artifact classifierArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("decoding classifier artifact: %w: %v", domain.ErrModelUnavailable, err)
	}

	if len(artifact.Weights) != domain.StageCount || len(artifact.Intercepts) != domain.StageCount {
		return nil, fmt.Errorf("classifier artifact has %d classes, want %d: %w",
			len(artifact.Weights), domain.StageCount, domain.ErrModelUnavailable)
	}
	for _, w := range artifact.Weights {
		if len(w) != len(domain.ModelFeatureOrder) {
			return nil, fmt.Errorf("classifier weight vector has %d features, want %d: %w",
				len(w), len(domain.ModelFeatureOrder), domain.ErrModelUnavailable)
		}
	}
	if err := checkFeatureOrder(artifact.Features, domain.ModelFeatureOrder); err != nil {
		return nil, err
	}

	return &SoftmaxClassifier{
		weights:    artifact.Weights,
		intercepts: artifact.Intercepts,
	}, nil
}

func loadScaler(path string) (*StandardScaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scaler artifact %s: %w: %v", path, domain.ErrModelUnavailable, err)
	}

	var artifact scalerArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("decoding scaler artifact: %w: %v", domain.ErrModelUnavailable, err)
	}

	want := len(domain.ScalerFeatureOrder)
	if len(artifact.Mean) != want || len(artifact.Scale) != want {
		return nil, fmt.Errorf("scaler artifact has %d/%d parameters, want %d: %w",
			len(artifact.Mean), len(artifact.Scale), want, domain.ErrModelUnavailable)
	}
	if err := checkFeatureOrder(artifact.Features, domain.ScalerFeatureOrder); err != nil {
		return nil, err
	}

	return &StandardScaler{
		mean:  artifact.Mean,
		scale: artifact.Scale,
	}, nil
}

// checkFeatureOrder rejects artifacts whose declared feature order disagrees
// with the trained ordering contract. An empty declaration is accepted for
// artifacts exported before ordering metadata was added.
func checkFeatureOrder(declared []string, want []domain.FeatureName) error {
	if len(declared) == 0 {
		return nil
	}
	if len(declared) != len(want) {
		return fmt.Errorf("artifact declares %d features, want %d: %w",
			len(declared), len(want), domain.ErrModelUnavailable)
	}
	for i, name := range declared {
		if name != string(want[i]) {
			return fmt.Errorf("artifact feature %d is %q, want %q: %w",
				i, name, want[i], domain.ErrModelUnavailable)
		}
	}
	return nil
}
