package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseguard-risk-server/internal/domain"
)

const testClassifierJSON = `{
	"classes": [0, 1, 2, 3],
	"weights": [
		[0, -0.2, 0, 0, 0, -0.8, 0, 0, 0, 0, -1.0, -1.0, 0.1],
		[0, 0.1, 0.1, 0, 0, 0.2, 0, 0, 0, 0, 0.4, 0.4, 0],
		[0, 0.2, 0.2, 0, 0, 0.6, 0.1, 0.1, 0, 0, 0.8, 0.8, -0.1],
		[0, 0.3, 0.3, 0, 0, 1.0, 0.2, 0.3, 0, 0, 1.2, 1.2, -0.2]
	],
	"intercepts": [1.0, 0.2, -0.4, -1.2]
}`

const testScalerJSON = `{
	"features": ["Age", "Severity", "Whendiagnoused", "Systolic", "Diastolic"],
	"mean": [2.5, 1.0, 1.0, 1.5, 1.5],
	"scale": [1.1, 0.8, 1.0, 1.1, 1.1]
}`

func writeTestArtifacts(t *testing.T) (modelPath, scalerPath string) {
	t.Helper()
	dir := t.TempDir()

	modelPath = filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(testClassifierJSON), 0644))

	scalerPath = filepath.Join(dir, "scaler.json")
	require.NoError(t, os.WriteFile(scalerPath, []byte(testScalerJSON), 0644))

	return modelPath, scalerPath
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

func TestLoadCapability(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)

	classifier, scaler, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.NoError(t, err)
	require.NotNil(t, classifier)
	require.NotNil(t, scaler)
}

func TestLoadCapability_MissingModel(t *testing.T) {
	_, scalerPath := writeTestArtifacts(t)

	_, _, err := LoadCapability(testLogger(), "/nonexistent/model.json", scalerPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
}

func TestLoadCapability_CorruptArtifact(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)
	require.NoError(t, os.WriteFile(modelPath, []byte("{not json"), 0644))

	_, _, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
}

func TestLoadCapability_WrongDimensions(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)
	require.NoError(t, os.WriteFile(modelPath,
		[]byte(`{"weights": [[1, 2]], "intercepts": [0.5]}`), 0644))

	_, _, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
}

func TestLoadCapability_FeatureOrderMismatch(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)
	require.NoError(t, os.WriteFile(scalerPath,
		[]byte(`{
			"features": ["Systolic", "Severity", "Whendiagnoused", "Age", "Diastolic"],
			"mean": [1, 1, 1, 1, 1],
			"scale": [1, 1, 1, 1, 1]
		}`), 0644))

	_, _, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
}

func TestSoftmaxClassifier_PredictProba(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)
	classifier, _, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.NoError(t, err)

	features := make([]float64, 13)
	proba, err := classifier.PredictProba(features)
	require.NoError(t, err)
	require.Len(t, proba, 4)

	var sum float64
	for _, p := range proba {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSoftmaxClassifier_WrongVectorLength(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)
	classifier, _, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.NoError(t, err)

	_, err = classifier.PredictProba([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestStandardScaler_Transform(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)
	_, scaler, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.NoError(t, err)

	scaled, err := scaler.Transform([]float64{2.5, 1.0, 1.0, 1.5, 1.5})
	require.NoError(t, err)

	// Values equal to the mean scale to zero.
	for _, v := range scaled {
		assert.InDelta(t, 0.0, v, 1e-9)
	}
}

func TestStandardScaler_WrongLength(t *testing.T) {
	modelPath, scalerPath := writeTestArtifacts(t)
	_, scaler, err := LoadCapability(testLogger(), modelPath, scalerPath)
	require.NoError(t, err)

	_, err = scaler.Transform([]float64{1, 2})
	assert.Error(t, err)
}
