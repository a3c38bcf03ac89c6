package reconcile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stwalsh4118/devrights/internal/models"
)

func TestClassify_Score(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  models.Sensitivity
	}{
		{name: "negative score is malformed", score: -1, want: models.SensitivityUnknown},
		{name: "zero is SEZ", score: 0, want: models.SensitivitySEZ},
		{name: "one is sensitive", score: 1, want: models.SensitivitySensitive},
		{name: "725 is sensitive", score: 725, want: models.SensitivitySensitive},
		{name: "726 is non-sensitive", score: 726, want: models.SensitivityNonSensitive},
		{name: "NaN is malformed", score: math.NaN(), want: models.SensitivityUnknown},
		{name: "infinity is malformed", score: math.Inf(1), want: models.SensitivityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(nil, floatPtr(tt.score)))
		})
	}
}

func TestClassify_LandCapability(t *testing.T) {
	tests := []struct {
		code string
		want models.Sensitivity
	}{
		{"Bailey 1b", models.SensitivitySEZ},
		{"Bailey 1a", models.SensitivitySensitive},
		{"Bailey-1C", models.SensitivitySensitive},
		{"2", models.SensitivitySensitive},
		{"3", models.SensitivitySensitive},
		{"4", models.SensitivityNonSensitive},
		{"Bailey 7", models.SensitivityNonSensitive},
		{"IPES", models.SensitivityUnknown},
		{"bailey 4", models.SensitivityUnknown},
		{"8", models.SensitivityUnknown},
		{"", models.SensitivityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(strPtr(tt.code), nil))
		})
	}
}

func TestClassify_ScoreTakesPrecedence(t *testing.T) {
	assert.Equal(t, models.SensitivityNonSensitive, Classify(strPtr("Bailey 1b"), floatPtr(900)))
	assert.Equal(t, models.SensitivitySEZ, Classify(strPtr("IPES"), floatPtr(0)))
}

func TestClassify_MalformedScoreFallsBackToCode(t *testing.T) {
	assert.Equal(t, models.SensitivitySEZ, Classify(strPtr("Bailey 1b"), floatPtr(-5)))
}

func TestClassify_NothingGiven(t *testing.T) {
	assert.Equal(t, models.SensitivityUnknown, Classify(nil, nil))
}
