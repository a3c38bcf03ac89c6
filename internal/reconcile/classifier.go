package reconcile

import (
	"math"
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// IPESSentinel marks a land capability that was scored with IPES rather
// than classed by Bailey; the class itself carries no category.
const IPESSentinel = "IPES"

// IPES score thresholds.
const (
	sezScore          = 0.0
	maxSensitiveScore = 725.0
)

const baileyPrefix = "Bailey"

// landCapabilityClasses maps Bailey land capability classes to categories.
var landCapabilityClasses = map[string]models.Sensitivity{
	"1b": models.SensitivitySEZ,
	"1a": models.SensitivitySensitive,
	"1c": models.SensitivitySensitive,
	"2":  models.SensitivitySensitive,
	"3":  models.SensitivitySensitive,
	"4":  models.SensitivityNonSensitive,
	"5":  models.SensitivityNonSensitive,
	"6":  models.SensitivityNonSensitive,
	"7":  models.SensitivityNonSensitive,
}

// Classify derives the land sensitivity category from an IPES score or a
// Bailey land capability class. A valid score wins over the class; a
// malformed score is ignored.
func Classify(landCapability *string, ipesScore *float64) models.Sensitivity {
	if ValidScore(ipesScore) {
		switch score := *ipesScore; {
		case score == sezScore:
			return models.SensitivitySEZ
		case score <= maxSensitiveScore:
			return models.SensitivitySensitive
		default:
			return models.SensitivityNonSensitive
		}
	}

	if landCapability == nil {
		return models.SensitivityUnknown
	}
	code := strings.TrimSpace(*landCapability)
	if code == "" || code == IPESSentinel {
		return models.SensitivityUnknown
	}
	if category, ok := landCapabilityClasses[normalizeLandCapability(code)]; ok {
		return category
	}
	return models.SensitivityUnknown
}

// ValidScore reports whether an IPES score is present and usable.
// Scores are non-negative; negative, NaN and infinite values are malformed.
func ValidScore(score *float64) bool {
	if score == nil {
		return false
	}
	s := *score
	return !math.IsNaN(s) && !math.IsInf(s, 0) && s >= 0
}

// normalizeLandCapability turns "Bailey 1b", "Bailey-1B" or "1b" into "1b".
func normalizeLandCapability(code string) string {
	if strings.HasPrefix(code, baileyPrefix) {
		code = strings.TrimLeft(code[len(baileyPrefix):], " -_:")
	}
	return strings.ToLower(strings.TrimSpace(code))
}
