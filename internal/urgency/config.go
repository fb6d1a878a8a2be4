// Package urgency scores how time-critical a request is from six independent
// evidence layers and maps the score to an ordinal level.
package urgency

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/config"
	"github.com/sells-group/intake-cli/internal/model"
)

// DefaultConfig returns a config.UrgencyConfig with the production weights.
// Safety carries full weight so that the safety floor can always reach
// CRITICAL; emotional stays below the MEDIUM threshold.
func DefaultConfig() config.UrgencyConfig {
	return config.UrgencyConfig{
		// Weights.
		ExplicitWeight:    0.35,
		ContextualWeight:  0.40,
		TemporalWeight:    0.40,
		SafetyWeight:      1.0,
		ConsequenceWeight: 0.30,
		EmotionalWeight:   0.10,

		// Thresholds.
		MediumThreshold:   0.15,
		HighThreshold:     0.40,
		CriticalThreshold: 0.70,

		SafetyFloor:     0.5,
		MinContribution: 0.02,
	}
}

// WeightSum returns the sum of all layer weights.
func WeightSum(c config.UrgencyConfig) float64 {
	return c.ExplicitWeight + c.ContextualWeight + c.TemporalWeight +
		c.SafetyWeight + c.ConsequenceWeight + c.EmotionalWeight
}

// ValidateConfig checks that an UrgencyConfig is internally consistent.
func ValidateConfig(c config.UrgencyConfig) error {
	var errs []string

	// All weights must be non-negative.
	weights := map[string]float64{
		"explicit_weight":    c.ExplicitWeight,
		"contextual_weight":  c.ContextualWeight,
		"temporal_weight":    c.TemporalWeight,
		"safety_weight":      c.SafetyWeight,
		"consequence_weight": c.ConsequenceWeight,
		"emotional_weight":   c.EmotionalWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if WeightSum(c) <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}

	// Thresholds must be strictly increasing inside (0, 1].
	if c.MediumThreshold <= 0 {
		errs = append(errs, "medium_threshold must be > 0")
	}
	if c.HighThreshold <= c.MediumThreshold {
		errs = append(errs, "high_threshold must be > medium_threshold")
	}
	if c.CriticalThreshold <= c.HighThreshold {
		errs = append(errs, "critical_threshold must be > high_threshold")
	}
	if c.CriticalThreshold > 1 {
		errs = append(errs, "critical_threshold must be <= 1")
	}

	// Emotional evidence alone must stay below MEDIUM.
	if c.EmotionalWeight >= c.MediumThreshold {
		errs = append(errs, fmt.Sprintf("emotional_weight (%.2f) must be < medium_threshold (%.2f)",
			c.EmotionalWeight, c.MediumThreshold))
	}

	if c.SafetyFloor <= 0 || c.SafetyFloor > 1 {
		errs = append(errs, "safety_floor must be in (0, 1]")
	}

	// Any single safety phrase must reach CRITICAL, through the floor or its weight.
	weakest := minSafetyStrength()
	if c.SafetyFloor > weakest && c.SafetyWeight*weakest < c.CriticalThreshold {
		errs = append(errs, fmt.Sprintf(
			"safety_floor (%.2f) above weakest safety phrase (%.2f) requires safety_weight * %.2f >= critical_threshold (%.2f)",
			c.SafetyFloor, weakest, weakest, c.CriticalThreshold))
	}
	if c.MinContribution < 0 {
		errs = append(errs, "min_contribution must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("urgency: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func minSafetyStrength() float64 {
	weakest := 1.0
	for _, ph := range safetyPhrases {
		weakest = math.Min(weakest, ph.strength)
	}
	return weakest
}

func weightFor(c config.UrgencyConfig, l model.Layer) float64 {
	switch l {
	case model.LayerExplicit:
		return c.ExplicitWeight
	case model.LayerContextual:
		return c.ContextualWeight
	case model.LayerTemporal:
		return c.TemporalWeight
	case model.LayerSafety:
		return c.SafetyWeight
	case model.LayerConsequence:
		return c.ConsequenceWeight
	case model.LayerEmotional:
		return c.EmotionalWeight
	}
	return 0
}
