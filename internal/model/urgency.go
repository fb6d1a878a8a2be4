package model

import "strings"

// UrgencyLevel is the ordinal urgency of a request.
type UrgencyLevel string

// Urgency levels, least to most urgent.
const (
	UrgencyLow      UrgencyLevel = "LOW"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyCritical UrgencyLevel = "CRITICAL"
)

var urgencyOrder = map[UrgencyLevel]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// Ordinal returns 0..3 for known levels and -1 otherwise.
func (u UrgencyLevel) Ordinal() int {
	if o, ok := urgencyOrder[u]; ok {
		return o
	}
	return -1
}

// Valid reports whether u is a known level.
func (u UrgencyLevel) Valid() bool {
	return u.Ordinal() >= 0
}

// ParseUrgency converts s to a known level, case-insensitively.
func ParseUrgency(s string) (UrgencyLevel, bool) {
	u := UrgencyLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", false
	}
	return u, true
}

// Layer names one independent urgency evidence dimension.
type Layer string

// The six urgency layers.
const (
	LayerExplicit    Layer = "explicit"
	LayerContextual  Layer = "contextual"
	LayerTemporal    Layer = "temporal"
	LayerSafety      Layer = "safety"
	LayerConsequence Layer = "consequence"
	LayerEmotional   Layer = "emotional"
)

// Layers lists every layer in evaluation order.
var Layers = []Layer{
	LayerExplicit,
	LayerContextual,
	LayerTemporal,
	LayerSafety,
	LayerConsequence,
	LayerEmotional,
}

// LayerScore is one layer's raw value, its weight, and the evidence behind it.
type LayerScore struct {
	Layer    Layer    `json:"layer"`
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Weighted float64  `json:"weighted"`
	Evidence []string `json:"evidence,omitempty"`
}

// UrgencyAssessment is the output of the scoring engine.
// Level is derived from Score except when the correction pipeline overrides it.
type UrgencyAssessment struct {
	Score       float64      `json:"score"`
	Level       UrgencyLevel `json:"level"`
	LayerScores []LayerScore `json:"layer_scores"`
	Reasons     []string     `json:"reasons"`
}

// Layer returns the score for l, or the zero LayerScore if absent.
func (a *UrgencyAssessment) Layer(l Layer) LayerScore {
	if a == nil {
		return LayerScore{Layer: l}
	}
	for _, ls := range a.LayerScores {
		if ls.Layer == l {
			return ls
		}
	}
	return LayerScore{Layer: l}
}
