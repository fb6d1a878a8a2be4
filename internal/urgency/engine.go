package urgency

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sells-group/intake-cli/internal/config"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/transcript"
)

// extraHitBonus is added per distinct phrase beyond the strongest one.
const extraHitBonus = 0.1

// Engine scores transcripts. It holds only configuration and is safe for
// concurrent use.
type Engine struct {
	cfg config.UrgencyConfig
}

// New validates cfg and returns an Engine.
func New(cfg config.UrgencyConfig) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.UrgencyConfig {
	return e.cfg
}

// Level maps a score to an urgency level using the configured thresholds.
func (e *Engine) Level(score float64) model.UrgencyLevel {
	switch {
	case score >= e.cfg.CriticalThreshold:
		return model.UrgencyCritical
	case score >= e.cfg.HighThreshold:
		return model.UrgencyHigh
	case score >= e.cfg.MediumThreshold:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}

// Assess scores text. cat is the resolved category used for contextual
// weighting and may be nil. Blank text yields MEDIUM with no reasons.
func (e *Engine) Assess(text string, cat *model.Category) model.UrgencyAssessment {
	lower := transcript.Lower(text)
	if lower == "" {
		layers := make([]model.LayerScore, 0, len(model.Layers))
		for _, l := range model.Layers {
			layers = append(layers, model.LayerScore{Layer: l, Weight: weightFor(e.cfg, l)})
		}
		return model.UrgencyAssessment{
			Level:       model.UrgencyMedium,
			LayerScores: layers,
			Reasons:     []string{},
		}
	}

	layers := []model.LayerScore{
		e.layer(model.LayerExplicit, matchPhrases(lower, explicitPhrases, true, 1)),
		e.contextual(lower, cat),
		e.temporal(lower),
		e.layer(model.LayerSafety, matchPhrases(lower, safetyPhrases, true, 1)),
		e.layer(model.LayerConsequence, matchPhrases(lower, consequencePhrases, true, 1)),
		e.layer(model.LayerEmotional, matchPhrases(lower, emotionalPhrases, true, 1)),
	}

	var score float64
	for _, ls := range layers {
		score += ls.Weighted
	}
	score = round(score)

	var reasons []string
	floored := false
	if safety := layers[3].Score; safety >= e.cfg.SafetyFloor && score < e.cfg.CriticalThreshold {
		score = e.cfg.CriticalThreshold
		floored = true
	}

	level := e.Level(score)
	reasons = append(reasons, fmt.Sprintf("urgency: %s (score %.2f)", level, score))
	if floored {
		reasons = append(reasons, "urgency: safety evidence raised score to the critical threshold")
	}

	ranked := make([]model.LayerScore, len(layers))
	copy(ranked, layers)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Weighted > ranked[j].Weighted })
	for _, ls := range ranked {
		if ls.Weighted < e.cfg.MinContribution || ls.Weighted == 0 {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("urgency: %s %.2f (%s)", ls.Layer, ls.Weighted, strings.Join(ls.Evidence, ", ")))
	}

	return model.UrgencyAssessment{
		Score:       score,
		Level:       level,
		LayerScores: layers,
		Reasons:     reasons,
	}
}

type hit struct {
	label    string
	strength float64
}

// matchPhrases returns one hit per phrase that matches at least once. When
// negatable, a match preceded by a negator does not count.
func matchPhrases(lower string, phrases []phrase, negatable bool, factor float64) []hit {
	var hits []hit
	for _, ph := range phrases {
		for _, loc := range ph.re.FindAllStringIndex(lower, -1) {
			if negatable && transcript.Negated(lower, loc[0]) {
				continue
			}
			hits = append(hits, hit{label: ph.label, strength: ph.strength * factor})
			break
		}
	}
	return hits
}

// combine takes the strongest hit and adds a small bonus for corroborating
// hits, capped at 1.
func combine(hits []hit) float64 {
	if len(hits) == 0 {
		return 0
	}
	best := 0.0
	for _, h := range hits {
		best = math.Max(best, h.strength)
	}
	return math.Min(1, best+extraHitBonus*float64(len(hits)-1))
}

func labels(hits []hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.label)
	}
	return out
}

func (e *Engine) layer(l model.Layer, hits []hit) model.LayerScore {
	score := round(combine(hits))
	w := weightFor(e.cfg, l)
	return model.LayerScore{
		Layer:    l,
		Score:    score,
		Weight:   w,
		Weighted: round(score * w),
		Evidence: labels(hits),
	}
}

// contextual scores category risk language. Phrases from the resolved
// category count in full; phrases from other categories are discounted. The
// category's base risk is a floor.
func (e *Engine) contextual(lower string, cat *model.Category) model.LayerScore {
	var hits []hit
	for _, c := range model.CategoryPriority {
		factor := crossCategoryFactor
		if cat != nil && *cat == c {
			factor = 1
		}
		hits = append(hits, matchPhrases(lower, contextualPhrases[c], true, factor)...)
	}

	ls := e.layer(model.LayerContextual, hits)
	if cat != nil {
		if base := categoryBaseRisk[*cat]; base > ls.Score {
			ls.Score = base
			ls.Weighted = round(base * ls.Weight)
		}
		ls.Evidence = append([]string{"category " + string(*cat)}, ls.Evidence...)
	}
	return ls
}

// temporal uses the nearest deadline only.
func (e *Engine) temporal(lower string) model.LayerScore {
	hits := matchPhrases(lower, temporalPhrases, false, 1)
	if len(hits) > 1 {
		nearest := hits[0]
		for _, h := range hits[1:] {
			if h.strength > nearest.strength {
				nearest = h
			}
		}
		hits = []hit{nearest}
	}
	return e.layer(model.LayerTemporal, hits)
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
