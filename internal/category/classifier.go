// Package category classifies the kind of need described in a transcript.
package category

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/transcript"
)

// DefaultMinScore is the evidence a category needs before it can win.
const DefaultMinScore = 1.0

// Options tunes the classifier.
type Options struct {
	MinScore float64 `mapstructure:"min_score"`
}

// Result is the outcome of one classification.
type Result struct {
	Category *model.Category
	// Original is the base classification before disambiguation.
	Original *model.Category
	// Scores holds one entry per known category in priority order.
	Scores  []model.CategoryScore
	Reasons []string
}

// Classifier scores keyword evidence per category.
type Classifier struct {
	minScore float64
	rules    []Disambiguation
}

// New creates a Classifier using the default disambiguation rules.
func New(opts Options) *Classifier {
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	return &Classifier{minScore: opts.MinScore, rules: DefaultDisambiguations()}
}

// Classify returns the winning category. Blank text yields a nil category;
// text with no qualifying evidence yields OTHER.
func (c *Classifier) Classify(text string) Result {
	lower := transcript.Lower(text)
	var res Result
	if lower == "" {
		return res
	}

	res.Scores = scoreAll(lower)

	best := model.CategoryOther
	bestScore := 0.0
	for _, s := range res.Scores {
		if s.Score < c.minScore {
			continue
		}
		// Scores are in priority order, so strict > keeps the higher-priority tie.
		if s.Score > bestScore {
			best, bestScore = s.Category, s.Score
		}
	}

	base := best
	res.Original = &base
	if bestScore > 0 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("category: %s (score %.1f: %s)",
			best, bestScore, strings.Join(scoreFor(res.Scores, best).Reasons, ", ")))
	} else {
		res.Reasons = append(res.Reasons, "category: OTHER (no category evidence)")
	}

	final := best
	for _, d := range c.rules {
		if !d.applies(final, scoreFor(res.Scores, final).Score, lower) {
			continue
		}
		res.Reasons = append(res.Reasons, fmt.Sprintf("category: %s -> %s (%s)", final, d.To, d.Reason))
		final = d.To
		break
	}
	res.Category = &final
	return res
}

// scoreAll evaluates every category's evidence, returning scores in
// priority order.
func scoreAll(lower string) []model.CategoryScore {
	scores := make([]model.CategoryScore, 0, len(model.CategoryPriority))
	var total float64
	for _, cat := range model.CategoryPriority {
		s := model.CategoryScore{Category: cat}
		for _, e := range positiveEvidence[cat] {
			if !matchesUnnegated(e.re, lower) {
				continue
			}
			s.Score += e.weight
			s.EvidenceCount++
			s.Reasons = append(s.Reasons, e.label)
		}
		for _, e := range negativeEvidence[cat] {
			if e.re.MatchString(lower) {
				s.Score += e.weight
				s.Reasons = append(s.Reasons, "-"+e.label)
			}
		}
		if s.Score < 0 {
			s.Score = 0
		}
		total += s.Score
		scores = append(scores, s)
	}
	if total > 0 {
		for i := range scores {
			scores[i].Confidence = scores[i].Score / total
		}
	}
	return scores
}

func matchesUnnegated(re *regexp.Regexp, lower string) bool {
	for _, loc := range re.FindAllStringIndex(lower, -1) {
		if !transcript.Negated(lower, loc[0]) {
			return true
		}
	}
	return false
}

func scoreFor(scores []model.CategoryScore, cat model.Category) model.CategoryScore {
	for _, s := range scores {
		if s.Category == cat {
			return s
		}
	}
	return model.CategoryScore{Category: cat}
}

// Ranked returns the scores with positive evidence, highest first.
func (r Result) Ranked() []model.CategoryScore {
	out := make([]model.CategoryScore, 0, len(r.Scores))
	for _, s := range r.Scores {
		if s.Score > 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
