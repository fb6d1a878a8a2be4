// Package correction applies guarded, declarative correction stages to a
// pipeline's provisional urgency, category and amount.
//
// A stage fires only when every guard passes: the targeted field must hold
// one of the stage's "from" values, the optional category and amount guards
// must hold, and every verification pattern must match the transcript. A
// stage that does not fire leaves the state and its reasons untouched.
package correction

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/model"
)

// Stage is one declarative correction rule.
type Stage struct {
	ID    string      `yaml:"id" json:"id"`
	Field model.Field `yaml:"field" json:"field"`

	// From lists the values the stage may replace.
	From []string `yaml:"from,omitempty" json:"from,omitempty"`
	// FromMissing targets an absent amount or category instead of From.
	FromMissing bool   `yaml:"from_missing,omitempty" json:"from_missing,omitempty"`
	To          string `yaml:"to,omitempty" json:"to,omitempty"`

	// Verify patterns must all match the lower-cased transcript outside a
	// negation.
	Verify []string `yaml:"verify" json:"verify"`
	// Unless patterns block the stage when any of them matches.
	Unless []string `yaml:"unless,omitempty" json:"unless,omitempty"`

	// Categories restricts the stage to the listed current categories.
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	MinAmount  *int64   `yaml:"min_amount,omitempty" json:"min_amount,omitempty"`
	MaxAmount  *int64   `yaml:"max_amount,omitempty" json:"max_amount,omitempty"`

	// Capture names a group in the first Verify pattern whose number phrase,
	// times Multiplier, becomes the new amount.
	Capture    string `yaml:"capture,omitempty" json:"capture,omitempty"`
	Multiplier int64  `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`

	Reason string `yaml:"reason" json:"reason"`

	verify []*regexp.Regexp
	unless []*regexp.Regexp
}

// Compile validates the stage and compiles its patterns.
func (s *Stage) Compile() error {
	if s.ID == "" {
		return eris.New("correction: stage id is required")
	}
	if len(s.Verify) == 0 {
		return eris.Errorf("correction: stage %s: at least one verify pattern is required", s.ID)
	}
	if s.Reason == "" {
		return eris.Errorf("correction: stage %s: reason is required", s.ID)
	}
	if len(s.From) == 0 && !s.FromMissing {
		return eris.Errorf("correction: stage %s: from or from_missing is required", s.ID)
	}

	switch s.Field {
	case model.FieldUrgency:
		if s.FromMissing {
			return eris.Errorf("correction: stage %s: urgency is never missing", s.ID)
		}
		for _, v := range append(slices.Clone(s.From), s.To) {
			if _, ok := model.ParseUrgency(v); !ok {
				return eris.Errorf("correction: stage %s: invalid urgency level %q", s.ID, v)
			}
		}
	case model.FieldCategory:
		for _, v := range append(slices.Clone(s.From), s.To) {
			if _, ok := model.ParseCategory(v); !ok {
				return eris.Errorf("correction: stage %s: invalid category %q", s.ID, v)
			}
		}
	case model.FieldAmount:
		for _, v := range s.From {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return eris.Errorf("correction: stage %s: invalid from amount %q", s.ID, v)
			}
		}
		if s.Capture == "" {
			if n, err := strconv.ParseInt(s.To, 10, 64); err != nil || n < 0 {
				return eris.Errorf("correction: stage %s: invalid to amount %q", s.ID, s.To)
			}
		}
		if s.Multiplier < 0 {
			return eris.Errorf("correction: stage %s: multiplier must be >= 0", s.ID)
		}
	default:
		return eris.Errorf("correction: stage %s: unknown field %q", s.ID, s.Field)
	}

	for _, c := range s.Categories {
		if _, ok := model.ParseCategory(c); !ok {
			return eris.Errorf("correction: stage %s: invalid category guard %q", s.ID, c)
		}
	}
	if s.MinAmount != nil && s.MaxAmount != nil && *s.MaxAmount < *s.MinAmount {
		return eris.Errorf("correction: stage %s: max_amount must be >= min_amount", s.ID)
	}

	s.verify = s.verify[:0]
	for _, expr := range s.Verify {
		re, err := regexp.Compile(expr)
		if err != nil {
			return eris.Wrapf(err, "correction: stage %s: compile verify pattern", s.ID)
		}
		s.verify = append(s.verify, re)
	}
	s.unless = s.unless[:0]
	for _, expr := range s.Unless {
		re, err := regexp.Compile(expr)
		if err != nil {
			return eris.Wrapf(err, "correction: stage %s: compile unless pattern", s.ID)
		}
		s.unless = append(s.unless, re)
	}

	if s.Capture != "" {
		if s.Field != model.FieldAmount {
			return eris.Errorf("correction: stage %s: capture is only valid for amount stages", s.ID)
		}
		if s.verify[0].SubexpIndex(s.Capture) < 0 {
			return eris.Errorf("correction: stage %s: first verify pattern has no group %q", s.ID, s.Capture)
		}
	}
	return nil
}

// compiled reports whether Compile has run successfully.
func (s *Stage) compiled() bool {
	return len(s.verify) == len(s.Verify) && len(s.verify) > 0
}

// deescalates reports whether an urgency stage lowers the level from cur.
func (s *Stage) deescalates(cur model.UrgencyLevel) bool {
	to, _ := model.ParseUrgency(s.To)
	return s.Field == model.FieldUrgency && to.Ordinal() < cur.Ordinal()
}
