package correction

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/numwords"
	"github.com/sells-group/intake-cli/internal/transcript"
)

// Skip reasons recorded on stages that did not fire.
const (
	SkipBlank         = "blank_transcript"
	SkipFromMismatch  = "from_mismatch"
	SkipCategoryGuard = "category_guard"
	SkipAmountGuard   = "amount_guard"
	SkipSafetyGuard   = "safety_guard"
	SkipVerification  = "verification"
	SkipUnresolvable  = "unresolvable_capture"
	SkipNoChange      = "no_change"
	SkipPanic         = "panic"
)

// State is the mutable tuple the stages operate on.
type State struct {
	Urgency  model.UrgencyLevel
	Category *model.Category
	Amount   *int64
	Reasons  []string
	// SafetyEvidence blocks urgency de-escalation.
	SafetyEvidence bool
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	if s.Category != nil {
		c := *s.Category
		out.Category = &c
	}
	if s.Amount != nil {
		a := *s.Amount
		out.Amount = &a
	}
	out.Reasons = slices.Clone(s.Reasons)
	return out
}

// Pipeline runs stages in the order given. It holds no per-call state.
type Pipeline struct {
	stages []Stage
}

// New compiles stages and returns a Pipeline. Duplicate IDs are rejected.
func New(stages []Stage) (*Pipeline, error) {
	seen := make(map[string]bool, len(stages))
	compiled := make([]Stage, len(stages))
	for i, s := range stages {
		if seen[s.ID] {
			return nil, eris.Errorf("correction: duplicate stage id %q", s.ID)
		}
		seen[s.ID] = true
		if err := s.Compile(); err != nil {
			return nil, err
		}
		compiled[i] = s
	}
	return &Pipeline{stages: compiled}, nil
}

// Stages returns the active stages in evaluation order.
func (p *Pipeline) Stages() []Stage {
	return slices.Clone(p.stages)
}

// Apply runs every stage once, in order, over a copy of st. Stages that do not
// fire leave the state unchanged; a stage that panics is skipped and the last
// good state is kept.
func (p *Pipeline) Apply(text string, st State) (State, []model.CorrectionResult) {
	out := st.Clone()
	results := make([]model.CorrectionResult, 0, len(p.stages))
	lower := transcript.Lower(text)

	for i := range p.stages {
		stage := &p.stages[i]
		if lower == "" {
			results = append(results, model.CorrectionResult{
				StageID: stage.ID, Field: stage.Field, FromValue: current(stage.Field, out), Skipped: SkipBlank,
			})
			continue
		}
		next, res := p.runStage(stage, lower, out)
		results = append(results, res)
		if res.Applied {
			out = next
		}
	}
	return out, results
}

func (p *Pipeline) runStage(stage *Stage, lower string, st State) (next State, res model.CorrectionResult) {
	res = model.CorrectionResult{StageID: stage.ID, Field: stage.Field}
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("correction: stage panicked",
				zap.String("stage", stage.ID),
				zap.Any("panic", r),
			)
			next = st
			res = model.CorrectionResult{
				StageID: stage.ID, Field: stage.Field, FromValue: current(stage.Field, st), Skipped: SkipPanic,
			}
		}
	}()
	return evaluate(stage, lower, st)
}

// evaluate applies the stage's guards in order and, if all pass, returns the
// updated state.
func evaluate(stage *Stage, lower string, st State) (State, model.CorrectionResult) {
	log := zap.L().With(zap.String("stage", stage.ID))
	from := current(stage.Field, st)
	res := model.CorrectionResult{StageID: stage.ID, Field: stage.Field, FromValue: from}

	if !stage.compiled() {
		// Stage was built without Compile; treat as an internal inconsistency.
		panic(fmt.Sprintf("stage %s is not compiled", stage.ID))
	}

	if !fromMatches(stage, from) {
		res.Skipped = SkipFromMismatch
		return st, res
	}

	if len(stage.Categories) > 0 {
		if st.Category == nil || !containsFold(stage.Categories, string(*st.Category)) {
			category := "none"
			if st.Category != nil {
				category = string(*st.Category)
			}
			log.Debug("correction: category guard failed", zap.String("category", category))
			res.Skipped = SkipCategoryGuard
			return st, res
		}
	}

	if stage.MinAmount != nil || stage.MaxAmount != nil {
		if st.Amount == nil ||
			(stage.MinAmount != nil && *st.Amount < *stage.MinAmount) ||
			(stage.MaxAmount != nil && *st.Amount > *stage.MaxAmount) {
			log.Debug("correction: amount guard failed")
			res.Skipped = SkipAmountGuard
			return st, res
		}
	}

	if st.SafetyEvidence && stage.deescalates(st.Urgency) {
		log.Debug("correction: de-escalation blocked by safety evidence")
		res.Skipped = SkipSafetyGuard
		return st, res
	}

	match, ok := verified(stage, lower)
	if !ok {
		res.Skipped = SkipVerification
		return st, res
	}
	res.VerificationPassed = true

	to := stage.To
	if stage.Capture != "" {
		v, ok := captureAmount(stage, lower, match)
		if !ok {
			log.Debug("correction: capture did not resolve")
			res.Skipped = SkipUnresolvable
			return st, res
		}
		to = strconv.FormatInt(v, 10)
	}
	if to == from {
		res.Skipped = SkipNoChange
		return st, res
	}

	next := st.Clone()
	switch stage.Field {
	case model.FieldUrgency:
		lvl, _ := model.ParseUrgency(to)
		next.Urgency = lvl
	case model.FieldCategory:
		c, _ := model.ParseCategory(to)
		next.Category = &c
	case model.FieldAmount:
		v, err := strconv.ParseInt(to, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("stage %s produced non-integer amount %q", stage.ID, to))
		}
		next.Amount = &v
	}

	shownFrom := from
	if shownFrom == "" {
		shownFrom = "none"
	}
	res.Applied = true
	res.ToValue = to
	res.Reason = fmt.Sprintf("correction %s: %s %s -> %s (%s)", stage.ID, stage.Field, shownFrom, to, stage.Reason)
	next.Reasons = append(next.Reasons, res.Reason)
	log.Debug("correction: applied", zap.String("from", shownFrom), zap.String("to", to))
	return next, res
}

func current(f model.Field, st State) string {
	switch f {
	case model.FieldUrgency:
		return string(st.Urgency)
	case model.FieldCategory:
		if st.Category != nil {
			return string(*st.Category)
		}
	case model.FieldAmount:
		if st.Amount != nil {
			return strconv.FormatInt(*st.Amount, 10)
		}
	}
	return ""
}

func fromMatches(stage *Stage, from string) bool {
	if from == "" {
		return stage.FromMissing
	}
	return containsFold(stage.From, from)
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, v) })
}

// verified reports whether every Verify pattern has a non-negated match and
// no Unless pattern matches. It returns the submatch indices of the first
// non-negated match of the first Verify pattern.
func verified(stage *Stage, lower string) ([]int, bool) {
	var first []int
	for i, re := range stage.verify {
		var found []int
		for _, loc := range re.FindAllStringSubmatchIndex(lower, -1) {
			if !transcript.Negated(lower, loc[0]) {
				found = loc
				break
			}
		}
		if found == nil {
			return nil, false
		}
		if i == 0 {
			first = found
		}
	}
	for _, re := range stage.unless {
		if re.MatchString(lower) {
			return nil, false
		}
	}
	return first, true
}

// captureAmount resolves the capture group of match, a submatch index slice
// from the first Verify pattern.
func captureAmount(stage *Stage, lower string, match []int) (int64, bool) {
	gi := stage.verify[0].SubexpIndex(stage.Capture)
	if gi < 0 || 2*gi+1 >= len(match) || match[2*gi] < 0 {
		return 0, false
	}
	phrase := lower[match[2*gi]:match[2*gi+1]]
	var n int64
	switch phrase {
	case "a", "an":
		n = 1
	default:
		v, ok := numwords.Resolve(phrase)
		if !ok {
			return 0, false
		}
		n = v
	}
	mult := stage.Multiplier
	if mult == 0 {
		mult = 1
	}
	return n * mult, true
}
