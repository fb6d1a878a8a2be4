package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/intake-cli/internal/model"
)

// Mismatch is one scored field that differed from the label.
type Mismatch struct {
	Field string `json:"field"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// Outcome pairs a case with the pipeline result.
type Outcome struct {
	Case       Case                    `json:"case"`
	Result     *model.ExtractionResult `json:"result"`
	Mismatches []Mismatch              `json:"mismatches,omitempty"`
}

// Passed reports whether every scored field matched.
func (o Outcome) Passed() bool { return len(o.Mismatches) == 0 }

// FieldStats counts scored and matching cases for one output field.
type FieldStats struct {
	Field   string `json:"field"`
	Checked int    `json:"checked"`
	Correct int    `json:"correct"`
}

// Accuracy returns Correct/Checked, or 0 when nothing was scored.
func (s FieldStats) Accuracy() float64 {
	if s.Checked == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Checked)
}

// Report summarizes a corpus run.
type Report struct {
	Total    int          `json:"total"`
	Passed   int          `json:"passed"`
	Fields   []FieldStats `json:"fields"`
	Outcomes []Outcome    `json:"outcomes"`
}

// Evaluate scores results against cases. results[i] must be the output for
// cases[i].
func Evaluate(cases []Case, results []*model.ExtractionResult) (*Report, error) {
	if len(cases) != len(results) {
		return nil, eris.Errorf("corpus: %d cases but %d results", len(cases), len(results))
	}

	stats := map[string]*FieldStats{}
	order := []string{keyName, keyCategory, keyAmount, keyUrgency}
	for _, f := range order {
		stats[f] = &FieldStats{Field: f}
	}

	rep := &Report{Total: len(cases), Outcomes: make([]Outcome, 0, len(cases))}
	for i, c := range cases {
		res := results[i]
		if res == nil {
			res = model.EmptyResult()
		}
		out := Outcome{Case: c, Result: res}

		score := func(field string, set, ok bool, want, got string) {
			if !set {
				return
			}
			stats[field].Checked++
			if ok {
				stats[field].Correct++
				return
			}
			out.Mismatches = append(out.Mismatches, Mismatch{Field: field, Want: want, Got: got})
		}

		e := c.Expected
		score(keyName, e.Name.Set, nameEqual(e.Name.Value, res.Name), show(e.Name.Value), show(res.Name))
		score(keyCategory, e.Category.Set, ptrEqual(e.Category.Value, res.Category), show(e.Category.Value), show(res.Category))
		score(keyAmount, e.GoalAmount.Set, ptrEqual(e.GoalAmount.Value, res.GoalAmount), show(e.GoalAmount.Value), show(res.GoalAmount))
		if e.Urgency.Set {
			got := res.UrgencyLevel
			score(keyUrgency, true, *e.Urgency.Value == got, string(*e.Urgency.Value), string(got))
		}

		if out.Passed() {
			rep.Passed++
		}
		rep.Outcomes = append(rep.Outcomes, out)
	}

	for _, f := range order {
		rep.Fields = append(rep.Fields, *stats[f])
	}
	return rep, nil
}

// Failures returns the outcomes with at least one mismatch.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed() {
			out = append(out, o)
		}
	}
	return out
}

// Format renders the report as text.
func (r *Report) Format() string {
	var b strings.Builder

	b.WriteString("# Corpus Report\n")
	fmt.Fprintf(&b, "- Cases: %d\n", r.Total)
	fmt.Fprintf(&b, "- Passed: %d\n\n", r.Passed)

	b.WriteString("## Field Accuracy\n")
	for _, s := range r.Fields {
		if s.Checked == 0 {
			fmt.Fprintf(&b, "- %s: not labelled\n", s.Field)
			continue
		}
		fmt.Fprintf(&b, "- %s: %d/%d (%.1f%%)\n", s.Field, s.Correct, s.Checked, s.Accuracy()*100)
	}

	failures := r.Failures()
	if len(failures) == 0 {
		return b.String()
	}
	b.WriteString("\n## Mismatches\n")
	for _, o := range failures {
		fmt.Fprintf(&b, "- %s\n", o.Case.ID)
		for _, m := range o.Mismatches {
			fmt.Fprintf(&b, "  %s: want %s, got %s\n", m.Field, m.Want, m.Got)
		}
	}
	return b.String()
}

func nameEqual(want, got *string) bool {
	if want == nil || got == nil {
		return want == nil && got == nil
	}
	return strings.EqualFold(strings.TrimSpace(*want), strings.TrimSpace(*got))
}

func ptrEqual[T comparable](want, got *T) bool {
	if want == nil || got == nil {
		return want == nil && got == nil
	}
	return *want == *got
}

func show[T any](v *T) string {
	if v == nil {
		return "null"
	}
	switch x := any(*v).(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprint(x)
	}
}
