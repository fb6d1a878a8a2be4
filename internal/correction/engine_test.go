package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/intake-cli/internal/model"
)

func catPtr(c model.Category) *model.Category { return &c }
func amt(v int64) *int64                      { return &v }

func defaultPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(DefaultStages())
	require.NoError(t, err)
	return p
}

func findResult(results []model.CorrectionResult, id string) model.CorrectionResult {
	for _, r := range results {
		if r.StageID == id {
			return r
		}
	}
	return model.CorrectionResult{}
}

func TestDefaultStagesCompile(t *testing.T) {
	p := defaultPipeline(t)
	assert.Len(t, p.Stages(), len(DefaultStages()))
}

func TestApply_Escalation(t *testing.T) {
	p := defaultPipeline(t)
	in := State{
		Urgency:  model.UrgencyMedium,
		Category: catPtr(model.CategoryHousing),
		Reasons:  []string{"base"},
	}
	out, results := p.Apply("We got an eviction notice and I don't know where we'll go.", in)

	assert.Equal(t, model.UrgencyHigh, out.Urgency)
	r := findResult(results, "eviction_notice_high")
	assert.True(t, r.Applied)
	assert.True(t, r.VerificationPassed)
	assert.Equal(t, "MEDIUM", r.FromValue)
	assert.Equal(t, "HIGH", r.ToValue)
	assert.Equal(t, []string{"base", r.Reason}, out.Reasons)

	// The input state is never mutated.
	assert.Equal(t, model.UrgencyMedium, in.Urgency)
	assert.Equal(t, []string{"base"}, in.Reasons)
}

func TestApply_VerificationGate(t *testing.T) {
	p := defaultPipeline(t)
	in := State{Urgency: model.UrgencyMedium, Category: catPtr(model.CategoryUtilities)}

	// Surface value matches utility_shutoff_high, but there is no shutoff.
	out, results := p.Apply("My water bill is a little high this month.", in)
	assert.Equal(t, model.UrgencyMedium, out.Urgency)
	r := findResult(results, "utility_shutoff_high")
	assert.False(t, r.Applied)
	assert.False(t, r.VerificationPassed)
	assert.Equal(t, SkipVerification, r.Skipped)
}

func TestApply_NonInterference(t *testing.T) {
	stage := Stage{
		ID:         "tuition_cap",
		Field:      model.FieldUrgency,
		From:       []string{"HIGH"},
		To:         "MEDIUM",
		Categories: []string{"EDUCATION"},
		Verify:     []string{`\btuition\b`},
		Reason:     "tuition",
	}
	p, err := New([]Stage{stage})
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		st   State
		skip string
	}{
		{"from mismatch", "tuition is due", State{Urgency: model.UrgencyLow, Category: catPtr(model.CategoryEducation)}, SkipFromMismatch},
		{"category guard", "tuition is due", State{Urgency: model.UrgencyHigh, Category: catPtr(model.CategoryHousing)}, SkipCategoryGuard},
		{"nil category", "tuition is due", State{Urgency: model.UrgencyHigh}, SkipCategoryGuard},
		{"verification", "rent is due", State{Urgency: model.UrgencyHigh, Category: catPtr(model.CategoryEducation)}, SkipVerification},
		{"negated verification", "it is not tuition, it is rent", State{Urgency: model.UrgencyHigh, Category: catPtr(model.CategoryEducation)}, SkipVerification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.st.Reasons = []string{"category: EDUCATION", "urgency: HIGH"}
			tt.st.Amount = amt(1200)
			before := tt.st.Clone()

			out, results := p.Apply(tt.text, tt.st)
			require.Len(t, results, 1)
			assert.False(t, results[0].Applied)
			assert.Equal(t, tt.skip, results[0].Skipped)
			assert.Equal(t, before, out)
		})
	}
}

func TestApply_SafetyBlocksDeescalation(t *testing.T) {
	p := defaultPipeline(t)
	text := "I urgently need help, he threatened me."
	in := State{Urgency: model.UrgencyCritical, Category: catPtr(model.CategorySafety)}

	out, _ := p.Apply(text, in)
	assert.Equal(t, model.UrgencyCritical, out.Urgency)

	in.SafetyEvidence = true
	out, results := p.Apply("I urgently need help with my bill.", in)
	assert.Equal(t, model.UrgencyCritical, out.Urgency)
	assert.Equal(t, SkipSafetyGuard, findResult(results, "urgently_alone_high_cap").Skipped)
}

func TestApply_UrgentlyAloneCapped(t *testing.T) {
	p := defaultPipeline(t)
	in := State{Urgency: model.UrgencyCritical, Category: catPtr(model.CategoryOther)}
	out, results := p.Apply("I urgently need help with a bill.", in)
	assert.Equal(t, model.UrgencyHigh, out.Urgency)
	assert.True(t, findResult(results, "urgently_alone_high_cap").Applied)
}

func TestApply_LaterStageOverridesEarlier(t *testing.T) {
	stages := []Stage{
		{ID: "up", Field: model.FieldUrgency, From: []string{"LOW"}, To: "HIGH", Verify: []string{`\bbill\b`}, Reason: "up"},
		{ID: "down", Field: model.FieldUrgency, From: []string{"HIGH"}, To: "MEDIUM", Verify: []string{`\bnext\s+month\b`}, Reason: "down"},
		{ID: "never", Field: model.FieldUrgency, From: []string{"LOW"}, To: "CRITICAL", Verify: []string{`\bbill\b`}, Reason: "never"},
	}
	p, err := New(stages)
	require.NoError(t, err)

	out, results := p.Apply("The bill is due next month.", State{Urgency: model.UrgencyLow})
	assert.Equal(t, model.UrgencyMedium, out.Urgency)
	require.Len(t, results, 3)
	assert.True(t, results[0].Applied)
	assert.True(t, results[1].Applied)
	// By the time "never" runs the level is MEDIUM, so its from value no longer matches.
	assert.Equal(t, SkipFromMismatch, results[2].Skipped)
	assert.Len(t, out.Reasons, 2)
}

func TestApply_BlankTranscript(t *testing.T) {
	p := defaultPipeline(t)
	in := State{Urgency: model.UrgencyMedium, Reasons: []string{}}
	out, results := p.Apply("   ", in)

	assert.Equal(t, in, out)
	require.Len(t, results, len(DefaultStages()))
	for _, r := range results {
		assert.False(t, r.Applied)
		assert.Equal(t, SkipBlank, r.Skipped)
	}
}

func TestApply_PanicIsContained(t *testing.T) {
	good := Stage{ID: "good", Field: model.FieldUrgency, From: []string{"LOW"}, To: "MEDIUM", Verify: []string{`\bbill\b`}, Reason: "bill"}
	require.NoError(t, good.Compile())
	broken := Stage{ID: "broken", Field: model.FieldUrgency, From: []string{"MEDIUM"}, To: "HIGH", Verify: []string{`\bbill\b`}, Reason: "broken"}

	// broken is never compiled, which evaluate treats as an internal fault.
	p := &Pipeline{stages: []Stage{good, broken}}
	out, results := p.Apply("the bill", State{Urgency: model.UrgencyLow})

	assert.Equal(t, model.UrgencyMedium, out.Urgency)
	require.Len(t, results, 2)
	assert.True(t, results[0].Applied)
	assert.Equal(t, SkipPanic, results[1].Skipped)
	assert.Len(t, out.Reasons, 1)
}

func TestApply_CategoryRepair(t *testing.T) {
	p := defaultPipeline(t)
	in := State{Urgency: model.UrgencyMedium, Category: catPtr(model.CategoryOther)}
	out, _ := p.Apply("I have a hospital bill I can't pay.", in)
	require.NotNil(t, out.Category)
	assert.Equal(t, model.CategoryHealthcare, *out.Category)
}

func TestApply_AmountRepairs(t *testing.T) {
	p := defaultPipeline(t)

	tests := []struct {
		name string
		text string
		in   *int64
		want *int64
	}{
		{"three grand", "I need three grand to fix the roof.", nil, amt(3000)},
		{"a grand", "If I could get a grand I'd be okay.", nil, amt(1000)},
		{"digit grand", "I need 2 grand.", nil, amt(2000)},
		{"couple thousand", "We need a couple thousand for the deposit.", nil, amt(2000)},
		{"couple hundred", "Just a couple hundred for groceries.", nil, amt(200)},
		{"existing amount kept", "I need three grand, well $2,500.", amt(2500), amt(2500)},
		{"income grand ignored", "I make three grand a month.", nil, nil},
		{"negated figure skipped", "It's not five grand, it's three grand.", nil, amt(3000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := p.Apply(tt.text, State{Urgency: model.UrgencyMedium, Amount: tt.in})
			assert.Equal(t, tt.want, out.Amount)
		})
	}
}

func TestApply_CategoryGuardLogsStateCategory(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	p, err := New([]Stage{{
		ID:         "tuition_medium",
		Field:      model.FieldUrgency,
		From:       []string{"HIGH"},
		To:         "MEDIUM",
		Categories: []string{"EDUCATION"},
		Verify:     []string{`\btuition\b`},
		Reason:     "tuition",
	}})
	require.NoError(t, err)

	_, results := p.Apply("tuition is due", State{Urgency: model.UrgencyHigh, Category: catPtr(model.CategoryHousing)})
	assert.Equal(t, SkipCategoryGuard, results[0].Skipped)

	entries := logs.FilterMessage("correction: category guard failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "HOUSING", entries[0].ContextMap()["category"])
}

func TestNew_Rejects(t *testing.T) {
	valid := func() Stage {
		return Stage{ID: "s", Field: model.FieldUrgency, From: []string{"LOW"}, To: "HIGH", Verify: []string{`x`}, Reason: "r"}
	}

	tests := []struct {
		name    string
		mutate  func(s *Stage)
		wantErr string
	}{
		{"missing id", func(s *Stage) { s.ID = "" }, "stage id is required"},
		{"no verify", func(s *Stage) { s.Verify = nil }, "verify pattern is required"},
		{"no reason", func(s *Stage) { s.Reason = "" }, "reason is required"},
		{"no from", func(s *Stage) { s.From = nil }, "from or from_missing"},
		{"bad level", func(s *Stage) { s.To = "SEVERE" }, "invalid urgency level"},
		{"bad field", func(s *Stage) { s.Field = "name" }, "unknown field"},
		{"bad regex", func(s *Stage) { s.Verify = []string{`(`} }, "compile verify pattern"},
		{"bad unless", func(s *Stage) { s.Unless = []string{`[`} }, "compile unless pattern"},
		{"bad category guard", func(s *Stage) { s.Categories = []string{"PETS"} }, "invalid category guard"},
		{"capture on urgency", func(s *Stage) { s.Capture = "n" }, "capture is only valid"},
		{"missing urgency", func(s *Stage) { s.FromMissing = true }, "urgency is never missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			_, err := New([]Stage{s})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := New([]Stage{valid(), valid()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate stage id")
}

func TestFilter(t *testing.T) {
	stages := DefaultStages()
	out := Filter(stages, []string{"funeral_high", "amount_couple_hundred"})
	assert.Len(t, out, len(stages)-2)
	for _, s := range out {
		assert.NotEqual(t, "funeral_high", s.ID)
		assert.NotEqual(t, "amount_couple_hundred", s.ID)
	}
	assert.Equal(t, stages, Filter(stages, nil))
}
