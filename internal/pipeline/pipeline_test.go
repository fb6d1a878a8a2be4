package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/config"
	"github.com/sells-group/intake-cli/internal/correction"
	"github.com/sells-group/intake-cli/internal/model"
)

func newTestPipeline(t *testing.T, stages []correction.Stage) *Pipeline {
	t.Helper()
	p, err := New(&config.Config{}, stages)
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }
func catPtr(c model.Category) *model.Category {
	return &c
}

func TestRun_Scenarios(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())

	tests := []struct {
		name        string
		transcript  string
		wantName    *string
		wantCat     *model.Category
		checkCat    bool
		wantAmount  *int64
		wantUrgency model.UrgencyLevel
		checkLevel  bool
	}{
		{
			name:        "security deposit",
			transcript:  "My name is Robert Chen and I need $900 for a security deposit.",
			wantName:    strPtr("Robert Chen"),
			wantCat:     catPtr(model.CategoryHousing),
			checkCat:    true,
			wantAmount:  int64Ptr(900),
			wantUrgency: model.UrgencyMedium,
			checkLevel:  true,
		},
		{
			name:        "daughter's wedding",
			transcript:  "This is Dr. Patricia Johnson. I'm calling not as a doctor but as a mother. We need about three thousand dollars for my daughter's wedding.",
			wantName:    strPtr("Patricia Johnson"),
			wantCat:     catPtr(model.CategoryFamily),
			checkCat:    true,
			wantAmount:  int64Ptr(3000),
			wantUrgency: model.UrgencyLow,
			checkLevel:  true,
		},
		{
			name:        "eviction and shutoff tomorrow",
			transcript:  "Eviction notice came, they shut off power tomorrow, I need $1800.",
			wantAmount:  int64Ptr(1800),
			wantUrgency: model.UrgencyCritical,
			checkLevel:  true,
		},
		{
			name:       "income rejected for need",
			transcript: "I earn $2800 monthly. I need $950 for car repairs.",
			wantAmount: int64Ptr(950),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Run(model.Input{Transcript: tt.transcript})
			require.NotNil(t, res)

			if tt.wantName != nil {
				require.NotNil(t, res.Name)
				assert.Equal(t, *tt.wantName, *res.Name)
			}
			if tt.checkCat {
				require.NotNil(t, res.Category)
				assert.Equal(t, *tt.wantCat, *res.Category)
			}
			require.NotNil(t, res.GoalAmount)
			assert.Equal(t, *tt.wantAmount, *res.GoalAmount)
			if tt.checkLevel {
				assert.Equal(t, tt.wantUrgency, res.UrgencyLevel, "reasons: %v", res.Reasons)
			}
			assert.NotEmpty(t, res.Reasons)
		})
	}
}

func TestRun_Empty(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())

	for _, text := range []string{"", "   ", "\n\t"} {
		res := p.Run(model.Input{Transcript: text, CaseID: "blank"})
		assert.Nil(t, res.Name)
		assert.Nil(t, res.Category)
		assert.Nil(t, res.GoalAmount)
		assert.Equal(t, model.UrgencyMedium, res.UrgencyLevel)
		assert.NotNil(t, res.Reasons)
		assert.Empty(t, res.Reasons)
	}
}

func TestRun_ReasonsOrder(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())
	res := p.Run(model.Input{Transcript: "My name is Robert Chen and I need $900 for a security deposit."})

	require.GreaterOrEqual(t, len(res.Reasons), 4)
	prefixes := []string{"name:", "category:", "amount:", "urgency:"}
	idx := 0
	for _, r := range res.Reasons {
		if idx < len(prefixes) && strings.HasPrefix(r, prefixes[idx]) {
			idx++
		}
	}
	assert.Equal(t, len(prefixes), idx, "reasons out of order: %v", res.Reasons)
	assert.True(t, strings.HasPrefix(res.Reasons[0], "name: Robert Chen"))
}

func TestRun_Idempotent(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())
	in := model.Input{Transcript: "Eviction notice came, they shut off power tomorrow, I need $1800."}

	first := p.Run(in)
	second := p.Run(in)
	assert.Equal(t, first, second)
}

func TestRun_CaseIDDoesNotAffectResult(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())
	text := "My name is Robert Chen and I need $900 for a security deposit."

	a := p.Run(model.Input{Transcript: text, CaseID: "HARD_001"})
	b := p.Run(model.Input{Transcript: text, CaseID: "T009"})
	assert.Equal(t, a, b)
}

func TestRunDetailed_CategoryHint(t *testing.T) {
	p := newTestPipeline(t, nil)
	text := "My name is Robert Chen and I need $900 for a security deposit."

	trace := p.RunDetailed(model.Input{Transcript: text, CategoryHint: "safety"})
	require.NotNil(t, trace.Urgency)
	ctx := trace.Urgency.Layer(model.LayerContextual)
	require.NotEmpty(t, ctx.Evidence)
	assert.Equal(t, "category SAFETY", ctx.Evidence[0])

	// The hint never replaces the classified category.
	require.NotNil(t, trace.Result.Category)
	assert.Equal(t, model.CategoryHousing, *trace.Result.Category)
}

func TestRunDetailed_UnknownHintIgnored(t *testing.T) {
	p := newTestPipeline(t, nil)
	text := "My name is Robert Chen and I need $900 for a security deposit."

	trace := p.RunDetailed(model.Input{Transcript: text, CategoryHint: "groceries"})
	ctx := trace.Urgency.Layer(model.LayerContextual)
	require.NotEmpty(t, ctx.Evidence)
	assert.Equal(t, "category HOUSING", ctx.Evidence[0])
}

func TestRunDetailed_Trace(t *testing.T) {
	stages := correction.DefaultStages()
	p := newTestPipeline(t, stages)

	trace := p.RunDetailed(model.Input{Transcript: "I earn $2800 monthly. I need $950 for car repairs."})
	require.NotNil(t, trace.Result)
	assert.GreaterOrEqual(t, len(trace.AmountCandidates), 2)
	assert.Len(t, trace.CategoryScores, len(model.CategoryPriority))
	require.NotNil(t, trace.Urgency)
	assert.Len(t, trace.Urgency.LayerScores, len(model.Layers))
	assert.Len(t, trace.Corrections, len(stages))

	var rejected int
	for _, c := range trace.AmountCandidates {
		if !c.Eligible() {
			rejected++
		}
	}
	assert.GreaterOrEqual(t, rejected, 1)
}

func TestRunDetailed_EmptyTrace(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())
	trace := p.RunDetailed(model.Input{})

	assert.Equal(t, model.EmptyResult(), trace.Result)
	assert.Empty(t, trace.AmountCandidates)
	assert.Empty(t, trace.CategoryScores)
	assert.Empty(t, trace.Corrections)
	assert.Nil(t, trace.Urgency)
}

func TestRun_CustomStages(t *testing.T) {
	text := "This is Dr. Patricia Johnson. I'm calling not as a doctor but as a mother. We need about three thousand dollars for my daughter's wedding."

	stages := []correction.Stage{{
		ID:     "wedding_is_other",
		Field:  model.FieldCategory,
		From:   []string{"FAMILY"},
		To:     "OTHER",
		Verify: []string{`\bwedding\b`},
		Reason: "weddings are tracked as OTHER",
	}}
	p := newTestPipeline(t, stages)
	trace := p.RunDetailed(model.Input{Transcript: text})

	require.NotNil(t, trace.Result.Category)
	assert.Equal(t, model.CategoryOther, *trace.Result.Category)
	require.Len(t, trace.Corrections, 1)
	assert.True(t, trace.Corrections[0].Applied)
	last := trace.Result.Reasons[len(trace.Result.Reasons)-1]
	assert.True(t, strings.HasPrefix(last, "correction wedding_is_other:"), last)

	// Without the stage the classifier's answer stands.
	plain := newTestPipeline(t, nil).Run(model.Input{Transcript: text})
	require.NotNil(t, plain.Category)
	assert.Equal(t, model.CategoryFamily, *plain.Category)
}

func TestRun_ColloquialAmount(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())
	res := p.Run(model.Input{Transcript: "My car broke down and the shop wants a couple thousand to fix it."})

	require.NotNil(t, res.GoalAmount)
	assert.Equal(t, int64(2000), *res.GoalAmount)
}

func TestRun_ContractionsAndNoise(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())

	tests := []struct {
		name       string
		transcript string
		wantCat    model.Category
		wantAmount *int64
	}{
		{"threat with won't", "He won't stop threatening me.", model.CategorySafety, nil},
		{"can't afford rent", "I can't afford my rent and I need $1200.", model.CategoryHousing, int64Ptr(1200)},
		{"rent due on a date", "I need to pay my rent by March 15.", model.CategoryHousing, nil},
		{"local phone only", "You can reach me at 555-1234.", model.CategoryOther, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Run(model.Input{Transcript: tt.transcript})
			require.NotNil(t, res.Category)
			assert.Equal(t, tt.wantCat, *res.Category)
			assert.Equal(t, tt.wantAmount, res.GoalAmount)
		})
	}

	res := p.Run(model.Input{Transcript: "He won't stop threatening me."})
	assert.Equal(t, model.UrgencyCritical, res.UrgencyLevel)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)

	dup := []correction.Stage{correction.DefaultStages()[0], correction.DefaultStages()[0]}
	_, err = New(&config.Config{}, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: correction stages")

	bad := &config.Config{}
	bad.Urgency.ExplicitWeight = -1
	_, err = New(bad, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: urgency engine")
}

func TestPhase_RecoversPanic(t *testing.T) {
	p := newTestPipeline(t, nil)
	ran := false
	assert.NotPanics(t, func() {
		p.phase(zap.NewNop(), "boom", func() {
			ran = true
			panic("component failure")
		})
	})
	assert.True(t, ran)
}

func TestRunBatch_Order(t *testing.T) {
	p := newTestPipeline(t, correction.DefaultStages())
	inputs := []model.Input{
		{Transcript: "My name is Robert Chen and I need $900 for a security deposit.", CaseID: "a"},
		{Transcript: "", CaseID: "b"},
		{Transcript: "I earn $2800 monthly. I need $950 for car repairs.", CaseID: "c"},
		{Transcript: "Eviction notice came, they shut off power tomorrow, I need $1800.", CaseID: "d"},
	}

	traces, err := p.RunBatch(context.Background(), inputs, 3)
	require.NoError(t, err)
	require.Len(t, traces, len(inputs))
	for i, in := range inputs {
		assert.Equal(t, p.Run(in), traces[i].Result, "input %d", i)
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RunBatch(ctx, []model.Input{{Transcript: "I need $500 for rent."}}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: batch")
}

func TestRunBatch_ZeroConcurrency(t *testing.T) {
	p := newTestPipeline(t, nil)
	traces, err := p.RunBatch(context.Background(), []model.Input{{Transcript: "I need $500 for rent."}}, 0)
	require.NoError(t, err)
	require.Len(t, traces, 1)
	require.NotNil(t, traces[0].Result.GoalAmount)
	assert.Equal(t, int64(500), *traces[0].Result.GoalAmount)
}
