// Package pipeline runs the extraction components over a transcript and
// assembles the structured result.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/intake-cli/internal/amount"
	"github.com/sells-group/intake-cli/internal/category"
	"github.com/sells-group/intake-cli/internal/config"
	"github.com/sells-group/intake-cli/internal/correction"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/names"
	"github.com/sells-group/intake-cli/internal/transcript"
	"github.com/sells-group/intake-cli/internal/urgency"
)

// Pipeline orchestrates name, category, amount and urgency extraction
// followed by the correction stages. A Pipeline holds no per-call state and
// is safe for concurrent use.
type Pipeline struct {
	amount      *amount.Extractor
	classifier  *category.Classifier
	urgency     *urgency.Engine
	corrections *correction.Pipeline
}

// New creates a Pipeline from cfg. stages is the ordered correction stage
// list; it is used as given.
func New(cfg *config.Config, stages []correction.Stage) (*Pipeline, error) {
	if cfg == nil {
		return nil, eris.New("pipeline: nil config")
	}

	ucfg := cfg.Urgency
	if urgency.WeightSum(ucfg) == 0 {
		ucfg = urgency.DefaultConfig()
	}
	eng, err := urgency.New(ucfg)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: urgency engine")
	}

	corr, err := correction.New(stages)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: correction stages")
	}

	return &Pipeline{
		amount: amount.New(amount.Options{
			MinAmount:     cfg.Amount.MinAmount,
			MinBareAmount: cfg.Amount.MinBareAmount,
			MaxAmount:     cfg.Amount.MaxAmount,
		}),
		classifier:  category.New(category.Options{MinScore: cfg.Category.MinScore}),
		urgency:     eng,
		corrections: corr,
	}, nil
}

// Stages returns the active correction stages in evaluation order.
func (p *Pipeline) Stages() []correction.Stage {
	return p.corrections.Stages()
}

// Run extracts the structured fields from in. It never fails: components
// that find nothing or fail internally fall back to their defaults.
func (p *Pipeline) Run(in model.Input) *model.ExtractionResult {
	return p.RunDetailed(in).Result
}

// RunDetailed is Run plus the intermediate candidates, scores and stage
// outcomes behind the result.
func (p *Pipeline) RunDetailed(in model.Input) *model.Trace {
	log := zap.L().With(zap.String("case_id", in.CaseID))
	start := time.Now()

	trace := &model.Trace{
		Result:           model.EmptyResult(),
		AmountCandidates: []model.AmountCandidate{},
		CategoryScores:   []model.CategoryScore{},
		Corrections:      []model.CorrectionResult{},
	}

	if transcript.IsBlank(in.Transcript) {
		log.Debug("pipeline: blank transcript")
		return trace
	}
	text := in.Transcript

	var (
		nameRes   names.Result
		amountRes amount.Result
		catRes    category.Result
		assess    model.UrgencyAssessment
	)

	p.phase(log, "name", func() { nameRes = names.Extract(text) })
	p.phase(log, "category", func() { catRes = p.classifier.Classify(text) })
	p.phase(log, "amount", func() { amountRes = p.amount.Extract(text) })

	urgencyCat := catRes.Category
	if in.CategoryHint != "" {
		if hint, ok := model.ParseCategory(in.CategoryHint); ok {
			urgencyCat = &hint
		} else {
			log.Debug("pipeline: ignoring unknown category hint", zap.String("hint", in.CategoryHint))
		}
	}

	assess = model.UrgencyAssessment{Level: model.UrgencyMedium}
	p.phase(log, "urgency", func() { assess = p.urgency.Assess(text, urgencyCat) })

	reasons := make([]string, 0, 8)
	if nameRes.Reason != "" {
		reasons = append(reasons, nameRes.Reason)
	}
	reasons = append(reasons, catRes.Reasons...)
	if amountRes.Reason != "" {
		reasons = append(reasons, amountRes.Reason)
	}
	reasons = append(reasons, assess.Reasons...)

	state := correction.State{
		Urgency:        assess.Level,
		Category:       catRes.Category,
		Amount:         amountRes.Amount,
		Reasons:        reasons,
		SafetyEvidence: assess.Layer(model.LayerSafety).Score > 0,
	}

	var results []model.CorrectionResult
	p.phase(log, "corrections", func() { state, results = p.corrections.Apply(text, state) })

	trace.Result = &model.ExtractionResult{
		Name:         nameRes.Name,
		Category:     state.Category,
		GoalAmount:   state.Amount,
		UrgencyLevel: state.Urgency,
		Reasons:      state.Reasons,
	}
	if amountRes.Candidates != nil {
		trace.AmountCandidates = amountRes.Candidates
	}
	if catRes.Scores != nil {
		trace.CategoryScores = catRes.Scores
	}
	trace.Urgency = &assess
	if results != nil {
		trace.Corrections = results
	}

	log.Debug("pipeline: extraction complete",
		zap.String("urgency", string(state.Urgency)),
		zap.Int("corrections_applied", countApplied(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return trace
}

// phase runs fn and contains any panic it raises. The caller's zero values
// stand in for the failed component's output.
func (p *Pipeline) phase(log *zap.Logger, name string, fn func()) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Warn("pipeline: phase panicked, using defaults",
				zap.String("phase", name),
				zap.Any("panic", r),
			)
			return
		}
		log.Debug("pipeline: phase complete",
			zap.String("phase", name),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()
	fn()
}

func countApplied(results []model.CorrectionResult) int {
	n := 0
	for _, r := range results {
		if r.Applied {
			n++
		}
	}
	return n
}

// RunBatch runs every input with at most concurrency invocations in flight.
// Traces are returned in input order. The only error is cancellation of ctx.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []model.Input, concurrency int) ([]*model.Trace, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("pipeline: processing batch",
		zap.Int("inputs", len(inputs)),
		zap.Int("concurrency", concurrency),
	)

	traces := make([]*model.Trace, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			traces[i] = p.RunDetailed(in)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: batch")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: batch")
	}
	return traces, nil
}
