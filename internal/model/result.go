package model

// Input is one pipeline invocation's request.
// CaseID is carried for logging only.
type Input struct {
	Transcript   string `json:"transcript" yaml:"transcript"`
	CategoryHint string `json:"category_hint,omitempty" yaml:"category_hint,omitempty"`
	CaseID       string `json:"case_id,omitempty" yaml:"case_id,omitempty"`
}

// ExtractionResult is the externally visible output of the pipeline.
type ExtractionResult struct {
	Name         *string      `json:"name"`
	Category     *Category    `json:"category"`
	GoalAmount   *int64       `json:"goalAmount"`
	UrgencyLevel UrgencyLevel `json:"urgencyLevel"`
	Reasons      []string     `json:"reasons"`
}

// EmptyResult returns the no-evidence default.
func EmptyResult() *ExtractionResult {
	return &ExtractionResult{
		UrgencyLevel: UrgencyMedium,
		Reasons:      []string{},
	}
}

// Trace is the full intermediate state behind an ExtractionResult.
type Trace struct {
	Result           *ExtractionResult  `json:"result"`
	AmountCandidates []AmountCandidate  `json:"amount_candidates"`
	CategoryScores   []CategoryScore    `json:"category_scores"`
	Urgency          *UrgencyAssessment `json:"urgency,omitempty"`
	Corrections      []CorrectionResult `json:"corrections"`
}
