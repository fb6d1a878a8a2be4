package model

// Field names the value a correction stage targets.
type Field string

// Correctable fields.
const (
	FieldUrgency  Field = "urgency"
	FieldCategory Field = "category"
	FieldAmount   Field = "amount"
)

// CorrectionResult records one stage's evaluation.
type CorrectionResult struct {
	StageID            string `json:"stage_id"`
	Field              Field  `json:"field"`
	Applied            bool   `json:"applied"`
	FromValue          string `json:"from_value"`
	ToValue            string `json:"to_value,omitempty"`
	Reason             string `json:"reason,omitempty"`
	VerificationPassed bool   `json:"verification_passed"`
	Skipped            string `json:"skipped,omitempty"`
}
