package model

// Frame describes how the surrounding words present an amount.
type Frame string

// Amount framings, from most to least goal-like.
const (
	FrameTotal   Frame = "total"
	FrameGoal    Frame = "goal"
	FramePlain   Frame = "plain"
	FramePartial Frame = "partial"
	FrameIncome  Frame = "income"
)

// RangeRole marks a candidate taken from a "between X and Y" range.
type RangeRole string

// Range roles.
const (
	RangeNone  RangeRole = ""
	RangeLower RangeRole = "lower"
	RangeUpper RangeRole = "upper"
)

// AmountCandidate is a provisional amount found in a transcript.
type AmountCandidate struct {
	RawText        string    `json:"raw_text"`
	ResolvedValue  int64     `json:"resolved_value"`
	PatternID      string    `json:"pattern_id"`
	Position       int       `json:"position"`
	Frame          Frame     `json:"frame"`
	Range          RangeRole `json:"range,omitempty"`
	CurrencyMarked bool      `json:"currency_marked"`
	Rejected       string    `json:"rejected,omitempty"`
}

// Eligible reports whether the candidate survived filtering.
func (c AmountCandidate) Eligible() bool {
	return c.Rejected == ""
}
