// Package amount finds the requested money amount in a transcript.
//
// Candidates are generated by an ordered table of framing rules, filtered for
// phone/ZIP/year/unit noise and implausible magnitudes, then ranked so that
// totals beat goals, goals beat plain mentions, and income or amounts already
// in hand are never chosen.
package amount

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/numwords"
	"github.com/sells-group/intake-cli/internal/transcript"
)

// Rejection reasons recorded on filtered candidates.
const (
	RejectUnresolvable = "unresolvable"
	RejectPhone        = "phone"
	RejectZIP          = "zip"
	RejectYear         = "year"
	RejectUnit         = "unit"
	RejectLabel        = "label"
	RejectAddress      = "address"
	RejectOrdinal      = "ordinal"
	RejectTime         = "time"
	RejectDate         = "date"
	RejectImplausible  = "implausible"
	RejectIncome       = "income"
	RejectPartial      = "partial"
	RejectRangeLower   = "range_lower"
)

// Options bound what counts as a plausible request.
type Options struct {
	MinAmount     int64 `mapstructure:"min_amount"`
	MinBareAmount int64 `mapstructure:"min_bare_amount"`
	MaxAmount     int64 `mapstructure:"max_amount"`
}

// DefaultOptions returns the production plausibility bounds.
func DefaultOptions() Options {
	return Options{
		MinAmount:     5,
		MinBareAmount: 20,
		MaxAmount:     1_000_000,
	}
}

// Result is the outcome of one extraction.
type Result struct {
	Amount     *int64
	Selected   *model.AmountCandidate
	Candidates []model.AmountCandidate
	Reason     string
}

// Extractor selects the goal amount from a transcript.
type Extractor struct {
	opts Options
}

// New creates an Extractor. Zero-valued options fall back to defaults.
func New(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.MinAmount <= 0 {
		opts.MinAmount = def.MinAmount
	}
	if opts.MinBareAmount <= 0 {
		opts.MinBareAmount = def.MinBareAmount
	}
	if opts.MaxAmount <= 0 {
		opts.MaxAmount = def.MaxAmount
	}
	return &Extractor{opts: opts}
}

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Extract returns the selected amount, or a nil Amount when no candidate
// survives filtering.
func (e *Extractor) Extract(text string) Result {
	lower := transcript.Lower(text)
	if lower == "" {
		return Result{}
	}

	noise := noiseSpans(lower)
	cands := e.collect(lower)
	for i := range cands {
		e.filter(lower, noise, &cands[i])
	}
	markRanges(cands)

	res := Result{Candidates: cands}
	best := selectBest(cands)
	if best < 0 {
		return res
	}
	sel := cands[best]
	v := sel.ResolvedValue
	res.Amount = &v
	res.Selected = &sel
	res.Reason = fmt.Sprintf("amount: %d from %q (%s, %s)", v, sel.RawText, sel.PatternID, sel.Frame)
	return res
}

// collect runs the rule table over the text.
func (e *Extractor) collect(lower string) []model.AmountCandidate {
	var (
		claimed []span
		out     []model.AmountCandidate
	)
	isClaimed := func(s span) bool {
		for _, c := range claimed {
			if c.overlaps(s) {
				return true
			}
		}
		return false
	}

	for _, r := range rules {
		names := r.re.SubexpNames()
		for _, m := range r.re.FindAllStringSubmatchIndex(lower, -1) {
			groups := map[string]span{}
			for gi, name := range names {
				if name == "" || m[2*gi] < 0 {
					continue
				}
				groups[name] = span{m[2*gi], m[2*gi+1]}
			}
			if g, ok := groups["gap"]; ok && hasStopWord(lower[g.start:g.end], r.stopWords) {
				continue
			}

			if r.id == "range" {
				lo, hi := groups["lo"], groups["hi"]
				if isClaimed(lo) || isClaimed(hi) {
					continue
				}
				frame := model.FramePlain
				if goalContext(transcript.ClauseBefore(lower, m[0])) {
					frame = model.FrameGoal
				}
				claimed = append(claimed, lo, hi)
				out = append(out,
					newCandidate(lower, lo, r.id, frame, model.RangeLower),
					newCandidate(lower, hi, r.id, frame, model.RangeUpper),
				)
				continue
			}

			amt, ok := groups["amt"]
			if !ok || isClaimed(amt) {
				continue
			}
			claimed = append(claimed, amt)
			out = append(out, newCandidate(lower, amt, r.id, r.frame, model.RangeNone))
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func newCandidate(lower string, s span, id string, frame model.Frame, role model.RangeRole) model.AmountCandidate {
	raw := strings.TrimSpace(lower[s.start:s.end])
	c := model.AmountCandidate{
		RawText:        raw,
		PatternID:      id,
		Position:       s.start,
		Frame:          frame,
		Range:          role,
		CurrencyMarked: isCurrencyMarked(raw),
	}
	if id == "mention" {
		switch {
		case c.CurrencyMarked:
			c.PatternID = "currency"
		case isSpoken(raw):
			c.PatternID = "spoken"
		default:
			c.PatternID = "bare"
		}
	}
	v, ok := numwords.Resolve(compact(raw))
	if !ok {
		c.Rejected = RejectUnresolvable
		return c
	}
	c.ResolvedValue = v
	return c
}

// compact joins "$ 900" and "2.5 k" into resolver tokens.
func compact(raw string) string {
	raw = strings.ReplaceAll(raw, "$ ", "$")
	raw = strings.ReplaceAll(raw, " k", "k")
	return raw
}

func hasStopWord(gap string, stops []string) bool {
	padded := " " + gap + " "
	for _, w := range stops {
		if strings.Contains(padded, w) {
			return true
		}
	}
	return false
}

var goalWords = []string{"need", "asking", "looking for", "require", "owe", "short", "cost", "costs", "bill"}

func goalContext(clause string) bool {
	for _, w := range goalWords {
		if strings.Contains(clause, w) {
			return true
		}
	}
	return false
}

func noiseSpans(lower string) []span {
	var out []span
	for _, m := range phonePattern.FindAllStringIndex(lower, -1) {
		out = append(out, span{m[0], m[1]})
	}
	for _, m := range zipPlus4.FindAllStringIndex(lower, -1) {
		out = append(out, span{m[0], m[1]})
	}
	return out
}

// filter sets c.Rejected when the candidate is noise or implausible.
func (e *Extractor) filter(lower string, noise []span, c *model.AmountCandidate) {
	if c.Rejected != "" {
		return
	}
	s := span{c.Position, c.Position + len(c.RawText)}
	for _, n := range noise {
		if n.overlaps(s) {
			if zipPlus4.MatchString(lower[n.start:n.end]) {
				c.Rejected = RejectZIP
			} else {
				c.Rejected = RejectPhone
			}
			return
		}
	}

	before := lower[:s.start]
	after := lower[s.end:]
	framed := c.Frame == model.FrameGoal || c.Frame == model.FrameTotal

	if !c.CurrencyMarked {
		digits := isDigits(c.RawText)
		switch {
		case digits && len(c.RawText) == 5 && (!framed || zipLabel.MatchString(before)):
			c.Rejected = RejectZIP
		case digits && len(c.RawText) == 4 && c.ResolvedValue >= 1900 && c.ResolvedValue <= 2099 && !yearFramed(c, before):
			c.Rejected = RejectYear
		case strings.HasPrefix(after, ":") || strings.HasSuffix(before, ":"):
			c.Rejected = RejectTime
		case strings.HasPrefix(after, "%"):
			c.Rejected = RejectUnit
		case after != "" && isLetter(after[0]):
			c.Rejected = RejectOrdinal
		case unitAfter.MatchString(after):
			c.Rejected = RejectUnit
		case addressAfter.MatchString(after):
			c.Rejected = RejectAddress
		case labelBefore.MatchString(before):
			c.Rejected = RejectLabel
		case dateBefore.MatchString(before):
			c.Rejected = RejectDate
		}
		if c.Rejected != "" {
			return
		}
	}

	minimum := e.opts.MinAmount
	if !c.CurrencyMarked && !framed {
		minimum = e.opts.MinBareAmount
	}
	if c.ResolvedValue < minimum || c.ResolvedValue > e.opts.MaxAmount {
		c.Rejected = RejectImplausible
		return
	}

	switch c.Frame {
	case model.FrameIncome:
		c.Rejected = RejectIncome
	case model.FramePartial:
		c.Rejected = RejectPartial
	}
}

// yearFramed reports whether a year-shaped number is introduced directly by a
// goal or total frame. A need verb further back in the clause does not count.
func yearFramed(c *model.AmountCandidate, before string) bool {
	switch c.Frame {
	case model.FrameTotal:
		return true
	case model.FrameGoal:
		if c.PatternID == "need" {
			return needAdjacent.MatchString(before)
		}
		return true
	}
	return false
}

// markRanges drops a range's lower bound when its upper bound is usable.
func markRanges(cands []model.AmountCandidate) {
	for i := range cands {
		if cands[i].Range != model.RangeUpper || !cands[i].Eligible() {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if cands[j].Range == model.RangeLower && cands[j].PatternID == cands[i].PatternID {
				if cands[j].Eligible() {
					cands[j].Rejected = RejectRangeLower
				}
				break
			}
		}
	}
}

func rank(c model.AmountCandidate) int {
	switch c.Frame {
	case model.FrameTotal:
		return 4
	case model.FrameGoal:
		return 3
	case model.FramePlain:
		if c.CurrencyMarked {
			return 2
		}
		return 1
	}
	return 0
}

// selectBest returns the index of the winning candidate or -1.
func selectBest(cands []model.AmountCandidate) int {
	best := -1
	for i, c := range cands {
		if !c.Eligible() || rank(c) == 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := cands[best]
		switch {
		case rank(c) > rank(b):
			best = i
		case rank(c) == rank(b) && c.ResolvedValue > b.ResolvedValue:
			best = i
		}
	}
	return best
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
