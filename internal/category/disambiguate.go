package category

import (
	"regexp"
	"slices"

	"github.com/sells-group/intake-cli/internal/model"
)

// Disambiguation re-labels a base classification when cross-cutting context
// shows the surface category is misleading. The first matching rule wins.
type Disambiguation struct {
	ID   string
	From []model.Category
	To   model.Category
	// Requires must all match the lower-cased transcript.
	Requires []*regexp.Regexp
	// MaxFromScore, when positive, limits the rule to weak base classifications.
	MaxFromScore float64
	Reason       string
}

func (d Disambiguation) applies(current model.Category, score float64, lower string) bool {
	if !slices.Contains(d.From, current) {
		return false
	}
	if d.MaxFromScore > 0 && score > d.MaxFromScore {
		return false
	}
	for _, re := range d.Requires {
		if !re.MatchString(lower) {
			return false
		}
	}
	return true
}

var (
	commuteContext = regexp.MustCompile(`\b(?:get(?:ting)?\s+to\s+(?:my\s+)?(?:work|job)|commute|to\s+and\s+from\s+work|drive\s+to\s+work|for\s+work|keep\s+my\s+job|lose\s+my\s+job|late\s+to\s+work)\b`)
	eventContext   = regexp.MustCompile(`\b(?:` + familyEvent + `)\b`)
	memberContext  = regexp.MustCompile(`\b(?:` + familyMember + `)\b`)
	jobLossContext = regexp.MustCompile(`\b(?:laid\s+off|lost\s+(?:my|his|her|our)\s+job|got\s+fired|was\s+fired|let\s+me\s+go|unemployed|out\s+of\s+work)\b`)
)

// DefaultDisambiguations returns the production re-labeling rules in
// evaluation order.
func DefaultDisambiguations() []Disambiguation {
	return []Disambiguation{
		{
			ID:       "commute_employment",
			From:     []model.Category{model.CategoryTransportation},
			To:       model.CategoryEmployment,
			Requires: []*regexp.Regexp{commuteContext},
			Reason:   "transportation needed to get to work",
		},
		{
			ID: "family_event",
			From: []model.Category{
				model.CategoryEducation, model.CategoryOther,
				model.CategoryTransportation, model.CategoryHealthcare,
			},
			To:           model.CategoryFamily,
			Requires:     []*regexp.Regexp{eventContext, memberContext},
			MaxFromScore: 2,
			Reason:       "family event for a family member",
		},
		{
			ID:       "job_loss_employment",
			From:     []model.Category{model.CategoryOther},
			To:       model.CategoryEmployment,
			Requires: []*regexp.Regexp{jobLossContext},
			Reason:   "job loss described",
		},
	}
}
