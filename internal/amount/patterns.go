package amount

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

const numberWordAlt = `zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|` +
	`thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty|thirty|forty|fourty|` +
	`fifty|sixty|seventy|eighty|ninety|hundred|thousand|million`

// numericAmount matches "$1,800", "1800", "2.5k", "$3 thousand", "900 dollars".
const numericAmount = `(?:\$\s?)?\b(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?(?:\s?k\b)?` +
	`(?:\s+(?:hundred|thousand|million)\b)?(?:\s*(?:dollars?|bucks|usd)\b)?`

// spokenAmount matches "three thousand dollars", "twenty-eight hundred", "a thousand".
var spokenAmount = fmt.Sprintf(
	`(?:\ban?\s+(?:hundred|thousand|million)\b|\b(?:%[1]s)\b)(?:(?:\s+and)?[\s-]+(?:%[1]s)\b)*(?:\s+(?:dollars?|bucks)\b)?`,
	numberWordAlt,
)

var amountExpr = `(?:` + numericAmount + `|` + spokenAmount + `)`

// expand replaces AMT placeholders in a rule template with the amount expression.
func expand(template string) *regexp.Regexp {
	return regexp.MustCompile(strings.ReplaceAll(template, "AMT", amountExpr))
}

// rule generates candidates. Rules run in order; a span claimed by an earlier
// rule is never re-claimed by a later one. A match whose gap group contains a
// stop word is ignored by that rule.
type rule struct {
	id        string
	re        *regexp.Regexp
	frame     model.Frame
	stopWords []string
}

const needVerbs = `need|needs|needed|needing|require|requires|required|asking\s+for|ask\s+for|asking|` +
	`looking\s+for|request|requesting|hoping\s+for|hoping\s+to\s+(?:raise|get)|` +
	`trying\s+to\s+(?:raise|get|come\s+up\s+with)|come\s+up\s+with|raise|short|owe|owes|behind|` +
	`to\s+cover|goal\s+is`

var defaultStops = []string{" but ", " and i ", " because ", " since "}

var rules = []rule{
	{
		id:    "total_before",
		re:    expand(`\b(?:total(?:\s+(?:of|is|comes\s+to))?|comes\s+to|altogether|exactly|in\s+all)\s+(?:is\s+|of\s+)?(?:about\s+|around\s+)?(?P<amt>AMT)`),
		frame: model.FrameTotal,
	},
	{
		id:    "total_after",
		re:    expand(`(?P<amt>AMT)\s+(?:in\s+total|total|altogether|in\s+all)\b`),
		frame: model.FrameTotal,
	},
	{
		id:    "range",
		re:    expand(`\b(?:between|from|anywhere\s+from|somewhere\s+between)\s+(?P<lo>AMT)\s+(?:and|to)\s+(?P<hi>AMT)`),
		frame: model.FramePlain,
	},
	{
		id:        "partial",
		re:        expand(`\b(?:already\s+(?:paid|have|had|raised|saved|got|put\s+down)|have\s+saved|saved\s+up|saved|i\s+have|i've\s+got|i've\s+saved|i've\s+raised|raised|put\s+down|paid\s+off|covered|spent)\b(?P<gap>[^.!?;$\d]{0,20}?)(?P<amt>AMT)`),
		frame:     model.FramePartial,
		stopWords: append([]string{" to ", " pay", " need", " left", " more", " short", " a ", " an ", " bill", " due", " debt", " late"}, defaultStops...),
	},
	{
		id:        "income_verb",
		re:        expand(`\b(?:earn|earns|earning|make|makes|making|made|salary|income|paycheck|paychecks|wage|wages|get\s+paid|gets\s+paid|bring\s+home|brings\s+home|take\s+home|social\s+security|disability|ssi|benefits)\b(?P<gap>[^.!?;$\d]{0,15}?)(?P<amt>AMT)`),
		frame:     model.FrameIncome,
		stopWords: append([]string{" need", " to "}, defaultStops...),
	},
	{
		id:        "need",
		re:        expand(`\b(?:` + needVerbs + `)\b(?P<gap>[^.!?;$\d]{0,40}?)(?P<amt>AMT)`),
		frame:     model.FrameGoal,
		stopWords: append([]string{" earn", " make ", " makes ", " paid ", " income", " salary", " already "}, defaultStops...),
	},
	{
		id:    "cost",
		re:    expand(`\b(?:cost|costs|costing|bill|bills|rent|deposit|fee|fees|price|payment|repair|repairs|balance|estimate|quote|tuition)\s+(?:is|are|will\s+be|would\s+be|comes\s+to|come\s+to|totals?|runs?|of|at)\s+(?:about\s+|around\s+|roughly\s+|almost\s+|over\s+|nearly\s+)?(?P<amt>AMT)`),
		frame: model.FrameGoal,
	},
	{
		id:    "purpose",
		re:    expand(`(?P<amt>AMT)\s+(?:for|to\s+(?:cover|pay|fix|get|catch\s+up|keep))\b`),
		frame: model.FrameGoal,
	},
	{
		id:    "income_rate",
		re:    expand(`(?P<amt>AMT)\s*(?:a|an|per|every|each|/)\s*(?:month|week|hour|hr|year|yr|paycheck|check)\b`),
		frame: model.FrameIncome,
	},
	{
		id:    "income_adverb",
		re:    expand(`(?P<amt>AMT)\s+(?:monthly|weekly|hourly|annually|yearly|biweekly)\b`),
		frame: model.FrameIncome,
	},
	{
		id:    "mention",
		re:    expand(`(?P<amt>AMT)`),
		frame: model.FramePlain,
	},
}

// Noise shapes removed before selection.
var (
	phonePattern = regexp.MustCompile(`(?:\+?1[\s.-]?)?\(?\b\d{3}\)?[\s.-]?\d{3}[\s.-]\d{4}\b|\b\d{10,11}\b|\b\d{3}[\s.-]\d{4}\b`)
	zipPlus4     = regexp.MustCompile(`\b\d{5}-\d{4}\b`)
	zipLabel     = regexp.MustCompile(`\bzip(?:\s*code)?\s*(?:is\s+)?$`)
	unitAfter    = regexp.MustCompile(`^\s*(?:-\s*)?(?:years?|yrs?|months?|weeks?|days?|hours?|hrs?|minutes?|mins?|kids?|children|child|people|persons?|times?|miles?|percent|am|pm|a\.m|p\.m|o'clock|degrees?|pounds?|lbs?|feet|ft|inches|floors?|stories|bedrooms?|rooms?|grade|year-old|years-old|sons?|daughters?|babies|members?|jobs?|cars?|dogs?|cats?|of\s+(?:us|them|my|our)|old)\b`)
	addressAfter = regexp.MustCompile(`^\s+(?:[a-z]+\s+){0,3}(?:street|st|avenue|ave|road|rd|drive|dr|lane|ln|boulevard|blvd|court|ct|way|place|pl|terrace|parkway|pkwy|circle|highway|hwy)\b`)
	dateBefore   = regexp.MustCompile(`(?:\b(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\.?|\b(?:by|before|until|till)\s+the)\s*$`)
	needAdjacent = regexp.MustCompile(`\b(?:` + needVerbs + `)\s+(?:about\s+|around\s+|roughly\s+)?$`)
	labelBefore  = regexp.MustCompile(`(?:\b(?:age|aged|apartment|apt|unit|room|suite|number|no|route|highway|interstate|channel|page|chapter|grade|class|section|floor|ext|extension|code|pin|id|account|case|step|level|lot|building|bus|i'm|im|is\s+only|turned|turning)|#)\s*$`)
)

func isCurrencyMarked(raw string) bool {
	return strings.Contains(raw, "$") ||
		strings.HasSuffix(raw, "dollars") || strings.HasSuffix(raw, "dollar") ||
		strings.HasSuffix(raw, "bucks") || strings.HasSuffix(raw, "usd")
}

func isSpoken(raw string) bool {
	return raw != "" && raw[0] >= 'a' && raw[0] <= 'z'
}
