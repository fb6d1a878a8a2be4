package urgency

import (
	"regexp"

	"github.com/sells-group/intake-cli/internal/model"
)

// phrase is one piece of layer evidence with a strength in (0, 1].
type phrase struct {
	label    string
	re       *regexp.Regexp
	strength float64
}

func p(label, expr string, strength float64) phrase {
	return phrase{label: label, re: regexp.MustCompile(`\b(?:` + expr + `)\b`), strength: strength}
}

var explicitPhrases = []phrase{
	p("life or death", `life\s+or\s+death|matter\s+of\s+life`, 1.0),
	p("emergency", `emergency|emergencies`, 0.8),
	p("critical", `critical|dire`, 0.8),
	p("urgent", `urgent|urgently|urgency`, 0.7),
	p("immediately", `immediately|right\s+away|asap|as\s+soon\s+as\s+possible|right\s+now`, 0.7),
	p("crisis", `crisis`, 0.7),
	p("can't wait", `can'?t\s+wait|cannot\s+wait|running\s+out\s+of\s+time|out\s+of\s+time`, 0.6),
}

// contextualPhrases holds category-specific risk language. A phrase counts at
// full strength when its category matches the resolved category and at
// crossCategoryFactor otherwise.
var contextualPhrases = map[model.Category][]phrase{
	model.CategoryHousing: {
		p("eviction notice", `eviction\s+notice|notice\s+to\s+(?:vacate|quit)|eviction\s+papers`, 1.0),
		p("sleeping in car", `sleeping\s+in\s+(?:my|our|the)\s+car|living\s+in\s+(?:my|our|the)\s+car`, 1.0),
		p("homeless", `homeless|on\s+the\s+streets?`, 0.9),
		p("eviction", `evict(?:ed|ion|ing)?`, 0.8),
		p("locked out", `locked\s+out|changed\s+the\s+locks`, 0.8),
		p("foreclosure", `foreclos(?:ure|ing|ed)`, 0.8),
		p("behind on rent", `behind\s+on\s+(?:my\s+|the\s+)?rent|late\s+on\s+(?:my\s+|the\s+)?rent|past\s+due\s+rent`, 0.6),
	},
	model.CategoryUtilities: {
		p("shutoff notice", `shut\s*off\s+notice|disconnection\s+notice|disconnect\s+notice|final\s+notice`, 1.0),
		p("shutoff", `shut\s*off|shut\s+(?:it|my|our|the)?\s*\w*\s*off|disconnect(?:ed|ion)?|cut\s+off`, 0.9),
		p("no service", `no\s+(?:heat|power|electricity|water|lights|gas)`, 0.9),
		p("past due utility", `past\s+due|overdue`, 0.5),
	},
	model.CategoryHealthcare: {
		p("out of medication", `out\s+of\s+(?:my\s+)?(?:insulin|medication|medicine|meds|oxygen)`, 0.9),
		p("acute care", `emergency\s+room|\ber\b|icu|intensive\s+care|ambulance`, 0.8),
		p("treatment", `surgery|chemo(?:therapy)?|dialysis|transplant`, 0.7),
		p("unaffordable medication", `can'?t\s+afford\s+(?:my\s+)?(?:medication|medicine|meds|prescriptions?|insulin)`, 0.7),
		p("hospital", `hospital(?:ized)?`, 0.5),
	},
	model.CategorySafety: {
		p("fleeing", `flee(?:ing)?|fled`, 1.0),
		p("abuse", `abus(?:e|ed|er|ive)`, 0.9),
		p("protective order", `restraining\s+order|protective\s+order`, 0.8),
		p("shelter", `shelter`, 0.5),
	},
	model.CategoryFood: {
		p("nothing to eat", `nothing\s+to\s+eat|no\s+food|haven'?t\s+eaten|going\s+hungry|starving`, 0.9),
		p("hungry", `hungry`, 0.6),
		p("baby formula", `out\s+of\s+(?:baby\s+)?formula`, 0.9),
	},
	model.CategoryEmployment: {
		p("job at risk", `lose\s+my\s+job|losing\s+my\s+job|get\s+fired`, 0.7),
		p("laid off", `laid\s+off|lost\s+my\s+job`, 0.6),
		p("fired", `fired`, 0.5),
	},
	model.CategoryTransportation: {
		p("can't get to work", `can'?t\s+get\s+to\s+work|no\s+way\s+(?:of\s+getting|to\s+get)\s+to\s+work`, 0.6),
		p("towed", `towed|impound(?:ed)?`, 0.6),
		p("broke down", `broke\s+down|won'?t\s+start`, 0.4),
	},
	model.CategoryEducation: {
		p("dropped", `dropped\s+from|kicked\s+out\s+of\s+(?:school|class)`, 0.6),
		p("registration hold", `registration\s+(?:hold|deadline)|can'?t\s+register`, 0.4),
	},
	model.CategoryFamily: {
		p("funeral", `funeral|burial|passed\s+away`, 0.6),
		p("custody", `custody`, 0.5),
	},
}

// categoryBaseRisk is the contextual floor for a resolved category.
var categoryBaseRisk = map[model.Category]float64{
	model.CategorySafety:         0.6,
	model.CategoryHealthcare:     0.4,
	model.CategoryHousing:        0.4,
	model.CategoryUtilities:      0.4,
	model.CategoryFood:           0.4,
	model.CategoryEmployment:     0.4,
	model.CategoryTransportation: 0.4,
	model.CategoryEducation:      0.1,
	model.CategoryFamily:         0.1,
	model.CategoryOther:          0.1,
}

const crossCategoryFactor = 0.75

// temporalPhrases are ordered by proximity; the nearest deadline wins.
var temporalPhrases = []phrase{
	p("today", `today|tonight|this\s+(?:morning|afternoon|evening)|right\s+now|within\s+hours|in\s+(?:a\s+few|two|2|three|3)\s+hours`, 1.0),
	p("tomorrow", `tomorrow|in\s+(?:a|one|1)\s+day|24\s+hours|by\s+morning`, 0.9),
	p("this week", `this\s+week(?:end)?|by\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)|in\s+(?:two|three|2|3|a\s+few|few)\s+days|48\s+hours|72\s+hours`, 0.7),
	p("next week", `next\s+week|end\s+of\s+(?:the\s+)?week|within\s+(?:a|one)\s+week|in\s+(?:a|one)\s+week`, 0.5),
	p("this month", `end\s+of\s+(?:the\s+)?month|this\s+month|by\s+the\s+(?:first|1st|15th)|in\s+two\s+weeks|in\s+2\s+weeks`, 0.4),
	p("soon", `soon|coming\s+up|deadline`, 0.2),
	p("distant", `next\s+month|next\s+year|in\s+a\s+few\s+months|in\s+(?:two|three|six|2|3|6)\s+months|eventually|someday|later\s+this\s+year|this\s+summer|this\s+fall`, 0.05),
}

// safetyPhrases all carry enough strength to trip the safety floor.
var safetyPhrases = []phrase{
	p("domestic violence", `domestic\s+(?:violence|abuse)`, 1.0),
	p("physical harm", `(?:hit|beat|beats|beating|hurt|hurts|choked|strangled|attacked)\s+me|kill\s+(?:me|us|myself)|suicid(?:e|al)`, 1.0),
	p("threat to life", `threaten(?:ed|ing|s)?\s+to\s+(?:kill|hurt)|afraid\s+for\s+(?:my|our)\s+li(?:fe|ves)`, 1.0),
	p("child endangerment", `(?:child|children|kids?|son|daughter|baby)\s+(?:is|are)\s+(?:in\s+danger|not\s+safe|unsafe)`, 1.0),
	p("trafficking", `traffick(?:ed|ing)`, 1.0),
	p("abuse", `abus(?:e|ed|er|ive)`, 0.9),
	p("fleeing", `flee(?:ing)?|fled|escap(?:e|ed|ing)\s+(?:from\s+)?(?:him|her|them|my\s+\w+)`, 0.9),
	p("danger", `in\s+danger|not\s+safe|unsafe`, 0.8),
	p("stalking", `stalk(?:ed|ing|er|s)?`, 0.8),
	p("protective order", `restraining\s+order|protective\s+order|order\s+of\s+protection`, 0.8),
	p("weapon", `weapon|gun|knife`, 0.8),
	p("threatened", `threaten(?:ed|ing|s)?`, 0.7),
}

var consequencePhrases = []phrase{
	p("death", `(?:could|might|will|would)\s+die|die\s+without`, 1.0),
	p("homelessness", `(?:be|end\s+up|become|go)\s+homeless|on\s+the\s+streets?|nowhere\s+(?:else\s+)?to\s+go|lose\s+(?:my|our)\s+(?:home|apartment|house|place)`, 0.9),
	p("eviction", `(?:get|be|being)\s+evicted`, 0.8),
	p("children hungry", `(?:kids?|children|family)\s+(?:will|would|are\s+going\s+to)\s+go\s+hungry`, 0.8),
	p("lose custody", `lose\s+(?:custody|my\s+kids)`, 0.8),
	p("health decline", `get\s+worse|deteriorat\w*|complications|end\s+up\s+in\s+the\s+hospital`, 0.7),
	p("job loss", `lose\s+(?:my|the)\s+job|losing\s+my\s+job|get\s+fired|be\s+fired`, 0.7),
	p("service loss", `(?:power|heat|water|lights|electricity|gas)\s+(?:will\s+be|gets?|is\s+getting|is\s+going\s+to\s+be)\s+(?:shut|cut|turned)\s+off`, 0.7),
	p("no way to work", `no\s+way\s+(?:to\s+get|of\s+getting)\s+to\s+work|can'?t\s+get\s+to\s+work`, 0.6),
	p("late fees", `late\s+fees?|penalt(?:y|ies)`, 0.3),
	p("credit", `credit\s+(?:score|report)|collections`, 0.2),
}

var emotionalPhrases = []phrase{
	p("desperate", `desperate|desperately|hopeless`, 0.8),
	p("at a breaking point", `wit'?s\s+end|breaking\s+point|falling\s+apart|can'?t\s+take\s+(?:it|this)`, 0.7),
	p("don't know what to do", `don'?t\s+know\s+what\s+(?:else\s+)?to\s+do|no\s+idea\s+what\s+to\s+do`, 0.7),
	p("begging", `begging|i\s+beg\s+you`, 0.7),
	p("scared", `scared|terrified|afraid|frightened`, 0.6),
	p("crying", `crying|in\s+tears`, 0.6),
	p("overwhelmed", `overwhelmed|stressed|anxious|panicking|panic`, 0.5),
	p("please help", `please\s+help|please,?\s+i\s+need`, 0.4),
	p("worried", `worried|worrying|struggling`, 0.4),
}
