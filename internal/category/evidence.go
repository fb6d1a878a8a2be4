package category

import (
	"regexp"

	"github.com/sells-group/intake-cli/internal/model"
)

// evidence is one weighted keyword pattern. Each pattern counts at most once
// per transcript, and a match preceded by a negator is ignored.
type evidence struct {
	label  string
	re     *regexp.Regexp
	weight float64
}

func ev(label, expr string, weight float64) evidence {
	return evidence{label: label, re: regexp.MustCompile(`\b(?:` + expr + `)\b`), weight: weight}
}

// Family-member mentions are weak; they appear in most narratives.
const (
	weightStrong = 2.0
	weightNormal = 1.0
	weightWeak   = 0.5
)

var familyMember = `daughter|son|sons|mother|father|mom|dad|kids?|child|children|sister|brother|grandma|grandmother|grandpa|grandfather|wife|husband|baby|niece|nephew|cousin|aunt|uncle|parents?|family`

var familyEvent = `wedding|quincea[nñ]era|quince|graduation|ceremony|funeral|burial|memorial\s+service|baby\s+shower|birthday|christening|baptism|bar\s+mitzvah|bat\s+mitzvah|reunion`

var positiveEvidence = map[model.Category][]evidence{
	model.CategorySafety: {
		ev("domestic violence", `domestic\s+violence|domestic\s+abuse`, weightStrong),
		ev("abuse", `abus(?:e|ed|er|ive|ing)`, weightStrong),
		ev("fleeing", `flee(?:ing)?|fled|escap(?:e|ed|ing)\s+(?:from\s+)?(?:him|her|my)`, weightStrong),
		ev("protective order", `restraining\s+order|protective\s+order|order\s+of\s+protection`, weightStrong),
		ev("threat", `threaten(?:ed|ing|s)?|stalk(?:ed|ing|er)?`, weightNormal),
		ev("physical harm", `(?:hit|beat|beats|hurt|choked|attacked)\s+me|kill\s+me|assault(?:ed)?`, weightStrong),
		ev("danger", `in\s+danger|unsafe|not\s+safe|afraid\s+for\s+my\s+life|weapon|gun`, weightNormal),
		ev("trafficking", `traffick(?:ed|ing)`, weightStrong),
	},
	model.CategoryHealthcare: {
		ev("medical", `medical|medicine|medication|medications|prescriptions?|pharmacy`, weightNormal),
		ev("provider", `doctor|hospital|clinic|surgeon|specialist|emergency\s+room|\ber\b|ambulance`, weightNormal),
		ev("procedure", `surgery|operation|treatment|therapy|chemo(?:therapy)?|dialysis|transplant`, weightStrong),
		ev("condition", `cancer|diabet(?:es|ic)|insulin|heart\s+attack|stroke|illness|disease|diagnos(?:ed|is)|injur(?:y|ed|ies)|sick`, weightNormal),
		ev("dental", `dental|dentist|tooth|teeth`, weightNormal),
		ev("mental health", `mental\s+health|counseling|psychiatr\w*`, weightNormal),
		ev("coverage", `copays?|deductible|health\s+insurance|medicaid|medicare`, weightNormal),
	},
	model.CategoryHousing: {
		ev("rent", `rent|rental`, weightNormal),
		ev("eviction", `evict(?:ion|ed|ing)?`, weightStrong),
		ev("deposit", `security\s+deposit|deposit\s+on\s+(?:an?\s+)?(?:apartment|place|unit)`, weightStrong),
		ev("landlord", `landlord|property\s+manager|lease`, weightNormal),
		ev("dwelling", `apartment|house|home|housing|mortgage|foreclos\w*`, weightWeak),
		ev("homelessness", `homeless|living\s+in\s+(?:my|our|the)\s+car|shelter|motel|place\s+to\s+(?:live|stay)|locked\s+out`, weightNormal),
	},
	model.CategoryUtilities: {
		ev("utility bill", `(?:electric|electricity|power|gas|water|light|heating|utility|phone|internet)\s+bill`, weightStrong),
		ev("shutoff", `shut\s*off|shut\s+(?:it|my|our|the)?\s*\w*\s*off|disconnect(?:ed|ion)?|cut\s+off`, weightStrong),
		ev("utility", `utilit(?:y|ies)|electric(?:ity)?|power|heat|heating|water`, weightNormal),
	},
	model.CategoryEmployment: {
		ev("job loss", `laid\s+off|lost\s+(?:my|his|her|our)\s+job|fired|unemploy\w*|let\s+go|hours\s+(?:got\s+)?cut`, weightStrong),
		ev("job", `job|employer|boss|paycheck|shift|interview|hired`, weightNormal),
		ev("work", `work|working`, weightWeak),
		ev("work gear", `uniform|work\s+boots|tools\s+for\s+(?:work|my\s+job)|certification|license\s+for\s+work`, weightNormal),
	},
	model.CategoryTransportation: {
		ev("vehicle", `car|vehicle|truck|van|minivan`, weightNormal),
		ev("repair", `repairs?|mechanic|transmission|tires?|brakes|engine|alternator|broke\s+down|towed`, weightNormal),
		ev("transit", `bus\s+pass|transit|train\s+fare|commute|ride\s+to|transportation`, weightNormal),
		ev("vehicle paperwork", `registration|car\s+insurance|auto\s+insurance|driver'?s\s+license|title`, weightWeak),
	},
	model.CategoryFood: {
		ev("food", `food|groceries|grocery|meals?|hungry|starving|nothing\s+to\s+eat`, weightNormal),
		ev("food aid", `food\s+stamps|snap|wic|food\s+bank|pantry`, weightNormal),
		ev("infant food", `baby\s+formula|formula`, weightNormal),
	},
	model.CategoryEducation: {
		ev("school", `school|college|university|class(?:es)?|semester|course|degree|campus`, weightNormal),
		ev("tuition", `tuition|textbooks?|school\s+supplies|student\s+loan|enrollment|financial\s+aid`, weightStrong),
		ev("graduation", `graduat(?:e|ion|ing)|exam|gpa`, weightWeak),
	},
	model.CategoryFamily: {
		ev("family member", familyMember, weightWeak),
		ev("family event", familyEvent, weightStrong),
		ev("childcare", `childcare|child\s+care|daycare|day\s+care|babysitter|custody|child\s+support`, weightNormal),
		ev("family care", `diapers?|car\s+seat|crib`, weightNormal),
	},
}

// negativeEvidence subtracts from a category when a context pattern shows
// the category words are used in another sense.
var negativeEvidence = map[model.Category][]evidence{
	model.CategoryHealthcare: {
		ev("not as a provider", `not\s+as\s+an?\s+(?:doctor|nurse)`, -weightNormal),
	},
	model.CategoryHousing: {
		ev("rent a car", `rent(?:al)?\s+(?:a\s+)?(?:car|truck|van)`, -weightNormal),
	},
	model.CategoryEducation: {
		ev("family graduation", `(?:`+familyMember+`)'?s?\s+graduation`, -weightWeak),
	},
	model.CategoryUtilities: {
		ev("phone number", `phone\s+number`, -weightNormal),
	},
}
