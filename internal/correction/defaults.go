package correction

import "github.com/sells-group/intake-cli/internal/model"

// Shared verification fragments.
const (
	imminentDeadline = `\b(?:today|tonight|tomorrow|in\s+(?:a|one|two|2)\s+days?|by\s+morning|right\s+now)\b`
	nearDeadline     = `\b(?:today|tonight|tomorrow|this\s+week|by\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)|notice)\b`
	acuteOverride    = `\b(?:today|tonight|tomorrow|emergency|immediately|right\s+now|evict\w*|shut\s*off|disconnect\w*|hospital|danger|homeless|die|no\s+food|nothing\s+to\s+eat)\b`
	children         = `\b(?:kids?|children|baby|babies|son|daughter|toddler|infant)\b`
)

// DefaultStages returns the production correction stages in evaluation
// order: urgency escalations, then narrow de-escalations, then category and
// amount repairs.
func DefaultStages() []Stage {
	return []Stage{
		// Urgency escalations.
		{
			ID:     "safety_danger_critical",
			Field:  model.FieldUrgency,
			From:   []string{"LOW", "MEDIUM", "HIGH"},
			To:     "CRITICAL",
			Verify: []string{`\b(?:domestic\s+(?:violence|abuse)|abus(?:e|ive|er)|threaten(?:ed|ing|s)?\s+to\s+(?:kill|hurt)|(?:hit|beat|choked|hurt)\s+me|flee(?:ing)?|not\s+safe|in\s+danger)\b`},
			Reason: "physical danger described",
		},
		{
			ID:         "medical_emergency_critical",
			Field:      model.FieldUrgency,
			From:       []string{"MEDIUM", "HIGH"},
			To:         "CRITICAL",
			Categories: []string{"HEALTHCARE"},
			Verify:     []string{`\b(?:emergency\s+room|icu|intensive\s+care|heart\s+attack|stroke|out\s+of\s+(?:my\s+)?(?:insulin|oxygen)|(?:could|might|will)\s+die)\b`},
			Reason:     "acute medical emergency",
		},
		{
			ID:         "imminent_housing_loss_critical",
			Field:      model.FieldUrgency,
			From:       []string{"HIGH"},
			To:         "CRITICAL",
			Categories: []string{"HOUSING", "UTILITIES"},
			Verify:     []string{`\bevict(?:ion|ed|ing)?\b`, imminentDeadline},
			Reason:     "eviction with an imminent deadline",
		},
		{
			ID:         "utility_shutoff_high",
			Field:      model.FieldUrgency,
			From:       []string{"LOW", "MEDIUM"},
			To:         "HIGH",
			Categories: []string{"UTILITIES", "HOUSING"},
			Verify:     []string{`\b(?:shut\s*off|disconnect(?:ion|ed)?|cut\s+off)\b`, nearDeadline},
			Reason:     "utility shutoff pending",
		},
		{
			ID:     "eviction_notice_high",
			Field:  model.FieldUrgency,
			From:   []string{"LOW", "MEDIUM"},
			To:     "HIGH",
			Verify: []string{`\b(?:eviction\s+notice|notice\s+to\s+(?:vacate|quit)|being\s+evicted|getting\s+evicted|got\s+evicted)\b`},
			Reason: "eviction notice received",
		},
		{
			ID:     "no_food_children_high",
			Field:  model.FieldUrgency,
			From:   []string{"LOW", "MEDIUM"},
			To:     "HIGH",
			Verify: []string{`\b(?:nothing\s+to\s+eat|no\s+food|haven'?t\s+eaten|going\s+hungry|starving)\b`, children},
			Reason: "children without food",
		},
		{
			ID:         "job_loss_transport_high",
			Field:      model.FieldUrgency,
			From:       []string{"LOW", "MEDIUM"},
			To:         "HIGH",
			Categories: []string{"EMPLOYMENT", "TRANSPORTATION"},
			Verify:     []string{`\b(?:lose\s+my\s+job|losing\s+my\s+job|get\s+fired|be\s+fired)\b`, `\b(?:car|truck|vehicle|bus|ride|get\s+to\s+work)\b`},
			Reason:     "job at risk without transportation",
		},
		{
			ID:     "funeral_high",
			Field:  model.FieldUrgency,
			From:   []string{"LOW", "MEDIUM"},
			To:     "HIGH",
			Verify: []string{`\b(?:funeral|burial|cremation)\b`, `\b(?:today|tomorrow|this\s+week|(?:by|on|this)\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`},
			Reason: "funeral within days",
		},

		// Urgency de-escalations.
		{
			ID:         "celebration_event_low",
			Field:      model.FieldUrgency,
			From:       []string{"MEDIUM"},
			To:         "LOW",
			Categories: []string{"FAMILY", "EDUCATION", "OTHER"},
			Verify:     []string{`\b(?:wedding|quincea[nñ]era|birthday|graduation|party|celebration|reunion|vacation|anniversary)\b`},
			Unless:     []string{`\b(?:funeral|burial|evict\w*|shut\s*off|hospital|emergency)\b`},
			Reason:     "celebration is not time-critical",
		},
		{
			ID:     "distant_deadline_medium",
			Field:  model.FieldUrgency,
			From:   []string{"HIGH", "CRITICAL"},
			To:     "MEDIUM",
			Verify: []string{`\b(?:next\s+month|in\s+a\s+few\s+months|in\s+(?:two|three|six|2|3|6)\s+months|next\s+year|later\s+this\s+year)\b`},
			Unless: []string{acuteOverride, `\b(?:this\s+week|by\s+\w+day)\b`},
			Reason: "only a distant deadline",
		},
		{
			ID:     "urgently_alone_high_cap",
			Field:  model.FieldUrgency,
			From:   []string{"CRITICAL"},
			To:     "HIGH",
			Verify: []string{`\b(?:urgent|urgently)\b`},
			Unless: []string{acuteOverride, `\b(?:abus\w*|threat\w*|flee\w*|stalk\w*|surgery|insulin|out\s+of\s+(?:medication|food|formula))\b`},
			Reason: "urgency wording alone does not justify CRITICAL",
		},
		{
			ID:         "education_tuition_medium_cap",
			Field:      model.FieldUrgency,
			From:       []string{"HIGH", "CRITICAL"},
			To:         "MEDIUM",
			Categories: []string{"EDUCATION"},
			Verify:     []string{`\b(?:tuition|textbooks?|school\s+supplies|semester|class(?:es)?)\b`},
			Unless:     []string{`\b(?:today|tomorrow|dropped|kicked\s+out|evict\w*|homeless)\b`},
			Reason:     "school costs without an imminent consequence",
		},

		// Category repairs.
		{
			ID:     "category_rent_utilities",
			Field:  model.FieldCategory,
			From:   []string{"HOUSING"},
			To:     "UTILITIES",
			Verify: []string{`\b(?:electric|electricity|power|gas|water|light|utility)\s+bill\b`, `\b(?:shut\s*off|disconnect\w*|cut\s+off)\b`},
			Unless: []string{`\b(?:evict\w*|landlord|behind\s+on\s+rent|rent\s+is\s+(?:due|late))\b`},
			Reason: "the bill at risk is a utility",
		},
		{
			ID:     "category_medical_bill",
			Field:  model.FieldCategory,
			From:   []string{"OTHER"},
			To:     "HEALTHCARE",
			Verify: []string{`\b(?:medical|hospital|doctor|clinic|ambulance|prescription|dental)\s+(?:bills?|debt|costs?)\b`},
			Reason: "medical bill described",
		},
		{
			ID:     "category_childcare_family",
			Field:  model.FieldCategory,
			From:   []string{"OTHER", "EDUCATION"},
			To:     "FAMILY",
			Verify: []string{`\b(?:childcare|child\s+care|daycare|day\s+care|babysitter)\b`},
			Unless: []string{`\b(?:laid\s+off|lost\s+my\s+job|fired|tuition)\b`},
			Reason: "childcare need",
		},

		// Amount repairs for colloquial phrasing the extractor leaves unresolved.
		{
			ID:          "amount_grand_colloquial",
			Field:       model.FieldAmount,
			FromMissing: true,
			Verify:      []string{`\b(?P<n>a|one|two|three|four|five|six|seven|eight|nine|ten|\d{1,2})\s+grand\b`},
			Unless:      []string{`\bgrand\s+(?:a|per|every)\s+(?:month|week|year)\b`, `\b(?:make|makes|earn|earns|making|earning)\b[^.]{0,20}\bgrand\b`},
			Capture:     "n",
			Multiplier:  1000,
			Reason:      "colloquial thousands",
		},
		{
			ID:          "amount_couple_thousand",
			Field:       model.FieldAmount,
			FromMissing: true,
			To:          "2000",
			Verify:      []string{`\b(?:a\s+)?couple\s+(?:of\s+)?thousand\b`},
			Unless:      []string{`\bthousand\s+(?:a|per|every)\s+(?:month|week|year)\b`},
			Reason:      "a couple thousand",
		},
		{
			ID:          "amount_couple_hundred",
			Field:       model.FieldAmount,
			FromMissing: true,
			To:          "200",
			Verify:      []string{`\b(?:a\s+)?couple\s+(?:of\s+)?hundred\b`},
			Unless:      []string{`\bhundred\s+(?:a|per|every)\s+(?:month|week|year)\b`},
			Reason:      "a couple hundred",
		},
	}
}

// Filter returns stages without the disabled IDs, preserving order.
func Filter(stages []Stage, disabled []string) []Stage {
	if len(disabled) == 0 {
		return stages
	}
	off := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		off[id] = true
	}
	out := make([]Stage, 0, len(stages))
	for _, s := range stages {
		if !off[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
