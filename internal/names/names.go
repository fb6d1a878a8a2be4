// Package names finds the caller's self-introduced name in a transcript.
package names

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/intake-cli/internal/transcript"
)

// Name length bounds in runes.
const (
	minNameLen = 2
	maxNameLen = 50
	maxRun     = 4
)

const honorific = `(?:(?:Dr|Mr|Mrs|Ms|Miss|Mx|Rev|Prof|Fr|Sr|Sister|Pastor|Father)\.?\s+)?`

// nameWord is a capitalized word ("Chen", "O'Brien", "Mary-Jane", "McDonald")
// or a single-letter initial with an optional period.
const nameWord = `[A-Z](?:[a-z]+(?:[A-Z][a-z]+)?(?:['-][A-Za-z][a-z]*)*|'[A-Z][a-z]+|\.)?`

const capturedName = `(?P<name>` + nameWord + `(?:\s+` + nameWord + `){0,3})`

// pattern is one introduction form. Patterns are tried in order.
type pattern struct {
	id string
	re *regexp.Regexp
	// titleCase marks patterns that capture lower-case speech-to-text output.
	titleCase bool
}

var patterns = []pattern{
	{id: "my_name_is", re: regexp.MustCompile(`(?i:\bmy\s+name(?:\s+is|'s))\s+` + honorific + capturedName)},
	{id: "this_is", re: regexp.MustCompile(`(?i:\bthis\s+is)\s+` + honorific + capturedName)},
	{id: "i_am", re: regexp.MustCompile(`(?i:\bi'?m|\bi\s+am)\s+` + honorific + capturedName)},
	{id: "call_me", re: regexp.MustCompile(`(?i:\b(?:you\s+can\s+)?call\s+me)\s+` + honorific + capturedName)},
	{id: "speaking", re: regexp.MustCompile(`(?:^|[.!?,]\s*|\b(?i:hi|hello|hey)[,]?\s+)` + honorific + capturedName + `(?i:\s+(?:speaking|here))\b`)},
	{id: "my_name_is_lower", re: regexp.MustCompile(`(?i)\bmy\s+name(?:\s+is|'s)\s+` + honorificLower + `(?P<name>[a-z][a-z'-]+(?:\s+[a-z][a-z'-]+)?)`), titleCase: true},
}

const honorificLower = `(?:(?:dr|mr|mrs|ms|miss|mx|rev|prof)\.?\s+)?`

// Result is the outcome of one extraction.
type Result struct {
	Name      *string
	PatternID string
	Reason    string
	// Rejected lists candidates that failed validation, in the order tried.
	Rejected []string
}

// Extract returns the highest-priority valid introduced name.
func Extract(text string) Result {
	norm := transcript.Normalize(text)
	var res Result
	if norm == "" {
		return res
	}

	for _, p := range patterns {
		idx := p.re.SubexpIndex("name")
		for _, m := range p.re.FindAllStringSubmatch(norm, -1) {
			raw := m[idx]
			cand := clean(raw, p.titleCase)
			if !Valid(cand) {
				res.Rejected = append(res.Rejected, raw)
				continue
			}
			res.Name = &cand
			res.PatternID = p.id
			res.Reason = "name: " + cand + " (" + p.id + ")"
			return res
		}
	}
	return res
}

// clean strips initials' periods and trailing stop words, and title-cases
// lower-case captures.
func clean(raw string, titleCase bool) string {
	words := strings.Fields(strings.ReplaceAll(raw, ".", ""))
	for len(words) > 0 && trailingStop[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	if titleCase {
		for i, w := range words {
			if blacklist[strings.ToLower(w)] {
				words = words[:i]
				break
			}
		}
		// Casers are stateful; one per call keeps Extract safe for concurrent use.
		return cases.Title(language.English).String(strings.Join(words, " "))
	}
	return strings.Join(words, " ")
}

// Valid reports whether s is an acceptable person name.
func Valid(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minNameLen || n > maxNameLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' {
			return false
		}
	}
	for _, w := range strings.Fields(s) {
		lw := strings.ToLower(w)
		if blacklist[lw] || fillers[lw] {
			return false
		}
		if consonantRun(lw) >= maxRun {
			return false
		}
	}
	return true
}

// consonantRun returns the longest run of consecutive consonant letters; y
// counts as a vowel.
func consonantRun(w string) int {
	longest, run := 0, 0
	for _, r := range w {
		if unicode.IsLetter(r) && !strings.ContainsRune("aeiouy", r) {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

var trailingStop = map[string]bool{
	"i": true, "and": true, "im": true, "so": true, "but": true,
}

var fillers = map[string]bool{
	"um": true, "uh": true, "uhh": true, "umm": true, "er": true, "erm": true,
	"hmm": true, "like": true, "well": true, "yeah": true, "okay": true, "ok": true,
	"so": true, "oh": true, "ah": true, "hi": true, "hello": true, "hey": true,
}

var blacklist = map[string]bool{
	"help": true, "calling": true, "emergency": true, "urgent": true, "here": true,
	"not": true, "just": true, "really": true, "trying": true, "looking": true,
	"sorry": true, "hoping": true, "going": true, "worried": true, "scared": true,
	"desperate": true, "behind": true, "single": true, "unemployed": true,
	"homeless": true, "pregnant": true, "disabled": true, "afraid": true,
	"reaching": true, "writing": true, "asking": true, "in": true, "at": true,
	"a": true, "an": true, "the": true, "my": true, "we": true, "our": true,
	"mother": true, "father": true, "mom": true, "dad": true, "parent": true,
	"veteran": true, "student": true, "nurse": true, "doctor": true, "teacher": true,
	"from": true, "with": true, "about": true, "out": true, "on": true,
	"sick": true, "tired": true, "struggling": true, "stuck": true, "broke": true,
	"currently": true, "still": true, "also": true, "very": true, "actually": true,
	"today": true, "tomorrow": true, "monday": true, "tuesday": true,
	"wednesday": true, "thursday": true, "friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true, "june": true,
	"july": true, "august": true, "september": true, "october": true,
	"november": true, "december": true, "god": true, "thanks": true, "thank": true,
	"please": true, "need": true, "needing": true, "rent": true, "eviction": true,
	"housing": true, "medical": true, "food": true, "work": true, "school": true,
	"is": true, "was": true, "it": true, "that": true, "this": true, "there": true,
	"you": true, "your": true, "they": true, "he": true, "she": true, "and": true,
	"but": true, "i": true, "to": true, "for": true, "of": true,
}
