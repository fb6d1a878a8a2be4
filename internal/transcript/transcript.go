// Package transcript normalizes free-form transcribed narratives before analysis.
package transcript

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var punctuationFolder = strings.NewReplacer(
	"‘", "'", "’", "'", "‛", "'", "′", "'",
	"“", `"`, "”", `"`, "‟", `"`,
	"–", "-", "—", " - ", "−", "-",
	"…", "...",
	" ", " ",
)

var multiSpace = regexp.MustCompile(`\s+`)

// Normalize applies NFKC folding, replaces typographic quotes and dashes with
// their ASCII forms and collapses whitespace. Case is preserved.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = punctuationFolder.Replace(s)
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Lower returns the normalized, lower-cased form of s.
func Lower(s string) string {
	return strings.ToLower(Normalize(s))
}

// IsBlank reports whether s carries no analyzable text.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// Sentences splits s into trimmed, non-empty sentences.
func Sentences(s string) []string {
	parts := sentenceEnd.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var negators = map[string]bool{
	"not": true, "never": true, "nobody": true, "isn't": true, "aren't": true,
	"wasn't": true, "weren't": true, "ain't": true, "don't": true,
	"doesn't": true, "didn't": true,
}

// negationFillers may sit between a negator and the phrase it negates, as in
// "not really in danger" or "not as a doctor".
var negationFillers = map[string]bool{
	"a": true, "an": true, "the": true, "as": true, "at": true, "all": true,
	"really": true, "actually": true, "very": true, "being": true, "been": true,
	"feel": true, "feeling": true, "even": true, "currently": true,
}

// Negated reports whether the phrase at byte offset start in the lower-cased
// text is negated. Up to three words are examined walking back from start; a
// negator counts only if every word between it and the phrase is a filler.
// Modal and action contractions ("can't pay", "won't stop") do not negate.
// The look-back stops at clause punctuation.
func Negated(lower string, start int) bool {
	if start <= 0 || start > len(lower) {
		return false
	}
	prefix := lower[:start]
	if i := strings.LastIndexAny(prefix, ".,;!?"); i >= 0 {
		prefix = prefix[i+1:]
	}
	words := strings.Fields(prefix)
	for i := len(words) - 1; i >= 0 && i >= len(words)-3; i-- {
		w := strings.Trim(words[i], `"'()`)
		if negators[w] {
			return true
		}
		if !negationFillers[w] {
			return false
		}
	}
	return false
}

// ClauseBefore returns the text between the last clause boundary before
// start and start. Boundaries are sentence punctuation, semicolons and the
// conjunction "but".
func ClauseBefore(lower string, start int) string {
	if start <= 0 || start > len(lower) {
		return ""
	}
	prefix := lower[:start]
	if i := strings.LastIndexAny(prefix, ".!?;"); i >= 0 {
		prefix = prefix[i+1:]
	}
	if i := strings.LastIndex(prefix, " but "); i >= 0 {
		prefix = prefix[i+5:]
	}
	return prefix
}

// ClauseAfter returns the text from end up to the next sentence boundary.
// A period between two digits is not a boundary.
func ClauseAfter(lower string, end int) string {
	if end < 0 || end >= len(lower) {
		return ""
	}
	suffix := lower[end:]
	for i := 0; i < len(suffix); i++ {
		switch suffix[i] {
		case '!', '?', ';':
			return suffix[:i]
		case '.':
			if i+1 < len(suffix) && isDigit(suffix[i+1]) && end+i > 0 && isDigit(lower[end+i-1]) {
				continue
			}
			return suffix[:i]
		}
	}
	return suffix
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
