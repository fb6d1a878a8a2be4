// Package numwords resolves written-out and numeric money phrases to integers.
//
// Resolution is strict: a phrase containing any word that is not part of the
// number grammar, or words in an impossible order ("two three", "hundred
// hundred"), is unresolvable rather than guessed.
package numwords

import (
	"math"
	"strconv"
	"strings"
)

var units = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var teens = map[string]int64{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]int64{
	"twenty": 20, "thirty": 30, "forty": 40, "fourty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scales = map[string]int64{
	"thousand": 1_000,
	"million":  1_000_000,
}

// Currency words that may trail a phrase and are dropped before resolving.
var currencySuffixes = map[string]bool{
	"dollar": true, "dollars": true, "buck": true, "bucks": true, "usd": true,
}

// Colloquial "teen-hundred" multipliers ("fifteen hundred", "thirty-nine hundred").
const (
	minColloquialHundreds = 11
	maxColloquialHundreds = 39
)

// IsNumberWord reports whether w belongs to the spoken number grammar.
func IsNumberWord(w string) bool {
	w = strings.ToLower(w)
	if _, ok := units[w]; ok {
		return true
	}
	if _, ok := teens[w]; ok {
		return true
	}
	if _, ok := tens[w]; ok {
		return true
	}
	if _, ok := scales[w]; ok {
		return true
	}
	return w == "hundred"
}

// Resolve converts a lower-cased phrase such as "two thousand two hundred
// fifty", "$1,800", "2.5k" or "fifteen hundred dollars" to an integer.
// The second return is false when the phrase is unresolvable.
func Resolve(phrase string) (int64, bool) {
	return ResolveTokens(Tokenize(phrase))
}

// Tokenize splits a phrase into resolver tokens: lower-cased, hyphens split,
// "and" connectors and trailing currency words removed.
func Tokenize(phrase string) []string {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	fields := strings.FieldsFunc(phrase, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "and" {
			continue
		}
		out = append(out, f)
	}
	for len(out) > 0 && currencySuffixes[out[len(out)-1]] {
		out = out[:len(out)-1]
	}
	return out
}

// ResolveTokens resolves an already tokenized phrase.
func ResolveTokens(tokens []string) (int64, bool) {
	if len(tokens) == 0 {
		return 0, false
	}
	if n, ok := ParseNumeric(tokens[0]); ok {
		return resolveNumericLead(n, tokens[1:])
	}
	return resolveWords(tokens)
}

// resolveNumericLead handles a numeric token optionally followed by a single
// magnitude word ("2 thousand", "1.5 million").
func resolveNumericLead(n float64, rest []string) (int64, bool) {
	switch len(rest) {
	case 0:
		return roundNonNegative(n)
	case 1:
		if rest[0] == "hundred" {
			return roundNonNegative(n * 100)
		}
		if s, ok := scales[rest[0]]; ok {
			return roundNonNegative(n * float64(s))
		}
	}
	return 0, false
}

type tokenKind int

const (
	kindNone tokenKind = iota
	kindUnit
	kindTeen
	kindTens
	kindHundred
	kindScale
)

func resolveWords(tokens []string) (int64, bool) {
	var total, current int64
	var lastScale int64
	last := kindNone
	colloquial := false
	sawNumber := false

	for i, tok := range tokens {
		if (tok == "a" || tok == "an") && i == 0 && len(tokens) > 1 {
			next := tokens[1]
			if next == "hundred" || scales[next] > 0 {
				current = 1
				last = kindUnit
				continue
			}
			return 0, false
		}

		if v, ok := units[tok]; ok {
			if last == kindUnit || last == kindTeen {
				return 0, false
			}
			current += v
			last = kindUnit
			sawNumber = true
			continue
		}
		if v, ok := teens[tok]; ok {
			if last == kindUnit || last == kindTeen || last == kindTens {
				return 0, false
			}
			current += v
			last = kindTeen
			sawNumber = true
			continue
		}
		if v, ok := tens[tok]; ok {
			if last == kindUnit || last == kindTeen || last == kindTens {
				return 0, false
			}
			current += v
			last = kindTens
			sawNumber = true
			continue
		}
		if tok == "hundred" {
			if current == 0 || last == kindHundred || last == kindScale {
				return 0, false
			}
			if current >= 10 {
				// "fifteen hundred" style; only valid as the leading group.
				if total != 0 || current < minColloquialHundreds || current > maxColloquialHundreds {
					return 0, false
				}
				colloquial = true
			}
			current *= 100
			last = kindHundred
			sawNumber = true
			continue
		}
		if s, ok := scales[tok]; ok {
			if current == 0 || colloquial {
				return 0, false
			}
			if lastScale != 0 && s >= lastScale {
				return 0, false
			}
			total += current * s
			current = 0
			lastScale = s
			last = kindScale
			sawNumber = true
			continue
		}
		return 0, false
	}

	if !sawNumber {
		return 0, false
	}
	return total + current, true
}

// ParseNumeric parses a numeric token such as "1800", "$1,800.50", "2k" or
// "$2.5k". Thousands separators must be well formed ("1,80" is rejected).
func ParseNumeric(tok string) (float64, bool) {
	tok = strings.TrimPrefix(strings.TrimSpace(tok), "$")
	if tok == "" {
		return 0, false
	}
	mult := 1.0
	if last := tok[len(tok)-1]; last == 'k' || last == 'K' {
		mult = 1000
		tok = tok[:len(tok)-1]
	}
	if tok == "" || tok[0] < '0' || tok[0] > '9' {
		return 0, false
	}

	intPart, fracPart, hasFrac := strings.Cut(tok, ".")
	if hasFrac && (fracPart == "" || !allDigits(fracPart)) {
		return 0, false
	}
	if strings.Contains(intPart, ",") {
		groups := strings.Split(intPart, ",")
		if len(groups[0]) == 0 || len(groups[0]) > 3 || !allDigits(groups[0]) {
			return 0, false
		}
		for _, g := range groups[1:] {
			if len(g) != 3 || !allDigits(g) {
				return 0, false
			}
		}
		intPart = strings.Join(groups, "")
	} else if !allDigits(intPart) {
		return 0, false
	}

	s := intPart
	if hasFrac {
		s += "." + fracPart
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}

func allDigits(s string) bool {
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

func roundNonNegative(v float64) (int64, bool) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt64/2 {
		return 0, false
	}
	return int64(math.Round(v)), true
}
