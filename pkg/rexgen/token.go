package rexgen

import (
	"strconv"
	"strings"
	"unicode"
)

// maxRepetitionUnit bounds the length of a repeated unit considered by
// foldRepetitions.
const maxRepetitionUnit = 64

type tokenKind uint8

const (
	kindLiteral tokenKind = iota
	kindClass
	kindRepeat
)

// token is one element of a tokenized example: a single character, a
// shorthand class, or a repeated unit with a count.
type token struct {
	kind  tokenKind
	char  rune    // kindLiteral
	class string  // kindClass, e.g. `\d`
	unit  []token // kindRepeat
	count int     // kindRepeat

	// key identifies the token for trie merging and repetition detection.
	key string
}

func literalToken(ch rune) token {
	return token{kind: kindLiteral, char: ch, key: string(ch)}
}

func classToken(class string) token {
	return token{kind: kindClass, class: class, key: "\x00" + class}
}

func repeatToken(unit []token, count int) token {
	var key strings.Builder

	key.WriteString("\x01")

	// Length-prefixed so distinct units never share a key.
	for _, t := range unit {
		key.WriteString(strconv.Itoa(len(t.key)))
		key.WriteString(":")
		key.WriteString(t.key)
	}

	key.WriteString("\x01")
	key.WriteString(strconv.Itoa(count))

	return token{
		kind:  kindRepeat,
		unit:  append([]token(nil), unit...),
		count: count,
		key:   key.String(),
	}
}

func tokenize(example string, cfg *Config) []token {
	tokens := make([]token, 0, len(example))

	for _, ch := range example {
		tokens = append(tokens, classify(ch, cfg))
	}

	return tokens
}

func classify(ch rune, cfg *Config) token {
	// Under (?i) RE2 folds the \w class, so characters like U+017F count as
	// word characters there.
	word := isWord(ch) || (cfg.CaseInsensitive && foldsToWord(ch))

	switch {
	case cfg.ConvertDigits && isDigit(ch):
		return classToken(`\d`)
	case cfg.ConvertSpaces && isSpace(ch):
		return classToken(`\s`)
	case cfg.ConvertWords && word:
		return classToken(`\w`)
	case cfg.ConvertNonDigits && !isDigit(ch):
		return classToken(`\D`)
	case cfg.ConvertNonSpaces && !isSpace(ch):
		return classToken(`\S`)
	case cfg.ConvertNonWords && !word:
		return classToken(`\W`)
	}

	if cfg.CaseInsensitive {
		ch = foldRune(ch)
	}

	return literalToken(ch)
}

// Class membership uses RE2's ASCII definitions so the rendered shorthand
// matches exactly the characters it replaced.

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch rune) bool {
	switch ch {
	case '\t', '\n', '\f', '\r', ' ':
		return true
	}

	return false
}

func isWord(ch rune) bool {
	return isDigit(ch) || ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func foldsToWord(ch rune) bool {
	for f := unicode.SimpleFold(ch); f != ch; f = unicode.SimpleFold(f) {
		if isWord(f) {
			return true
		}
	}

	return false
}

// foldRune maps ch to its lowercase form when that form is in the same
// simple case-folding orbit, so (?i) still matches the original character.
func foldRune(ch rune) rune {
	lower := unicode.ToLower(ch)
	if lower == ch {
		return ch
	}

	for f := unicode.SimpleFold(ch); f != ch; f = unicode.SimpleFold(f) {
		if f == lower {
			return lower
		}
	}

	return ch
}

// foldRepetitions replaces runs of a repeated unit with a single repeat
// token. A run qualifies when the unit is at least minLength tokens long and
// occurs more than minRepetitions times. At each position the unit covering
// the most tokens wins; ties go to the shorter unit.
//
// runs[l][j] counts the consecutive positions from j whose token equals the
// token l further on, so a unit of length l at i repeats 1+runs[l][i]/l
// times. Building the tables is O(maxRepetitionUnit * len(tokens)).
func foldRepetitions(tokens []token, minRepetitions, minLength uint32) []token {
	need := max(uint64(minRepetitions)+1, 2)
	minUnit := max(uint64(minLength), 1)
	maxUnit := min(uint64(len(tokens))/need, maxRepetitionUnit)

	if minUnit > maxUnit {
		return tokens
	}

	ids := internKeys(tokens)
	runs := make([][]int32, maxUnit+1)

	for unitLen := int(minUnit); unitLen <= int(maxUnit); unitLen++ {
		run := make([]int32, len(tokens)+1)
		for j := len(tokens) - unitLen - 1; j >= 0; j-- {
			if ids[j] == ids[j+unitLen] {
				run[j] = run[j+1] + 1
			}
		}

		runs[unitLen] = run
	}

	out := make([]token, 0, len(tokens))

	for i := 0; i < len(tokens); {
		bestLen, bestCount := 0, 0

		for unitLen := int(minUnit); unitLen <= int(maxUnit); unitLen++ {
			count := 1 + int(runs[unitLen][i])/unitLen
			if uint64(count) < need {
				continue
			}

			if unitLen*count > bestLen*bestCount {
				bestLen, bestCount = unitLen, count
			}
		}

		if bestCount == 0 {
			out = append(out, tokens[i])
			i++

			continue
		}

		out = append(out, repeatToken(tokens[i:i+bestLen], bestCount))
		i += bestLen * bestCount
	}

	return out
}

// internKeys maps each token key to a small integer.
func internKeys(tokens []token) []int32 {
	seen := make(map[string]int32)
	ids := make([]int32, len(tokens))

	for i, t := range tokens {
		id, ok := seen[t.key]
		if !ok {
			id = int32(len(seen))
			seen[t.key] = id
		}

		ids[i] = id
	}

	return ids
}
