package contentfilter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// leet maps common digit/symbol stand-ins back to the letters they imitate.
var leet = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"8", "b",
	"9", "g",
	"@", "a",
	"$", "s",
	"€", "e",
	"!", "i",
	"|", "i",
)

// foldMarks strips diacritics: decompose, drop combining marks, recompose.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Variants produces the normalized forms an input is checked under:
// the diacritic-folded lowercase base, its leetspeak-resolved form, and
// each of those reduced to letters-and-spaces and to letters-only.
// Invisible/format runes are stripped before anything else. Duplicates are
// removed, input order kept.
func Variants(text string) []string {
	stripped := stripInvisible(text)

	base := strings.ToLower(stripped)
	if folded, _, err := transform.String(foldMarks, base); err == nil {
		base = folded
	}
	deleet := leet.Replace(base)

	candidates := []string{
		base,
		deleet,
		lettersAndSpaces(base),
		lettersOnly(base),
		lettersAndSpaces(deleet),
		lettersOnly(deleet),
	}

	seen := make(map[string]bool, len(candidates))
	variants := candidates[:0]
	for _, v := range candidates {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return variants
}

func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) || r == '﻿' {
			return -1
		}
		return r
	}, s)
}

// lettersAndSpaces drops everything but letters and spaces, collapsing
// whitespace runs to a single space.
func lettersAndSpaces(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
