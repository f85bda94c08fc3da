package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent builds the fold chain per call: a chained transformer keeps
// internal buffers and is not safe for concurrent use.
func deaccent() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize folds a question label or free-text value into a canonical
// matchable form: accents stripped, camelCase split, separators and
// punctuation collapsed to single spaces, lowercased.
//
//	"Teléfono_Contacto" -> "telefono contacto"
//	"nombreHuesped"     -> "nombre huesped"
func Normalize(s string) string {
	out, _, err := transform.String(deaccent(), s)
	if err != nil {
		out = s
	}
	out = splitCamel(out)

	var b strings.Builder
	b.Grow(len(out))
	lastSpace := true
	for _, r := range out {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// splitCamel inserts a space at each lower-to-upper boundary. Runs of
// uppercase (acronyms like "ID") stay together.
func splitCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Tokenize normalizes and splits into word tokens.
func Tokenize(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}

// ContainsWord reports whether the normalized form of s contains word
// as a whole token.
func ContainsWord(s, word string) bool {
	for _, t := range Tokenize(s) {
		if t == word {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any of the given fragments occurs as a
// substring of the normalized form of s.
func ContainsAny(s string, fragments ...string) bool {
	n := Normalize(s)
	for _, f := range fragments {
		if strings.Contains(n, f) {
			return true
		}
	}
	return false
}
