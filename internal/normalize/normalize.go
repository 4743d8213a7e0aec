// Package normalize turns free-text company names and websites into the
// canonical keys used for every duplicate comparison in the portal.
//
// Both functions are total: missing, empty, or spreadsheet "nan" input
// yields the empty string instead of an error. Matching elsewhere is exact on
// these keys only.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// legalSuffixes are removed as whole words from company names.
// Multi-word entries must match consecutive words. Matching runs after
// punctuation is turned into spaces, so "Pvt. Ltd." drops both words.
var legalSuffixes = [][]string{
	{"pvt", "ltd"},
	{"private", "limited"},
	{"ltd"},
	{"inc"},
	{"solutions"},
	{"technologies"},
}

// schemePrefixes are stripped from websites, at most one of them.
var schemePrefixes = []string{"https://", "http://"}

const wwwPrefix = "www."

// toLower lowercases with Unicode rules. A cases.Caser keeps state, so a new
// one is built per call instead of sharing a package-level value.
func toLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// isMissing reports whether raw should be treated as an absent value.
func isMissing(raw string) bool {
	return raw == "" || strings.EqualFold(raw, "nan")
}

// Name returns the comparison key for a company name.
//
// The key is lowercased, has every rune that is not a letter, digit or
// whitespace replaced by a space, has legal-entity suffix words removed, and
// has whitespace collapsed and trimmed. Suffix removal repeats until nothing
// changes, so Name(Name(x)) == Name(x) holds even for inputs like
// "private inc limited".
func Name(raw string) string {
	if isMissing(raw) {
		return ""
	}

	s := toLower(raw)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)

	words := strings.Fields(s)
	for {
		stripped := stripSuffixes(words)
		if len(stripped) == len(words) {
			break
		}
		words = stripped
	}

	return strings.Join(words, " ")
}

// stripSuffixes removes one pass of suffix matches, scanning left to right.
func stripSuffixes(words []string) []string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		if n := matchSuffix(words[i:]); n > 0 {
			i += n
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}

// matchSuffix returns the number of words consumed by a suffix match at the
// head of words, or 0. Longer suffixes win.
func matchSuffix(words []string) int {
	for _, suffix := range legalSuffixes {
		if len(words) < len(suffix) {
			continue
		}
		matched := true
		for j, w := range suffix {
			if words[j] != w {
				matched = false
				break
			}
		}
		if matched {
			return len(suffix)
		}
	}
	return 0
}

// Website returns the comparison key for a company website.
//
// The key is the lowercased host portion: a leading http:// or https://
// scheme and a leading "www." are removed, and everything from the first
// '/', '?' or '#' onward is dropped.
//
//	Website("https://www.Example.com/path?q=1") == "example.com"
func Website(raw string) string {
	if isMissing(raw) {
		return ""
	}

	s := strings.TrimSpace(toLower(raw))

	for _, prefix := range schemePrefixes {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = strings.TrimPrefix(s, wwwPrefix)

	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	return strings.TrimSuffix(s, "/")
}

// Key is the normalized (name, website) pair of a company.
type Key struct {
	Name    string
	Website string
}

// KeyOf normalizes a raw name and website together.
func KeyOf(name, website string) Key {
	return Key{Name: Name(name), Website: Website(website)}
}
