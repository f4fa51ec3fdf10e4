// Package textnorm holds the text cleanup shared by every resolver.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reWS         = regexp.MustCompile(`\s+`)
)

// Fold applies NFKC so ligatures and full-width forms compare equal to ASCII.
func Fold(s string) string {
	return norm.NFKC.String(s)
}

// Whitespace collapses all whitespace runs to one space and trims.
func Whitespace(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(reWS.ReplaceAllString(s, " "))
}

// Page cleans page text while keeping line breaks; more than one blank line
// collapses into a single blank line.
func Page(s string) string {
	if s == "" {
		return s
	}
	s = Fold(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Lines splits page text into whitespace-normalized, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(reCRLF.ReplaceAllString(text, "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = Whitespace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// LettersOnly lowercases s and drops everything but ASCII letters.
func LettersOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CountLetters returns the number of Unicode letters in s.
func CountLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// HasDigit reports whether s contains any decimal digit.
func HasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// IsUpper reports whether s has letters and none of them are lowercase.
func IsUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// Title title-cases s ("SAN ISIDRO" -> "San Isidro").
func Title(s string) string {
	return cases.Title(language.Und).String(strings.ToLower(s))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
