// Package preprocess normalizes uploaded text and extracts simple statistics from it.
package preprocess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"docqa/internal/domain"
)

// allowedPunctuation survives normalization alongside letters, digits, underscores and whitespace.
const allowedPunctuation = `.,!?;:-'"()`

var (
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
	)

	digitPattern = regexp.MustCompile(`\p{Nd}`)
	datePattern  = regexp.MustCompile(wordStart + `(?:\p{Nd}{1,2}[/-]\p{Nd}{1,2}[/-]\p{Nd}{2,4}|\p{Nd}{4})` + wordEnd)
	emailPattern = regexp.MustCompile(wordStart + `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}` + wordEnd)
)

// RE2's \b only knows ASCII word characters, so matches are anchored on
// Unicode letters, marks, digits and underscore instead.
const (
	wordStart = `(?:^|[^\p{L}\p{M}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{M}\p{N}_])`
)

// Normalize cleans raw document text. Typographic quotes become straight quotes,
// characters outside the allow-list are dropped, whitespace runs collapse to a
// single space and the result is trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = quoteReplacer.Replace(text)
	text = strings.Map(keepRune, text)
	return strings.Join(strings.Fields(text), " ")
}

func keepRune(r rune) rune {
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r), r == '_':
		return r
	case strings.ContainsRune(allowedPunctuation, r):
		return r
	}
	return -1
}

// ExtractInfo reports word and character counts and whether the text
// contains digits, date-like sequences or email addresses.
func ExtractInfo(text string) domain.DocumentInfo {
	return domain.DocumentInfo{
		WordCount:  len(strings.Fields(text)),
		CharCount:  utf8.RuneCountInString(text),
		HasNumbers: digitPattern.MatchString(text),
		HasDates:   datePattern.MatchString(text),
		HasEmails:  emailPattern.MatchString(text),
	}
}
