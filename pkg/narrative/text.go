package narrative

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCase title-cases s. A Caser keeps state, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// DisplayName turns an identifier like "old_tom" or "fish-market" into "Old Tom"
// or "Fish Market".
func DisplayName(id string) string {
	if id == "" {
		return ""
	}
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	return titleCase(strings.Join(words, " "))
}

// Clean normalizes generator output: surrounding quotes and whitespace are
// stripped, runs of whitespace collapse to one space, the text is cut to at
// most maxSentences sentences and the first letter is capitalized.
func Clean(text string, maxSentences int) string {
	text = strings.Join(strings.Fields(text), " ")
	text = strings.Trim(text, "\"'` ")
	if text == "" {
		return ""
	}

	if maxSentences > 0 {
		count := 0
		for i, r := range text {
			if r != '.' && r != '!' && r != '?' {
				continue
			}
			next := i + utf8.RuneLen(r)
			if next < len(text) && text[next] != ' ' {
				continue
			}
			count++
			if count == maxSentences {
				text = text[:next]
				break
			}
		}
	}

	r, size := utf8.DecodeRuneInString(text)
	if unicode.IsLower(r) {
		text = string(unicode.ToUpper(r)) + text[size:]
	}
	return text
}
