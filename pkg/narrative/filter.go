package narrative

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// replacements maps words unfit for an all-ages town to milder ones.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"goddamn":      "gosh-dang",
	"hell":         "heck",
	"ass":          "oaf",
	"asshole":      "lout",
	"bitch":        "wretch",
	"bastard":      "scoundrel",
	"crap":         "rubbish",
	"piss":         "vex",
	"dick":         "knave",
	"prick":        "knave",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"motherfucker": "blackguard",
	"bullshit":     "balderdash",
	"horseshit":    "nonsense",
	"dumbass":      "dullard",
	"jackass":      "lout",
	"shithead":     "dolt",
	"dickhead":     "dolt",
}

// ProfanityFilter swaps profanity in generated text for period-appropriate
// alternatives, keeping the original casing.
type ProfanityFilter struct {
	words   []string
	regexes map[string]*regexp.Regexp
}

func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{regexes: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		pf.words = append(pf.words, word)
		pf.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	// longest first so compounds are replaced before their parts
	slices.SortFunc(pf.words, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return pf
}

// FilterText replaces every profane word in text.
func (pf *ProfanityFilter) FilterText(text string) string {
	for _, word := range pf.words {
		replacement := replacements[word]
		text = pf.regexes[word].ReplaceAllStringFunc(text, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return text
}

// ContainsProfanity reports whether text has anything FilterText would replace.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, word := range pf.words {
		if pf.regexes[word].MatchString(text) {
			return true
		}
	}
	return false
}

// ShouldFilterContent reports whether a content rating calls for filtering.
func ShouldFilterContent(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

func preserveCase(original, replacement string) string {
	switch {
	case original == "":
		return replacement
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return strings.ToLower(replacement)
	case titleCase(strings.ToLower(original)) == original:
		return titleCase(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}
