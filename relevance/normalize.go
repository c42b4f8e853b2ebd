package relevance

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	starVariants  = regexp.MustCompile(`[＊*·•]`)
	colonVariants = regexp.MustCompile(`[：:]`)
	parens        = regexp.MustCompile(`[（）()]`)
	punctuation   = regexp.MustCompile(`[，,。｡.．]`)
)

// NormalizeText folds full-width glyphs to their ASCII forms, unifies symbol
// variants and strips enumerated punctuation. All matching in this package
// happens on normalized text.
func NormalizeText(text string) string {
	text = width.Narrow.String(strings.ToLower(text))
	text = starVariants.ReplaceAllString(text, "*")
	text = colonVariants.ReplaceAllString(text, ":")
	text = parens.ReplaceAllString(text, "")
	text = punctuation.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// charSet returns the set of non-space runes in s.
func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		if r == ' ' {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

func intersectCount(a, b map[rune]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for r := range a {
		if _, ok := b[r]; ok {
			n++
		}
	}
	return n
}

// JaccardChars is the character-set Jaccard similarity of two strings,
// computed on their normalized forms.
func JaccardChars(a, b string) float64 {
	sa := charSet(NormalizeText(a))
	sb := charSet(NormalizeText(b))
	inter := intersectCount(sa, sb)
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
