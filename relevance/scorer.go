package relevance

import (
	"regexp"
	"strconv"
	"strings"

	"polysearch/result"
)

// Policy bundles the hard-filter predicate and scoring function for one
// category. Accept runs before Score; rejected candidates never reach the
// result set. Both are pure functions of their inputs.
type Policy struct {
	Accept func(query, title, urlStr, imageURL string) bool
	Score  func(query, title, urlStr string) int64
}

// PolicyFor returns the policy table entry for a category.
func PolicyFor(cat result.Category) Policy {
	switch cat {
	case result.Resource:
		return Policy{
			Accept: func(query, title, _, _ string) bool { return AcceptResource(query, title) },
			Score:  ScoreResource,
		}
	case result.Video:
		return Policy{
			Accept: func(_, title, urlStr, _ string) bool { return AcceptVideo(title, urlStr) },
			Score:  ScoreWeb,
		}
	case result.Image:
		return Policy{Accept: AcceptImage, Score: ScoreWeb}
	default:
		return Policy{
			Accept: func(_, _, _, _ string) bool { return true },
			Score:  ScoreWeb,
		}
	}
}

// ScoreWeb assigns the additive web relevance score: a base of 1, 50 per
// character shared between the normalized query and title, 1000 for a full
// normalized substring match, and 20 when an official/definitional marker
// appears in the title or URL.
func ScoreWeb(query, title, urlStr string) int64 {
	if title == "" || query == "" {
		return 1
	}
	nq := NormalizeText(query)
	nt := NormalizeText(title)

	score := int64(1)
	score += int64(intersectCount(charSet(nq), charSet(nt))) * 50
	if nq != "" && strings.Contains(nt, nq) {
		score += 1000
	}
	if matchesAny(officialMatcher, strings.ToLower(title)) || matchesAny(officialMatcher, strings.ToLower(urlStr)) {
		score += 20
	}
	return score
}

// superLooseMatch deliberately errs toward keeping noisy resource titles:
// a full normalized substring match passes, then a >=50% character overlap,
// then even a single shared character.
func superLooseMatch(query, title string) bool {
	nq := NormalizeText(query)
	nt := NormalizeText(title)
	if nq == "" {
		return false
	}
	if strings.Contains(nt, nq) {
		return true
	}
	qs := charSet(nq)
	n := intersectCount(qs, charSet(nt))
	if float64(n)/float64(len(qs)) >= 0.5 {
		return true
	}
	return n > 0
}

// AcceptResource rejects boilerplate titles and gates the rest through the
// super-loose match.
func AcceptResource(query, title string) bool {
	if title == "" {
		return false
	}
	if matchesAny(irrelevantMatcher, strings.ToLower(title)) {
		return false
	}
	return superLooseMatch(query, title)
}

// ScoreResource favors exact normalized substring matches over partial
// character overlap, which earns proportional credit up to 500.
func ScoreResource(query, title, _ string) int64 {
	nq := NormalizeText(query)
	nt := NormalizeText(title)

	score := int64(strings.Count(nt, nq)) * 10
	if nq != "" && strings.Contains(nt, nq) {
		score += 1000
		return score
	}
	qs := charSet(nq)
	if len(qs) == 0 {
		return score + 1
	}
	ratio := float64(intersectCount(qs, charSet(nt))) / float64(len(qs))
	if ratio > 0 {
		score += int64(ratio * 500)
	} else {
		score++
	}
	return score
}

// AcceptVideo rejects boilerplate titles and URLs that fail the structural
// video-likeness test.
func AcceptVideo(title, urlStr string) bool {
	if title == "" {
		return false
	}
	if matchesAny(irrelevantMatcher, strings.ToLower(title)) {
		return false
	}
	return IsVideoLike(urlStr)
}

// AcceptImage requires basic keyword overlap with the query, rejects
// quality-indicator markers, and enforces a pixel-dimension floor where the
// URL encodes explicit sizes: 100px on the page URL, 50px on the resolved
// image URL.
func AcceptImage(query, title, urlStr, imageURL string) bool {
	if !basicKeywordMatch(query, title, urlStr) {
		return false
	}
	if matchesAny(imageQualityMatcher, strings.ToLower(urlStr)) {
		return false
	}
	if imageURL != "" && matchesAny(imageQualityMatcher, strings.ToLower(imageURL)) {
		return false
	}
	if !dimensionsAbove(urlStr, 100) {
		return false
	}
	if imageURL != "" && !dimensionsAbove(imageURL, 50) {
		return false
	}
	return true
}

func basicKeywordMatch(query, title, urlStr string) bool {
	q := strings.ToLower(query)
	text := strings.ToLower(title) + " " + strings.ToLower(urlStr)
	if strings.Contains(text, q) {
		return true
	}
	for _, word := range strings.Fields(q) {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

var sizeParams = []*regexp.Regexp{
	regexp.MustCompile(`w=(\d+)`),
	regexp.MustCompile(`width=(\d+)`),
	regexp.MustCompile(`h=(\d+)`),
	regexp.MustCompile(`height=(\d+)`),
	regexp.MustCompile(`size=(\d+)`),
	regexp.MustCompile(`dim=(\d+)`),
}

func dimensionsAbove(urlStr string, floor int) bool {
	for _, pat := range sizeParams {
		for _, m := range pat.FindAllStringSubmatch(urlStr, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n < floor {
				return false
			}
		}
	}
	return true
}
