package dedup

import (
	"net/url"
	"strings"

	"polysearch/relevance"
	"polysearch/result"
)

const titleSimilarityThreshold = 0.8

// Deduplicate collapses near-duplicate results. Exact dedup-key matches are
// removed first, then a similarity pass suppresses later-seen items whose
// URL or title is close enough to a survivor. First-seen items always win.
func Deduplicate(items []result.Scored, cat result.Category) []result.Scored {
	kept := make([]result.Scored, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		k := key(item, cat)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		if similarToAny(item, kept) {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, item)
	}
	return kept
}

// key is the identity used to decide two results are the same. Image
// results key on the resolved image URL since one photo is linked from many
// gallery pages; engine redirector URLs are not stable identities, so those
// key on the title instead.
func key(item result.Scored, cat result.Category) string {
	if cat == result.Image {
		return item.ImageURL
	}
	if item.URL == "" {
		return ""
	}
	if isRedirectorURL(item.URL) {
		if item.Title == "" {
			return ""
		}
		return "redirect:" + relevance.NormalizeText(item.Title)
	}
	return item.URL
}

var redirectorShapes = []struct{ host, path string }{
	{"baidu.com", "/link"},
	{"sogou.com", "/link"},
	{"so.com", "/link"},
	{"bing.com", "/ck/a"},
}

func isRedirectorURL(rawurl string) bool {
	u, err := url.Parse(rawurl)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, shape := range redirectorShapes {
		if strings.Contains(host, shape.host) && strings.HasPrefix(u.Path, shape.path) {
			return true
		}
	}
	return false
}

func similarToAny(item result.Scored, kept []result.Scored) bool {
	for i := range kept {
		if urlsSimilar(item.URL, kept[i].URL) {
			return true
		}
		if relevance.JaccardChars(item.Title, kept[i].Title) > titleSimilarityThreshold {
			return true
		}
	}
	return false
}

var trackingParams = []string{"ref", "source", "from"}

// urlsSimilar treats two URLs as the same page when host and path match and
// the query parameters agree once tracking parameters are stripped.
func urlsSimilar(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	if ua.Host != ub.Host || ua.Path != ub.Path {
		return false
	}
	return stripTracking(ua.Query()).Encode() == stripTracking(ub.Query()).Encode()
}

func stripTracking(q url.Values) url.Values {
	for name := range q {
		if strings.HasPrefix(name, "utm_") {
			q.Del(name)
			continue
		}
		for _, p := range trackingParams {
			if name == p {
				q.Del(name)
				break
			}
		}
	}
	return q
}
