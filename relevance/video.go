package relevance

import "strings"

var videoPathTokens = []string{
	"/videos", "/video", "/v/", "/play/", "/player/", "/watch/", "/movie/",
	"/tv/", "/anime/", "/drama/", "/clip/", "/stream/", "/live/", "/x/",
	"/cover/", "/page/",
}

// IsVideoLike reports whether a URL structurally looks like a video page
// rather than a search form aimed at a video section. A URL qualifies when
// it contains a video path segment and either has no query string, or the
// query string does not begin right after a "search" suffix or another
// video path token.
func IsVideoLike(urlStr string) bool {
	hasPath := false
	for _, p := range videoPathTokens {
		if strings.Contains(urlStr, p) {
			hasPath = true
			break
		}
	}
	if !hasPath {
		return false
	}

	qpos := strings.Index(urlStr, "?")
	if qpos < 0 {
		return true
	}

	before := urlStr[:qpos]
	lastSlash := strings.LastIndex(before, "/")
	if qpos <= lastSlash {
		return true
	}
	domainPart := before
	if lastSlash >= 0 {
		domainPart = before[:lastSlash]
	}
	if !strings.Contains(domainPart, ".") {
		return true
	}

	tail := strings.ToLower(before)
	if len(tail) > 10 {
		tail = tail[len(tail)-10:]
	}
	if strings.HasSuffix(tail, "search") {
		return false
	}
	for _, p := range videoPathTokens {
		if strings.HasSuffix(tail, p[1:]) {
			return false
		}
	}
	return true
}
