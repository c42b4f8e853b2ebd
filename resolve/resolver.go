package resolve

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"polysearch/fetch"
	"polysearch/result"
)

// ErrInvalidLink marks an href that can never become a usable result URL.
var ErrInvalidLink = errors.New("invalid link")

// ErrUnresolvable marks a redirect link whose target could not be recovered.
// Such links are dropped rather than surfaced as indirection pages.
var ErrUnresolvable = errors.New("redirect target not found")

var invalidPrefixes = []string{
	"javascript:", "mailto:", "tel:", "data:", "about:", "chrome:", "file:",
}

// Blacklist filters results by host substring. The Enabled flag disables the
// whole check when false.
type Blacklist struct {
	Domains []string
	Enabled bool
}

// Resolver canonicalizes engine-emitted hrefs: expands relative forms,
// unwraps engine redirect links and filters engine-internal and
// blacklisted targets.
type Resolver struct {
	fetcher   fetch.Fetcher
	blacklist Blacklist
	logger    *zap.Logger
}

func NewResolver(fetcher fetch.Fetcher, blacklist Blacklist, logger *zap.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, blacklist: blacklist, logger: logger}
}

// Normalize turns href into an absolute http(s) URL. Root-relative links are
// expanded against the engine's canonical host, or against sourceDomain for
// direct sites. Returns ErrInvalidLink for unusable hrefs.
func (r *Resolver) Normalize(href string, engine result.EngineKind, sourceDomain string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" || strings.HasPrefix(href, "#") {
		return "", ErrInvalidLink
	}
	lower := strings.ToLower(href)
	for _, p := range invalidPrefixes {
		if strings.HasPrefix(lower, p) {
			return "", ErrInvalidLink
		}
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href, nil
	}
	if strings.HasPrefix(href, "/") {
		if len(href) == 1 {
			return "", ErrInvalidLink
		}
		host := engine.BaseHost()
		if host == "" {
			host = sourceDomain
		}
		if host == "" {
			return "", ErrInvalidLink
		}
		return "https://" + host + href, nil
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", ErrInvalidLink
	}
	return href, nil
}

// Unwrap recovers the real destination from an engine redirect link. Links
// that are not redirect-shaped pass through unchanged. Only Baidu links may
// return ErrUnresolvable; the other engines fail open.
func (r *Resolver) Unwrap(ctx context.Context, rawurl string, engine result.EngineKind) (string, error) {
	switch engine {
	case result.Bing:
		return r.unwrapBing(rawurl), nil
	case result.Baidu:
		return r.unwrapBaidu(ctx, rawurl)
	case result.Sogou, result.So360:
		return unwrapLinkParam(rawurl), nil
	default:
		return rawurl, nil
	}
}

// unwrapBing decodes the base64url "u" parameter on bing.com redirect links.
// The parameter may carry a 2-character marker prefix that is stripped
// before decoding. Any decode failure keeps the original URL.
func (r *Resolver) unwrapBing(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil || !strings.Contains(u.Host, "bing.com") {
		return rawurl
	}
	enc := u.Query().Get("u")
	if enc == "" {
		// Older /ck/a links carry a percent-encoded target in u or r.
		if strings.Contains(u.Path, "/ck/a") || strings.Contains(u.Path, "redirect") {
			for _, key := range []string{"u", "r"} {
				if v := u.Query().Get(key); v != "" && strings.HasPrefix(v, "http") {
					return v
				}
			}
		}
		return rawurl
	}
	if strings.HasPrefix(enc, "a1") {
		enc = enc[2:]
	}
	if pad := len(enc) % 4; pad != 0 {
		enc += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.URLEncoding.DecodeString(enc)
	if err != nil {
		r.logger.Debug("bing unwrap failed", zap.String("url", rawurl), zap.Error(err))
		return rawurl
	}
	target := string(decoded)
	if !strings.HasPrefix(target, "http") {
		return rawurl
	}
	return target
}

var embeddedURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`URL='([^']+)'`),
	regexp.MustCompile(`url="([^"]+)"`),
	regexp.MustCompile(`window\.location\.href\s*=\s*["']([^"']+)["']`),
	regexp.MustCompile(`location\.href\s*=\s*["']([^"']+)["']`),
}

// unwrapBaidu follows a baidu.com/link?url= indirection with redirects
// disabled: a 302 yields the Location header, otherwise the body is scanned
// for known embedded-URL patterns. Links that resolve to nothing are dropped.
func (r *Resolver) unwrapBaidu(ctx context.Context, rawurl string) (string, error) {
	full := rawurl
	if strings.HasPrefix(rawurl, "/link?url=") {
		full = "https://www.baidu.com" + rawurl
	}
	u, err := url.Parse(full)
	if err != nil {
		return rawurl, nil
	}
	if !strings.Contains(u.Host, "baidu.com") || u.Path != "/link" || u.Query().Get("url") == "" {
		return rawurl, nil
	}

	resp, err := r.fetcher.Get(ctx, full, fetch.Options{NoRedirect: true, Timeout: 10 * time.Second})
	if err != nil {
		r.logger.Debug("baidu resolve fetch failed", zap.String("url", full), zap.Error(err))
		return "", ErrUnresolvable
	}
	if resp.StatusCode == http.StatusFound {
		if loc := resp.Header.Get("Location"); loc != "" {
			return loc, nil
		}
	}
	for _, pat := range embeddedURLPatterns {
		if m := pat.FindSubmatch(resp.Body); m != nil {
			target := string(m[1])
			if strings.HasPrefix(target, "http") {
				return target, nil
			}
		}
	}
	return "", ErrUnresolvable
}

// unwrapLinkParam percent-decodes /link?url=<target> redirects used by
// Sogou and 360.
func unwrapLinkParam(rawurl string) string {
	idx := strings.Index(rawurl, "/link?url=")
	if idx < 0 {
		return rawurl
	}
	enc := rawurl[idx+len("/link?url="):]
	if amp := strings.Index(enc, "&"); amp >= 0 {
		enc = enc[:amp]
	}
	target, err := url.QueryUnescape(enc)
	if err != nil || !strings.HasPrefix(target, "http") {
		return rawurl
	}
	return target
}

var bingInternalPaths = []string{
	"/search", "/images/", "/videos/", "/academic/", "/maps/", "/travel/", "/dict/",
}

// IsEngineInternal reports whether a link stays inside an engine's own UI
// surface instead of pointing at external content.
func (r *Resolver) IsEngineInternal(rawurl string, engine result.EngineKind) bool {
	u, err := url.Parse(rawurl)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	switch engine {
	case result.Bing:
		if !strings.Contains(host, "bing.com") {
			return false
		}
		if strings.Contains(u.Path, "images/search") && strings.Contains(u.RawQuery, "view=detailV2") {
			return true
		}
		for _, p := range bingInternalPaths {
			if strings.HasPrefix(u.Path, p) {
				return true
			}
		}
	case result.Baidu:
		return strings.Contains(host, "baidu.com") && strings.HasPrefix(u.Path, "/s")
	case result.Sogou:
		return strings.Contains(host, "sogou.com") && (strings.HasPrefix(u.Path, "/web") || strings.HasPrefix(u.Path, "/pics") || strings.HasPrefix(u.Path, "/video"))
	case result.So360:
		if strings.Contains(host, "e.so.com") || strings.Contains(host, "info.so.com") {
			return true
		}
		return strings.Contains(host, "so.com") && strings.HasPrefix(u.Path, "/s")
	}
	return false
}

// IsBlacklisted matches the URL host against the configured domain
// blacklist by substring.
func (r *Resolver) IsBlacklisted(rawurl string) bool {
	if !r.blacklist.Enabled {
		return false
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, d := range r.blacklist.Domains {
		if d != "" && strings.Contains(host, strings.ToLower(d)) {
			return true
		}
	}
	return false
}
