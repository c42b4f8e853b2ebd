package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"polysearch/resolve"
	"polysearch/result"
)

// Strategy turns one fetched result page into raw result records. A page
// that fails to yield structured content produces an empty slice, never an
// error: a bad page must not abort the search.
type Strategy interface {
	Extract(ctx context.Context, doc *goquery.Document, q result.Query) []result.Raw
}

// Selector cascades, most to least specific. The first selector with at
// least one match wins for the page.
var (
	bingSelectors = []string{
		"li.b_algo", `li[class*="b_algo"]`, ".b_algo",
		`li[class*="algo"]`, `li[class*="result"]`,
		`div[class*="result"]`, "article", "h2 a",
	}
	sogouSelectors = []string{
		`div[class*="result"]`, `div[class*="vrwrap"]`,
		"h3 a", ".tit a", ".res-title a",
	}
	so360Selectors = []string{
		`li[class*="res-list"]`, `div[class*="res-list"]`,
		`div[class*="result"]`, "h3 a",
	}
)

// ForEngine returns the extraction strategy matching an engine kind. Unknown
// kinds get the generic direct-site strategy.
func ForEngine(kind result.EngineKind, domain string, res *resolve.Resolver, logger *zap.Logger) Strategy {
	switch kind {
	case result.Bing, result.Baidu:
		return &engineStrategy{kind: kind, domain: domain, selectors: bingSelectors, resolver: res, logger: logger}
	case result.Sogou:
		return &engineStrategy{kind: kind, domain: domain, selectors: sogouSelectors, resolver: res, logger: logger}
	case result.So360:
		return &engineStrategy{kind: kind, domain: domain, selectors: so360Selectors, resolver: res, logger: logger}
	default:
		return &siteStrategy{domain: domain, resolver: res, logger: logger}
	}
}

// engineStrategy parses a search engine result page through its selector
// cascade, falling back to every hyperlink on the page.
type engineStrategy struct {
	kind      result.EngineKind
	domain    string
	selectors []string
	resolver  *resolve.Resolver
	logger    *zap.Logger
}

func (s *engineStrategy) Extract(ctx context.Context, doc *goquery.Document, q result.Query) []result.Raw {
	var out []result.Raw

	for _, selector := range s.selectors {
		items := doc.Find(selector)
		if items.Length() == 0 {
			continue
		}
		s.logger.Debug("selector matched",
			zap.String("engine", s.kind.String()),
			zap.String("selector", selector),
			zap.Int("items", items.Length()))
		items.Each(func(_ int, item *goquery.Selection) {
			if r, ok := s.candidate(ctx, item, q); ok {
				out = append(out, r)
			}
		})
		return out
	}

	// Recall over precision: no structured block matched, scan every link.
	s.logger.Debug("no structured results, scanning all links", zap.String("engine", s.kind.String()))
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		if r, ok := s.candidate(ctx, link, q); ok {
			out = append(out, r)
		}
	})
	return out
}

func (s *engineStrategy) candidate(ctx context.Context, item *goquery.Selection, q result.Query) (result.Raw, bool) {
	link := item
	if !item.Is("a") {
		link = item.Find("a[href]").First()
		if link.Length() == 0 {
			return result.Raw{}, false
		}
	}
	href, _ := link.Attr("href")

	u, err := s.resolver.Normalize(href, s.kind, s.domain)
	if err != nil {
		return result.Raw{}, false
	}
	u, err = s.resolver.Unwrap(ctx, u, s.kind)
	if err != nil {
		s.logger.Debug("dropping unresolvable redirect", zap.String("href", href))
		return result.Raw{}, false
	}
	if s.resolver.IsEngineInternal(u, s.kind) || s.resolver.IsBlacklisted(u) {
		return result.Raw{}, false
	}

	title := headingText(item)
	if title == "" {
		title = strings.TrimSpace(link.Text())
	}
	title = cleanTitle(title, u)
	if title == "" {
		return result.Raw{}, false
	}

	r := result.Raw{Title: title, URL: u, Engine: s.kind, SourceDomain: s.domain}
	if q.Category == result.Image {
		r.ImageURL = probeImageURL(link, u)
	}
	return r, true
}

// headingText prefers the adjacent heading over the link's own text.
func headingText(item *goquery.Selection) string {
	for _, tag := range []string{"h2", "h3"} {
		if h := item.Find(tag).First(); h.Length() > 0 {
			return strings.TrimSpace(h.Text())
		}
	}
	return ""
}

var titlePrefixes = []string{
	"首页", "主页", "网站首页", "Home", "Index",
	"搜索", "Search", "结果", "Results",
	"登录", "Login", "注册", "Register",
	"关于", "About", "帮助", "Help",
}

var pathFilename = regexp.MustCompile(`/([^/?#]+)(?:\?|#|$)`)

func cleanTitle(title, href string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	if i := strings.LastIndex(title, " › "); i >= 0 {
		title = strings.TrimSpace(title[i+len(" › "):])
	}
	if i := strings.Index(title, "http"); i > 0 {
		title = strings.TrimSpace(title[:i])
	}
	for _, suffix := range []string{".com", ".cn", ".net", ".org"} {
		if strings.HasSuffix(title, suffix) {
			if m := pathFilename.FindStringSubmatch(href); m != nil {
				title = m[1]
			}
			break
		}
	}
	for _, p := range titlePrefixes {
		if strings.HasPrefix(title, p) {
			title = strings.TrimSpace(strings.TrimPrefix(title, p))
		}
	}
	if runes := []rune(title); len(runes) > 100 {
		title = string(runes[:100]) + "..."
	}
	return title
}
