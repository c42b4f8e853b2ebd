package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"polysearch/resolve"
	"polysearch/result"
)

// Class tokens that hint at content containers on arbitrary sites.
var containerSelectors = []string{
	`[class*="result"] a[href]`,
	`[class*="item"] a[href]`,
	`[class*="post"] a[href]`,
	`[class*="card"] a[href]`,
	`[class*="list"] a[href]`,
	`[class*="grid"] a[href]`,
}

// Navigational and legal links never count as content on a direct site.
var navKeywords = []string{
	"更多", "more", "下一页", "next", "上一页", "prev",
	"登录", "login", "注册", "register", "隐私", "privacy", "条款", "terms",
	"关于", "about", "帮助", "help", "联系", "contact", "首页", "home",
}

// siteStrategy handles direct sites without a dedicated engine parser using
// two passes: content-container hinted links first, then every link
// filtered by the navigational denylist.
type siteStrategy struct {
	domain   string
	resolver *resolve.Resolver
	logger   *zap.Logger
}

func (s *siteStrategy) Extract(ctx context.Context, doc *goquery.Document, q result.Query) []result.Raw {
	out := s.collect(doc, q, containerSelectors...)
	if len(out) > 0 {
		return out
	}
	s.logger.Debug("no container-hinted links, scanning all links", zap.String("domain", s.domain))
	return s.collect(doc, q, "a[href]")
}

func (s *siteStrategy) collect(doc *goquery.Document, q result.Query, selectors ...string) []result.Raw {
	var out []result.Raw
	seen := make(map[string]struct{})

	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			u, err := s.resolver.Normalize(href, result.GenericSite, s.domain)
			if err != nil || s.resolver.IsBlacklisted(u) {
				return
			}
			if _, dup := seen[u]; dup {
				return
			}

			title := strings.TrimSpace(link.Text())
			if len([]rune(title)) <= 3 || isNavTitle(title) {
				return
			}

			seen[u] = struct{}{}
			r := result.Raw{
				Title:        cleanTitle(title, u),
				URL:          u,
				Engine:       result.GenericSite,
				SourceDomain: s.domain,
			}
			if r.Title == "" {
				return
			}
			if q.Category == result.Image {
				r.ImageURL = probeImageURL(link, u)
			}
			out = append(out, r)
		})
	}
	return out
}

func isNavTitle(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range navKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
