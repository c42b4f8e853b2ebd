package search

import (
	"bytes"
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"polysearch/dedup"
	"polysearch/extract"
	"polysearch/fetch"
	"polysearch/relevance"
	"polysearch/resolve"
	"polysearch/result"
)

const (
	maxWorkers        = 4
	fallbackPages     = 3
	domesticTimeout   = 15 * time.Second
	defaultSiteBudget = 10 * time.Second
)

// Settings are the tunables owned by the config store.
type Settings struct {
	EngineMaxResults int
	SiteTimeout      time.Duration
}

// SiteProvider is the external configuration collaborator: it owns which
// sites exist, the blacklist and the tunables. The orchestrator reads it
// fresh on every search call.
type SiteProvider interface {
	SitesFor(cat result.Category) []result.Site
	Blacklist() resolve.Blacklist
	Settings() Settings
}

// Orchestrator runs the whole pipeline for one query: concurrent per-site
// fetch+extract+score, engine fallback when nothing came back, then
// dedup and ranking.
type Orchestrator struct {
	sites   SiteProvider
	fetcher fetch.Fetcher
	logger  *zap.Logger

	// FallbackURL builds the built-in engine page URLs used when no
	// configured site produced results. Overridable for tests.
	FallbackURL func(q result.Query, count int, page uint) string
}

func NewOrchestrator(sites SiteProvider, fetcher fetch.Fetcher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		sites:   sites,
		fetcher: fetcher,
		logger:  logger,
		FallbackURL: func(q result.Query, count int, page uint) string {
			return QueryURL(result.Bing, q, count, page)
		},
	}
}

// Search executes one query and returns the ranked result set. It never
// returns an error: an empty or whitespace-only query, and any combination
// of source failures, all yield an empty set.
func (o *Orchestrator) Search(ctx context.Context, q result.Query) result.Set {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		o.logger.Warn("rejecting empty query")
		return result.Set{}
	}

	logger := o.logger.With(
		zap.String("trace_id", uuid.NewString()),
		zap.String("query", q.Text),
		zap.String("category", q.Category.String()))

	settings := o.sites.Settings()
	if settings.SiteTimeout <= 0 {
		settings.SiteTimeout = defaultSiteBudget
	}
	if settings.EngineMaxResults <= 0 {
		settings.EngineMaxResults = 35
	}
	resolver := resolve.NewResolver(o.fetcher, o.sites.Blacklist(), logger)

	var enabled []result.Site
	for _, site := range o.sites.SitesFor(q.Category) {
		if site.Enabled {
			enabled = append(enabled, site)
		}
	}
	logger.Info("dispatching", zap.Int("sites", len(enabled)))

	var (
		mu        sync.Mutex
		collected []result.Scored
		total     atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(maxWorkers, max(len(enabled), 1)))
	for _, site := range enabled {
		g.Go(func() error {
			// Early-stop: enough accumulated results means queued sites
			// are not worth dispatching, but running fetches finish.
			if total.Load() >= int64(settings.EngineMaxResults) {
				logger.Debug("skipping site, target reached", zap.String("domain", site.Domain))
				return nil
			}
			found := o.searchSite(gctx, site, q, resolver, settings, logger)
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			collected = append(collected, found...)
			mu.Unlock()
			total.Add(int64(len(found)))
			return nil
		})
	}
	_ = g.Wait()

	if len(collected) == 0 {
		logger.Info("no site results, falling back to built-in engine")
		collected = o.fallbackSearch(ctx, q, resolver, settings, logger)
	}

	merged := dedup.Deduplicate(collected, q.Category)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	logger.Info("search done",
		zap.Int("raw_results", len(collected)),
		zap.Int("ranked_results", len(merged)))
	return result.Set(merged)
}

// searchSite runs the fetch+extract+score pipeline for one site under its
// own timeout budget. All failures are soft: they log and contribute
// nothing.
func (o *Orchestrator) searchSite(ctx context.Context, site result.Site, q result.Query, resolver *resolve.Resolver, settings Settings, logger *zap.Logger) (found []result.Scored) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("site search panicked",
				zap.String("domain", site.Domain),
				zap.Any("panic", r))
			found = nil
		}
	}()

	kind := result.EngineForDomain(site.Domain)
	budget := settings.SiteTimeout
	if isDomesticEngine(site.Domain) {
		budget = domesticTimeout
	}
	siteCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var urls []string
	if kind == result.GenericSite {
		for _, tmpl := range site.SearchURLs {
			urls = append(urls, expandTemplate(tmpl, q.Text))
		}
	} else {
		urls = []string{QueryURL(kind, q, settings.EngineMaxResults, q.Page)}
	}
	if len(urls) == 0 {
		logger.Debug("site has no search urls", zap.String("domain", site.Domain))
		return nil
	}

	strategy := extract.ForEngine(kind, site.Domain, resolver, logger)
	policy := relevance.PolicyFor(q.Category)

	for _, u := range urls {
		if siteCtx.Err() != nil {
			break
		}
		resp, err := o.fetcher.Get(siteCtx, u, fetch.Options{Headers: EngineHeaders(kind)})
		if err != nil {
			logger.Debug("site fetch failed",
				zap.String("domain", site.Domain),
				zap.String("url", u),
				zap.Error(err))
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			logger.Debug("site parse failed", zap.String("domain", site.Domain), zap.Error(err))
			continue
		}
		raws := strategy.Extract(siteCtx, doc, q)
		found = append(found, scoreAll(raws, q, policy)...)
	}

	logger.Info("site searched",
		zap.String("domain", site.Domain),
		zap.String("engine", kind.String()),
		zap.Int("results", len(found)))
	return found
}

// fallbackSearch walks the built-in engine's result pages as a last resort,
// scored identically to any configured source.
func (o *Orchestrator) fallbackSearch(ctx context.Context, q result.Query, resolver *resolve.Resolver, settings Settings, logger *zap.Logger) []result.Scored {
	strategy := extract.ForEngine(result.Bing, "bing.com", resolver, logger)
	policy := relevance.PolicyFor(q.Category)
	walker := NewPageWalker(settings.SiteTimeout, logger)

	seen := make(map[string]struct{})
	var out []result.Scored
	walker.Walk(ctx,
		func(page uint) string { return o.FallbackURL(q, settings.EngineMaxResults, q.Page+page) },
		fallbackPages,
		func(body []byte) int {
			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
			if err != nil {
				logger.Debug("fallback parse failed", zap.Error(err))
				return 0
			}
			added := 0
			for _, scored := range scoreAll(strategy.Extract(ctx, doc, q), q, policy) {
				if _, dup := seen[scored.URL]; dup {
					continue
				}
				seen[scored.URL] = struct{}{}
				out = append(out, scored)
				added++
			}
			return added
		})
	return out
}

func scoreAll(raws []result.Raw, q result.Query, policy relevance.Policy) []result.Scored {
	out := make([]result.Scored, 0, len(raws))
	for _, raw := range raws {
		if !policy.Accept(q.Text, raw.Title, raw.URL, raw.ImageURL) {
			continue
		}
		out = append(out, result.Scored{
			Raw:   raw,
			Score: policy.Score(q.Text, raw.Title, raw.URL),
		})
	}
	return out
}

func expandTemplate(tmpl, query string) string {
	return strings.ReplaceAll(tmpl, "{query}", url.QueryEscape(query))
}

func isDomesticEngine(domain string) bool {
	for _, d := range []string{"baidu.com", "sogou.com", "so.com"} {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return false
}
