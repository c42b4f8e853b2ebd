package search

import (
	"context"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// PageWalker visits successive result pages of one engine and hands each
// page body to a callback. The walk stops early when a page contributes no
// new results, so a repeating engine never burns the full page budget.
type PageWalker struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewPageWalker(timeout time.Duration, logger *zap.Logger) *PageWalker {
	return &PageWalker{timeout: timeout, logger: logger}
}

// Walk fetches up to maxPages pages. pageURL builds the URL for each page
// index; onPage reports how many new results the page contributed.
func (w *PageWalker) Walk(ctx context.Context, pageURL func(page uint) string, maxPages uint, onPage func(body []byte) int) {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(w.timeout)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		w.logger.Debug("page fetch failed", zap.Error(err))
	})

	for page := uint(0); page < maxPages; page++ {
		if ctx.Err() != nil {
			return
		}
		body = nil
		u := pageURL(page)
		if err := c.Visit(u); err != nil {
			w.logger.Debug("page visit failed", zap.String("url", u), zap.Error(err))
			return
		}
		c.Wait()
		if body == nil {
			return
		}
		added := onPage(body)
		w.logger.Debug("engine page walked",
			zap.String("url", u),
			zap.Uint("page", page),
			zap.Int("new_results", added))
		if added == 0 {
			return
		}
	}
}
