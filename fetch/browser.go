package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Browser is a rendering-capable Fetcher backed by headless Chrome. It is
// selected by configuration for sources that need script execution; callers
// treat it exactly like the plain Client.
type Browser struct {
	logger  *zap.Logger
	options []chromedp.ExecAllocatorOption
}

func NewBrowser(proxyURL string, logger *zap.Logger) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(userAgents[0]),

		// Stealth options
		chromedp.Flag("accept-language", "zh-CN,zh;q=0.9,en;q=0.8"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-extensions", ""),
	)
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}
	return &Browser{logger: logger, options: opts}
}

func (b *Browser) Get(ctx context.Context, url string, opts Options) (*Response, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.options...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, timeout)
	defer timeoutCancel()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body"),
		chromedp.Evaluate(`
			Object.defineProperty(navigator, 'webdriver', {
				get: () => undefined,
			});
		`, nil),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		b.logger.Error("rendered fetch failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("rendered get %s: %w", url, err)
	}

	b.logger.Debug("rendered fetch",
		zap.String("url", url),
		zap.Int("bytes", len(html)))

	return &Response{Body: []byte(html), StatusCode: http.StatusOK, Header: http.Header{}}, nil
}
