package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// ErrBadStatus is returned by Get when the final response is not 2xx.
var ErrBadStatus = errors.New("unexpected status code")

// Options control a single fetch.
type Options struct {
	Headers    map[string]string
	Timeout    time.Duration
	NoRedirect bool // capture 3xx responses instead of following them
}

// Response is the raw outcome of a fetch.
type Response struct {
	Body       []byte
	StatusCode int
	Header     http.Header
}

// Fetcher is the transport primitive the engine builds on. It is satisfied
// equally by the plain HTTP client and the rendering-capable browser.
type Fetcher interface {
	Get(ctx context.Context, url string, opts Options) (*Response, error)
}

const maxBodySize = 8 << 20

// Client fetches pages over plain HTTP with browser-like headers and a
// rotating User-Agent pool.
type Client struct {
	hc         *http.Client
	hcNoFollow *http.Client
	logger     *zap.Logger
	uaIndex    atomic.Uint64
}

// NewClient builds a fetching client. When proxyURL is non-empty it is used
// as a SOCKS5 endpoint for all outbound connections.
func NewClient(proxyURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: timeout,
	}

	if proxyURL != "" {
		dialer, err := proxy.SOCKS5("tcp", proxyURL, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	// One redirect hop is followed automatically; deeper chains are cut off
	// and the last response is returned as-is.
	follow := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > 1 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	noFollow := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Client{hc: follow, hcNoFollow: noFollow, logger: logger}, nil
}

func (c *Client) Get(ctx context.Context, url string, opts Options) (*Response, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", c.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	client := c.hc
	if opts.NoRedirect {
		client = c.hcNoFollow
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}

	out := &Response{Body: body, StatusCode: resp.StatusCode, Header: resp.Header}

	c.logger.Debug("fetched",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	if !opts.NoRedirect && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return out, fmt.Errorf("get %s: status %d: %w", url, resp.StatusCode, ErrBadStatus)
	}
	return out, nil
}

func (c *Client) nextUserAgent() string {
	i := c.uaIndex.Add(1)
	return userAgents[i%uint64(len(userAgents))]
}
