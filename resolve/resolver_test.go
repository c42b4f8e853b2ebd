package resolve

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"polysearch/fetch"
	"polysearch/result"
)

// fakeFetcher returns a canned response per URL.
type fakeFetcher struct {
	responses map[string]*fetch.Response
	err       error
}

func (f *fakeFetcher) Get(_ context.Context, url string, _ fetch.Options) (*fetch.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	if resp, ok := f.responses[url]; ok {
		return resp, nil
	}
	return &fetch.Response{StatusCode: http.StatusOK, Header: http.Header{}}, nil
}

func newTestResolver(fetcher fetch.Fetcher, blacklist Blacklist) *Resolver {
	return NewResolver(fetcher, blacklist, zap.NewNop())
}

func TestNormalize(t *testing.T) {
	r := newTestResolver(nil, Blacklist{})

	testCases := []struct {
		name     string
		href     string
		engine   result.EngineKind
		domain   string
		expected string
		wantErr  bool
	}{
		{"AbsoluteHTTPS", "https://example.com/a", result.GenericSite, "example.com", "https://example.com/a", false},
		{"ProtocolRelative", "//x.com/a", result.Bing, "", "https://x.com/a", false},
		{"RootRelativeEngine", "/p", result.Bing, "", "https://www.bing.com/p", false},
		{"RootRelativeSite", "/p", result.GenericSite, "example.com", "https://example.com/p", false},
		{"Empty", "", result.Bing, "", "", true},
		{"Fragment", "#top", result.Bing, "", "", true},
		{"JavascriptScheme", "javascript:void(0)", result.Bing, "", "", true},
		{"MailtoScheme", "mailto:a@b.com", result.Bing, "", "", true},
		{"RelativePath", "page.html", result.GenericSite, "example.com", "", true},
		{"BareSlash", "/", result.Bing, "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Normalize(tc.href, tc.engine, tc.domain)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLink)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestUnwrapBing(t *testing.T) {
	r := newTestResolver(nil, Blacklist{})
	ctx := context.Background()

	testCases := []struct {
		name     string
		url      string
		expected string
	}{
		{
			"MarkerPrefixAndPadding",
			"https://www.bing.com/ck/a?u=a1aHR0cHM6Ly9leGFtcGxlLmNvbS8&p=1",
			"https://example.com/",
		},
		{
			"NoMarkerPrefix",
			"https://www.bing.com/ck/a?u=aHR0cHM6Ly9leGFtcGxlLmNvbS9wYWdl",
			"https://example.com/page",
		},
		{
			"InvalidBase64KeepsOriginal",
			"https://www.bing.com/ck/a?u=a1!!notbase64!!",
			"https://www.bing.com/ck/a?u=a1!!notbase64!!",
		},
		{
			"PlainResultLinkUntouched",
			"https://example.com/article",
			"https://example.com/article",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Unwrap(ctx, tc.url, result.Bing)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestUnwrapLinkParam(t *testing.T) {
	r := newTestResolver(nil, Blacklist{})
	ctx := context.Background()

	got, err := r.Unwrap(ctx, "https://www.sogou.com/link?url=https%3A%2F%2Fexample.com%2Fpage&query=x", result.Sogou)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", got)

	got, err = r.Unwrap(ctx, "https://www.so.com/link?url=https%3A%2F%2Fexample.com%2Fother", result.So360)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/other", got)

	// Non-redirect links pass through unchanged.
	got, err = r.Unwrap(ctx, "https://example.com/direct", result.Sogou)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/direct", got)
}

func TestUnwrapBaidu_RedirectLocation(t *testing.T) {
	link := "https://www.baidu.com/link?url=abc123"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		link: {
			StatusCode: http.StatusFound,
			Header:     http.Header{"Location": []string{"https://example.com/target"}},
		},
	}}
	r := newTestResolver(fetcher, Blacklist{})

	got, err := r.Unwrap(context.Background(), link, result.Baidu)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/target", got)
}

func TestUnwrapBaidu_EmbeddedURL(t *testing.T) {
	link := "https://www.baidu.com/link?url=abc123"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		link: {
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       []byte(`<script>window.location.href = "https://example.com/landing"</script>`),
		},
	}}
	r := newTestResolver(fetcher, Blacklist{})

	got, err := r.Unwrap(context.Background(), link, result.Baidu)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/landing", got)
}

func TestUnwrapBaidu_Unresolvable(t *testing.T) {
	link := "https://www.baidu.com/link?url=abc123"
	fetcher := &fakeFetcher{responses: map[string]*fetch.Response{
		link: {StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte("nothing here")},
	}}
	r := newTestResolver(fetcher, Blacklist{})

	_, err := r.Unwrap(context.Background(), link, result.Baidu)
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestUnwrapBaidu_NonRedirectPassesThrough(t *testing.T) {
	// A baidu URL that is not a /link indirection never hits the network.
	fetcher := &fakeFetcher{err: assert.AnError}
	r := newTestResolver(fetcher, Blacklist{})

	got, err := r.Unwrap(context.Background(), "https://www.baidu.com/s?wd=query", result.Baidu)
	require.NoError(t, err)
	assert.Equal(t, "https://www.baidu.com/s?wd=query", got)
}

func TestIsEngineInternal(t *testing.T) {
	r := newTestResolver(nil, Blacklist{})

	testCases := []struct {
		name     string
		url      string
		engine   result.EngineKind
		expected bool
	}{
		{"BingSearchPage", "https://www.bing.com/search?q=x", result.Bing, true},
		{"BingImageDetail", "https://www.bing.com/images/search?view=detailV2&id=1", result.Bing, true},
		{"BingExternal", "https://example.com/a", result.Bing, false},
		{"BaiduResultPage", "https://www.baidu.com/s?wd=x", result.Baidu, true},
		{"SogouWebPage", "https://www.sogou.com/web?query=x", result.Sogou, true},
		{"So360InfoHost", "https://info.so.com/anything", result.So360, true},
		{"GenericNeverInternal", "https://www.bing.com/search?q=x", result.GenericSite, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.IsEngineInternal(tc.url, tc.engine))
		})
	}
}

func TestIsBlacklisted(t *testing.T) {
	r := newTestResolver(nil, Blacklist{Domains: []string{"spam.example"}, Enabled: true})
	assert.True(t, r.IsBlacklisted("https://www.spam.example/page"))
	assert.False(t, r.IsBlacklisted("https://example.com/page"))

	disabled := newTestResolver(nil, Blacklist{Domains: []string{"spam.example"}, Enabled: false})
	assert.False(t, disabled.IsBlacklisted("https://www.spam.example/page"))
}
