package search

import (
	"fmt"
	"net/url"

	"polysearch/result"
)

// QueryURL builds the result-page URL for a built-in engine, one page at a
// time. Direct sites use their configured templates instead.
func QueryURL(kind result.EngineKind, q result.Query, count int, page uint) string {
	escaped := url.QueryEscape(q.Text)
	switch kind {
	case result.Bing:
		first := page*uint(count) + 1
		switch q.Category {
		case result.Image:
			return fmt.Sprintf("https://www.bing.com/images/search?q=%s&setlang=zh-cn&count=%d&first=%d", escaped, count, first)
		case result.Video:
			return fmt.Sprintf("https://www.bing.com/videos/search?q=%s&setlang=zh-cn&count=%d&first=%d", escaped, count, first)
		case result.Resource:
			loose := url.QueryEscape(q.Text + " 下载 OR 资源")
			return fmt.Sprintf("https://www.bing.com/search?q=%s&setlang=zh-cn&count=%d&first=%d", loose, count, first)
		default:
			return fmt.Sprintf("https://www.bing.com/search?q=%s&setlang=zh-cn&count=%d&first=%d", escaped, count, first)
		}
	case result.Baidu:
		return fmt.Sprintf("https://www.baidu.com/s?wd=%s&pn=%d", escaped, page*10)
	case result.Sogou:
		return fmt.Sprintf("https://sogou.com/web?query=%s&_asf=www.sogou.com&w=01019900&p=%d&ie=utf8", escaped, page+1)
	case result.So360:
		return fmt.Sprintf("https://www.so.com/s?q=%s&pn=%d", escaped, page*uint(count))
	default:
		return ""
	}
}

// EngineHeaders returns the extra request headers an engine expects beyond
// the fetcher's browser-like defaults.
func EngineHeaders(kind result.EngineKind) map[string]string {
	referer := ""
	switch kind {
	case result.Baidu:
		referer = "https://www.baidu.com/"
	case result.Sogou:
		referer = "https://www.sogou.com/"
	case result.So360:
		referer = "https://www.so.com/"
	default:
		return nil
	}
	return map[string]string{
		"Referer":        referer,
		"Sec-Fetch-Dest": "document",
		"Sec-Fetch-Mode": "navigate",
		"Sec-Fetch-Site": "none",
	}
}
