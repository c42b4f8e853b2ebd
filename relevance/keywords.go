package relevance

import (
	"github.com/cloudflare/ahocorasick"
)

// Keyword sets are matched with Aho-Corasick so one pass over a lowercased
// title covers the whole set.

var officialKeywords = []string{
	"官网", "官方网站", "official", "homepage", "home page",
	"概念", "介绍", "introduction", "about", "什么是", "what is",
	"定义", "definition", "百科", "wiki",
}

var irrelevantKeywords = []string{
	"登录", "login", "注册", "register", "首页", "关于", "about",
	"联系我们", "contact", "帮助", "help", "隐私", "privacy", "条款", "terms",
	"广告", "advert", "推广", "promotion", "招聘", "recruit",
	"新闻", "news", "公告", "notice", "更新", "update", "维护", "maintenance",
}

var imageQualityKeywords = []string{
	"thumb", "thumbnail", "icon", "favicon", "logo",
	"w=12", "h=12", "w=16", "h=16", "w=24", "h=24", "w=32", "h=32",
	"size=12", "size=16", "size=24", "size=32", "size=48",
}

var (
	officialMatcher     = ahocorasick.NewStringMatcher(officialKeywords)
	irrelevantMatcher   = ahocorasick.NewStringMatcher(irrelevantKeywords)
	imageQualityMatcher = ahocorasick.NewStringMatcher(imageQualityKeywords)
)

func matchesAny(m *ahocorasick.Matcher, text string) bool {
	return len(m.Match([]byte(text))) > 0
}
