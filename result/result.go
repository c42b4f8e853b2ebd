package result

import "strings"

// Category selects the extraction, scoring and filtering policy for a search.
type Category int

const (
	Web Category = iota
	Image
	Video
	Resource
)

func (c Category) String() string {
	switch c {
	case Image:
		return "images"
	case Video:
		return "videos"
	case Resource:
		return "resources"
	default:
		return "web"
	}
}

// ParseCategory maps the API-level search type strings to a Category.
// Unknown values fall back to Web.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "images", "image":
		return Image
	case "videos", "video":
		return Video
	case "resources", "resource", "files":
		return Resource
	default:
		return Web
	}
}

// Query is a single search invocation. Immutable once built. Search always
// returns the full ranked set; result limiting is the caller's concern.
type Query struct {
	Text     string
	Category Category
	Page     uint
}

// Site describes one searchable target, owned by the config store and
// treated as read-only per search call.
type Site struct {
	Domain     string   // normalized: lowercase, no scheme/port/www prefix
	Category   string   // grouping label from the config store
	SearchURLs []string // templates containing a {query} placeholder
	Enabled    bool
}

// EngineKind identifies which extraction strategy applies to a source.
type EngineKind int

const (
	GenericSite EngineKind = iota
	Bing
	Baidu
	Sogou
	So360
)

func (k EngineKind) String() string {
	switch k {
	case Bing:
		return "bing"
	case Baidu:
		return "baidu"
	case Sogou:
		return "sogou"
	case So360:
		return "so360"
	default:
		return "site"
	}
}

// BaseHost is the canonical host used to expand root-relative links emitted
// by an engine's result pages.
func (k EngineKind) BaseHost() string {
	switch k {
	case Bing:
		return "www.bing.com"
	case Baidu:
		return "www.baidu.com"
	case Sogou:
		return "www.sogou.com"
	case So360:
		return "www.so.com"
	default:
		return ""
	}
}

// EngineForDomain derives the engine kind from a site domain. Unknown
// domains default to GenericSite.
func EngineForDomain(domain string) EngineKind {
	d := strings.ToLower(strings.TrimPrefix(domain, "www."))
	switch {
	case d == "bing.com" || strings.HasSuffix(d, ".bing.com"):
		return Bing
	case d == "baidu.com" || strings.HasSuffix(d, ".baidu.com"):
		return Baidu
	case d == "sogou.com" || strings.HasSuffix(d, ".sogou.com"):
		return Sogou
	case d == "so.com" || strings.HasSuffix(d, ".so.com"):
		return So360
	default:
		return GenericSite
	}
}

// Raw is one extracted link before scoring. Produced once per candidate.
type Raw struct {
	Title        string
	URL          string
	ImageURL     string // resolved image URL, image category only
	Engine       EngineKind
	SourceDomain string
}

// Scored is a Raw plus its relevance score. Scores are additive across
// independent signals and never negative.
type Scored struct {
	Raw
	Score int64
}

// Set is the final ordered result sequence: unique by dedup key, sorted by
// score descending, first-seen order preserved for equal scores.
type Set []Scored
