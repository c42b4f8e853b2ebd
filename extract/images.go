package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Attribute probe order for image URLs; lazy-load variants come before src.
var imageAttributes = []string{
	"data-src", "data-m", "data-href", "data-imgurl", "data-bm",
	"data-original", "data-hires", "data-full", "data-large", "data-hd", "src",
	"data-msrc", "data-big", "data-super", "data-zoom", "data-thumb",
	"data-preview", "data-image", "data-img", "data-pic", "data-photo",
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// probeImageURL hunts for the image URL attached to a result link: the
// link's own attributes, a nested image element, then ancestors up to the
// document root checking each ancestor and its image descendants. The first
// absolute URL wins; a direct image href counts as its own image.
func probeImageURL(link *goquery.Selection, href string) string {
	if u := attrImageURL(link); u != "" {
		return u
	}
	if img := link.Find("img").First(); img.Length() > 0 {
		if u := attrImageURL(img); u != "" {
			return u
		}
	}

	lower := strings.ToLower(href)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return href
		}
	}

	for p := link.Parent(); p.Length() > 0 && !p.Is("body") && !p.Is("html"); p = p.Parent() {
		if img := p.Find("img").First(); img.Length() > 0 {
			if u := attrImageURL(img); u != "" {
				return u
			}
		}
		if u := attrImageURL(p); u != "" {
			return u
		}
	}
	return ""
}

func attrImageURL(sel *goquery.Selection) string {
	for _, attr := range imageAttributes {
		if v, ok := sel.Attr(attr); ok && strings.HasPrefix(v, "http") {
			return v
		}
	}
	return ""
}
