package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// PreviewLength is the maximum length of a derived plain-text preview.
const PreviewLength = 100

var (
	// StrictPolicy strips all markup; used for previews and plain-text parts.
	StrictPolicy *bluemonday.Policy
	// UGCPolicy keeps a safe subset of rich-text markup for stored bodies.
	UGCPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	UGCPolicy = bluemonday.UGCPolicy()

	// Allow additional safe elements for email content
	UGCPolicy.AllowElements("p", "br", "div", "span", "h1", "h2", "h3", "h4", "h5", "h6")
	UGCPolicy.AllowElements("strong", "em", "u", "s", "code", "pre")
	UGCPolicy.AllowElements("ul", "ol", "li")
	UGCPolicy.AllowElements("blockquote")
	UGCPolicy.AllowElements("a", "img")
	UGCPolicy.AllowElements("table", "thead", "tbody", "tr", "th", "td")

	UGCPolicy.AllowAttrs("href").OnElements("a")
	UGCPolicy.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	UGCPolicy.AllowAttrs("class", "id").Globally()
	UGCPolicy.AllowAttrs("style").OnElements("span", "div", "p")

	UGCPolicy.RequireParseableURLs(true)
	UGCPolicy.AllowURLSchemes("http", "https", "mailto")
}

// SanitizeHTML sanitizes rich-text email content using the UGC policy.
func SanitizeHTML(html string) string {
	return UGCPolicy.Sanitize(html)
}

// StripHTML removes all markup from content.
func StripHTML(html string) string {
	return StrictPolicy.Sanitize(html)
}

// MakePreview derives the plain-text preview of an email body: markup
// stripped, whitespace collapsed, truncated to PreviewLength characters.
func MakePreview(body string) string {
	plain := strings.Join(strings.Fields(StripHTML(body)), " ")
	runes := []rune(plain)
	if len(runes) > PreviewLength {
		return string(runes[:PreviewLength])
	}
	return plain
}
