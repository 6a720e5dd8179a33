package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTMLRemovesScripts(t *testing.T) {
	out := SanitizeHTML(`<p>hi</p><script>alert("x")</script><img src="https://x/y.png" onerror="evil()">`)

	assert.Contains(t, out, "<p>hi</p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onerror")
}

func TestSanitizeHTMLKeepsEmailMarkup(t *testing.T) {
	out := SanitizeHTML(`<blockquote><p>quoted</p></blockquote><a href="https://example.com">link</a>`)

	assert.Contains(t, out, "<blockquote><p>quoted</p></blockquote>")
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", StripHTML("<p>plain <b>text</b></p>"))
}

func TestMakePreview(t *testing.T) {
	preview := MakePreview("<p>Hello   there,\n\nworld</p>")
	assert.Equal(t, "Hello there, world", preview)
}

func TestMakePreviewTruncates(t *testing.T) {
	long := strings.Repeat("word ", 50)
	preview := MakePreview(long)
	assert.Equal(t, PreviewLength, utf8.RuneCountInString(preview))
}

func TestMakePreviewMultibyte(t *testing.T) {
	long := strings.Repeat("é", 150)
	preview := MakePreview(long)
	assert.Equal(t, PreviewLength, utf8.RuneCountInString(preview))
	assert.True(t, utf8.ValidString(preview))
}
