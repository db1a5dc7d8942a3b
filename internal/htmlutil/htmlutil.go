package htmlutil

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()

	// Notification bodies only ever carry a single anchor.
	notificationPolicy = bluemonday.NewPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	notificationPolicy.AllowAttrs("href").OnElements("a")
}

// RenderMarkdown converts a post body to sanitized HTML.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return html.EscapeString(source) // Fallback
	}
	return string(policy.SanitizeBytes(buf.Bytes()))
}

// Anchor builds a sanitized HTML link for embedding in notification bodies.
func Anchor(href, text string) string {
	raw := fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(text))
	return notificationPolicy.Sanitize(raw)
}

// SanitizeNotification strips everything but plain anchors from a notification body.
func SanitizeNotification(body string) string {
	return notificationPolicy.Sanitize(body)
}
