package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	t.Run("basic formatting", func(t *testing.T) {
		out := RenderMarkdown("some **bold** text")
		assert.Contains(t, out, "<strong>bold</strong>")
	})

	t.Run("gfm tables", func(t *testing.T) {
		out := RenderMarkdown("| a | b |\n|---|---|\n| 1 | 2 |")
		assert.Contains(t, out, "<table>")
	})

	t.Run("scripts are stripped", func(t *testing.T) {
		out := RenderMarkdown("hello <script>alert(1)</script> world")
		assert.NotContains(t, out, "<script>")
		assert.NotContains(t, out, "alert(1)")
	})

	t.Run("event handlers are stripped", func(t *testing.T) {
		out := RenderMarkdown(`<img src="x.png" onerror="alert(1)">`)
		assert.NotContains(t, out, "onerror")
	})
}

func TestAnchor(t *testing.T) {
	out := Anchor("/posts/7", "How to factor quadratics?")
	assert.Contains(t, out, `href="/posts/7"`)
	assert.Contains(t, out, "How to factor quadratics?")

	t.Run("text is escaped", func(t *testing.T) {
		out := Anchor("/posts/7", "<script>alert(1)</script>")
		assert.NotContains(t, out, "<script>")
	})
}

func TestSanitizeNotification(t *testing.T) {
	t.Run("keeps plain anchors", func(t *testing.T) {
		out := SanitizeNotification(`maya upvoted <a href="/posts/3">your post</a>`)
		assert.Contains(t, out, `href="/posts/3"`)
		assert.Contains(t, out, "your post")
	})

	t.Run("drops everything else", func(t *testing.T) {
		out := SanitizeNotification(`<a href="/x" onclick="steal()">x</a><img src="y">`)
		assert.NotContains(t, out, "onclick")
		assert.NotContains(t, out, "<img")
	})
}
