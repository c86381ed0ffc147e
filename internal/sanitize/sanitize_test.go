package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanKeepsFormattingDropsScripts(t *testing.T) {
	in := `<p>Visit us <a href="https://example.org" rel="nofollow">here</a></p><script>alert("x")</script>`
	out := Clean(in)
	assert.Contains(t, out, "<p>")
	assert.Contains(t, out, "example.org")
	assert.NotContains(t, out, "script")
}

func TestCleanTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "hello", Clean("  hello \n"))
}

func TestStripRemovesAllMarkup(t *testing.T) {
	in := "<h1>Title</h1><p>Some &amp; more</p>"
	out := Strip(in)
	assert.NotContains(t, out, "<")
	assert.Contains(t, out, "Some & more")
}
