package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	cases := map[string]string{
		"plain text":                              "plain text",
		"<p>Hello <b>world</b></p>":               "Hello world",
		"<p>one</p><p>two</p>":                    "one\n\ntwo",
		"a<br>b":                                  "a\nb",
		"fish &amp; chips":                        "fish & chips",
		"<script>alert(1)</script>safe":           "safe",
		"<style>p{color:red}</style><p>shown</p>": "shown",
		"":                                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripMarkup(in), "input %q", in)
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short note", Preview("<p>short</p>\n<p>note</p>"))

	long := strings.Repeat("é", 150)
	got := Preview(long)
	assert.Equal(t, strings.Repeat("é", 100)+"...", got)

	exact := strings.Repeat("a", 100)
	assert.Equal(t, exact, Preview(exact))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("<p>   </p>"))
	assert.Equal(t, 4, WordCount("<p>one two</p><p>three\tfour</p>"))
	assert.Equal(t, 3, WordCount("  spaced   out words "))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"Work", "focus"}, NormalizeTags([]string{" Work ", "focus", "WORK", "", "Focus"}))
	assert.Empty(t, NormalizeTags(nil))
}
