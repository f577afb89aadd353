package journal

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// previewRunes is the length of a content preview before the ellipsis.
const previewRunes = 100

// StripMarkup returns the text of an HTML fragment. Block-level elements and
// <br> become line breaks; script and style bodies are dropped.
func StripMarkup(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var (
		b    strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				skip++
			case a == atom.Br || isBlock(a):
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				if skip > 0 {
					skip--
				}
			case isBlock(a):
				b.WriteByte('\n')
			}
		}
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Tr, atom.Hr:
		return true
	}
	return false
}

// Preview is the single-line plain-text preview of content: whitespace runs
// collapse to one space, and text longer than 100 characters is cut and
// followed by "...".
func Preview(content string) string {
	plain := strings.Join(strings.Fields(StripMarkup(content)), " ")
	if utf8.RuneCountInString(plain) <= previewRunes {
		return plain
	}
	return string([]rune(plain)[:previewRunes]) + "..."
}

// WordCount counts whitespace-separated words in the plain text of content.
func WordCount(content string) int {
	return len(strings.Fields(StripMarkup(content)))
}
