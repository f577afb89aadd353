package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/daybook/pkg/preferences"
)

// Dark palette "Blue Moon" from https://gogh-co.github.io/Gogh/, light palette
// is its inverse on a paper background.
type palette struct {
	base      string
	text      string
	accent    string
	highlight string
	danger    string
	ok        string
	dim       string
	tag       string
}

var (
	darkPalette = palette{
		base:      "#353b52",
		text:      "#ffffff",
		accent:    "#89ddff",
		highlight: "#acfab4",
		danger:    "#e61f44",
		ok:        "#b4c4b4",
		dim:       "#d06178",
		tag:       "#b9a3eb",
	}
	lightPalette = palette{
		base:      "#e8e4d8",
		text:      "#1f2335",
		accent:    "#2e5fa3",
		highlight: "#3f8f4f",
		danger:    "#c0223c",
		ok:        "#3f6f3f",
		dim:       "#a04058",
		tag:       "#6a4fb0",
	}
)

const marqueeTickDuration = time.Second / 20

type styles struct {
	palette palette

	title          lipgloss.Style
	subtitle       lipgloss.Style
	selected       lipgloss.Style
	dangerSelected lipgloss.Style
	inactive       lipgloss.Style
	text           lipgloss.Style
	label          lipgloss.Style
	tags           lipgloss.Style
	errorText      lipgloss.Style
	panel          lipgloss.Style
	footer         lipgloss.Style
}

func stylesFor(theme preferences.Theme) styles {
	p := lightPalette
	if theme == preferences.ThemeDark {
		p = darkPalette
	}
	return styles{
		palette: p,
		title: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(p.accent)).
			Background(lipgloss.Color(p.base)).
			Padding(0, 2).Align(lipgloss.Center),
		subtitle: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(p.accent)),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.base)).
			Background(lipgloss.Color(p.highlight)),
		dangerSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.base)).
			Background(lipgloss.Color(p.danger)),
		inactive:  lipgloss.NewStyle(),
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.accent)),
		tags:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.tag)),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger)),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color(p.base)).
			Padding(0, 2),
		footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.base)),
	}
}

// statusColorize renders text green when ok and red otherwise.
func (s styles) statusColorize(text string, ok bool) string {
	if ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(s.palette.ok)).Render(text)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(s.palette.dim)).Render(text)
}

func linePointer(isPoint bool) string {
	if isPoint {
		return "> "
	}
	return "  "
}

// marqueeText scrolls text that does not fit into width.
func marqueeText(text string, width, offset int) string {
	r := []rune(text)
	if len(r) <= width || width <= 0 {
		return text
	}
	padded := []rune(text + "    " + text)
	start := offset % (len(r) + 4)
	return string(padded[start : start+width])
}

func truncate(text string, width int) string {
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	if width <= 2 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-2]) + ".."
}
