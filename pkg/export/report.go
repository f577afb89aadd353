// Package export turns a range of journal entries into a document.
package export

import (
	"context"
	"fmt"
	"time"
)

const (
	headingDateLayout = "02 Jan 2006"
	entryDateLayout   = "Monday, 02 Jan 2006"
	footerLayout      = "02 Jan 2006 15:04"
)

// Item is one entry in a report. Content is plain text.
type Item struct {
	Date     time.Time
	Mood     string
	Category string
	Content  string
}

// Report is everything a renderer needs to produce a document.
type Report struct {
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	Entries     []Item
}

// Title is the document heading, e.g. "Journal Entries (01 Mar 2024 – 31 Mar 2024)".
func (r Report) Title() string {
	return fmt.Sprintf("Journal Entries (%s – %s)", r.From.Format(headingDateLayout), r.To.Format(headingDateLayout))
}

// Footer is the line printed at the bottom of every page.
func (r Report) Footer() string {
	return "Generated on " + r.GeneratedAt.Format(footerLayout)
}

// Renderer produces a document from a report.
type Renderer interface {
	Render(ctx context.Context, r Report) ([]byte, error)
	// Extension is the file extension of the output, without a dot.
	Extension() string
}

// ForFormat returns the renderer for "pdf" or "text".
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "pdf":
		return NewPDFRenderer(), nil
	case "text", "txt":
		return TextRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want pdf or text)", format)
	}
}
