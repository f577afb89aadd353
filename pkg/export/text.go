package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// TextRenderer writes the report as plain UTF-8 text.
type TextRenderer struct{}

func (TextRenderer) Extension() string { return "txt" }

func (TextRenderer) Render(ctx context.Context, r Report) ([]byte, error) {
	var buf bytes.Buffer

	title := r.Title()
	fmt.Fprintln(&buf, title)
	fmt.Fprintln(&buf, strings.Repeat("=", len([]rune(title))))

	if len(r.Entries) == 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "No entries in this range.")
	}

	for _, item := range r.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, item.Date.Format(entryDateLayout))
		fmt.Fprintf(&buf, "Mood: %s\n", item.Mood)
		fmt.Fprintf(&buf, "Category: %s\n", item.Category)
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, strings.TrimSpace(item.Content))
		fmt.Fprintln(&buf, strings.Repeat("-", 40))
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, r.Footer())
	return buf.Bytes(), nil
}
