package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unowned-ai/daybook/pkg/journal"
)

const timestampLayout = "2006-01-02 15:04:05"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func printEntry(w io.Writer, e *journal.Entry) error {
	if jsonOut {
		return printJSON(w, e)
	}
	fmt.Fprintf(w, "ID:          %s\n", e.ID)
	fmt.Fprintf(w, "Date:        %s\n", e.EntryDate.Format("Monday, 02 Jan 2006"))
	fmt.Fprintf(w, "Category:    %s\n", e.Category)
	fmt.Fprintf(w, "Mood:        %s\n", moods(e.PrimaryMood, e.SecondaryMood1, e.SecondaryMood2))
	fmt.Fprintf(w, "Public:      %t\n", e.IsPublic)
	fmt.Fprintf(w, "Tags:        %s\n", strings.Join(e.Tags, ", "))
	fmt.Fprintf(w, "Created At:  %s\n", e.CreatedAt.Local().Format(timestampLayout))
	fmt.Fprintf(w, "Updated At:  %s\n", e.UpdatedAt.Local().Format(timestampLayout))
	fmt.Fprintf(w, "\n%s\n", journal.StripMarkup(e.Content))
	return nil
}

func moods(primary string, secondary ...string) string {
	out := primary
	for _, m := range secondary {
		if m != "" {
			out += ", " + m
		}
	}
	return out
}

func summaryTable(items []journal.Summary, withAuthor bool) string {
	headers := []string{"DATE", "CATEGORY", "MOOD", "WORDS", "TAGS", "PREVIEW", "ID"}
	if withAuthor {
		headers = append([]string{"AUTHOR"}, headers...)
	}

	rows := make([][]string, 0, len(items))
	for _, s := range items {
		row := []string{
			s.EntryDate.Format(journal.DateLayout),
			s.Category,
			s.PrimaryMood,
			fmt.Sprint(s.WordCount),
			strings.Join(s.Tags, ", "),
			truncate(s.ContentPreview, 40),
			s.ID.String(),
		}
		if withAuthor {
			row = append([]string{s.Author}, row...)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func printSummaries(w io.Writer, items []journal.Summary) error {
	if jsonOut {
		return printJSON(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No entries.")
		return nil
	}
	fmt.Fprintln(w, summaryTable(items, false))
	return nil
}

func printPage(w io.Writer, p journal.Page[journal.Summary], withAuthor bool) error {
	if jsonOut {
		return printJSON(w, p)
	}
	if p.TotalCount == 0 {
		fmt.Fprintln(w, "No entries.")
		return nil
	}
	if len(p.Items) > 0 {
		fmt.Fprintln(w, summaryTable(p.Items, withAuthor))
	}
	fmt.Fprintf(w, "Page %d of %d (%d entries)\n", p.Page, p.TotalPages(), p.TotalCount)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
