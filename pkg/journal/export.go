package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/unowned-ai/daybook/pkg/export"
)

const exportRangeStatement = `
SELECT entry_date, primary_mood, category, content
FROM entries
WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
ORDER BY entry_date ASC;`

// Export renders the caller's entries dated from..to (inclusive, oldest
// first) with the service's renderer. A reversed range is swapped.
func (s *Service) Export(ctx context.Context, from, to time.Time) ([]byte, error) {
	report, err := s.ExportReport(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out, err := s.renderer.Render(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}
	return out, nil
}

// ExportReport collects the report Export would render.
func (s *Service) ExportReport(ctx context.Context, from, to time.Time) (export.Report, error) {
	userID, err := s.callerID()
	if err != nil {
		return export.Report{}, err
	}
	if from.After(to) {
		from, to = to, from
	}

	report := export.Report{
		From:        from,
		To:          to,
		GeneratedAt: s.now().In(s.loc),
		Entries:     []export.Item{},
	}

	rows, err := s.db.QueryContext(ctx, exportRangeStatement, userID, from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return report, fmt.Errorf("failed to query export range: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    export.Item
			date    string
			content string
		)
		if err := rows.Scan(&date, &item.Mood, &item.Category, &content); err != nil {
			return report, fmt.Errorf("failed to scan export row: %w", err)
		}
		if item.Date, err = ParseDate(date); err != nil {
			return report, fmt.Errorf("failed to parse entry date %q: %w", date, err)
		}
		item.Content = StripMarkup(content)
		report.Entries = append(report.Entries, item)
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("failed to iterate export rows: %w", err)
	}
	return report, nil
}
