package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/db"
)

// anonymousAuthor is shown for public entries whose owner cannot be resolved.
const anonymousAuthor = "Anonymous"

const selectSummaryColumns = `
SELECT e.id, e.entry_date, e.content, e.category, e.primary_mood, e.is_public, COALESCE(u.username, '')
FROM entries e LEFT JOIN users u ON u.id = e.user_id`

const summaryOrder = ` ORDER BY e.entry_date DESC, e.created_at DESC, e.id`

// where accumulates AND-ed conditions and their arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// addText matches term case-insensitively against content and category, and
// against tag names when withTags is set.
func (w *where) addText(term string, withTags bool) {
	key := db.Fold(term)
	if withTags {
		w.add(`(instr(casefold(e.content), ?) > 0 OR instr(casefold(e.category), ?) > 0 OR EXISTS (
    SELECT 1 FROM entry_tags et JOIN tags t ON t.id = et.tag_id
    WHERE et.entry_id = e.id AND instr(t.name_key, ?) > 0))`, key, key, key)
		return
	}
	w.add(`(instr(casefold(e.content), ?) > 0 OR instr(casefold(e.category), ?) > 0)`, key, key)
}

// List returns all of the caller's entries, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	userID, err := s.callerID()
	if err != nil {
		return nil, err
	}
	w := &where{}
	w.add(`e.user_id = ?`, userID)
	return s.querySummaries(ctx, selectSummaryColumns+w.String()+summaryOrder, w.args...)
}

// Search returns one page of the caller's entries matching every set filter,
// newest first, along with the total number of matches.
func (s *Service) Search(ctx context.Context, f Filter, page, pageSize int) (Page[Summary], error) {
	userID, err := s.callerID()
	if err != nil {
		return Page[Summary]{}, err
	}

	w := &where{}
	w.add(`e.user_id = ?`, userID)
	if text := strings.TrimSpace(f.Text); text != "" {
		w.addText(text, true)
	}
	if f.From != nil {
		w.add(`e.entry_date >= ?`, f.From.Format(DateLayout))
	}
	if f.To != nil {
		w.add(`e.entry_date <= ?`, f.To.Format(DateLayout))
	}
	if mood := strings.TrimSpace(f.Mood); mood != "" {
		w.add(`(e.primary_mood = ? OR e.secondary_mood1 = ? OR e.secondary_mood2 = ?)`, mood, mood, mood)
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		w.add(`EXISTS (
    SELECT 1 FROM entry_tags et JOIN tags t ON t.id = et.tag_id
    WHERE et.entry_id = e.id AND instr(t.name_key, ?) > 0)`, db.Fold(tag))
	}

	return s.queryPage(ctx, w, page, pageSize)
}

// ListPublic returns one page of public entries from every user, newest
// first. text, when set, matches content and category. No signed-in user is
// needed.
func (s *Service) ListPublic(ctx context.Context, text string, page, pageSize int) (Page[Summary], error) {
	w := &where{}
	w.add(`e.is_public = TRUE`)
	if text = strings.TrimSpace(text); text != "" {
		w.addText(text, false)
	}

	p, err := s.queryPage(ctx, w, page, pageSize)
	if err != nil {
		return p, err
	}
	for i := range p.Items {
		if p.Items[i].Author == "" {
			p.Items[i].Author = anonymousAuthor
		}
	}
	return p, nil
}

// Tags returns the distinct tag names used on the caller's entries in
// case-insensitive alphabetical order.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	userID, err := s.callerID()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, listUserTagsStatement, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return names, nil
}

func (s *Service) queryPage(ctx context.Context, w *where, page, pageSize int) (Page[Summary], error) {
	page, pageSize = normalizePaging(page, pageSize)
	result := Page[Summary]{Items: []Summary{}, Page: page, PageSize: pageSize}

	countQuery := `SELECT COUNT(*) FROM entries e` + w.String()
	if err := s.db.QueryRowContext(ctx, countQuery, w.args...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("failed to count entries: %w", err)
	}
	if result.TotalCount == 0 {
		return result, nil
	}

	args := append(append([]any{}, w.args...), pageSize, (page-1)*pageSize)
	items, err := s.querySummaries(ctx, selectSummaryColumns+w.String()+summaryOrder+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

func (s *Service) querySummaries(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			date    string
			content string
		)
		if err := rows.Scan(&sum.ID, &date, &content, &sum.Category, &sum.PrimaryMood, &sum.IsPublic, &sum.Author); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if sum.EntryDate, err = ParseDate(date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse entry date %q: %w", date, err)
		}
		sum.ContentPreview = Preview(content)
		sum.WordCount = WordCount(content)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	// Release the only connection before loading tags.
	rows.Close()

	ids := make([]uuid.UUID, len(summaries))
	for i := range summaries {
		ids[i] = summaries[i].ID
	}
	tags, err := loadTags(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Tags = tags[summaries[i].ID]
		if summaries[i].Tags == nil {
			summaries[i].Tags = []string{}
		}
	}
	return summaries, nil
}
