package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/db"
)

const (
	getTagByKeyStatement = `SELECT id FROM tags WHERE name_key = ?;`
	createTagStatement   = `INSERT INTO tags (id, name, name_key, created_at) VALUES (?, ?, ?, ?);`

	clearEntryTagsStatement = `DELETE FROM entry_tags WHERE entry_id = ?;`
	linkEntryTagStatement   = `INSERT INTO entry_tags (entry_id, tag_id) VALUES (?, ?);`

	listUserTagsStatement = `
SELECT t.name FROM tags t
WHERE EXISTS (
    SELECT 1 FROM entry_tags et JOIN entries e ON e.id = et.entry_id
    WHERE et.tag_id = t.id AND e.user_id = ?
)
ORDER BY t.name_key, t.name;`
)

// tagLoadChunk bounds the number of bound parameters per tag query.
const tagLoadChunk = 500

// NormalizeTags trims names, drops empty ones and keeps the first spelling of
// names that differ only by case.
func NormalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := db.Fold(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// reconcileTags replaces the tag set of entryID with names. Existing tags are
// reused by case-insensitive name.
func reconcileTags(ctx context.Context, tx *sql.Tx, entryID uuid.UUID, names []string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, clearEntryTagsStatement, entryID); err != nil {
		return fmt.Errorf("failed to clear tags for entry %s: %w", entryID, err)
	}
	for _, name := range NormalizeTags(names) {
		tagID, err := ensureTag(ctx, tx, name, now)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, linkEntryTagStatement, entryID, tagID); err != nil {
			return fmt.Errorf("failed to tag entry %s with %q: %w", entryID, name, err)
		}
	}
	return nil
}

// ensureTag returns the ID of the tag whose folded name matches name,
// creating it if needed. Losing a creation race to another writer is resolved
// by reading the winner's row.
func ensureTag(ctx context.Context, tx *sql.Tx, name string, now time.Time) (uuid.UUID, error) {
	key := db.Fold(name)

	id, err := lookupTag(ctx, tx, key)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}

	id = uuid.New()
	_, err = tx.ExecContext(ctx, createTagStatement, id, name, key, now.UnixNano())
	if err == nil {
		return id, nil
	}
	if !db.IsUniqueViolation(err) {
		return uuid.Nil, fmt.Errorf("failed to create tag %q: %w", name, err)
	}

	id, err = lookupTag(ctx, tx, key)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to re-read tag %q after conflict: %w", name, err)
	}
	return id, nil
}

func lookupTag(ctx context.Context, tx *sql.Tx, key string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, getTagByKeyStatement, key).Scan(&id)
	return id, err
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadTags returns the tag names of each entry, ordered case-insensitively.
func loadTags(ctx context.Context, q queryer, entryIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(entryIDs))
	for start := 0; start < len(entryIDs); start += tagLoadChunk {
		end := min(start+tagLoadChunk, len(entryIDs))
		chunk := entryIDs[start:end]

		placeholders := strings.Repeat("?,", len(chunk)-1) + "?"
		query := fmt.Sprintf(`
SELECT et.entry_id, t.name
FROM entry_tags et JOIN tags t ON t.id = et.tag_id
WHERE et.entry_id IN (%s)
ORDER BY t.name_key, t.name;`, placeholders)

		args := make([]any, 0, len(chunk))
		for _, id := range chunk {
			args = append(args, id)
		}

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to load tags: %w", err)
		}
		for rows.Next() {
			var (
				entryID uuid.UUID
				name    string
			)
			if err := rows.Scan(&entryID, &name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan tag row: %w", err)
			}
			out[entryID] = append(out[entryID], name)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate tag rows: %w", err)
		}
		rows.Close()
	}
	return out, nil
}
