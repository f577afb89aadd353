package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ensureDayEntryStatement = `
INSERT INTO entries (id, user_id, entry_date, content, category, primary_mood, created_at, updated_at)
VALUES (?, ?, ?, '', '', '', ?, ?)
ON CONFLICT (user_id, entry_date) DO NOTHING;`

	getEntryIDByDateStatement = `SELECT id FROM entries WHERE user_id = ? AND entry_date = ?;`
	getOwnedEntryIDStatement  = `SELECT id FROM entries WHERE id = ? AND user_id = ?;`

	updateEntryStatement = `
UPDATE entries
SET content = ?, category = ?, primary_mood = ?, secondary_mood1 = ?, secondary_mood2 = ?,
    is_public = ?, updated_at = ?
WHERE id = ? AND user_id = ?;`

	selectEntryColumns = `
SELECT e.id, e.user_id, e.entry_date, e.content, e.category, e.primary_mood,
       e.secondary_mood1, e.secondary_mood2, e.is_public, e.created_at, e.updated_at
FROM entries e`

	getEntryStatement       = selectEntryColumns + ` WHERE e.id = ? AND e.user_id = ?;`
	getEntryByDateStatement = selectEntryColumns + ` WHERE e.user_id = ? AND e.entry_date = ?;`

	deleteEntryStatement       = `DELETE FROM entries WHERE id = ? AND user_id = ?;`
	deleteEntryByDateStatement = `DELETE FROM entries WHERE user_id = ? AND entry_date = ?;`
)

// Upsert writes fields and tags to the caller's entry id, or to today's entry
// when id is nil, creating today's entry if it does not exist yet. The whole
// write, including the tag set, is applied atomically.
//
// It returns false without error when id does not name one of the caller's
// entries.
func (s *Service) Upsert(ctx context.Context, id *uuid.UUID, fields Fields, tags []string) (bool, error) {
	userID, err := s.callerID()
	if err != nil {
		return false, err
	}

	fields = fields.normalized()
	check := fields
	check.Content = strings.TrimSpace(check.Content)
	if err := s.validate.Struct(check); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer tx.Rollback()

	var entryID uuid.UUID
	if id != nil {
		err = tx.QueryRowContext(ctx, getOwnedEntryIDStatement, *id, userID).Scan(&entryID)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to look up entry %s: %w", *id, err)
		}
	} else {
		entryID, err = ensureDayEntry(ctx, tx, userID, s.today(), now)
		if err != nil {
			return false, err
		}
	}

	_, err = tx.ExecContext(ctx, updateEntryStatement,
		fields.Content, fields.Category, fields.PrimaryMood,
		nullable(fields.SecondaryMood1), nullable(fields.SecondaryMood2),
		fields.IsPublic, now.UnixNano(), entryID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update entry %s: %w", entryID, err)
	}

	if err := reconcileTags(ctx, tx, entryID, tags, now); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit entry %s: %w", entryID, err)
	}
	return true, nil
}

// UpsertToday writes to the caller's entry for today.
func (s *Service) UpsertToday(ctx context.Context, fields Fields, tags []string) (bool, error) {
	return s.Upsert(ctx, nil, fields, tags)
}

// ensureDayEntry returns the ID of the user's entry for date, inserting an
// empty one if there is none. A concurrent insert for the same day makes ours
// a no-op and we pick up the existing row instead.
func ensureDayEntry(ctx context.Context, tx *sql.Tx, userID uuid.UUID, date string, now time.Time) (uuid.UUID, error) {
	if _, err := tx.ExecContext(ctx, ensureDayEntryStatement, uuid.New(), userID, date, now.UnixNano(), now.UnixNano()); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create entry for %s: %w", date, err)
	}
	var id uuid.UUID
	if err := tx.QueryRowContext(ctx, getEntryIDByDateStatement, userID, date).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to read entry for %s: %w", date, err)
	}
	return id, nil
}

// Get returns the caller's entry with the given ID, or nil if there is none.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	userID, err := s.callerID()
	if err != nil {
		return nil, err
	}
	return s.getOne(ctx, getEntryStatement, id, userID)
}

// GetToday returns the caller's entry for today, or nil if there is none.
func (s *Service) GetToday(ctx context.Context) (*Entry, error) {
	userID, err := s.callerID()
	if err != nil {
		return nil, err
	}
	return s.getOne(ctx, getEntryByDateStatement, userID, s.today())
}

func (s *Service) getOne(ctx context.Context, query string, args ...any) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	tags, err := loadTags(ctx, s.db, []uuid.UUID{e.ID})
	if err != nil {
		return nil, err
	}
	e.Tags = tags[e.ID]
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return &e, nil
}

// Delete removes the caller's entry and its tag links. It reports whether
// anything was deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	userID, err := s.callerID()
	if err != nil {
		return false, err
	}
	return s.deleteWhere(ctx, deleteEntryStatement, id, userID)
}

// DeleteToday removes the caller's entry for today.
func (s *Service) DeleteToday(ctx context.Context) (bool, error) {
	userID, err := s.callerID()
	if err != nil {
		return false, err
	}
	return s.deleteWhere(ctx, deleteEntryByDateStatement, userID, s.today())
}

func (s *Service) deleteWhere(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var (
		e                    Entry
		date                 string
		mood1, mood2         sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&e.ID, &e.UserID, &date, &e.Content, &e.Category, &e.PrimaryMood,
		&mood1, &mood2, &e.IsPublic, &createdAt, &updatedAt)
	if err != nil {
		return Entry{}, err
	}
	if e.EntryDate, err = ParseDate(date); err != nil {
		return Entry{}, fmt.Errorf("failed to parse entry date %q: %w", date, err)
	}
	e.SecondaryMood1 = mood1.String
	e.SecondaryMood2 = mood2.String
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	e.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
