package journal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is how entry dates are stored and accepted.
const DateLayout = "2006-01-02"

// Fields are the user-editable parts of an entry. Empty secondary moods mean
// "not set".
type Fields struct {
	Content        string `json:"content" validate:"required"`
	Category       string `json:"category" validate:"required,max=64"`
	PrimaryMood    string `json:"primary_mood" validate:"required,max=32"`
	SecondaryMood1 string `json:"secondary_mood1,omitempty" validate:"omitempty,max=32"`
	SecondaryMood2 string `json:"secondary_mood2,omitempty" validate:"omitempty,max=32"`
	IsPublic       bool   `json:"is_public"`
}

func (f Fields) normalized() Fields {
	f.Category = strings.TrimSpace(f.Category)
	f.PrimaryMood = strings.TrimSpace(f.PrimaryMood)
	f.SecondaryMood1 = strings.TrimSpace(f.SecondaryMood1)
	f.SecondaryMood2 = strings.TrimSpace(f.SecondaryMood2)
	return f
}

// Entry is the full view of one journal entry, including its tag names.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	EntryDate time.Time `json:"entry_date"`
	Fields
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the list projection of an entry.
type Summary struct {
	ID             uuid.UUID `json:"id"`
	EntryDate      time.Time `json:"entry_date"`
	ContentPreview string    `json:"content_preview"`
	Category       string    `json:"category"`
	PrimaryMood    string    `json:"primary_mood"`
	WordCount      int       `json:"word_count"`
	IsPublic       bool      `json:"is_public"`
	Author         string    `json:"author"`
	Tags           []string  `json:"tags"`
}

// Filter narrows Search. Zero values are ignored; From and To are inclusive
// calendar dates.
type Filter struct {
	Text string     `json:"text,omitempty"`
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
	Mood string     `json:"mood,omitempty"`
	Tag  string     `json:"tag,omitempty"`
}

// Page is one slice of a paginated result. Page numbers start at 1.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

// TotalPages is the number of pages needed for TotalCount items.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
