package journal

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/export"
	"github.com/unowned-ai/daybook/pkg/users"
)

type staticIdentity struct{ id uuid.UUID }

func (i staticIdentity) UserID() (uuid.UUID, bool) { return i.id, i.id != uuid.Nil }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	db    *sql.DB
	clock *fakeClock
	ann   users.User
	bob   users.User
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.OpenDBConnection(":memory:", false, "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.UpgradeDB(conn, ":memory:", db.TargetSchemaVersion))

	ctx := context.Background()
	ann, err := users.CreateUser(ctx, conn, "ann", "ann@example.com", "hash")
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, conn, "bob", "bob@example.com", "hash")
	require.NoError(t, err)

	return &fixture{
		db:    conn,
		clock: &fakeClock{t: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)},
		ann:   ann,
		bob:   bob,
	}
}

func (f *fixture) serviceFor(u users.User) *Service {
	return New(f.db, staticIdentity{id: u.ID},
		WithClock(f.clock.Now),
		WithLocation(time.UTC),
		WithRenderer(export.TextRenderer{}))
}

func fields(content string) Fields {
	return Fields{Content: content, Category: "Personal", PrimaryMood: "Calm"}
}

func TestUpsertTodayRoundTrip(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	in := Fields{
		Content:        "<p>Morning run</p>",
		Category:       "Health",
		PrimaryMood:    "Happy",
		SecondaryMood1: "Proud",
		IsPublic:       true,
	}
	ok, err := svc.UpsertToday(ctx, in, []string{"running", "Outdoors"})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := svc.GetToday(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, in, got.Fields)
	assert.ElementsMatch(t, []string{"running", "Outdoors"}, got.Tags)
	assert.Equal(t, f.ann.ID, got.UserID)
	assert.Equal(t, "2024-03-10", got.EntryDate.Format(DateLayout))
	assert.True(t, got.CreatedAt.Equal(f.clock.Now()))

	byID, err := svc.Get(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}

func TestOneEntryPerDay(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.UpsertToday(ctx, fields("concurrent"), nil)
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	_, err := svc.UpsertToday(ctx, fields("again"), nil)
	require.NoError(t, err)

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE user_id = ?`, f.ann.ID).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := svc.GetToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, "again", got.Content)
}

func TestTagReuseIgnoresCase(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	ok, err := svc.UpsertToday(ctx, fields("day one"), []string{"Work", "focus"})
	require.NoError(t, err)
	require.True(t, ok)
	first, err := svc.GetToday(ctx)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	ok, err = svc.Upsert(ctx, &first.ID, fields("day one, edited"), []string{"work", "WORK", " "})
	require.NoError(t, err)
	require.True(t, ok)

	second, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Work"}, second.Tags)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM tags WHERE name_key = 'work'`).Scan(&n))
	assert.Equal(t, 1, n)

	// Another user's "WORK" reuses the same tag row.
	_, err = f.serviceFor(f.bob).UpsertToday(ctx, fields("bob"), []string{"WORK"})
	require.NoError(t, err)
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&n))
	assert.Equal(t, 2, n, "Work and focus only")
}

func TestOwnershipIsNotFound(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	ann := f.serviceFor(f.ann)
	bob := f.serviceFor(f.bob)

	_, err := ann.UpsertToday(ctx, fields("private"), []string{"secret"})
	require.NoError(t, err)
	entry, err := ann.GetToday(ctx)
	require.NoError(t, err)

	got, err := bob.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := bob.Upsert(ctx, &entry.ID, fields("hijack"), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	deleted, err := bob.Delete(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	missing := uuid.New()
	ok, err = ann.Upsert(ctx, &missing, fields("nowhere"), nil)
	require.NoError(t, err)
	assert.False(t, ok)

	still, err := ann.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", still.Content)
}

func TestUnauthorized(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	svc := New(f.db, staticIdentity{}, WithClock(f.clock.Now))

	_, err := svc.UpsertToday(ctx, fields("x"), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.GetToday(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Search(ctx, Filter{}, 1, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Tags(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Export(ctx, f.clock.Now(), f.clock.Now())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ListPublic(ctx, "", 1, 10)
	assert.NoError(t, err, "the public feed needs no user")

	assert.ErrorIs(t, func() error { _, err := New(f.db, nil).List(ctx); return err }(), ErrUnauthorized)
}

func TestUpsertValidation(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	for name, in := range map[string]Fields{
		"blank content":    {Content: "   ", Category: "c", PrimaryMood: "m"},
		"missing category": {Content: "c", PrimaryMood: "m"},
		"missing mood":     {Content: "c", Category: "c"},
	} {
		t.Run(name, func(t *testing.T) {
			ok, err := svc.UpsertToday(ctx, in, nil)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}

	got, err := svc.GetToday(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "failed writes leave nothing behind")
}

// seedDays writes one entry per day for n days, ending on the fixture's
// current day, and leaves the clock on the last day.
func seedDays(t *testing.T, f *fixture, svc *Service, n int, mk func(i int) (Fields, []string)) {
	t.Helper()
	ctx := context.Background()
	f.clock.Advance(-time.Duration(n-1) * 24 * time.Hour)
	for i := range n {
		in, tags := mk(i)
		ok, err := svc.UpsertToday(ctx, in, tags)
		require.NoError(t, err)
		require.True(t, ok)
		if i < n-1 {
			f.clock.Advance(24 * time.Hour)
		}
	}
}

func TestSearchPaging(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	seedDays(t, f, svc, 15, func(i int) (Fields, []string) {
		return fields("entry"), nil
	})

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 15)
	assert.Equal(t, "2024-03-10", all[0].EntryDate.Format(DateLayout), "newest first")
	assert.Equal(t, "2024-02-25", all[14].EntryDate.Format(DateLayout))

	unfiltered, err := svc.Search(ctx, Filter{Text: "  ", Mood: " "}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, len(all), unfiltered.TotalCount)
	assert.Len(t, unfiltered.Items, 10)
	assert.Equal(t, 2, unfiltered.TotalPages())

	second, err := svc.Search(ctx, Filter{}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, second.TotalCount)
	assert.Len(t, second.Items, 5)
	assert.Equal(t, all[10].ID, second.Items[0].ID)

	beyond, err := svc.Search(ctx, Filter{}, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 15, beyond.TotalCount)
	assert.Empty(t, beyond.Items)

	clamped, err := svc.Search(ctx, Filter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, DefaultPageSize, clamped.PageSize)
}

func TestSearchFilters(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	seedDays(t, f, svc, 4, func(i int) (Fields, []string) {
		switch i {
		case 0: // 2024-03-07
			return Fields{Content: "Quarterly <b>planning</b>", Category: "Work", PrimaryMood: "Focused"}, []string{"Meetings"}
		case 1: // 2024-03-08
			return Fields{Content: "Café with Sam", Category: "Social", PrimaryMood: "Happy", SecondaryMood2: "Relaxed"}, []string{"friends"}
		case 2: // 2024-03-09
			return Fields{Content: "Rainy day", Category: "Personal", PrimaryMood: "Sad"}, []string{"weather"}
		default: // 2024-03-10
			return Fields{Content: "Garden work", Category: "Hobby", PrimaryMood: "Relaxed"}, []string{"outdoors", "Gardening"}
		}
	})

	ids := func(p Page[Summary]) []string {
		out := []string{}
		for _, s := range p.Items {
			out = append(out, s.EntryDate.Format(DateLayout))
		}
		return out
	}
	search := func(filter Filter) []string {
		p, err := svc.Search(ctx, filter, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, len(p.Items), p.TotalCount)
		return ids(p)
	}

	assert.Equal(t, []string{"2024-03-10", "2024-03-07"}, search(Filter{Text: "WORK"}), "content or category")
	assert.Equal(t, []string{"2024-03-08"}, search(Filter{Text: "café"}), "unicode case folding")
	assert.Equal(t, []string{"2024-03-08"}, search(Filter{Text: "FRIEND"}), "tag names")
	assert.Equal(t, []string{"2024-03-10", "2024-03-08"}, search(Filter{Mood: "Relaxed"}), "primary or secondary mood")
	assert.Equal(t, []string{"2024-03-10"}, search(Filter{Tag: "garden"}), "tag substring")

	from := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2024-03-09", "2024-03-08"}, search(Filter{From: &from, To: &to}), "inclusive range")
	assert.Equal(t, []string{"2024-03-08"}, search(Filter{From: &from, To: &to, Mood: "Happy"}), "filters combine")
	assert.Empty(t, search(Filter{Text: "nothing like this"}))

	// Another user's matching entry never shows up.
	_, err := f.serviceFor(f.bob).UpsertToday(ctx, Fields{Content: "work work", Category: "Work", PrimaryMood: "Tired"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-10", "2024-03-07"}, search(Filter{Text: "work"}))
}

func TestListPublic(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	ann := f.serviceFor(f.ann)
	bob := f.serviceFor(f.bob)

	_, err := ann.UpsertToday(ctx, Fields{Content: "Shared thoughts", Category: "Ideas", PrimaryMood: "Curious", IsPublic: true}, []string{"hidden-tag"})
	require.NoError(t, err)
	_, err = bob.UpsertToday(ctx, Fields{Content: "Private diary", Category: "Ideas", PrimaryMood: "Calm"}, nil)
	require.NoError(t, err)

	page, err := bob.ListPublic(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "ann", page.Items[0].Author)
	assert.True(t, page.Items[0].IsPublic)

	page, err = bob.ListPublic(ctx, "ideas", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount, "private entries never appear")

	page, err = bob.ListPublic(ctx, "hidden", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount, "public search ignores tags")
}

func TestListPublicAnonymousAuthor(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	// An orphaned row, as left by a database written without foreign keys.
	_, err := f.db.Exec(`PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)
	_, err = f.db.Exec(`INSERT INTO entries (id, user_id, entry_date, content, category, primary_mood, is_public, created_at, updated_at)
VALUES (?, ?, '2024-01-01', 'ghost', 'Misc', 'Calm', TRUE, 0, 0)`, uuid.New(), uuid.New())
	require.NoError(t, err)
	_, err = f.db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	page, err := f.serviceFor(f.ann).ListPublic(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Anonymous", page.Items[0].Author)
}

func TestTags(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	seedDays(t, f, svc, 3, func(i int) (Fields, []string) {
		return fields("x"), [][]string{{"beta", "Alpha"}, {"alpha", "gamma"}, {}}[i]
	})
	_, err := f.serviceFor(f.bob).UpsertToday(ctx, fields("y"), []string{"zeta"})
	require.NoError(t, err)

	tags, err := svc.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, tags)
}

func TestDelete(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	_, err := svc.UpsertToday(ctx, fields("to delete"), []string{"tmp"})
	require.NoError(t, err)
	entry, err := svc.GetToday(ctx)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete is a no-op")

	var links int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM entry_tags`).Scan(&links))
	assert.Zero(t, links)

	_, err = svc.UpsertToday(ctx, fields("again"), nil)
	require.NoError(t, err)
	deleted, err = svc.DeleteToday(ctx)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = svc.DeleteToday(ctx)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestExport(t *testing.T) {
	f := setupFixture(t)
	svc := f.serviceFor(f.ann)
	ctx := context.Background()

	seedDays(t, f, svc, 3, func(i int) (Fields, []string) {
		return Fields{Content: []string{"<p>First</p>", "<p>Second &amp; more</p>", "<p>Third</p>"}[i], Category: "Log", PrimaryMood: "Calm"}, nil
	})

	from := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)

	report, err := svc.ExportReport(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, "Journal Entries (08 Mar 2024 – 09 Mar 2024)", report.Title())
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "First", report.Entries[0].Content, "oldest first")
	assert.Equal(t, "Second & more", report.Entries[1].Content)

	out, err := svc.Export(ctx, from, to)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Friday, 08 Mar 2024")
	assert.Contains(t, string(out), "Generated on 10 Mar 2024 09:00")
	assert.NotContains(t, string(out), "Third")
}
