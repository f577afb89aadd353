package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/journal"
	"github.com/unowned-ai/daybook/pkg/preferences"
	"github.com/unowned-ai/daybook/pkg/session"
	"github.com/unowned-ai/daybook/pkg/users"
)

func setupModel(t *testing.T) (model, *session.Session) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenDBConnection(":memory:", false, "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.UpgradeDB(conn, ":memory:", db.TargetSchemaVersion))

	u, err := users.CreateUser(ctx, conn, "ann", "ann@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, users.SetPin(ctx, conn, u.ID, "1234"))
	u, err = users.GetUser(ctx, conn, u.ID)
	require.NoError(t, err)

	prefs := preferences.NewMemoryStore()
	sess := session.New(conn, prefs)
	require.NoError(t, sess.Authenticate(u))

	svc := journal.New(conn, sess.RequireUnlocked())
	require.NoError(t, sess.Unlock())
	_, err = svc.UpsertToday(ctx, journal.Fields{Content: "<p>Long walk by the river</p>", Category: "Personal", PrimaryMood: "Calm"}, []string{"walks"})
	require.NoError(t, err)
	sess.Lock()

	themes, err := preferences.LoadThemes(prefs)
	require.NoError(t, err)
	return initModel(ctx, sess, svc, themes), sess
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(model)
}

func press(t *testing.T, m model, key tea.KeyType) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(model), cmd
}

func TestLockedModelRejectsWrongPin(t *testing.T) {
	m, sess := setupModel(t)
	assert.Equal(t, session.LoggedIn, m.state)
	assert.Contains(t, m.View(), "Journal locked")

	m = typeText(t, m, "0000")
	m, _ = press(t, m, tea.KeyEnter)

	assert.Equal(t, "Incorrect PIN", m.pinError)
	assert.Equal(t, session.LoggedIn, sess.State())
	assert.Empty(t, m.pinInput.Value())
}

func TestUnlockLoadsTimeline(t *testing.T) {
	m, sess := setupModel(t)

	m = typeText(t, m, "1234")
	m, _ = press(t, m, tea.KeyEnter)
	require.Equal(t, session.Unlocked, sess.State())
	assert.Empty(t, m.pinError)

	next, cmd := m.Update(sessionChangedMsg{})
	m = next.(model)
	require.NotNil(t, cmd)
	assert.Equal(t, session.Unlocked, m.state)

	msg := cmd()
	require.IsType(t, timelineMsg{}, msg)
	next, cmd = m.Update(msg)
	m = next.(model)
	require.Len(t, m.summaries, 1)
	assert.Equal(t, "Calm", m.summaries[0].PrimaryMood)

	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	m = next.(model)
	require.NotNil(t, m.current)
	assert.Equal(t, []string{"walks"}, m.current.Tags)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	m = next.(model)
	assert.Contains(t, m.View(), "Long walk by the river")
}

func TestLockClearsJournalFromScreen(t *testing.T) {
	m, sess := setupModel(t)
	require.NoError(t, sess.Unlock())
	next, _ := m.Update(sessionChangedMsg{})
	m = next.(model)
	next, _ = m.Update(timelineMsg{{PrimaryMood: "Calm"}})
	m = next.(model)
	require.Len(t, m.summaries, 1)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	m = next.(model)
	assert.Equal(t, session.LoggedIn, sess.State())

	next, _ = m.Update(sessionChangedMsg{})
	m = next.(model)
	assert.Empty(t, m.summaries)
	assert.Nil(t, m.current)
	assert.Contains(t, m.View(), "Journal locked")
}

func TestThemeToggle(t *testing.T) {
	m, sess := setupModel(t)
	require.NoError(t, sess.Unlock())
	next, _ := m.Update(sessionChangedMsg{})
	m = next.(model)
	assert.Equal(t, lightPalette, m.styles.palette)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = next.(model)
	assert.Equal(t, preferences.ThemeDark, m.themes.Current())

	next, _ = m.Update(themeChangedMsg(preferences.ThemeDark))
	m = next.(model)
	assert.Equal(t, darkPalette, m.styles.palette)
}

func TestMarqueeAndTruncate(t *testing.T) {
	assert.Equal(t, "short", marqueeText("short", 10, 3))
	assert.Equal(t, "bcdef", marqueeText("abcdefgh", 5, 1))
	assert.Equal(t, "abc..", truncate("abcdefgh", 5))
	assert.Equal(t, "abc", truncate("abc", 5))
}
