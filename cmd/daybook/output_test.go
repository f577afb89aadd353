package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/daybook/pkg/journal"
)

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags("  "))
	assert.Equal(t, []string{"work", " Travel"}, splitTags("work, Travel"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestMoods(t *testing.T) {
	assert.Equal(t, "Calm", moods("Calm", "", ""))
	assert.Equal(t, "Calm, Hopeful", moods("Calm", "", "Hopeful"))
}

func newWriteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "write"}
	cmd.Flags().String("content", "", "")
	cmd.Flags().String("category", "", "")
	cmd.Flags().String("mood", "", "")
	cmd.Flags().StringSlice("also-felt", nil, "")
	cmd.Flags().Bool("public", false, "")
	return cmd
}

func TestFieldsFromFlags(t *testing.T) {
	cmd := newWriteCmd()
	cmd.SetIn(strings.NewReader("<p>From stdin</p>"))
	require.NoError(t, cmd.Flags().Parse([]string{
		"--content", "-", "--category", "Work", "--mood", "Focused",
		"--also-felt", "Tired,Proud", "--public",
	}))

	f, err := fieldsFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, journal.Fields{
		Content:        "<p>From stdin</p>",
		Category:       "Work",
		PrimaryMood:    "Focused",
		SecondaryMood1: "Tired",
		SecondaryMood2: "Proud",
		IsPublic:       true,
	}, f)
}

func TestFieldsFromFlagsRejectsThirdMood(t *testing.T) {
	cmd := newWriteCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--also-felt", "a,b,c"}))
	_, err := fieldsFromFlags(cmd)
	assert.Error(t, err)
}

func TestDateFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "search"}
	cmd.Flags().String("from", "", "")
	cmd.Flags().String("to", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--from", "2024-03-01", "--to", "March"}))

	from, err := dateFlag(cmd, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *from)

	_, err = dateFlag(cmd, "to")
	assert.ErrorContains(t, err, "invalid --to")
}

func TestPrintPage(t *testing.T) {
	jsonOut = false
	t.Cleanup(func() { jsonOut = false })

	var buf bytes.Buffer
	require.NoError(t, printPage(&buf, journal.Page[journal.Summary]{Page: 1, PageSize: 10}, true))
	assert.Equal(t, "No entries.\n", buf.String())

	buf.Reset()
	p := journal.Page[journal.Summary]{
		Items: []journal.Summary{{
			ID:          uuid.New(),
			EntryDate:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			Category:    "Personal",
			PrimaryMood: "Calm",
			Author:      "Anonymous",
		}},
		TotalCount: 11,
		Page:       2,
		PageSize:   10,
	}
	require.NoError(t, printPage(&buf, p, true))
	assert.Contains(t, buf.String(), "Anonymous")
	assert.Contains(t, buf.String(), "2024-03-10")
	assert.Contains(t, buf.String(), "Page 2 of 2 (11 entries)")

	jsonOut = true
	buf.Reset()
	require.NoError(t, printPage(&buf, p, true))
	assert.Contains(t, buf.String(), `"total_count": 11`)
}
