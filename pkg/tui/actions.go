package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/journal"
	"github.com/unowned-ai/daybook/pkg/preferences"
)

type timelineMsg []journal.Summary

type entryMsg struct {
	entry *journal.Entry
}

type deletedMsg struct {
	id uuid.UUID
}

// sessionChangedMsg is sent whenever the session changes state.
type sessionChangedMsg struct{}

type themeChangedMsg preferences.Theme

type tickMsg struct{}

// loadTimeline lists the user's entries, newest first.
func loadTimeline(ctx context.Context, svc *journal.Service) tea.Cmd {
	return func() tea.Msg {
		items, err := svc.List(ctx)
		if err != nil {
			return err
		}
		return timelineMsg(items)
	}
}

func loadEntry(ctx context.Context, svc *journal.Service, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		e, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		return entryMsg{entry: e}
	}
}

func deleteEntry(ctx context.Context, svc *journal.Service, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		if _, err := svc.Delete(ctx, id); err != nil {
			return err
		}
		return deletedMsg{id: id}
	}
}

func tick() tea.Cmd {
	return tea.Tick(marqueeTickDuration, func(time.Time) tea.Msg { return tickMsg{} })
}
