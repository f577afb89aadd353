package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/daybook/pkg/journal"
	"github.com/unowned-ai/daybook/pkg/preferences"
	"github.com/unowned-ai/daybook/pkg/session"
)

const (
	focusTimeline = iota
	focusEntry
)

type model struct {
	ctx     context.Context
	session *session.Session
	journal *journal.Service
	themes  *preferences.Themes
	styles  styles

	state     session.State
	username  string
	summaries []journal.Summary
	current   *journal.Entry

	cursor      int
	columnFocus int // 0 = timeline, 1 = entry details
	width       int
	height      int
	err         error
	quitting    bool

	pinInput textinput.Model
	pinError string

	deleting         bool
	deleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	marqueeOffset int
	marqueeTimer  int
}

func initModel(ctx context.Context, sess *session.Session, svc *journal.Service, themes *preferences.Themes) model {
	pin := textinput.New()
	pin.Placeholder = "PIN"
	pin.EchoMode = textinput.EchoPassword
	pin.EchoCharacter = '•'
	pin.CharLimit = 12
	pin.Focus()

	m := model{
		ctx:      ctx,
		session:  sess,
		journal:  svc,
		themes:   themes,
		styles:   stylesFor(themes.Current()),
		pinInput: pin,
	}
	m.syncSession()
	return m
}

func (m *model) syncSession() {
	m.state = m.session.State()
	m.username = ""
	if u, ok := m.session.CurrentUser(); ok {
		m.username = u.Username
	}
}

func (m model) Init() tea.Cmd {
	if m.state == session.Unlocked {
		return tea.Batch(textinput.Blink, loadTimeline(m.ctx, m.journal), tick())
	}
	return tea.Batch(textinput.Blink, tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case sessionChangedMsg:
		prev := m.state
		m.syncSession()
		switch {
		case m.state == session.Unlocked && prev != session.Unlocked:
			return m, loadTimeline(m.ctx, m.journal)
		case m.state != session.Unlocked:
			// Nothing from the journal stays on screen once locked.
			m.summaries = nil
			m.current = nil
			m.cursor = 0
			m.columnFocus = focusTimeline
			m.deleting = false
			m.pinInput.Reset()
			m.pinInput.Focus()
		}
		if m.state == session.LoggedOut {
			m.quitting = true
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)
		}
		return m, nil

	case themeChangedMsg:
		m.styles = stylesFor(preferences.Theme(msg))
		return m, nil

	case timelineMsg:
		m.summaries = msg
		if m.cursor >= len(m.summaries) {
			m.cursor = max(len(m.summaries)-1, 0)
		}
		if len(m.summaries) > 0 {
			return m, loadEntry(m.ctx, m.journal, m.summaries[m.cursor].ID)
		}
		m.current = nil
		return m, nil

	case entryMsg:
		m.current = msg.entry
		return m, nil

	case deletedMsg:
		m.deleting = false
		m.current = nil
		m.columnFocus = focusTimeline
		return m, loadTimeline(m.ctx, m.journal)

	case tickMsg:
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)
		}
		if m.state != session.Unlocked {
			return m.updateLocked(msg)
		}
		if m.deleting {
			return m.updateDeleting(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m model) updateLocked(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)
	case tea.KeyEnter:
		ok, err := m.session.UnlockWithPin(m.pinInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.pinInput.Reset()
		if !ok {
			m.pinError = "Incorrect PIN"
			return m, nil
		}
		m.pinError = ""
		// The session observer delivers sessionChangedMsg.
		return m, nil
	}

	var cmd tea.Cmd
	m.pinInput, cmd = m.pinInput.Update(msg)
	return m, cmd
}

func (m model) updateDeleting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.deleteConfirmIdx = 0
	case "down", "j":
		m.deleteConfirmIdx = 1
	case "enter":
		if m.deleteConfirmIdx == 0 && m.current != nil {
			return m, deleteEntry(m.ctx, m.journal, m.current.ID)
		}
		m.deleting = false
	case "esc":
		m.deleting = false
	}
	return m, nil
}

func (m model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.columnFocus == focusTimeline && m.cursor > 0 {
			m.cursor--
			return m, loadEntry(m.ctx, m.journal, m.summaries[m.cursor].ID)
		}

	case "down", "j":
		if m.columnFocus == focusTimeline && m.cursor < len(m.summaries)-1 {
			m.cursor++
			return m, loadEntry(m.ctx, m.journal, m.summaries[m.cursor].ID)
		}

	case "right", "l", "enter":
		if m.current != nil {
			m.columnFocus = focusEntry
		}

	case "left", "h", "esc":
		m.columnFocus = focusTimeline

	case "r":
		return m, loadTimeline(m.ctx, m.journal)

	case "d":
		if m.current != nil {
			m.deleteConfirmIdx = 1
			m.deleting = true
		}

	case "t":
		if err := m.themes.Toggle(); err != nil {
			m.err = err
		}

	case "L":
		m.session.Lock()
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "Closing the daybook. See you tomorrow.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleBar := m.styles.title.Width(m.width).Render("Daybook")
	var body, footerText string
	if m.state == session.Unlocked {
		body = m.timelineView()
		footerText = "↑/↓ navigate • → read • d delete • r reload • t theme • L lock • q quit"
		if m.deleting {
			footerText = "enter to confirm • esc to cancel • up/down to switch"
		}
	} else {
		body = m.lockView()
		footerText = "enter to unlock • esc to quit"
	}
	footerBar := m.styles.footer.Width(m.width).Render("\n" + footerText)
	return titleBar + "\n\n" + body + footerBar
}

func (m model) lockView() string {
	var b strings.Builder
	b.WriteString(m.styles.subtitle.Render("Journal locked"))
	b.WriteString("\n\n")
	if m.username != "" {
		b.WriteString(fmt.Sprintf("Signed in as %s.\n\n", m.styles.label.Render(m.username)))
	}
	b.WriteString("Enter your PIN: " + m.pinInput.View() + "\n")
	if m.pinError != "" {
		b.WriteString("\n" + m.styles.errorText.Render(m.pinError) + "\n")
	}
	return lipgloss.NewStyle().Padding(0, 2).Width(m.width).Height(max(m.height-4, 0)).Render(b.String())
}

func (m model) timelineView() string {
	const bordersAndPadding = 5
	leftWidth := m.width * 35 / 100
	if m.columnFocus == focusEntry {
		leftWidth = m.width * 25 / 100
	}
	rightWidth := m.width - leftWidth
	panelHeight := max(m.height-4, 0)

	var left strings.Builder
	left.WriteString(m.styles.subtitle.Render("  Timeline"))
	left.WriteString("\n\n")
	if len(m.summaries) == 0 {
		left.WriteString("No entries yet. Write one with\n`daybook entries write`.\n")
	}
	avail := leftWidth - bordersAndPadding - 2
	for i, s := range m.summaries {
		line := s.EntryDate.Format("Mon 02 Jan 2006") + "  " + s.PrimaryMood
		style := m.styles.inactive
		if i == m.cursor {
			style = m.styles.selected
			line = marqueeText(line, avail, m.marqueeOffset)
		} else {
			line = truncate(line, avail)
		}
		left.WriteString(linePointer(i == m.cursor && m.columnFocus == focusTimeline) + style.Render(line) + "\n")
	}
	left.WriteString("\n")
	left.WriteString(fmt.Sprintf("User: %s\nTheme: %s\n",
		m.styles.statusColorize(m.username, m.username != ""),
		m.styles.label.Render(string(m.themes.Current()))))

	var right strings.Builder
	right.WriteString(m.styles.subtitle.Render(m.entryTitle()))
	right.WriteString("\n\n")
	switch {
	case m.deleting && m.current != nil:
		right.WriteString("Delete the entry for " + m.styles.errorText.Render(m.current.EntryDate.Format(journal.DateLayout)) + "?\n\n")
		yesOpt, noOpt := "Yes", "No"
		if m.deleteConfirmIdx == 0 {
			yesOpt = m.styles.dangerSelected.Render(" >" + yesOpt)
			noOpt = m.styles.inactive.Render("  " + noOpt)
		} else {
			yesOpt = m.styles.inactive.Render("  " + yesOpt)
			noOpt = m.styles.selected.Render(" >" + noOpt)
		}
		right.WriteString(yesOpt + "\n" + noOpt + "\n")
	case m.current != nil:
		e := m.current
		right.WriteString(m.styles.label.Render("Category: ") + m.styles.text.Render(e.Category) + "\n")
		right.WriteString(m.styles.label.Render("Mood: ") + m.styles.text.Render(moods(e)) + "\n")
		tags := "-"
		if len(e.Tags) > 0 {
			tags = strings.Join(e.Tags, " ")
		}
		right.WriteString(m.styles.label.Render("Tags: ") + m.styles.tags.Render(tags) + "\n")
		if e.IsPublic {
			right.WriteString(m.styles.label.Render("Shared on the public feed") + "\n")
		}
		right.WriteString("\n")
		right.WriteString(m.styles.text.Width(max(rightWidth-bordersAndPadding, 10)).Render(journal.StripMarkup(e.Content)))
	default:
		right.WriteString("Select an entry to read it.")
	}

	leftPanel := m.styles.panel.Width(leftWidth).Height(panelHeight).Render(left.String())
	rightPanel := lipgloss.NewStyle().Padding(0, 2).Width(rightWidth).Height(panelHeight).Render(right.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func (m model) entryTitle() string {
	if m.deleting {
		return "Delete Entry"
	}
	if m.current == nil {
		return "Entry"
	}
	return m.current.EntryDate.Format("Monday, 02 January 2006")
}

func moods(e *journal.Entry) string {
	out := e.PrimaryMood
	for _, s := range []string{e.SecondaryMood1, e.SecondaryMood2} {
		if s != "" {
			out += ", " + s
		}
	}
	return out
}

// ShowTUI runs the terminal UI until the user quits. Session and theme changes
// made anywhere in the process are forwarded to the UI. Observers fire from
// inside Update too, so they must not block on Send.
func ShowTUI(ctx context.Context, sess *session.Session, svc *journal.Service, themes *preferences.Themes) error {
	p := tea.NewProgram(initModel(ctx, sess, svc, themes), tea.WithAltScreen(), tea.WithContext(ctx))

	unsubSession := sess.Subscribe(func() { go p.Send(sessionChangedMsg{}) })
	defer unsubSession()
	unsubTheme := themes.Subscribe(func(t preferences.Theme) { go p.Send(themeChangedMsg(t)) })
	defer unsubTheme()

	_, err := p.Run()
	return err
}
