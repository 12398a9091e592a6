package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leo/txr/internal/mux"
)

// Messages
type sessionsLoadedMsg struct {
	sessions []mux.Session
	err      error
}

type previewLoadedMsg struct {
	key     string
	content string
}

type sessionKilledMsg struct{ err error }
type previewTickMsg time.Time
type sessionsTickMsg time.Time

func previewTickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return previewTickMsg(t)
	})
}

func sessionsTickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return sessionsTickMsg(t)
	})
}

// Model is the top-level Bubble Tea model of the session picker.
type Model struct {
	muxes              map[string]mux.Multiplexer
	groups             []Group
	items              []TreeItem
	cursor             int
	preview            viewport.Model
	previewFor         string
	lastPreviewContent string // raw content for dedup
	width              int
	height             int
	err                error
	loaded             bool
	pendingD           bool
	chosen             *mux.Session
	now                func() time.Time
}

// NewModel creates a picker over the sessions of the given multiplexers.
func NewModel(muxes ...mux.Multiplexer) Model {
	m := Model{
		muxes:   make(map[string]mux.Multiplexer, len(muxes)),
		preview: viewport.New(40, 20),
		now:     time.Now,
	}
	for _, x := range muxes {
		m.muxes[x.Name()] = x
	}
	return m
}

// Chosen returns the session picked with enter, if any.
func (m Model) Chosen() (mux.Session, bool) {
	if m.chosen == nil {
		return mux.Session{}, false
	}
	return *m.chosen, true
}

// Commands
func (m Model) loadSessions() tea.Msg {
	ctx := context.Background()
	var (
		all  []mux.Session
		errs []error
	)
	for _, x := range m.muxes {
		ss, err := x.ListSessions(ctx)
		if errors.Is(err, exec.ErrNotFound) {
			// Not installed, so it has no sessions.
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, ss...)
	}
	// One working multiplexer is enough to show something.
	if len(all) > 0 {
		return sessionsLoadedMsg{sessions: all}
	}
	return sessionsLoadedMsg{sessions: all, err: errors.Join(errs...)}
}

func (m Model) loadPreview(s mux.Session) tea.Cmd {
	x, ok := m.muxes[s.Multiplexer]
	if !ok {
		return nil
	}
	key := previewKey(s)
	return func() tea.Msg {
		content, err := x.Capture(context.Background(), s.Name, 50)
		switch {
		case errors.Is(err, errors.ErrUnsupported):
			content = "no preview for " + s.Multiplexer + " sessions"
		case err != nil:
			content = "error: " + err.Error()
		}
		return previewLoadedMsg{key: key, content: content}
	}
}

func (m Model) Init() tea.Cmd {
	// Ticks are scheduled by the completion handlers, so the next load only
	// fires after the previous one finished.
	return m.loadSessions
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.preview.Width = m.previewWidth()
		m.preview.Height = m.height
		return m, nil

	case sessionsLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, sessionsTickCmd() // keep ticking even on error
		}
		m.err = nil
		first := m.groups == nil
		m.groups = GroupByMultiplexer(msg.sessions)
		m.items = FlattenTree(m.groups)
		if first {
			m.cursor = FirstSession(m.items)
		} else {
			m.cursor = NearestSession(m.items, m.cursor)
		}
		cmds := []tea.Cmd{sessionsTickCmd()}
		if cmd := m.previewCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case previewLoadedMsg:
		m.previewFor = msg.key
		content := strings.TrimRight(msg.content, "\n")
		if content != m.lastPreviewContent {
			m.lastPreviewContent = content
			m.preview.SetContent(content)
			m.preview.GotoBottom()
		}
		return m, previewTickCmd()

	case previewTickMsg:
		m.previewFor = "" // force refresh
		if cmd := m.previewCmd(); cmd != nil {
			return m, cmd
		}
		return m, previewTickCmd()

	case sessionsTickMsg:
		return m, m.loadSessions

	case sessionKilledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.loadSessions

	case tea.KeyMsg:
		key := msg.String()

		// dd kills the selected session
		if key == "d" {
			if m.pendingD {
				m.pendingD = false
				return m, m.killCurrent()
			}
			m.pendingD = true
			return m, nil
		}
		m.pendingD = false

		switch key {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "j", "down":
			next := NextSession(m.items, m.cursor)
			if next != m.cursor {
				m.cursor = next
				return m, m.previewCmd()
			}

		case "k", "up":
			prev := PrevSession(m.items, m.cursor)
			if prev != m.cursor {
				m.cursor = prev
				return m, m.previewCmd()
			}

		case "enter":
			if s, ok := m.current(); ok {
				m.chosen = &s
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 || !m.loaded {
		return ""
	}

	if m.err != nil {
		return errStyle.Render("Error: " + m.err.Error())
	}

	if len(m.items) == 0 {
		return helpStyle.Render("No running sessions.\nPress q to quit.")
	}

	listWidth := m.listWidth()
	h := m.height

	listContent := strings.Join(m.renderTree(listWidth, h), "\n")
	listRendered := lipgloss.NewStyle().Width(listWidth).Height(h).Render(listContent)

	sep := separatorStyle.Render(strings.Repeat("│\n", h-1) + "│")

	pw := m.previewWidth()
	m.preview.Width = pw
	m.preview.Height = h
	previewRendered := lipgloss.NewStyle().Width(pw).Height(h).Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listRendered, sep, previewRendered)
}

func (m Model) listWidth() int {
	return max(m.width*30/100, 24)
}

func (m Model) previewWidth() int {
	return m.width - m.listWidth() - 1 // 1 for separator
}

func (m Model) renderTree(width, height int) []string {
	start := VisibleSlice(len(m.items), m.cursor, height)
	end := min(start+height, len(m.items))

	now := m.now()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, RenderTreeItem(m.items[i], m.groups, i == m.cursor, width, now))
	}
	return lines
}

func (m Model) current() (mux.Session, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return mux.Session{}, false
	}
	item := m.items[m.cursor]
	if item.Kind != KindSession {
		return mux.Session{}, false
	}
	return m.groups[item.GroupIndex].Sessions[item.SessionIndex], true
}

func (m Model) killCurrent() tea.Cmd {
	s, ok := m.current()
	if !ok {
		return nil
	}
	x, ok := m.muxes[s.Multiplexer]
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return sessionKilledMsg{err: x.Kill(context.Background(), s.Name)}
	}
}

func (m Model) previewCmd() tea.Cmd {
	s, ok := m.current()
	if !ok || previewKey(s) == m.previewFor {
		return nil
	}
	return m.loadPreview(s)
}

func previewKey(s mux.Session) string {
	return s.Multiplexer + "/" + s.Name
}
