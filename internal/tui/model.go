// Package tui renders a terminal chat view driven by a session. The left pane
// lists conversations, the right pane shows the active conversation's log.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storechat/internal/models"
	"storechat/internal/session"
)

const listWidth = 32

// sessionUpdateMsg signals that the session's snapshot changed.
type sessionUpdateMsg struct{}

// Model is the bubbletea model wrapping one chat session.
type Model struct {
	session *session.Session

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	conversations []models.Conversation
	messages      []models.Message
	activeChatID  int
	loadState     session.LoadState
	connState     session.State
	notice        string
	cursor        int

	width  int
	height int
	ready  bool
}

// New builds the model around an already started session.
func New(s *session.Session) Model {
	input := textinput.New()
	input.Placeholder = "Type a message... (Enter to send, Ctrl+C to quit)"
	input.Focus()
	input.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		session: s,
		input:   input,
		spinner: sp,
	}
}

// Init starts the blink, the spinner and the session watch loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, watchSession(m.session))
}

// watchSession blocks on the session's coalesced update signal.
func watchSession(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Updates()
		return sessionUpdateMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		inputCmd tea.Cmd
		vpCmd    tea.Cmd
		spCmd    tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.session.Close()
			return m, tea.Quit

		case tea.KeyEnter:
			text := m.input.Value()
			if err := m.session.Send(text); err == nil {
				// The input clears immediately; the message itself shows
				// up only once the server acknowledges it.
				m.input.Reset()
			}
			return m, nil

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				m.selectAtCursor()
			}
			return m, nil

		case tea.KeyDown:
			if m.cursor < len(m.conversations)-1 {
				m.cursor++
				m.selectAtCursor()
			}
			return m, nil
		}
		m.input, inputCmd = m.input.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logWidth := msg.Width - listWidth - 4
		logHeight := msg.Height - 6
		if !m.ready {
			m.viewport = viewport.New(logWidth, logHeight)
			m.ready = true
		} else {
			m.viewport.Width = logWidth
			m.viewport.Height = logHeight
		}
		m.input.Width = logWidth - 4
		m.refresh()

	case sessionUpdateMsg:
		m.syncFromSession()
		m.refresh()
		return m, watchSession(m.session)

	case spinner.TickMsg:
		if m.loadState == session.LoadPending || m.connState == session.Connecting {
			m.spinner, spCmd = m.spinner.Update(msg)
		}
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd, spCmd)
}

// syncFromSession copies the session snapshot into the model.
func (m *Model) syncFromSession() {
	m.conversations = m.session.Conversations()
	m.messages = m.session.Messages()
	m.activeChatID, _ = m.session.Active()
	m.loadState = m.session.LoadState()
	m.connState = m.session.State()
	m.notice = m.session.Notice()

	for i, conv := range m.conversations {
		if conv.ChatID == m.activeChatID && m.activeChatID != 0 {
			m.cursor = i
			break
		}
	}
	if m.cursor >= len(m.conversations) {
		m.cursor = 0
	}
}

func (m *Model) selectAtCursor() {
	if m.cursor >= 0 && m.cursor < len(m.conversations) {
		m.session.Select(m.conversations[m.cursor].ChatID)
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m Model) renderLog() string {
	if m.loadState == session.LoadPending {
		return m.spinner.View() + " loading messages..."
	}
	if len(m.messages) == 0 {
		return emptyStyle.Render("No messages yet. Say hello!")
	}

	var b strings.Builder
	for _, msg := range m.messages {
		line := fmt.Sprintf("%s  %s", msg.CreatedAt.Local().Format("15:04"), msg.Content)
		if msg.IsCurrentUser {
			b.WriteString(ownMessageStyle.Render(line))
		} else {
			b.WriteString(theirMessageStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations"))
	b.WriteString("\n\n")

	if len(m.conversations) == 0 {
		b.WriteString(emptyStyle.Render("No conversations"))
		return b.String()
	}

	for i, conv := range m.conversations {
		name := conv.ProductName
		if name == "" {
			name = conv.ProductID
		}
		preview := truncate(conv.LastMessage, listWidth-6)
		entry := fmt.Sprintf("%s\n  %s", name, preview)
		if i == m.cursor {
			b.WriteString(selectedConvStyle.Render(entry))
		} else {
			b.WriteString(convStyle.Render(entry))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to max runes, never splitting a multi-byte rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func (m Model) statusLine() string {
	switch {
	case m.connState == session.Connecting:
		return m.spinner.View() + " connecting..."
	case m.connState == session.Disconnected:
		return noticeStyle.Render("disconnected")
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	default:
		return ""
	}
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	list := listPaneStyle.Width(listWidth).Height(m.height - 4).Render(m.renderList())
	log := logPaneStyle.Render(m.viewport.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, list, log)

	return lipgloss.JoinVertical(lipgloss.Left,
		panes,
		inputStyle.Render(m.input.View()),
		m.statusLine(),
	)
}
