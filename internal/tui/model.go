package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
	"docqa/internal/service"
)

// ChatPort is the TUI-facing subset of the QA service.
type ChatPort interface {
	Handle(ctx context.Context, sess service.Session, line string) service.Outcome
}

type outcomeMsg struct {
	out service.Outcome
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	ctx      context.Context
	service  ChatPort
	session  service.Session
	input    textinput.Model
	viewport viewport.Model
	notice   string
	status   string
	pending  string
	busy     bool
	ready    bool
}

// New creates a chat model around an existing session. notice is shown above
// the transcript, typically the upload report of a preloaded document.
func New(ctx context.Context, svc ChatPort, sess service.Session, notice string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your document..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	status := "Type /open <path> to load a document, /help for commands."
	if sess.HasDocument() {
		status = "Ready. Ask a question."
	}
	return Model{ctx: ctx, service: svc, session: sess, input: ti, viewport: vp, notice: notice, status: status}
}

// Session returns the current conversation state.
func (m Model) Session() service.Session { return m.session }

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and service events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header lines, status, input box, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil
	case outcomeMsg:
		m.busy = false
		m.pending = ""
		m.session = msg.out.Session
		if msg.out.Notice != "" {
			m.notice = msg.out.Notice
		}
		m.status = statusFor(msg.out)
		m.refresh()
		if msg.out.Quit {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			m.busy = true
			if !strings.HasPrefix(line, "/") {
				m.pending = line
				m.status = "Thinking..."
			}
			m.refresh()
			return m, m.handle(line)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handle(line string) tea.Cmd {
	ctx, svc, sess := m.ctx, m.service, m.session
	return func() tea.Msg {
		return outcomeMsg{out: svc.Handle(ctx, sess, line)}
	}
}

func statusFor(out service.Outcome) string {
	switch {
	case out.Reply == nil:
		return "Ready."
	case out.Reply.Err != nil:
		return "Error: " + out.Reply.Err.Error()
	default:
		return "Answered."
	}
}

// View renders the header, transcript, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Document Q&A Assistant")
	docLine := "No document loaded"
	if m.session.HasDocument() {
		docLine = "Document: " + m.session.Document.Name
	}
	sub := subtleStyle.Render(docLine)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + sub + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(max(10, m.viewport.Width-2))
	var parts []string
	if m.notice != "" {
		parts = append(parts, subtleStyle.Inherit(wrap).Render(m.notice))
	}
	for _, msg := range m.session.Messages {
		parts = append(parts, renderMessage(wrap, msg.Role, msg.Content))
	}
	if m.pending != "" {
		parts = append(parts, renderMessage(wrap, domain.RoleUser, m.pending))
		parts = append(parts, renderMessage(wrap, domain.RoleAssistant, "..."))
	}
	if len(parts) == 0 {
		return "No messages yet."
	}
	return strings.Join(parts, "\n\n")
}

func renderMessage(wrap lipgloss.Style, role domain.Role, content string) string {
	label := assistantStyle.Render("Assistant")
	if role == domain.RoleUser {
		label = userStyle.Render("You")
	}
	return label + "\n" + wrap.Render(content)
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle        = lipgloss.NewStyle().Bold(true)
	subtleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
