package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"groundchat/internal/domain"
	"groundchat/internal/service"
	"groundchat/internal/session"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Reply(ctx context.Context, sess *session.Session, input string) (service.Answer, error)
	Resend(ctx context.Context, sess *session.Session) (service.Answer, error)
}

type answerMsg struct {
	answer service.Answer
	err    error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx      context.Context
	service  ChatPort
	session  *session.Session
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	status   string
	failed   bool
	busy     bool
	ready    bool
}

// New creates a chat screen bound to one session.
func New(ctx context.Context, svc ChatPort, sess *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask your counselor..."
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:      ctx,
		service:  svc,
		session:  sess,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   fmt.Sprintf("Welcome, %s. Ask a question and press Enter.", sess.Profile.Name),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := historyBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-hh)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			return m.start(func() (service.Answer, error) {
				return m.service.Reply(m.ctx, m.session, q)
			}, q)
		case "ctrl+r":
			pending, ok := m.session.Pending()
			if m.busy || !ok {
				return m, nil
			}
			return m.start(func() (service.Answer, error) {
				return m.service.Resend(m.ctx, m.session)
			}, pending.Content)
		}
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = true
			m.status = failureNotice(msg.err)
		} else {
			m.failed = false
			m.status = fmt.Sprintf("Answered from %s references.", msg.answer.Retrieval.Strategy)
		}
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// start runs one turn in the background. pendingText is shown until the service
// records the user turn.
func (m Model) start(run func() (service.Answer, error), pendingText string) (tea.Model, tea.Cmd) {
	m.busy = true
	m.failed = false
	m.status = "Reviewing the references..."
	m.refreshWith(pendingText)
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ans, err := run()
		return answerMsg{answer: ans, err: err}
	})
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Counselor")
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	var status string
	switch {
	case m.busy:
		status = statusStyle.Render(m.spinner.View() + " " + m.status)
	case m.failed:
		status = errorStyle.Render(m.status)
	default:
		status = statusStyle.Render(m.status)
	}
	return header + "\n" + history + "\n" + input + "\n" + status
}

func (m *Model) refresh() { m.refreshWith("") }

func (m *Model) refreshWith(pendingText string) {
	turns := m.session.Turns()
	if pendingText != "" {
		if last, ok := m.session.Pending(); !ok || last.Content != pendingText {
			turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: pendingText})
		}
	}
	m.viewport.SetContent(renderTurns(turns, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderTurns(turns []domain.Turn, width int) string {
	if len(turns) == 0 {
		return "No messages yet."
	}
	bubbleWidth := max(10, width*3/4)
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		label, style := "You", userBubbleStyle
		if t.Role == domain.RoleAssistant {
			label, style = "Counselor", assistantBubbleStyle
		}
		body := labelStyle.Render(label+":") + "\n" + t.Content
		blocks = append(blocks, style.Width(bubbleWidth).Render(body))
	}
	return strings.Join(blocks, "\n")
}

func failureNotice(err error) string {
	if errors.Is(err, domain.ErrMissingCredential) {
		return "The counselor is not configured: no API key was found. Set it and press ctrl+r to retry."
	}
	return "Something went wrong while retrieving an answer. Press ctrl+r to try again."
}

var (
	headerStyle          = lipgloss.NewStyle().Bold(true)
	historyBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle           = lipgloss.NewStyle().Bold(true)
	userBubbleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Padding(0, 1)
	assistantBubbleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	statusStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
