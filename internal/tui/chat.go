// Package tui provides a terminal chat client for the assistant.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexfirm/lex/internal/llm"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ChatFunc produces the assistant's reply to a conversation.
type ChatFunc func(ctx context.Context, messages []llm.Message) (*llm.Message, error)

type replyMsg struct {
	message *llm.Message
	err     error
}

// Model is the bubbletea model for the chat screen. The full message history
// is replayed on every turn, matching the API's stateless contract.
type Model struct {
	viewport viewport.Model
	input    textarea.Model
	chat     ChatFunc
	timeout  time.Duration
	history  []llm.Message
	lines    []string
	waiting  bool
	ready    bool
}

// NewModel creates the chat model.
func NewModel(chat ChatFunc, timeout time.Duration) Model {
	input := textarea.New()
	input.Placeholder = "Ask Lex anything..."
	input.SetHeight(2)
	input.CharLimit = 2000
	input.ShowLineNumbers = false
	input.Focus()

	return Model{
		input:   input,
		chat:    chat,
		timeout: timeout,
		lines:   []string{helpStyle.Render("Lex firm assistant. Enter sends, Esc or Ctrl+C quits.")},
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) sendCmd(history []llm.Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		reply, err := m.chat(ctx, history)
		return replyMsg{message: reply, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := m.input.Height() + 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.input.SetWidth(msg.Width)
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				break
			}
			m.input.Reset()
			m.history = append(m.history, llm.Message{Role: "user", Content: text})
			m.lines = append(m.lines, userStyle.Render("You: ")+text)
			m.waiting = true
			m.lines = append(m.lines, helpStyle.Render("Lex is thinking..."))
			m.refresh()
			return m, m.sendCmd(m.history)
		}

	case replyMsg:
		m.waiting = false
		// Drop the thinking indicator.
		if n := len(m.lines); n > 0 && strings.Contains(m.lines[n-1], "thinking") {
			m.lines = m.lines[:n-1]
		}
		if msg.err != nil {
			m.lines = append(m.lines, errorStyle.Render(fmt.Sprintf("Error: %v", msg.err)))
		} else {
			m.history = append(m.history, *msg.message)
			m.lines = append(m.lines, assistantStyle.Render("Lex: ")+msg.message.Content)
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.viewport.View() + "\n" + m.input.View()
}

// Run starts the chat program and blocks until the user quits.
func Run(chat ChatFunc, timeout time.Duration) error {
	_, err := tea.NewProgram(NewModel(chat, timeout), tea.WithAltScreen()).Run()
	return err
}
