// Package tui is the full-screen terminal front-end of the chat panel.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
	"github.com/zhouzirui/canyon-webchat/internal/render"
)

const (
	title       = "Canyon Concierge"
	placeholder = "Type your message…"
	helpText    = "enter send • ctrl+r reset • esc quit"
	dismissText = "press any key to continue"
	waitingText = "waiting for reply…"

	// header, help line, input and the blank lines between them
	chromeHeight = 6
	minWidth     = 20
)

// Model is the bubbletea model. It only reflects what the controller sends
// through the Bridge; it never calls the controller from Update.
type Model struct {
	bridge   *Bridge
	viewport viewport.Model
	input    textinput.Model
	messages []chat.Message
	alert    string
	waiting  bool
	width    int
	height   int
}

// NewModel builds a model whose key bindings fire the handlers registered
// on bridge.
func NewModel(bridge *Bridge) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Focus()

	return Model{
		bridge:   bridge,
		input:    ti,
		viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	_, _, onInit := m.bridge.handlers()
	if onInit == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, func() tea.Msg {
		onInit()
		return nil
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case appendMsg:
		m.messages = append(m.messages, msg.msg)
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case clearInputMsg:
		m.input.Reset()
		return m, nil

	case alertMsg:
		m.alert = msg.text
		return m, nil

	case waitingMsg:
		m.waiting = msg.waiting
		if m.waiting {
			m.input.PromptStyle = helpStyle
			m.input.TextStyle = helpStyle
		} else {
			m.input.PromptStyle = lipgloss.NewStyle()
			m.input.TextStyle = lipgloss.NewStyle()
		}
		return m, nil

	case reloadMsg:
		m.messages = nil
		m.alert = ""
		m.input.Reset()
		m.viewport.SetContent("")
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	// An open alert swallows the next key, like a modal dialog.
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	submit, reset, _ := m.bridge.handlers()
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if submit == nil {
			return m, nil
		}
		value := m.input.Value()
		return m, func() tea.Msg {
			submit(value)
			return nil
		}
	case tea.KeyCtrlR:
		if reset == nil {
			return m, nil
		}
		return m, func() tea.Msg {
			reset()
			return nil
		}
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	w := max(width, minWidth)
	h := max(height-chromeHeight, 1)
	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 4
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	bubbleWidth := max(m.viewport.Width*3/4, minWidth)

	var sb strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		body := strings.Join(render.Lines(msg.Text), "\n")
		switch msg.Sender {
		case chat.SenderUser:
			sb.WriteString(m.alignRight(userLabelStyle.Render("You")) + "\n")
			sb.WriteString(m.alignRight(userStyle.MaxWidth(bubbleWidth).Render(wrap(body, bubbleWidth-2))))
		default:
			sb.WriteString(botLabelStyle.Render(title) + "\n")
			sb.WriteString(botStyle.MaxWidth(bubbleWidth).Render(wrap(body, bubbleWidth-2)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) alignRight(block string) string {
	return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block)
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n\n")
	if m.alert != "" {
		sb.WriteString(alertStyle.Render(m.alert) + " " + helpStyle.Render(dismissText))
	} else {
		sb.WriteString(m.input.View())
	}
	sb.WriteString("\n")
	if m.waiting {
		sb.WriteString(waitingStyle.Render(waitingText) + " ")
	}
	sb.WriteString(helpStyle.Render(helpText))
	return sb.String()
}

// Messages returns the transcript as currently shown.
func (m Model) Messages() []chat.Message {
	out := make([]chat.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func wrap(text string, width int) string {
	if width < 1 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
