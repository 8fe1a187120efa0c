package ui

import (
	"strings"

	"hackerbot/app/service/conversation"
	"hackerbot/app/service/locale"
	"hackerbot/app/service/queue"
	"hackerbot/app/service/topic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header, topic bar, status line, input box, hint and footer
	chromeHeight = 12
)

type stateMsg conversation.State

// Model renders session snapshots and turns key presses into queue events.
type Model struct {
	catalog  *locale.Catalog
	registry *topic.Registry
	queueSvc *queue.Service

	input textinput.Model
	state conversation.State
	// selection moves on key press, ahead of the session round-trip
	topic  topic.ID
	locale locale.Locale
	width  int
	height int
}

func NewModel(
	catalog *locale.Catalog,
	registry *topic.Registry,
	queueSvc *queue.Service,
	initial conversation.State,
) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Focus()

	return Model{
		catalog:  catalog,
		registry: registry,
		queueSvc: queueSvc,
		input:    input,
		state:    initial,
		topic:    initial.ActiveTopic,
		locale:   initial.ActiveLocale,
		width:    defaultWidth,
		height:   defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if msg.Version >= m.state.Version {
			m.state = conversation.State(msg)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit(), nil
		case "tab":
			return m.selectTopic(m.registry.Next(m.topic)), nil
		case "shift+tab":
			return m.selectTopic(m.registry.Prev(m.topic)), nil
		case "ctrl+l":
			return m.selectLocale(m.catalog.Next(m.locale)), nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) submit() Model {
	if m.awaiting() {
		return m
	}

	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m
	}

	if m.queueSvc.Add(queue.Submit(text, m.topic, m.locale)) {
		m.input.Reset()
	}

	return m
}

func (m Model) selectTopic(id topic.ID) Model {
	if m.queueSvc.Add(queue.ChangeTopic(id)) {
		m.topic = id
	}

	return m
}

func (m Model) selectLocale(loc locale.Locale) Model {
	if m.queueSvc.Add(queue.ChangeLocale(loc)) {
		m.locale = loc
	}

	return m
}

func (m Model) awaiting() bool {
	return m.state.Phase == conversation.PhaseAwaitingReply
}

func (m Model) t(key string) string {
	return m.catalog.Resolve(key, m.locale)
}

func (m Model) View() string {
	sections := []string{
		titleStyle.Render(m.t("welcome")),
		subtitleStyle.Render(m.t("subtitle")),
		"",
		m.topicBar(),
		statusStyle.Render("● " + m.registry.StatusText(m.topic, m.locale)),
		"",
		m.conversation(),
		m.inputBox(),
		footerStyle.Render(m.t("helper_hint")),
		footerStyle.Render(m.t("footer") + "  ·  " + m.languageLabel()),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) topicBar() string {
	items := make([]string, 0)
	for _, t := range m.registry.List() {
		label := m.registry.Label(t.ID, m.locale)
		if t.ID == m.topic {
			items = append(items, activeTopicStyle.Render(label))
		} else {
			items = append(items, topicStyle.Render(label))
		}
	}

	return lipgloss.NewStyle().Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

func (m Model) conversation() string {
	budget := max(m.height-chromeHeight, 3)

	if len(m.state.Messages) == 0 && !m.awaiting() {
		return lipgloss.JoinVertical(lipgloss.Left,
			emptyTitleStyle.Render(m.t("empty_state_title")),
			subtitleStyle.Render(m.t("empty_state_description")),
		)
	}

	bubbleWidth := max(m.width*3/4, 20)

	lines := make([]string, 0)
	for _, msg := range m.state.Messages {
		lines = append(lines, strings.Split(m.renderMessage(msg, bubbleWidth), "\n")...)
	}

	if m.awaiting() {
		lines = append(lines, typingStyle.Render("… "+m.t("typing")))
	}

	if len(lines) > budget {
		lines = lines[len(lines)-budget:]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderMessage(msg conversation.ChatMessage, width int) string {
	meta := metaStyle.Render(m.t("role."+string(msg.Role)) + " · " + msg.CreatedAt.Format("15:04"))

	if msg.Role == conversation.RoleUser {
		body := userStyle.MaxWidth(width).Render(msg.Content)
		block := lipgloss.JoinVertical(lipgloss.Right, body, meta)
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}

	body := assistantStyle.Width(width).Render(msg.Content)
	return lipgloss.JoinVertical(lipgloss.Left, body, meta)
}

func (m Model) inputBox() string {
	input := m.input
	input.Placeholder = m.t("placeholder")

	style := inputStyle
	if m.awaiting() {
		style = disabledStyle
	}

	return style.Width(max(m.width-4, 10)).Render(input.View())
}

func (m Model) languageLabel() string {
	info, ok := m.catalog.Info(m.locale)
	if !ok {
		return string(m.locale)
	}

	return info.Flag + " " + info.Name + " (ctrl+l: " + m.t("language_button") + ")"
}
