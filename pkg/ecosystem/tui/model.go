// Package tui is a full-screen form walkthrough built on Bubble Tea.
// It talks to the engine through the same string boundary the MCP
// server uses, so every keystroke exercises the real call path.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ormasoftchile/qaform/pkg/engine"
)

// QuestionState tracks each question's status in the walkthrough.
type QuestionState struct {
	ID       string
	Title    string
	Type     string
	Required bool
	Secret   bool
	Visible  bool
	Answered bool
	Display  string // masked for secrets
}

// Model is the Bubble Tea model for the qaform walkthrough.
type Model struct {
	engine     *engine.Engine
	formID     string
	configJSON string
	ctxJSON    string

	answers   map[string]any
	questions []QuestionState
	current   string // next question id, "" when complete
	answered  int
	total     int
	formTitle string
	status    string // "need_input", "complete", "error"

	input    textinput.Model
	errMsg   string
	choices  []string
	selected int // choice cursor for enum questions
	width    int
	height   int
}

// NewModel creates a walkthrough model bound to an engine and form.
func NewModel(eng *engine.Engine, formID, configJSON, ctxJSON string) Model {
	ti := textinput.New()
	ti.Placeholder = "answer"
	ti.Focus()
	ti.CharLimit = 256

	m := Model{
		engine:     eng,
		formID:     formID,
		configJSON: configJSON,
		ctxJSON:    ctxJSON,
		answers:    map[string]any{},
		input:      ti,
	}
	m.refresh()
	return m
}

// boundaryPayload mirrors the JSON UI shape the engine renders.
type boundaryPayload struct {
	FormTitle      string `json:"form_title"`
	Status         string `json:"status"`
	NextQuestionID string `json:"next_question_id"`
	Progress       struct {
		Answered int `json:"answered"`
		Total    int `json:"total"`
	} `json:"progress"`
	Questions []struct {
		ID           string   `json:"id"`
		Title        string   `json:"title"`
		Type         string   `json:"type"`
		Required     bool     `json:"required"`
		Secret       bool     `json:"secret"`
		Visible      bool     `json:"visible"`
		CurrentValue any      `json:"current_value"`
		Choices      []string `json:"choices"`
	} `json:"questions"`
	Error *string `json:"error"`
}

// refresh re-renders the form state from the engine.
func (m *Model) refresh() {
	raw := m.engine.RenderJSONUI(m.formID, m.configJSON, m.ctxJSON, m.answersJSON())

	var p boundaryPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		m.status = "error"
		m.errMsg = err.Error()
		return
	}
	if p.Error != nil {
		m.status = "error"
		m.errMsg = *p.Error
		return
	}

	m.formTitle = p.FormTitle
	m.status = p.Status
	m.current = p.NextQuestionID
	m.answered = p.Progress.Answered
	m.total = p.Progress.Total

	m.questions = m.questions[:0]
	m.choices = nil
	for _, q := range p.Questions {
		qs := QuestionState{
			ID:       q.ID,
			Title:    q.Title,
			Type:     q.Type,
			Required: q.Required,
			Secret:   q.Secret,
			Visible:  q.Visible,
			Answered: q.CurrentValue != nil,
		}
		if q.CurrentValue != nil {
			if q.Secret {
				qs.Display = "********"
			} else {
				qs.Display = fmt.Sprintf("%v", q.CurrentValue)
			}
		}
		m.questions = append(m.questions, qs)
		if q.ID == m.current {
			m.choices = q.Choices
			m.input.EchoMode = textinput.EchoNormal
			if q.Secret {
				m.input.EchoMode = textinput.EchoPassword
			}
		}
	}
	if m.selected >= len(m.choices) {
		m.selected = 0
	}
}

func (m *Model) answersJSON() string {
	b, err := json.Marshal(m.answers)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.status == "complete" || m.status == "error" {
				return m, tea.Quit
			}
			m.submit()
			return m, nil
		case "up":
			if len(m.choices) > 0 && m.selected > 0 {
				m.selected--
				return m, nil
			}
		case "down":
			if len(m.choices) > 0 && m.selected < len(m.choices)-1 {
				m.selected++
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the current input through the engine's patch boundary.
func (m *Model) submit() {
	if m.current == "" {
		return
	}
	q := m.question(m.current)
	if q == nil {
		return
	}

	value, perr := m.inputValue(q)
	if perr != "" {
		m.errMsg = perr
		return
	}
	valueJSON, err := json.Marshal(value)
	if err != nil {
		m.errMsg = err.Error()
		return
	}

	raw := m.engine.SubmitPatch(m.formID, m.configJSON, m.ctxJSON, m.answersJSON(), q.ID, string(valueJSON))
	var resp struct {
		Status     string  `json:"status"`
		Error      *string `json:"error"`
		Validation *struct {
			Errors []struct {
				QuestionID string `json:"question_id"`
				Message    string `json:"message"`
			} `json:"errors"`
		} `json:"validation"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		m.errMsg = err.Error()
		return
	}
	if resp.Error != nil {
		m.errMsg = *resp.Error
		return
	}
	if resp.Status == "error" {
		m.errMsg = "invalid answer"
		if resp.Validation != nil {
			for _, e := range resp.Validation.Errors {
				if e.QuestionID == q.ID {
					m.errMsg = e.Message
					break
				}
			}
		}
		return
	}

	m.answers[q.ID] = value
	m.errMsg = ""
	m.input.Reset()
	m.selected = 0
	m.refresh()
}

// inputValue converts the widget state into a typed answer.
func (m *Model) inputValue(q *QuestionState) (any, string) {
	if q.Type == "enum" {
		if len(m.choices) == 0 {
			return nil, "question has no choices"
		}
		return m.choices[m.selected], ""
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil, "an answer is required"
	}
	switch q.Type {
	case "boolean":
		switch strings.ToLower(text) {
		case "y", "yes", "true":
			return true, ""
		case "n", "no", "false":
			return false, ""
		}
		return nil, "expected yes or no"
	case "integer", "number":
		var f float64
		if err := json.Unmarshal([]byte(text), &f); err != nil {
			return nil, "expected a number"
		}
		return f, ""
	case "list":
		var items []any
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return nil, "expected a JSON array"
		}
		return items, ""
	default:
		return text, ""
	}
}

func (m *Model) question(id string) *QuestionState {
	for i := range m.questions {
		if m.questions[i].ID == id {
			return &m.questions[i]
		}
	}
	return nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	b.WriteString(headerStyle.Render(fmt.Sprintf("  qaform: %s", m.formTitle)))
	b.WriteString("\n\n")

	for _, q := range m.questions {
		if !q.Visible {
			continue
		}
		icon := "○"
		if q.Answered {
			icon = "✓"
		}
		line := fmt.Sprintf("  %s %s", icon, q.Title)
		if q.Required {
			line += " *"
		}
		if q.Display != "" {
			line += "  " + q.Display
		}
		if q.ID == m.current {
			selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	switch m.status {
	case "complete":
		doneStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40"))
		b.WriteString(doneStyle.Render(fmt.Sprintf("  ✓ Complete (%d/%d)", m.answered, m.total)))
		b.WriteString("\n\n")
		b.WriteString(statusStyle.Render("  enter: quit"))
	case "error":
		failStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
		b.WriteString(failStyle.Render("  ✗ " + m.errMsg))
		b.WriteString("\n\n")
		b.WriteString(statusStyle.Render("  enter: quit"))
	default:
		b.WriteString(statusStyle.Render(fmt.Sprintf("  Progress: %d/%d", m.answered, m.total)))
		b.WriteString("\n\n")
		if len(m.choices) > 0 {
			for i, c := range m.choices {
				cursor := "  "
				if i == m.selected {
					cursor = "▸ "
				}
				b.WriteString(fmt.Sprintf("  %s%s\n", cursor, c))
			}
			b.WriteString("\n")
			b.WriteString(statusStyle.Render("  ↑/↓: choose  enter: submit  esc: quit"))
		} else {
			b.WriteString("  " + m.input.View())
			b.WriteString("\n\n")
			b.WriteString(statusStyle.Render("  enter: submit  esc: quit"))
		}
		if m.errMsg != "" {
			errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
			b.WriteString("\n")
			b.WriteString(errStyle.Render("  " + m.errMsg))
		}
	}

	b.WriteString("\n")
	return b.String()
}
