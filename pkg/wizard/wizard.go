// Package wizard drives an interactive question/answer session on top
// of the engine's boundary calls. It owns prompts and input parsing
// only; which question comes next, what is valid, and when the form is
// complete are always the engine's decisions.
package wizard

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
)

// Verbosity controls which bits of state the wizard prints.
type Verbosity int

const (
	// Clean output: question prompts only.
	Clean Verbosity = iota
	// Debug output: status, visible questions, error details, help text.
	Debug
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Runner is the interface the wizard needs from the engine boundary.
// Satisfied by *engine.Engine.
type Runner interface {
	RenderJSONUI(formID, configJSON, ctxJSON, answersJSON string) string
	SubmitPatch(formID, configJSON, ctxJSON, answersJSON, questionID, valueJSON string) string
}

// Wizard walks a form interactively over readline.
type Wizard struct {
	Engine     Runner
	FormID     string
	ConfigJSON string
	CtxJSON    string
	Verbosity  Verbosity
	Out        io.Writer

	headerPrinted bool
}

// Run asks questions until the engine reports completion and returns
// the final answer set.
func (w *Wizard) Run() (map[string]any, error) {
	answers := map[string]any{}

	for {
		answersJSON, err := json.Marshal(answers)
		if err != nil {
			return nil, fmt.Errorf("encode answers: %w", err)
		}

		p, err := parsePayload(w.Engine.RenderJSONUI(w.FormID, w.ConfigJSON, w.CtxJSON, string(answersJSON)))
		if err != nil {
			return nil, err
		}

		w.showHeader(p)
		w.showStatus(p)

		if p.Status == "complete" || p.NextQuestionID == "" {
			w.showCompletion(answers)
			return answers, nil
		}
		if p.visibleCount() == 0 {
			fmt.Fprintln(w.Out, "No visible questions are available; check your conditional logic.")
			return answers, nil
		}

		q := p.question(p.NextQuestionID)
		if q == nil {
			return nil, fmt.Errorf("engine asked for unknown question %q", p.NextQuestionID)
		}

		value, err := w.ask(q, p)
		if err != nil {
			return nil, err
		}

		valueJSON, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode answer: %w", err)
		}
		sub, err := parseSubmission(w.Engine.SubmitPatch(
			w.FormID, w.ConfigJSON, w.CtxJSON, string(answersJSON), q.ID, string(valueJSON)))
		if err != nil {
			return nil, err
		}

		if sub.Status == "error" {
			w.showValidationErrors(q.ID, sub)
			continue // re-ask the same question
		}
		answers[q.ID] = value
	}
}

func (w *Wizard) showHeader(p *payload) {
	if w.headerPrinted {
		return
	}
	fmt.Fprintln(w.Out, titleStyle.Render("Form: "+p.FormTitle))
	if w.Verbosity == Debug && p.Help != "" {
		fmt.Fprintln(w.Out, renderMarkdown(p.Help))
	}
	w.headerPrinted = true
}

func (w *Wizard) showStatus(p *payload) {
	if w.Verbosity != Debug {
		return
	}
	fmt.Fprintf(w.Out, "Status: %s (%d/%d)\n", p.Status, p.Progress.Answered, p.Progress.Total)
	fmt.Fprintln(w.Out, "Visible questions:")
	for i := range p.Questions {
		q := &p.Questions[i]
		if !q.Visible {
			continue
		}
		entry := fmt.Sprintf(" - %s (%s)", q.ID, q.Title)
		if q.Required {
			entry += " [required]"
		}
		fmt.Fprintln(w.Out, mutedStyle.Render(entry))
	}
}

// ask prompts for one answer, re-prompting on parse errors.
func (w *Wizard) ask(q *question, p *payload) (any, error) {
	line := fmt.Sprintf("%d/%d %s", p.Progress.Answered+1, p.Progress.Total, q.Title)
	if q.Required {
		line += "*"
	}
	if hint := promptHint(q); hint != "" {
		line += " " + mutedStyle.Render(hint)
	}
	fmt.Fprintln(w.Out, promptStyle.Render(line))
	if q.Description != "" {
		fmt.Fprintln(w.Out, renderMarkdown(q.Description))
	}
	if w.Verbosity == Debug && len(q.Choices) > 0 {
		fmt.Fprintln(w.Out, "Choices: "+strings.Join(q.Choices, ", "))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    choiceCompleter(q.Choices),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		EnableMask:      q.Secret,
		MaskRune:        '*',
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			return nil, fmt.Errorf("read answer: %w", err)
		}
		value, perr := parseAnswer(q, strings.TrimSpace(input))
		if perr != nil {
			fmt.Fprintln(w.Out, errorStyle.Render("Invalid answer: "+perr.userMessage))
			if w.Verbosity == Debug && perr.debugMessage != "" {
				fmt.Fprintln(w.Out, mutedStyle.Render("  Debug: "+perr.debugMessage))
			}
			continue
		}
		return value, nil
	}
}

func (w *Wizard) showValidationErrors(questionID string, sub *submission) {
	if sub.Validation == nil {
		fmt.Fprintln(w.Out, errorStyle.Render("Answer rejected."))
		return
	}
	shown := false
	for _, e := range sub.Validation.Errors {
		if e.QuestionID == questionID || e.QuestionID == "" {
			fmt.Fprintln(w.Out, errorStyle.Render("Invalid answer: "+e.Message))
			shown = true
		}
	}
	if !shown && len(sub.Validation.Errors) > 0 {
		fmt.Fprintln(w.Out, errorStyle.Render("Invalid answer: "+sub.Validation.Errors[0].Message))
		shown = true
	}
	if !shown {
		fmt.Fprintln(w.Out, errorStyle.Render("Answer rejected."))
	}
}

func (w *Wizard) showCompletion(answers map[string]any) {
	fmt.Fprintln(w.Out, doneStyle.Render("Done ✅"))
	pretty, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		fmt.Fprintf(w.Out, "%v\n", answers)
		return
	}
	fmt.Fprintln(w.Out, string(pretty))
}

func choiceCompleter(choices []string) *readline.PrefixCompleter {
	completer := readline.NewPrefixCompleter()
	for _, choice := range choices {
		completer.Children = append(completer.Children, readline.PcItem(choice))
	}
	return completer
}

func promptHint(q *question) string {
	switch q.Type {
	case "boolean":
		return "(y/n)"
	case "enum":
		if len(q.Choices) > 0 {
			return "(" + strings.Join(q.Choices, "|") + ")"
		}
	case "integer", "number":
		return "(" + q.Type + ")"
	case "list":
		return "(JSON array)"
	}
	if q.Default != nil {
		return fmt.Sprintf("[%v]", q.Default)
	}
	return ""
}
