package prompt

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("?")
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Faint(true)
)

// Terminal is a Prompter rendering bubbletea programs. Nil In and Out fall
// back to the process standard streams.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminal returns a prompter bound to the process terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Out != nil {
		opts = append(opts, tea.WithOutput(t.Out))
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

func header(message string) string {
	return questionMark + " " + questionStyle.Render(message)
}

// Select implements Prompter.
func (t *Terminal) Select(ctx context.Context, message string, choices []Choice, defaultIndex int) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no choices for %q", message)
	}
	if defaultIndex < 0 || defaultIndex >= len(choices) {
		defaultIndex = 0
	}
	final, err := t.run(ctx, &selectModel{message: message, choices: choices, cursor: defaultIndex, chosen: -1})
	if err != nil {
		return "", err
	}
	m := final.(*selectModel)
	if m.aborted {
		return "", ErrAborted
	}
	return m.choices[m.chosen].Value, nil
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	final, err := t.run(ctx, &confirmModel{message: message, value: def})
	if err != nil {
		return false, err
	}
	m := final.(*confirmModel)
	if m.aborted {
		return false, ErrAborted
	}
	return m.value, nil
}

// Input implements Prompter.
func (t *Terminal) Input(ctx context.Context, message, def string) (string, error) {
	input := textinput.New()
	input.Placeholder = def
	input.Prompt = ""
	input.Focus()

	final, err := t.run(ctx, &inputModel{message: message, def: def, input: input})
	if err != nil {
		return "", err
	}
	m := final.(*inputModel)
	if m.aborted {
		return "", ErrAborted
	}
	return m.value, nil
}

// MultiSelect implements Prompter.
func (t *Terminal) MultiSelect(ctx context.Context, message string, options []string, defaults []string) ([]string, error) {
	if len(options) == 0 {
		return nil, nil
	}
	selected := make([]bool, len(options))
	for i, option := range options {
		selected[i] = slices.Contains(defaults, option)
	}
	final, err := t.run(ctx, &multiModel{message: message, options: options, selected: selected})
	if err != nil {
		return nil, err
	}
	m := final.(*multiModel)
	if m.aborted {
		return nil, ErrAborted
	}
	var picked []string
	for i, option := range m.options {
		if m.selected[i] {
			picked = append(picked, option)
		}
	}
	return picked, nil
}

type selectModel struct {
	message string
	choices []Choice
	cursor  int
	chosen  int
	aborted bool
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case "enter":
		m.chosen = m.cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m *selectModel) View() string {
	if m.chosen >= 0 {
		return header(m.message) + " " + answerStyle.Render(m.choices[m.chosen].Label) + "\n"
	}
	if m.aborted {
		return header(m.message) + "\n"
	}
	var b strings.Builder
	b.WriteString(header(m.message) + " " + hintStyle.Render("(use arrow keys)") + "\n")
	for i, choice := range m.choices {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ "+choice.Label) + "\n")
		} else {
			b.WriteString("  " + choice.Label + "\n")
		}
	}
	return b.String()
}

type confirmModel struct {
	message string
	value   bool
	done    bool
	aborted bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "y":
		m.value, m.done = true, true
		return m, tea.Quit
	case "n":
		m.value, m.done = false, true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirmModel) View() string {
	if m.done {
		answer := "No"
		if m.value {
			answer = "Yes"
		}
		return header(m.message) + " " + answerStyle.Render(answer) + "\n"
	}
	hint := "(y/N)"
	if m.value {
		hint = "(Y/n)"
	}
	return header(m.message) + " " + hintStyle.Render(hint) + "\n"
}

type inputModel struct {
	message string
	def     string
	input   textinput.Model
	value   string
	done    bool
	aborted bool
}

func (m *inputModel) Init() tea.Cmd { return textinput.Blink }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.value = strings.TrimSpace(m.input.Value())
			if m.value == "" {
				m.value = m.def
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inputModel) View() string {
	if m.done {
		return header(m.message) + " " + answerStyle.Render(m.value) + "\n"
	}
	return header(m.message) + " " + m.input.View() + "\n"
}

type multiModel struct {
	message  string
	options  []string
	selected []bool
	cursor   int
	done     bool
	aborted  bool
}

func (m *multiModel) Init() tea.Cmd { return nil }

func (m *multiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.options)
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := !slices.Contains(m.selected, false)
		for i := range m.selected {
			m.selected[i] = !all
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *multiModel) View() string {
	if m.done {
		var picked []string
		for i, option := range m.options {
			if m.selected[i] {
				picked = append(picked, option)
			}
		}
		return header(m.message) + " " + answerStyle.Render(strings.Join(picked, ", ")) + "\n"
	}
	var b strings.Builder
	b.WriteString(header(m.message) + " " + hintStyle.Render("(space to toggle, a to toggle all)") + "\n")
	for i, option := range m.options {
		box := "◯"
		if m.selected[i] {
			box = "◉"
		}
		line := box + " " + option
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}
