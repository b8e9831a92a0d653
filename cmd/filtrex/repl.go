package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/filtrex/filtrex"
	"github.com/spf13/cobra"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	resultStyle   = lipgloss.NewStyle().Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	fieldStyle    = lipgloss.NewStyle().Foreground(highlightColor)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(highlightColor)
	helpDescStyle = lipgloss.NewStyle().Foreground(mutedColor)
	borderStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

var replKeywords = []string{"and", "or", "not", "in", "of", "if", "then", "else"}

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// replModel evaluates each line against a record that is built up with
// :let and shown in the fields panel.
type replModel struct {
	textInput   textinput.Model
	engine      *filtrex.Engine
	record      map[string]filtrex.Value
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showFields  bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Quit   key.Binding
	Clear  key.Binding
	Tab    key.Binding
	Fields key.Binding
	Help   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous expression")),
	Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next expression")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "evaluate")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	Clear:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "autocomplete")),
	Fields: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "toggle fields")),
	Help:   key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "toggle help")),
}

func newREPLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive expression prompt",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			p := tea.NewProgram(newREPLModel(a.engine), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
}

func newREPLModel(engine *filtrex.Engine) replModel {
	ti := textinput.New()
	ti.Placeholder = "type an expression, or :help"
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "filtrex> "

	return replModel{
		textInput:  ti,
		engine:     engine,
		record:     make(map[string]filtrex.Value),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 12
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.history = nil
			return m, nil
		case key.Matches(msg, keys.Fields):
			m.showFields = !m.showFields
			return m, nil
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, keys.Up):
			return m.recall(-1), nil
		case key.Matches(msg, keys.Down):
			return m.recall(1), nil
		case key.Matches(msg, keys.Tab):
			return m.handleAutocomplete(), nil
		case key.Matches(msg, keys.Enter):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textInput.Value())
	m.textInput.SetValue("")
	m.historyIdx = -1
	if input == "" {
		return m, nil
	}
	m.cmdHistory = append(m.cmdHistory, input)

	if strings.HasPrefix(input, ":") {
		return m.handleCommand(input)
	}
	output, isErr := m.evaluate(input)
	m.history = append(m.history, historyEntry{input: input, output: output, isErr: isErr})
	return m, nil
}

// recall moves through previously entered lines; step is -1 for older.
func (m replModel) recall(step int) replModel {
	if len(m.cmdHistory) == 0 {
		return m
	}
	switch {
	case step < 0 && m.historyIdx == -1:
		m.historyIdx = len(m.cmdHistory) - 1
	case step < 0 && m.historyIdx > 0:
		m.historyIdx--
	case step > 0 && m.historyIdx == -1:
		return m
	case step > 0 && m.historyIdx < len(m.cmdHistory)-1:
		m.historyIdx++
	case step > 0:
		m.historyIdx = -1
		m.textInput.SetValue("")
		return m
	}
	m.textInput.SetValue(m.cmdHistory[m.historyIdx])
	m.textInput.CursorEnd()
	return m
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = nil
	case ":fields", ":vars", ":v":
		m.showFields = !m.showFields
	case ":reset", ":r":
		m.record = make(map[string]filtrex.Value)
		m.note(input, "Record cleared", false)
	case ":let", ":l":
		output, isErr := m.let(rest)
		m.note(input, output, isErr)
	case ":unset", ":u":
		field := unquoteField(rest)
		if _, ok := m.record[field]; !ok {
			m.note(input, fmt.Sprintf("No field %q", field), true)
			break
		}
		delete(m.record, field)
		m.note(input, "Removed "+field, false)
	case ":ast", ":a":
		root, err := m.engine.Parse(rest)
		if err != nil {
			m.note(input, err.Error(), true)
			break
		}
		m.note(input, root.String(), false)
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.note(input, "Unknown command: "+name, true)
	}
	return m, nil
}

func (m *replModel) note(input, output string, isErr bool) {
	m.history = append(m.history, historyEntry{input: input, output: output, isErr: isErr})
}

// let handles "name = expr": expr is evaluated against the current record
// and the result is stored under name.
func (m replModel) let(arg string) (string, bool) {
	rawName, expr, ok := strings.Cut(arg, "=")
	field := unquoteField(rawName)
	if !ok || field == "" || strings.TrimSpace(expr) == "" {
		return "Usage: :let name = expression", true
	}
	value, err := m.eval(expr)
	if err != nil {
		return err.Error(), true
	}
	m.record[field] = value
	return field + " = " + value.Inspect(), false
}

func (m replModel) evaluate(input string) (string, bool) {
	value, err := m.eval(input)
	if err != nil {
		return err.Error(), true
	}
	return value.Inspect(), false
}

func (m replModel) eval(expr string) (filtrex.Value, error) {
	pred, err := m.engine.Compile(expr)
	if err != nil {
		return filtrex.NewNil(), err
	}
	return pred.Eval(m.record)
}

func unquoteField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	word := trailingWord(input)
	if word == "" {
		return m
	}

	var completions []string
	candidates := slices.Concat(m.engine.Functions(), replKeywords, fieldNames(m.record))
	for _, c := range candidates {
		if strings.HasPrefix(c, word) && !slices.Contains(completions, c) {
			completions = append(completions, c)
		}
	}

	switch len(completions) {
	case 0:
	case 1:
		m.textInput.SetValue(strings.TrimSuffix(input, word) + completions[0])
		m.textInput.CursorEnd()
	default:
		slices.Sort(completions)
		m.note("", "Completions: "+strings.Join(completions, ", "), false)
	}
	return m
}

// trailingWord returns the identifier being typed at the end of input.
func trailingWord(input string) string {
	i := len(input)
	for i > 0 && isWordByte(input[i-1]) {
		i--
	}
	return input[i:]
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func fieldNames(record map[string]filtrex.Value) []string {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("filtrex REPL") + " " + mutedStyle.Render("v"+version) + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(0, min(m.width-2, 60)))) + "\n\n")

	reserved := 8
	if m.showHelp {
		reserved += 14
	}
	if m.showFields {
		reserved += len(m.record) + 3
	}
	// Each entry takes three lines.
	visible := max(1, (m.height-reserved)/3)
	start := max(0, len(m.history)-visible)

	for _, entry := range m.history[start:] {
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n\n")
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n\n")
		}
	}

	if m.showFields {
		b.WriteString(renderFieldsPanel(m.record) + "\n")
	}
	if m.showHelp {
		b.WriteString(renderHelpPanel() + "\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")
	for _, k := range []key.Binding{keys.Help, keys.Fields, keys.Clear, keys.Quit} {
		h := k.Help()
		b.WriteString(helpKeyStyle.Render(h.Key) + helpDescStyle.Render(" "+h.Desc+"  "))
	}
	return b.String()
}

func renderFieldsPanel(record map[string]filtrex.Value) string {
	if len(record) == 0 {
		return borderStyle.Render(mutedStyle.Render("Record is empty; add fields with :let name = value"))
	}
	lines := []string{titleStyle.Render("Record")}
	for _, name := range fieldNames(record) {
		lines = append(lines, fmt.Sprintf("  %s = %s", fieldStyle.Render(name), record[name].Inspect()))
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate expression history"},
		{"Tab", "Complete functions, keywords and fields"},
		{"Enter", "Evaluate against the record"},
		{":let", "Set a field: :let age = 30"},
		{":unset", "Remove a field"},
		{":ast", "Show the parenthesised form"},
		{":fields", "Toggle the record panel"},
		{":help", "Toggle this help"},
		{":clear", "Clear history"},
		{":reset", "Empty the record"},
		{":quit", "Exit REPL"},
	}

	lines := []string{titleStyle.Render("Help")}
	for _, h := range help {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-8s", h.key)),
			helpDescStyle.Render(h.desc)))
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}
