package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/filtrex/filtrex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel() replModel {
	return newREPLModel(filtrex.MustNewEngine(filtrex.Config{}))
}

func enter(t *testing.T, m replModel, line string) (replModel, tea.Cmd) {
	t.Helper()
	m.textInput.SetValue(line)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	require.True(t, ok, "unexpected model type %T", model)
	return rm, cmd
}

func lastEntry(t *testing.T, m replModel) historyEntry {
	t.Helper()
	require.NotEmpty(t, m.history)
	return m.history[len(m.history)-1]
}

func TestQuitCommandReturnsQuit(t *testing.T) {
	m, cmd := enter(t, newTestModel(), ":quit")
	assert.True(t, m.quitting)
	assert.Empty(t, m.textInput.Value())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHelpCommandTogglesPanel(t *testing.T) {
	m, cmd := enter(t, newTestModel(), ":help")
	assert.Nil(t, cmd)
	assert.False(t, m.quitting)
	assert.True(t, m.showHelp)
	assert.Empty(t, m.textInput.Value())
}

func TestLetBuildsRecord(t *testing.T) {
	m, _ := enter(t, newTestModel(), ":let score = 40 + 2")
	assert.False(t, lastEntry(t, m).isErr)
	assert.Equal(t, "score = 42", lastEntry(t, m).output)
	assert.Equal(t, filtrex.NewNumber(42), m.record["score"])

	m, _ = enter(t, m, ":let 'first name' = \"Ann\"")
	assert.Equal(t, filtrex.NewString("Ann"), m.record["first name"])

	m, _ = enter(t, m, `score > 40 and 'first name' == "Ann"`)
	assert.Equal(t, historyEntry{
		input:  `score > 40 and 'first name' == "Ann"`,
		output: "true",
	}, lastEntry(t, m))

	m, _ = enter(t, m, ":let broken")
	assert.True(t, lastEntry(t, m).isErr)
	m, _ = enter(t, m, ":let x = missing")
	assert.True(t, lastEntry(t, m).isErr)
	assert.NotContains(t, m.record, "x")
}

func TestEqualityDoesNotAssign(t *testing.T) {
	m := newTestModel()
	m.record["a"] = filtrex.NewNumber(5)

	output, isErr := m.evaluate("a == 5")
	require.False(t, isErr, output)
	assert.Equal(t, "true", output)
	assert.Equal(t, filtrex.NewNumber(5), m.record["a"])
}

func TestEvaluateReportsErrors(t *testing.T) {
	m, _ := enter(t, newTestModel(), "1 +")
	entry := lastEntry(t, m)
	assert.True(t, entry.isErr)
	assert.Contains(t, entry.output, "parse error")
	assert.Equal(t, []string{"1 +"}, m.cmdHistory)
}

func TestUnsetResetAndAST(t *testing.T) {
	m, _ := enter(t, newTestModel(), ":let a = 1")
	m, _ = enter(t, m, ":let b = 2")
	m, _ = enter(t, m, ":unset a")
	assert.NotContains(t, m.record, "a")
	m, _ = enter(t, m, ":unset a")
	assert.True(t, lastEntry(t, m).isErr)

	m, _ = enter(t, m, ":reset")
	assert.Empty(t, m.record)

	m, _ = enter(t, m, ":ast 2 ^ 3 ^ 2")
	assert.Equal(t, "(2 ^ (3 ^ 2))", lastEntry(t, m).output)

	m, _ = enter(t, m, ":bogus")
	assert.Equal(t, "Unknown command: :bogus", lastEntry(t, m).output)
}

func TestHistoryRecall(t *testing.T) {
	m, _ := enter(t, newTestModel(), "1")
	m, _ = enter(t, m, "2")

	m = m.recall(-1)
	assert.Equal(t, "2", m.textInput.Value())
	m = m.recall(-1)
	assert.Equal(t, "1", m.textInput.Value())
	m = m.recall(-1)
	assert.Equal(t, "1", m.textInput.Value())
	m = m.recall(1)
	assert.Equal(t, "2", m.textInput.Value())
	m = m.recall(1)
	assert.Empty(t, m.textInput.Value())
	assert.Equal(t, -1, m.historyIdx)
}

func TestAutocomplete(t *testing.T) {
	m := newTestModel()
	m.record["total"] = filtrex.NewNumber(1)

	m.textInput.SetValue("abs(tot")
	m = m.handleAutocomplete()
	assert.Equal(t, "abs(total", m.textInput.Value())

	m.textInput.SetValue("upp")
	m = m.handleAutocomplete()
	assert.Equal(t, "upper", m.textInput.Value())

	m.textInput.SetValue("lo")
	m = m.handleAutocomplete()
	assert.Equal(t, "lo", m.textInput.Value())
	assert.Equal(t, "Completions: log, log10, log2, lower", lastEntry(t, m).output)
}

func TestTrailingWord(t *testing.T) {
	assert.Equal(t, "x.y", trailingWord("abs(x.y"))
	assert.Equal(t, "", trailingWord("a + "))
	assert.Equal(t, "$a", trailingWord("$a"))
}

func TestViewShowsRecord(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, "Loading...", m.View())

	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = model.(replModel)
	m, _ = enter(t, m, ":let name = \"Ann\"")
	m, _ = enter(t, m, ":fields")

	view := m.View()
	assert.Contains(t, view, "filtrex REPL")
	assert.Contains(t, view, "Record")
	assert.Contains(t, view, `"Ann"`)
}
