package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bibly/internal/enrichment"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
	domainerrors "github.com/lepinkainen/bibly/internal/errors"
)

func sampleResults() []enrichment.Result {
	return []enrichment.Result{
		{Provider: "ndl", Candidate: &book.Candidate{Title: "こころ", Author: "夏目漱石", Publisher: "岩波書店"}},
		{Provider: "google", Error: domainerrors.NotFound("no book information found")},
		{Provider: "rakuten", Candidate: &book.Candidate{Title: "こころ (新潮文庫)", Author: "夏目 漱石", Publisher: "新潮社"}},
	}
}

func stubProgram(t *testing.T, keys ...tea.KeyMsg) {
	t.Helper()
	original := runProgram
	t.Cleanup(func() { runProgram = original })

	runProgram = func(m tea.Model) (tea.Model, error) {
		for _, k := range keys {
			m, _ = m.Update(k)
		}
		return m, nil
	}
}

func TestSplitResults(t *testing.T) {
	items, failed := splitResults(sampleResults())
	require.Len(t, items, 2)
	assert.Equal(t, "ndl", items[0].provider)
	assert.Equal(t, "rakuten", items[1].provider)
	assert.Equal(t, []string{"google"}, failed)
}

func TestSelectPicksHighlightedCandidate(t *testing.T) {
	stubProgram(t, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	res, err := Select("9784101010137", sampleResults())
	require.NoError(t, err)
	assert.Equal(t, ActionSelected, res.Action)
	assert.Equal(t, "rakuten", res.Provider)
	require.NotNil(t, res.Selection)
	assert.Equal(t, "新潮社", res.Selection.Publisher)
}

func TestSelectSkipAndQuit(t *testing.T) {
	stubProgram(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	res, err := Select("1", sampleResults())
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, res.Action)
	assert.Nil(t, res.Selection)

	stubProgram(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	res, err = Select("1", sampleResults())
	require.NoError(t, err)
	assert.Equal(t, ActionStopped, res.Action)
}

func TestSelectWithoutCandidatesSkipsUI(t *testing.T) {
	original := runProgram
	t.Cleanup(func() { runProgram = original })
	runProgram = func(tea.Model) (tea.Model, error) {
		t.Fatal("UI should not start")
		return nil, nil
	}

	res, err := Select("1", []enrichment.Result{{Provider: "amazon", Error: domainerrors.NotImplemented("Amazon")}})
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, res.Action)
}

func TestSelectPropagatesProgramError(t *testing.T) {
	original := runProgram
	t.Cleanup(func() { runProgram = original })
	runProgram = func(tea.Model) (tea.Model, error) { return nil, errors.New("no tty") }

	_, err := Select("1", sampleResults())
	require.Error(t, err)
}

func TestViewListsFailedProviders(t *testing.T) {
	items, failed := splitResults(sampleResults())
	view := newModel("9784101010137", items, failed).View()
	assert.Contains(t, view, "9784101010137")
	assert.Contains(t, view, "google")
}

func TestTruncateCountsRunes(t *testing.T) {
	assert.Equal(t, "吾輩は...", truncate("吾輩は猫である", 6))
	assert.Equal(t, "short", truncate("  short ", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 72, clamp(72, 0, 40))
	assert.Equal(t, 50, clamp(72, 50, 40))
	assert.Equal(t, 40, clamp(72, 10, 40))
}
