// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bibly/internal/enrichment"
	"github.com/lepinkainen/bibly/internal/enrichment/book"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected an item.
	ActionSelected
	// ActionSkipped indicates the user declined every candidate.
	ActionSkipped
	// ActionStopped indicates the user quit.
	ActionStopped
)

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action    SelectionAction
	Provider  string
	Selection *book.Candidate
}

type candidateItem struct {
	provider  string
	candidate book.Candidate
}

func (i candidateItem) Title() string {
	return i.candidate.Title
}

func (i candidateItem) FilterValue() string {
	return i.candidate.Title
}

func (i candidateItem) Description() string {
	return i.candidate.Author + " / " + i.candidate.Publisher
}

type itemStyles struct {
	normal         lipgloss.Style
	selected       lipgloss.Style
	providerStyle  lipgloss.Style
	titleStyle     lipgloss.Style
	authorStyle    lipgloss.Style
	publisherStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		providerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		authorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		publisherStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type candidateDelegate struct {
	styles itemStyles
}

func newDelegate() candidateDelegate {
	return candidateDelegate{styles: newItemStyles()}
}

func (d candidateDelegate) Height() int                         { return 4 }
func (d candidateDelegate) Spacing() int                        { return 1 }
func (d candidateDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d candidateDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	it, ok := item.(candidateItem)
	if !ok {
		return
	}
	width := m.Width() - 4

	content := lipgloss.JoinVertical(lipgloss.Left,
		d.styles.providerStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(it.provider))),
		d.styles.titleStyle.Render(truncate(it.candidate.Title, width)),
		d.styles.authorStyle.Render(truncate(it.candidate.Author, width)),
		d.styles.publisherStyle.Render(truncate(it.candidate.Publisher, width)),
	)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list   list.Model
	isbn   string
	failed []string
	result SelectionResult
}

func newModel(isbn string, items []candidateItem, failed []string) *model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:   l,
		isbn:   isbn,
		failed: failed,
		result: SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(candidateItem); ok {
				c := selected.candidate
				m.result = SelectionResult{
					Action:    ActionSelected,
					Provider:  selected.provider,
					Selection: &c,
				}
				return m, tea.Quit
			}
		case "s", "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Results for ISBN %s", m.isbn))
	parts := []string{header, m.list.View()}
	if len(m.failed) > 0 {
		parts = append(parts, failedStyle.Render("No usable result: "+strings.Join(m.failed, ", ")))
	}
	parts = append(parts,
		skipButtonStyle.Render(" Skip "),
		helpStyle.Render("Up/Down navigate | Enter save | s skip | q quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161"))

	skipButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("178")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Select lets the user pick one of the successful results of a multi
// provider lookup. Without any successful result it returns ActionSkipped
// without starting the UI.
func Select(isbn string, results []enrichment.Result) (SelectionResult, error) {
	items, failed := splitResults(results)
	if len(items) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	finalModel, err := runProgram(newModel(isbn, items, failed))
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func splitResults(results []enrichment.Result) ([]candidateItem, []string) {
	var (
		items  []candidateItem
		failed []string
	)
	for _, r := range results {
		if r.OK() {
			items = append(items, candidateItem{provider: r.Provider, candidate: *r.Candidate})
			continue
		}
		failed = append(failed, r.Provider)
	}
	return items, failed
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
