package panes

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyleking/gh-makedispatch/internal/ui"
)

// ErrPickCancelled is returned when the user leaves the picker without choosing.
var ErrPickCancelled = errors.New("workflow selection cancelled")

// PickerItem is one selectable workflow.
type PickerItem struct {
	File string
	Name string
}

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Select: key.NewBinding(key.WithKeys("enter")),
		Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
	}
}

// WorkflowsModel is a single-choice list of workflows.
type WorkflowsModel struct {
	items         []PickerItem
	selectedIndex int
	chosen        string
	cancelled     bool
	keys          pickerKeyMap
	styles        ui.Styles
}

// NewWorkflowsModel creates a picker over items.
func NewWorkflowsModel(items []PickerItem, styles ui.Styles) WorkflowsModel {
	return WorkflowsModel{
		items:  items,
		keys:   defaultPickerKeyMap(),
		styles: styles,
	}
}

// MoveUp moves selection up.
func (m *WorkflowsModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves selection down.
func (m *WorkflowsModel) MoveDown() {
	if m.selectedIndex < len(m.items)-1 {
		m.selectedIndex++
	}
}

// Chosen returns the selected workflow file once the user confirmed.
func (m WorkflowsModel) Chosen() (string, bool) {
	return m.chosen, m.chosen != ""
}

// Cancelled reports whether the user left without choosing.
func (m WorkflowsModel) Cancelled() bool {
	return m.cancelled
}

// Init implements tea.Model.
func (m WorkflowsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m WorkflowsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.MoveUp()
	case key.Matches(keyMsg, m.keys.Down):
		m.MoveDown()
	case key.Matches(keyMsg, m.keys.Select):
		if len(m.items) > 0 {
			m.chosen = m.items[m.selectedIndex].File
		} else {
			m.cancelled = true
		}
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m WorkflowsModel) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var content strings.Builder
	content.WriteString(m.styles.Title.Render("Select a workflow to dispatch"))
	content.WriteString("\n\n")

	for i, item := range m.items {
		indicator := "  "
		style := m.styles.Normal
		if i == m.selectedIndex {
			indicator = "> "
			style = m.styles.Selected
		}
		row := indicator + item.File
		if item.Name != "" && item.Name != item.File {
			row += "  " + m.styles.Muted.Render(item.Name)
		}
		content.WriteString(style.Render(row))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(m.styles.Help.Render("↑/↓ move • enter select • esc cancel"))
	content.WriteString("\n")
	return content.String()
}

// Pick runs the picker on the terminal, drawing to out, and returns the chosen file.
func Pick(items []PickerItem, in io.Reader, out io.Writer) (string, error) {
	model := NewWorkflowsModel(items, ui.NewStyles(lipgloss.NewRenderer(out)))
	final, err := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", err
	}

	result, ok := final.(WorkflowsModel)
	if !ok || result.Cancelled() {
		return "", ErrPickCancelled
	}
	chosen, _ := result.Chosen()
	return chosen, nil
}
