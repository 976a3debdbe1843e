// Package tui holds the interactive demo picker shown by "termfx menu".
// It is a regular Bubble Tea program; demos themselves run on the engine.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/termfx/internal/registry"
	"github.com/vovakirdan/termfx/internal/storage"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	subtitleStyle = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statsStyle    = lipgloss.NewStyle().Faint(true)
)

// MenuItem represents a selectable demo in the menu.
type MenuItem struct {
	DemoID  string
	Title   string
	Backend string
	Runs    int     // recorded runs, 0 without a store
	AvgFPS  float64 // average over recorded runs
}

// MenuModel is the Bubble Tea model for the demo picker.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	keys     menuKeys
	quitting bool
	selected *MenuItem // Set when user selects a demo
}

// NewMenuModel creates a menu listing every registered demo. stats may be
// nil; otherwise it annotates each entry with its recorded runs.
func NewMenuModel(stats map[string]*storage.DemoStats) MenuModel {
	demos := registry.List()
	items := make([]MenuItem, 0, len(demos))
	for _, d := range demos {
		item := MenuItem{DemoID: d.ID, Title: d.Title, Backend: d.Backend}
		if st, ok := stats[d.ID]; ok {
			item.Runs = st.Runs
			item.AvgFPS = st.AvgFPS
		}
		items = append(items, item)
	}

	return MenuModel{
		items: items,
		width: 80,
		keys:  defaultMenuKeys(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.action(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start the demo
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.center(titleStyle.Render("T E R M F X")))
	b.WriteString("\n\n")
	b.WriteString(m.center(subtitleStyle.Render("Select a demo")))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(m.center("No demos available."))
		b.WriteString("\n")
	}

	lines := make([]string, len(m.items))
	for i, item := range m.items {
		cursor := "  "
		title := fmt.Sprintf("%-24s", item.Title)
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
			title = cursorStyle.Render(title)
		}
		line := fmt.Sprintf("%s%s %s", cursor, title, statsStyle.Render(item.Backend))
		if item.Runs > 0 {
			line += statsStyle.Render(fmt.Sprintf("  %d runs, %.0f fps", item.Runs, item.AvgFPS))
		}
		lines[i] = line
	}
	// Center the list as a block so the cursors line up.
	b.WriteString(m.center(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	b.WriteString("\n\n")

	help := make([]string, 0, 4)
	for _, k := range m.keys.help() {
		h := k.Help()
		help = append(help, h.Key+": "+h.Desc)
	}
	b.WriteString(m.center(subtitleStyle.Render(strings.Join(help, "  |  "))))
	b.WriteString("\n")

	return b.String()
}

func (m MenuModel) center(s string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	DemoID string
	Quit   bool
}

// RunMenu shows the picker on in/out until the user selects a demo or quits.
// store may be nil.
func RunMenu(ctx context.Context, in io.Reader, out io.Writer, store *storage.Store) (MenuResult, error) {
	var stats map[string]*storage.DemoStats
	if store != nil {
		// Annotations only; a failing store still leaves a usable menu.
		stats, _ = store.GetAllDemoStats()
	}

	p := tea.NewProgram(
		NewMenuModel(stats),
		tea.WithAltScreen(),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Quit: true}, fmt.Errorf("tui: menu: %w", err)
	}

	m, ok := finalModel.(MenuModel)
	if !ok || m.Selected() == nil {
		return MenuResult{Quit: true}, nil
	}
	return MenuResult{DemoID: m.Selected().DemoID}, nil
}
