package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/termfx/internal/registry"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	hintStyle    = lipgloss.NewStyle().Faint(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available demos",
	Long:  `Shows a list of all demos registered in termfx and the backend each one draws with.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	demos := registry.List()

	if len(demos) == 0 {
		fmt.Println("No demos available.")
		return
	}

	fmt.Println(headingStyle.Render("Available demos"))
	fmt.Println()

	t := newTable("ID", "Title", "Backend")
	for _, d := range demos {
		t.Row(d.ID, d.Title, d.Backend)
	}
	fmt.Println(t.Render())

	fmt.Println()
	fmt.Println(hintStyle.Render("Run 'termfx run <id>' to start a demo."))
}

// newTable returns a borderless table with the given headers.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
