package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/termfx/internal/font"
)

var flagPreview string

var fontCmd = &cobra.Command{
	Use:   "font [path]",
	Short: "Inspect a PSF2 font",
	Long: `Print the header of a PSF2 font and preview a few glyphs.
Without a path the built-in font is shown.

Examples:
  termfx font
  termfx font /usr/share/consolefonts/Lat2-Terminus16.psf
  termfx font ./my.psf --preview "hello"`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFont,
}

func init() {
	fontCmd.Flags().StringVar(&flagPreview, "preview", "termfx", "Text to preview")
}

var pixelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

func runFont(cmd *cobra.Command, args []string) {
	f := font.Builtin()
	name := "built-in"
	if len(args) == 1 {
		var err error
		f, err = font.LoadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading font: %v\n", err)
			os.Exit(1)
		}
		name = args[0]
	}

	fmt.Println(headingStyle.Render("Font - " + name))
	fmt.Println()

	h := f.Header
	t := newTable("Field", "Value")
	t.Row("version", fmt.Sprint(h.Version))
	t.Row("header size", fmt.Sprint(h.HeaderSize))
	t.Row("flags", fmt.Sprintf("%#x", h.Flags))
	t.Row("glyphs", fmt.Sprint(h.GlyphCount))
	t.Row("bytes per glyph", fmt.Sprint(h.GlyphByteSize))
	t.Row("size", fmt.Sprintf("%dx%d", h.GlyphWidth, h.GlyphHeight))
	fmt.Println(t.Render())
	fmt.Println()

	fmt.Println(renderPreview(f, flagPreview))
}

// renderPreview lays the glyphs of s side by side, one character per pixel.
// Runes the font does not cover are drawn as '?'.
func renderPreview(f *font.Font, s string) string {
	rows := make([]strings.Builder, f.GlyphHeight())
	for _, r := range strings.ToLower(s) {
		g, ok := f.Glyph(r)
		if !ok {
			g, _ = f.Glyph('?')
		}
		for y := range rows {
			for x := 0; x < font.GlyphWidth; x++ {
				if y < len(g) && g[y][x] == 1 {
					rows[y].WriteString("█")
				} else {
					rows[y].WriteByte(' ')
				}
			}
			rows[y].WriteByte(' ')
		}
	}

	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = strings.TrimRight(rows[i].String(), " ")
	}
	return pixelStyle.Render(strings.Join(lines, "\n"))
}
