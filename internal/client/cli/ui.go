package cli

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Theme names as stored in settings.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// formatter colours text, or falls back to plain text plus a prefix when
// colour output is disabled.
type formatter struct {
	color  *color.Color
	prefix string
}

func (f formatter) Sprint(a ...any) string {
	text := fmt.Sprint(a...)
	if noColor() {
		return f.prefix + text
	}
	return f.color.Sprint(text)
}

func (f formatter) Sprintf(format string, a ...any) string {
	return f.Sprint(fmt.Sprintf(format, a...))
}

func noColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return color.NoColor
}

// palette is the set of formatters for one theme.
type palette struct {
	name    string
	Success formatter
	Error   formatter
	Info    formatter
	Muted   formatter
	Title   formatter
	banner  string
}

func newPalette(theme string) *palette {
	if theme == ThemeLight {
		return &palette{
			name:    ThemeLight,
			Success: formatter{color.New(color.FgGreen), ""},
			Error:   formatter{color.New(color.FgRed), "error: "},
			Info:    formatter{color.New(color.FgBlue), ""},
			Muted:   formatter{color.New(color.FgBlack, color.Faint), ""},
			Title:   formatter{color.New(color.FgBlack, color.Bold), ""},
			banner:  "blue",
		}
	}
	return &palette{
		name:    ThemeDark,
		Success: formatter{color.New(color.FgHiGreen), ""},
		Error:   formatter{color.New(color.FgHiRed), "error: "},
		Info:    formatter{color.New(color.FgHiCyan), ""},
		Muted:   formatter{color.New(color.FgHiBlack), ""},
		Title:   formatter{color.New(color.FgHiWhite, color.Bold), ""},
		banner:  "cyan",
	}
}

// Banner renders the program name as ASCII art.
func (p *palette) Banner() string {
	if noColor() {
		return figure.NewFigure("NotesKeeper", "", true).String()
	}
	return figure.NewColorFigure("NotesKeeper", "", p.banner, true).ColorString()
}

// toggleTheme returns the other theme name.
func toggleTheme(theme string) string {
	if theme == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
