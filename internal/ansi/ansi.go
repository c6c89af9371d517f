// Package ansi holds terminal escape helpers and the color switch shared by
// the CLI and the diagnostics writer.
package ansi

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const esc = "\x1b["

// SGR attributes.
const (
	Reset     = esc + "0m"
	Bold      = esc + "1m"
	Dim       = esc + "2m"
	Italic    = esc + "3m"
	Underline = esc + "4m"
	Blink     = esc + "5m"
	Reverse   = esc + "7m"
	Hidden    = esc + "8m"
	Strike    = esc + "9m"
)

// Screen and cursor control.
const (
	ClearScreen = esc + "2J"
	ClearLine   = esc + "2K"
	CursorHome  = esc + "H"
	CursorSave  = esc + "s"
	CursorLoad  = esc + "u"
	CursorHide  = esc + "?25l"
	CursorShow  = esc + "?25h"
)

// FG returns the foreground escape for one of the 256 palette colors.
func FG(n uint8) string { return fmt.Sprintf("%s38;5;%dm", esc, n) }

// BG returns the background escape for one of the 256 palette colors.
func BG(n uint8) string { return fmt.Sprintf("%s48;5;%dm", esc, n) }

// RGB returns a 24-bit foreground escape.
func RGB(r, g, b uint8) string { return fmt.Sprintf("%s38;2;%d;%d;%dm", esc, r, g, b) }

// BGRGB returns a 24-bit background escape.
func BGRGB(r, g, b uint8) string { return fmt.Sprintf("%s48;2;%d;%d;%dm", esc, r, g, b) }

// CursorUp moves the cursor n lines up.
func CursorUp(n int) string { return fmt.Sprintf("%s%dA", esc, n) }

// CursorDown moves the cursor n lines down.
func CursorDown(n int) string { return fmt.Sprintf("%s%dB", esc, n) }

// CursorTo moves the cursor to 1-based row and column.
func CursorTo(row, col int) string { return fmt.Sprintf("%s%d;%dH", esc, row, col) }

// Wrap surrounds text with style and a reset.
func Wrap(style, text string) string {
	if style == "" {
		return text
	}
	return style + text + Reset
}

var escapeRE = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// Strip removes escape sequences, for width computations.
func Strip(s string) string {
	if !strings.Contains(s, "\x1b") {
		return s
	}
	return escapeRE.ReplaceAllString(s, "")
}

// Mode is the --color setting.
type Mode uint8

const (
	Auto Mode = iota
	On
	Off
)

func (m Mode) String() string {
	switch m {
	case On:
		return "on"
	case Off:
		return "off"
	}
	return "auto"
}

// ParseMode reads a --color value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return Auto, nil
	case "on", "always", "true":
		return On, nil
	case "off", "never", "false":
		return Off, nil
	}
	return Auto, errors.Newf("invalid color mode %q (expected: auto|on|off)", s)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Enabled resolves m for output going to f. Auto honours NO_COLOR.
func (m Mode) Enabled(f *os.File) bool {
	switch m {
	case On:
		return true
	case Off:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(f)
}

// Apply sets the process-wide fatih/color switch for output to f.
func Apply(m Mode, f *os.File) {
	color.NoColor = !m.Enabled(f)
}
