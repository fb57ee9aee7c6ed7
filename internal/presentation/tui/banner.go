package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"   __ _ _   _  ___  ___| |_| (_)_ __   ___ ",
	"  / _` | | | |/ _ \\/ __| __| | | '_ \\ / _ \\",
	" | (_| | |_| |  __/\\__ \\ |_| | | | | |  __/",
	"  \\__, |\\__,_|\\___||___/\\__|_|_|_| |_|\\___|",
	"     |_|",
}

var bannerColors = []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa"}

// PrintBanner writes the questline banner followed by the version.
// The gradient degrades to plain text when w is not a color terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("     "+v).Faint())
	}
	fmt.Fprintln(w)
}
