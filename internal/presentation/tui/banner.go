package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"             _       _     _",
	" _ __   __ _| |_ ___| |__ | |__   __ _ _   _",
	"| '_ \\ / _` | __/ __| '_ \\| '_ \\ / _` | | | |",
	"| |_) | (_| | || (__| | | | |_) | (_| | |_| |",
	"| .__/ \\__,_|\\__\\___|_| |_|_.__/ \\__,_|\\__, |",
	"|_|                                    |___/",
}

var bannerColors = []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8"}

// PrintBanner writes the patchbay banner to w, colored when w is a terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
