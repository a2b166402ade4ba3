package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

const (
	colorX      = "#6366f1"
	colorO      = "#a855f7"
	colorAccent = "#818cf8"
)

// PrintBanner writes the title banner.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text, color string
	}{
		{` _____ _        _____             _____`, "#818cf8"},
		{`|_   _(_) ___  |_   _|_ _  ___   |_   _|__   ___`, "#a78bfa"},
		{`  | | | |/ __|   | |/ _' |/ __|    | |/ _ \ / _ \`, "#c084fc"},
		{`  | | | | (__    | | (_| | (__     | | (_) |  __/`, "#e879f9"},
		{`  |_| |_|\___|   |_|\__,_|\___|    |_|\___/ \___|`, "#f472b6"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
