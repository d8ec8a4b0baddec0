package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the beatbox banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"  _                _   _", "#818cf8"},
		{" | |__   ___  __ _| |_| |__   _____  __", "#a78bfa"},
		{" | '_ \\ / _ \\/ _` | __| '_ \\ / _ \\ \\/ /", "#c084fc"},
		{" | |_) |  __/ (_| | |_| |_) | (_) >  <", "#e879f9"},
		{" |_.__/ \\___|\\__,_|\\__|_.__/ \\___/_/\\_\\", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
