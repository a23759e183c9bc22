package demo

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var palette = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// Render prints lines to w, one per call, with the source name colored when
// w is a terminal.
func Render(w io.Writer, lines []Line) {
	out := termenv.NewOutput(w)
	colors := map[string]termenv.Color{}
	for _, l := range lines {
		c, ok := colors[l.Source]
		if !ok {
			c = out.Color(palette[len(colors)%len(palette)])
			colors[l.Source] = c
		}
		src := out.String(fmt.Sprintf("%-6s", l.Source)).Foreground(c).Bold()
		fmt.Fprintf(w, "%s %s\n", src, l.Text)
	}
}
