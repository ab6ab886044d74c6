package terminal

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the storefront banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{`  ___ _                __                _   `, "#818cf8"},
		{` / __| |_ ___ _ _ ___ / _|_ _ ___ _ _  | |_ `, "#a78bfa"},
		{` \__ \  _/ _ \ '_/ -_)  _| '_/ _ \ ' \ |  _|`, "#e879f9"},
		{` |___/\__\___/_| \___|_| |_| \___/_||_| \__|`, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Dim renders s in a muted color for status lines.
func Dim(s string) string {
	return termenv.String(s).Faint().String()
}
