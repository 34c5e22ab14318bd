package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/geolocation/pkg/page"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Width(11)
	valueStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
)

func field(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label+":")+valueStyle.Render(value))
}

// renderPosition prints the position lines, or the error line if the last
// fetch failed.
func renderPosition(w io.Writer, s page.State) {
	if s.Error != "" {
		fmt.Fprintln(w, errorStyle.Render(s.Error))
		return
	}
	if s.Position == nil {
		return
	}
	field(w, "latitude", strconv.FormatFloat(s.Position.Latitude, 'f', -1, 64))
	field(w, "longitude", strconv.FormatFloat(s.Position.Longitude, 'f', -1, 64))
}

// renderAuthorized prints the authorized flag, or the error line.
func renderAuthorized(w io.Writer, s page.State) {
	if s.Error != "" {
		fmt.Fprintln(w, errorStyle.Render(s.Error))
		return
	}
	field(w, "authorized", strconv.FormatBool(s.Authorized))
}
