// Package cli is the terminal entry point into the converter: a one-shot
// renderer, a watch loop that redraws the current time every tick, and an
// interactive command loop.
package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aelexs/timeconverter/internal/converter/app"
)

type row struct {
	label string
	value string
}

func writeRows(w io.Writer, heading string, rows []row) error {
	if heading != "" {
		if _, err := fmt.Fprintf(w, "%s\n", heading); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "  %s:\t%s\n", r.label, r.value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderCurrent prints the current-time fields.
func RenderCurrent(w io.Writer, v app.CurrentView) error {
	return writeRows(w, "Current time", []row{
		{"Local", v.Local},
		{fmt.Sprintf("UTC%+d", v.OffsetHours), v.Zone},
		{"UTC", v.UTC},
		{"FILETIME", v.FileTime},
		{"Unix time", v.UnixTime},
	})
}

// RenderDateTime prints the fields converted from a datetime input.
func RenderDateTime(w io.Writer, input string, v app.DateTimeView) error {
	return writeRows(w, fmt.Sprintf("Date-time %s", input), []row{
		{"UTC", v.UTC},
		{"FILETIME", v.FileTime},
		{"Unix time", v.UnixTime},
	})
}

// RenderFileTime prints the fields converted from a FILETIME input.
func RenderFileTime(w io.Writer, input string, v app.FileTimeView) error {
	return writeRows(w, fmt.Sprintf("FILETIME %s", input), []row{
		{"UTC", v.UTC},
		{"Unix time", v.UnixTime},
	})
}

// RenderUnix prints the fields converted from a Unix seconds input.
func RenderUnix(w io.Writer, input string, v app.UnixView) error {
	return writeRows(w, fmt.Sprintf("Unix time %s", input), []row{
		{"UTC", v.UTC},
		{"FILETIME", v.FileTime},
	})
}

// Render prints every field of st, one section per input.
func Render(w io.Writer, st app.State) error {
	sections := []func() error{
		func() error { return RenderCurrent(w, st.Current) },
		func() error { return RenderDateTime(w, st.Inputs.DateTime, st.FromDateTime) },
		func() error { return RenderFileTime(w, st.Inputs.FileTime, st.FromFileTime) },
		func() error { return RenderUnix(w, st.Inputs.UnixTime, st.FromUnix) },
	}
	for i, section := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := section(); err != nil {
			return err
		}
	}
	return nil
}
