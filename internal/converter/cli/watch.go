package cli

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/aelexs/timeconverter/internal/converter/app"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\x1b[H\x1b[2J"

// refresher is the app operation Watch requires. The *app.Service satisfies this.
type refresher interface {
	Refresh(ctx context.Context, interval time.Duration, offset func() int, sink func(app.CurrentView) error) error
}

// Watch prints the current-time fields every interval until ctx is done.
// On a terminal each tick redraws the screen; otherwise views are appended,
// separated by blank lines.
func Watch(ctx context.Context, w io.Writer, svc refresher, interval time.Duration, offsetHours int) error {
	redraw := isTerminal(w)
	first := true

	return svc.Refresh(ctx, interval, app.FixedOffset(offsetHours), func(v app.CurrentView) error {
		switch {
		case redraw:
			if _, err := io.WriteString(w, clearScreen); err != nil {
				return err
			}
		case !first:
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false
		return RenderCurrent(w, v)
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
