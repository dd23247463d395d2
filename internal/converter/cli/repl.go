package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aelexs/timeconverter/internal/converter/app"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

const prompt = "timeconv> "

const helpText = `Commands:
  datetime V   convert a date-time (YYYY-MM-DDTHH:mm[:ss], YYYY-MM-DD or RFC 3339)
  filetime V   convert a FILETIME (100 ns ticks since 1601-01-01 UTC)
  unix V       convert Unix seconds
  offset H     set the zone offset, whole hours from -12 to 14
  now          show the current time
  show         show every field
  help         show this help
  quit         leave
`

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// stateService is the set of app operations the command loop requires.
// The *app.Service satisfies this.
type stateService interface {
	Apply(ctx context.Context, st app.State, e app.Edit) (app.State, error)
	Tick(ctx context.Context, st app.State) app.State
}

// LineReader supplies command lines. *readline.Instance satisfies this.
type LineReader interface {
	Readline() (string, error)
}

// REPL interprets converter commands against a State.
type REPL struct {
	svc    stateService
	st     app.State
	out    io.Writer
	logger *slog.Logger
}

// NewREPL creates a command interpreter starting from st.
func NewREPL(svc stateService, st app.State, out io.Writer, logger *slog.Logger) *REPL {
	if logger == nil {
		logger = slog.Default()
	}
	return &REPL{svc: svc, st: st, out: out, logger: logger}
}

// State returns the current state.
func (r *REPL) State() app.State {
	return r.st
}

// Exec runs one command line. Input errors are printed and do not end the
// loop; only output failures are returned. quit reports whether the line
// asked to leave.
func (r *REPL) Exec(ctx context.Context, line string) (quit bool, err error) {
	err = r.exec(ctx, strings.TrimSpace(line))
	if errors.Is(err, errQuit) {
		return true, nil
	}
	return false, err
}

func (r *REPL) exec(ctx context.Context, line string) error {
	if line == "" {
		return nil
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		_, err := io.WriteString(r.out, helpText)
		return err
	case "now":
		r.st = r.svc.Tick(ctx, r.st)
		return RenderCurrent(r.out, r.st.Current)
	case "show":
		r.st = r.svc.Tick(ctx, r.st)
		return Render(r.out, r.st)
	case "datetime":
		return r.edit(ctx, app.FieldDateTime, arg, func() error {
			return RenderDateTime(r.out, r.st.Inputs.DateTime, r.st.FromDateTime)
		})
	case "filetime":
		return r.edit(ctx, app.FieldFileTime, arg, func() error {
			return RenderFileTime(r.out, r.st.Inputs.FileTime, r.st.FromFileTime)
		})
	case "unix", "unixtime":
		return r.edit(ctx, app.FieldUnixTime, arg, func() error {
			return RenderUnix(r.out, r.st.Inputs.UnixTime, r.st.FromUnix)
		})
	case "offset":
		return r.edit(ctx, app.FieldOffset, arg, func() error {
			return RenderCurrent(r.out, r.st.Current)
		})
	}

	_, err := fmt.Fprintf(r.out, "unknown command %q, type help for a list\n", cmd)
	return err
}

// edit applies one input change. Rejected input is reported and leaves the
// previous view in place; an invalid date is reported and then shown.
func (r *REPL) edit(ctx context.Context, field app.Field, value string, show func() error) error {
	if value == "" {
		r.logger.DebugContext(ctx, "command without value", slog.String("field", string(field)))
		_, err := fmt.Fprintf(r.out, "error: %s: %s needs a value\n", domain.ErrMissingInput, field)
		return err
	}

	next, applyErr := r.svc.Apply(ctx, r.st, app.Edit{Field: field, Value: value})
	r.st = next
	if applyErr != nil {
		if _, err := fmt.Fprintf(r.out, "error: %v\n", applyErr); err != nil {
			return err
		}
		if !errors.Is(applyErr, timeconv.ErrInvalidDate) {
			return nil
		}
	}
	return show()
}

// Run reads lines from in until quit, end of input or ctx is done.
// Interrupts clear the current line.
func (r *REPL) Run(ctx context.Context, in LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := in.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		quit, err := r.Exec(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// RunInteractive runs the command loop on the terminal with line editing.
func (r *REPL) RunInteractive(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("start line editor: %w", err)
	}
	defer rl.Close()
	// Closing the editor unblocks a pending Readline with io.EOF.
	stop := context.AfterFunc(ctx, func() { _ = rl.Close() })
	defer stop()

	r.out = rl.Stdout()
	if _, err := io.WriteString(r.out, "Type help for commands.\n"); err != nil {
		return err
	}
	return r.Run(ctx, rl)
}
