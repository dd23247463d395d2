// The timeconv command converts between UTC date-times, Windows FILETIME
// values and Unix seconds on the terminal.
//
// With no conversion flags it prints the current time in every
// representation. -watch redraws the current time every second and -repl
// starts an interactive command loop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "time/tzdata"

	"github.com/aelexs/timeconverter/internal/config"
	"github.com/aelexs/timeconverter/internal/converter/app"
	"github.com/aelexs/timeconverter/internal/converter/cli"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/internal/observability"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// Exit codes.
const (
	exitOK    = 0
	exitInput = 1 // a conversion input was rejected or invalid
	exitUsage = 2
	exitFatal = 3
)

type options struct {
	offset   int
	tz       string
	datetime string
	filetime string
	unix     string
	watch    bool
	repl     bool

	// set records which flags appeared on the command line; an explicitly
	// empty conversion value is still converted (and rejected).
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("timeconv", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{set: make(map[string]bool)}
	fs.IntVar(&o.offset, "offset", domain.DefaultOffsetHours, "zone offset in whole `hours` from UTC, -12 to 14")
	fs.StringVar(&o.tz, "tz", "", "IANA `zone` for the local display and datetime input (default from TIMECONV_DISPLAY_LOCATION)")
	fs.StringVar(&o.datetime, "datetime", "", "convert a date-time: YYYY-MM-DDTHH:mm[:ss], YYYY-MM-DD or RFC 3339")
	fs.StringVar(&o.filetime, "filetime", "", "convert a FILETIME (100 ns ticks since 1601-01-01 UTC)")
	fs.StringVar(&o.unix, "unix", "", "convert Unix `seconds`")
	fs.BoolVar(&o.watch, "watch", false, "redraw the current time every refresh interval")
	fs.BoolVar(&o.repl, "repl", false, "start an interactive command loop")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	if o.watch && o.repl {
		return nil, errors.New("-watch and -repl cannot be combined")
	}
	return o, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "timeconv: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "timeconv: load config: %v\n", err)
		return exitFatal
	}

	// Logs go to stderr so that stdout stays plain output.
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "timeconv",
		Environment: cfg.Environment,
		Output:      stderr,
	})

	telemetry, err := observability.InitTelemetry(ctx, observability.TelemetryConfig{
		ServiceName:    "timeconv",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		SampleRatio:    cfg.OTEL.SampleRatio,
	})
	if err != nil {
		fmt.Fprintf(stderr, "timeconv: initialize telemetry: %v\n", err)
		return exitFatal
	}
	defer func() {
		otelCtx, cancel := context.WithTimeout(context.Background(), domain.ShutdownOTELTimeout)
		defer cancel()
		if err := telemetry.Shutdown(otelCtx); err != nil {
			logger.Warn("failed to shutdown telemetry", slog.String("error", err.Error()))
		}
	}()

	offset := cfg.Display.OffsetHours
	if opts.set["offset"] {
		if offset, err = app.ParseOffsetHours(strconv.Itoa(opts.offset)); err != nil {
			fmt.Fprintf(stderr, "timeconv: -offset: %v\n", err)
			return exitUsage
		}
	}

	zone := cfg.Display.Location
	if opts.set["tz"] {
		zone = opts.tz
	}
	loc, err := domain.ResolveLocation(zone)
	if err != nil {
		fmt.Fprintf(stderr, "timeconv: -tz: %v\n", err)
		return exitUsage
	}

	svc := app.NewService(app.ServiceConfig{
		Clock:    domain.RealClock{},
		Location: loc,
		Logger:   logger,
	})

	switch {
	case opts.watch:
		return exitCode(stderr, cli.Watch(ctx, stdout, svc, cfg.Display.RefreshInterval, offset))
	case opts.repl:
		repl := cli.NewREPL(svc, svc.InitialState(ctx, offset), stdout, logger)
		return exitCode(stderr, repl.RunInteractive(ctx))
	}

	return convert(ctx, svc, opts, offset, stdout, stderr)
}

// convert prints the conversions named on the command line, or every field
// when there are none.
func convert(ctx context.Context, svc *app.Service, opts *options, offset int, stdout, stderr io.Writer) int {
	st := svc.InitialState(ctx, offset)

	edits := []struct {
		flag  string
		field app.Field
		value string
		show  func(app.State) error
	}{
		{"datetime", app.FieldDateTime, opts.datetime, func(st app.State) error {
			return cli.RenderDateTime(stdout, st.Inputs.DateTime, st.FromDateTime)
		}},
		{"filetime", app.FieldFileTime, opts.filetime, func(st app.State) error {
			return cli.RenderFileTime(stdout, st.Inputs.FileTime, st.FromFileTime)
		}},
		{"unix", app.FieldUnixTime, opts.unix, func(st app.State) error {
			return cli.RenderUnix(stdout, st.Inputs.UnixTime, st.FromUnix)
		}},
	}

	code := exitOK
	converted := false
	for _, e := range edits {
		if !opts.set[e.flag] {
			continue
		}
		if converted {
			fmt.Fprintln(stdout)
		}
		converted = true

		var err error
		st, err = svc.Apply(ctx, st, app.Edit{Field: e.field, Value: e.value})
		if err != nil {
			fmt.Fprintf(stderr, "timeconv: -%s: %v\n", e.flag, err)
			code = exitInput
			if !errors.Is(err, timeconv.ErrInvalidDate) {
				continue
			}
		}
		if err := e.show(st); err != nil {
			return exitCode(stderr, err)
		}
	}

	if !converted {
		return exitCode(stderr, cli.Render(stdout, st))
	}
	return code
}

func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "timeconv: %v\n", err)
	return exitFatal
}
