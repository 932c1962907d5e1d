// Command verifytrace checks allocation traces for consistency and can
// repair traces whose frees were recorded after the reuse of their address.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/memtrace/trace"
	"github.com/wippyai/memtrace/verify"
	"github.com/wippyai/memtrace/watch"
)

type options struct {
	color       string
	paths       []string
	jobs        int
	repair      bool
	interactive bool
	watch       bool
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, ok := parseFlags(args, stderr)
	if !ok {
		return 1
	}

	log, err := newLogger(opts.verbose, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	verify.SetLogger(log)
	watch.SetLogger(log)

	pr := newPrinter(stdout, useColor(opts.color, stdout))
	vopts := []verify.Option{
		verify.WithRepair(opts.repair),
		verify.WithLogger(log),
		verify.WithConcurrency(opts.jobs),
	}

	if opts.interactive {
		results := verify.Batch(ctx, opts.paths, vopts...)
		if err := runInteractive(results); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	vopts = append(vopts, verify.WithProgress(pr.result))
	verify.Batch(ctx, opts.paths, vopts...)

	if opts.watch {
		if err := watchTraces(ctx, opts.paths, pr, vopts, log); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	// Exit status does not reflect per-file validity.
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, bool) {
	var opts options
	fs := flag.NewFlagSet("verifytrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.repair, "attempt_repair", false, "If a trace file has some errors, try to fix it. The new file will be named TRACE_FILE"+trace.RepairSuffix)
	fs.BoolVar(&opts.repair, "attempt_recovery", false, "Alias for -attempt_repair")
	fs.IntVar(&opts.jobs, "j", 1, "Number of trace files to verify in parallel")
	fs.BoolVar(&opts.interactive, "i", false, "Browse violations interactively")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and verify traces again when they change")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	fs.StringVar(&opts.color, "color", "auto", "Color output: auto, always or never")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return opts, false
	}
	opts.paths = fs.Args()

	switch {
	case len(opts.paths) == 0:
		fmt.Fprintln(stderr, "Requires at least one TRACE_FILE")
	case opts.interactive && opts.watch:
		fmt.Fprintln(stderr, "-i and -watch cannot be combined")
	case opts.color != "auto" && opts.color != "always" && opts.color != "never":
		fmt.Fprintf(stderr, "Invalid -color value %q\n", opts.color)
	default:
		return opts, true
	}
	fs.Usage()
	return opts, false
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: %s [-attempt_repair] [-j N] [-i | -watch] TRACE_FILE1 TRACE_FILE2 ...\n", fs.Name())
	fs.PrintDefaults()
	fmt.Fprintln(w, "  TRACE_FILE1 TRACE_FILE2 ...")
	fmt.Fprintln(w, "    \tThe trace files to verify (text, binary or .zip)")
}

func newLogger(verbose bool, stderr io.Writer) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(stderr),
		zap.WarnLevel,
	)
	return zap.New(core), nil
}

func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func watchTraces(ctx context.Context, paths []string, pr *printer, vopts []verify.Option, log *zap.Logger) error {
	w, err := watch.New(paths, watch.WithLogger(log))
	if err != nil {
		return err
	}
	defer w.Close()

	pr.watching(paths)
	return w.Run(ctx, func(path string) {
		verify.Batch(ctx, []string{path}, vopts...)
	})
}
