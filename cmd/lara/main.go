package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"

	"lara/interpreter-go/pkg/ast"
	"lara/interpreter-go/pkg/driver"
	"lara/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "lara-cli 0.1.0-dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return exitUsage
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return exitOK
	case "run":
		return runEntry(args[1:])
	case "parse":
		return runParse(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "test":
		return runFixtures(args[1:])
	default:
		return runEntry(args)
	}
}

// runFlags holds the evaluator flags shared by run and repl.
type runFlags struct {
	scoping  *interpreter.ScopingMode
	depth    int
	verbose  bool
	operands []string
}

func parseRunFlags(command string, args []string) (*runFlags, error) {
	opts, optind, err := getopt.Getopts(append([]string{command}, args...), "s:d:v")
	if err != nil {
		return nil, err
	}
	flags := &runFlags{}
	for _, opt := range opts {
		switch opt.Option {
		case 's':
			mode, err := interpreter.ParseScopingMode(opt.Value)
			if err != nil {
				return nil, err
			}
			flags.scoping = &mode
		case 'd':
			n, err := strconv.Atoi(opt.Value)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid call depth %q", opt.Value)
			}
			if n > interpreter.MaxCallDepthLimit {
				return nil, fmt.Errorf("call depth %d exceeds the limit of %d", n, interpreter.MaxCallDepthLimit)
			}
			flags.depth = n
		case 'v':
			flags.verbose = true
		}
	}
	flags.operands = args[optind-1:]
	return flags, nil
}

// options layers command-line flags over the manifest settings.
func (f *runFlags) options(manifest *driver.Manifest) []interpreter.Option {
	opts := manifest.Options()
	if f.scoping != nil {
		opts = append(opts, interpreter.WithScoping(*f.scoping))
	}
	if f.depth > 0 {
		opts = append(opts, interpreter.WithMaxCallDepth(f.depth))
	}
	if f.verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, interpreter.WithLogger(slog.New(handler)))
	}
	return append(opts, interpreter.WithStdout(os.Stdout))
}

func runEntry(args []string) int {
	flags, err := parseRunFlags("lara run", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lara run: %v\n", err)
		printUsage(os.Stderr)
		return exitUsage
	}
	if len(flags.operands) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(flags.operands[1:], " "))
		return exitUsage
	}

	var entry string
	if len(flags.operands) == 1 {
		entry = flags.operands[0]
	}

	start := "."
	if entry != "" {
		start = filepath.Dir(entry)
	}
	manifest, err := loadManifestFrom(start)
	if err != nil && !errors.Is(err, driver.ErrManifestNotFound) {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return exitError
	}

	if entry == "" {
		if manifest == nil || manifest.EntryPath() == "" {
			fmt.Fprintln(os.Stderr, "lara run requires a source file or a lara.yml with an entry")
			return exitUsage
		}
		entry = manifest.EntryPath()
	}
	return executeEntry(entry, flags.options(manifest))
}

func executeEntry(entry string, opts []interpreter.Option) int {
	program, err := driver.LoadProgram(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interp := interpreter.New(opts...)
	if err := interp.RunContext(ctx, program); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		return exitError
	}
	return exitOK
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func runParse(args []string) int {
	opts, optind, err := getopt.Getopts(append([]string{"lara parse"}, args...), "f:")
	if err != nil {
		fmt.Fprintf(os.Stderr, "lara parse: %v\n", err)
		return exitUsage
	}
	format := ast.FormatJSON
	for _, opt := range opts {
		if opt.Option == 'f' {
			switch ast.Format(strings.ToLower(opt.Value)) {
			case ast.FormatJSON:
				format = ast.FormatJSON
			case ast.FormatYAML, "yml":
				format = ast.FormatYAML
			default:
				fmt.Fprintf(os.Stderr, "lara parse: unknown format %q\n", opt.Value)
				return exitUsage
			}
		}
	}
	operands := args[optind-1:]
	if len(operands) != 1 {
		fmt.Fprintln(os.Stderr, "lara parse requires exactly one file")
		return exitUsage
	}

	program, err := driver.LoadProgram(operands[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return exitError
	}
	if err := ast.Encode(os.Stdout, program, format); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write tree: %v\n", err)
		return exitError
	}
	return exitOK
}

func runFixtures(args []string) int {
	root := filepath.Join("testdata", "fixtures")
	switch len(args) {
	case 0:
	case 1:
		root = args[0]
	default:
		fmt.Fprintln(os.Stderr, "lara test takes at most one directory")
		return exitUsage
	}

	dirs, err := driver.DiscoverFixtures(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitError
	}
	if len(dirs) == 0 {
		fmt.Fprintf(os.Stderr, "no fixtures found under %s\n", root)
		return exitError
	}

	failed := 0
	for _, dir := range dirs {
		if err := checkFixture(dir); err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "FAIL %s\n  %v\n", dir, err)
			continue
		}
		fmt.Fprintf(os.Stdout, "ok   %s\n", dir)
	}
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", len(dirs)-failed, failed)
	if failed > 0 {
		return exitError
	}
	return exitOK
}

func checkFixture(dir string) error {
	fixture, err := driver.LoadFixture(dir)
	if err != nil {
		return err
	}
	outcome, err := fixture.Run()
	if err != nil {
		return err
	}
	return fixture.Check(outcome)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  lara [run] [-s call|definition] [-d depth] [-v] [file]")
	fmt.Fprintln(w, "  lara parse [-f json|yaml] <file>")
	fmt.Fprintln(w, "  lara repl [-s call|definition] [-d depth] [-v]")
	fmt.Fprintln(w, "  lara test [dir]")
	fmt.Fprintln(w, "  lara version")
}
