package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"lara/interpreter-go/pkg/driver"
	"lara/interpreter-go/pkg/interpreter"
	"lara/interpreter-go/pkg/parser"
	"lara/interpreter-go/pkg/runtime"
)

const (
	historyFile = ".lara_history"
	promptMain  = "lara> "
	promptCont  = "  ... "
)

// prompter is the part of liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func runRepl(args []string) int {
	flags, err := parseRunFlags("lara repl", args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lara repl: %v\n", err)
		return exitUsage
	}
	if len(flags.operands) > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(flags.operands, " "))
		return exitUsage
	}
	manifest, err := loadManifestFrom(".")
	if err != nil && !errors.Is(err, driver.ErrManifestNotFound) {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return exitError
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(os.Stdout, "%s (:quit to exit, :globals to list bindings)\n", cliToolVersion)
	interp := interpreter.New(flags.options(manifest)...)
	return replLoop(ln, ln.AppendHistory, interp, os.Stdout, os.Stderr)
}

// replLoop reads complete programs, runs each against the same interpreter
// and reports errors without ending the session.
func replLoop(p prompter, remember func(string), interp *interpreter.Interpreter, out, errOut io.Writer) int {
	for {
		src, ok := readByParseProbe(p, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(out)
			return exitOK
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if handleReplCommand(interp, trimmed, out) {
				return exitOK
			}
			continue
		}

		remember(strings.ReplaceAll(src, "\n", " "))
		program, err := parser.Parse(src)
		if err != nil {
			fmt.Fprintf(errOut, "syntax error: %v\n", err)
			continue
		}
		if err := interp.Run(program); err != nil {
			fmt.Fprintf(errOut, "runtime error: %v\n", err)
		}
	}
}

func handleReplCommand(interp *interpreter.Interpreter, cmd string, out io.Writer) (exit bool) {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":globals":
		env := interp.GlobalEnvironment()
		for _, name := range env.Keys() {
			val, _ := env.Get(name)
			fmt.Fprintf(out, "%s = %s\n", name, runtime.Format(val))
		}
	default:
		fmt.Fprintf(out, "unknown command %s. Type :quit to exit.\n", cmd)
	}
	return false
}

// readByParseProbe keeps reading continuation lines while the buffered
// source only fails because it ended early.
func readByParseProbe(p prompter, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		current := prompt
		if b.Len() > 0 {
			current = cont
		}
		line, err := p.Prompt(current)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := parser.Parse(src)
		var syn *parser.SyntaxError
		if perr != nil && errors.As(perr, &syn) && syn.AtEOF {
			continue
		}
		return src, true
	}
}
