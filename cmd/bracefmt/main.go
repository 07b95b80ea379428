// Command bracefmt formats target-language source files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/bracefmt/bracefmt/format"
	"github.com/bracefmt/bracefmt/watch"
)

func main() {
	code := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(code)
}

const fileExt = ".kt"

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("bracefmt", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "usage: bracefmt [flags] [path ...]")
		_, _ = fmt.Fprintln(stderr, "flags:")
		flags.PrintDefaults()
	}
	maxLineLength := flags.Int("max-line-length", 100, "maximum line length before a block must break")
	standardIndent := flags.Int("indent", 4, "columns of indentation inside a broken structural block")
	continuationIndent := flags.Int("continuation-indent", 8, "columns of indentation for a wrapped statement continuation")
	stdinMode := flags.Bool("stdin", false, "read source from stdin, write formatted source to stdout")
	check := flags.Bool("check", false, "exit nonzero if any file would change, writing nothing")
	watchMode := flags.Bool("watch", false, "watch the given path and reformat files in place as they change")
	debug := flags.Bool("debug", false, "enable debug logging in --watch mode")
	outputFormat := flags.String("format", "default", "print formatted source using 'default', or dump the preprocessed token stream using 'tokens'")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *maxLineLength < 0 {
		_, _ = fmt.Fprintf(stderr, "configuration error: %s\n", (&format.ConfigurationError{Message: "-max-line-length must be non-negative"}).Error())
		return 2
	}

	fmtr := format.New(*maxLineLength, *standardIndent, *continuationIndent)

	switch {
	case *stdinMode:
		return runStdin(fmtr, *outputFormat, stdin, stdout, stderr)
	case *watchMode:
		return runWatch(fmtr, flags.Args(), *debug, stdout, stderr)
	case *check:
		return runCheck(fmtr, flags.Args(), stdout, stderr)
	case *outputFormat == "tokens":
		return runTokens(fmtr, flags.Args(), stdout, stderr)
	default:
		return runFormat(fmtr, flags.Args(), stderr)
	}
}

// runTokens dumps the preprocessed token stream for each file instead of formatting it in place --
// a development aid for inspecting the IR, in the spirit of the teacher's cmd/tokens tool.
func runTokens(fmtr *format.Formatter, paths []string, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: bracefmt -format=tokens [path ...]")
		return 2
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	failed := 0
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", err)
			failed++
			continue
		}
		tokens, terr := fmtr.Tokens(path, string(src))
		if terr != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", terr)
			failed++
			continue
		}
		_, _ = fmt.Fprintf(tw, "FILE\tINDEX\tTOKEN\n")
		for i, t := range tokens {
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%#v\n", path, i, t)
		}
	}
	if failed == len(paths) {
		return 2
	}
	return 0
}

func runStdin(fmtr *format.Formatter, outputFormat string, stdin io.Reader, stdout, stderr io.Writer) int {
	if outputFormat == "tokens" {
		_, _ = fmt.Fprintln(stderr, "-format=tokens is only supported for file arguments")
		return 2
	}
	if err := fmtr.Reader(stdin, stdout); err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	return 0
}

func runFormat(fmtr *format.Formatter, paths []string, stderr io.Writer) int {
	if len(paths) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: bracefmt [flags] [path ...]")
		return 2
	}
	failed := 0
	for _, path := range paths {
		if err := formatPath(fmtr, path); err != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", err)
			failed++
		}
	}
	if failed == len(paths) {
		return 2
	}
	return 0
}

func formatPath(fmtr *format.Formatter, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmtr.Dir(path)
	}
	return fmtr.File(path)
}

// runCheck reports, per spec.md §6.2, whether any file would change under formatting: exit 1 with
// a unified diff on stderr for each affected file, writing nothing to disk.
func runCheck(fmtr *format.Formatter, paths []string, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: bracefmt --check [path ...]")
		return 2
	}
	var files []string
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", err)
			return 2
		}
		if fi.IsDir() {
			matches, err := filesUnder(path)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "%v\n", err)
				return 2
			}
			files = append(files, matches...)
			continue
		}
		files = append(files, path)
	}

	changed := false
	allFailed := true
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", err)
			continue
		}
		formatted, ferr := fmtr.Format(path, string(src))
		if ferr != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", ferr)
			continue
		}
		allFailed = false
		if formatted == string(src) {
			continue
		}
		changed = true
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(src)),
			B:        difflib.SplitLines(formatted),
			FromFile: path,
			ToFile:   path + " (formatted)",
			Context:  2,
		})
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", err)
			continue
		}
		_, _ = fmt.Fprint(stderr, diff)
	}
	if len(files) > 0 && allFailed {
		return 2
	}
	if changed {
		return 1
	}
	return 0
}

func filesUnder(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) == fileExt {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func runWatch(fmtr *format.Formatter, paths []string, debug bool, stdout, stderr io.Writer) int {
	if len(paths) != 1 {
		_, _ = fmt.Fprintln(stderr, "usage: bracefmt --watch [flags] <path>")
		return 2
	}
	wa, err := watch.New(watch.Config{Path: paths[0], Debug: debug, Stdout: stdout, Stderr: stderr}, fmtr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := wa.Watch(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	return 0
}
