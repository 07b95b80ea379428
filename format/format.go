// Package format provides file and directory formatting: parsing target-language source into a
// syntax tree, scanning it into the formatting token IR, and printing the result.
package format

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bracefmt/bracefmt/ir"
	"github.com/bracefmt/bracefmt/preprocess"
	"github.com/bracefmt/bracefmt/printer"
	"github.com/bracefmt/bracefmt/scanner"
)

const fileExt = ".kt"

// Formatter formats source text according to a fixed set of layout options. A *Formatter is safe
// for concurrent use: each Format call builds its own printer, so no state is shared across files.
type Formatter struct {
	registry *scanner.Registry
	opts     printer.Options
}

// New builds a Formatter. maxLineLength of 0 disables line-length-based breaking entirely (every
// block prints flat).
func New(maxLineLength, standardIndent, continuationIndent int) *Formatter {
	return &Formatter{
		registry: scanner.NewRegistry(),
		opts: printer.Options{
			MaxLineLength:      maxLineLength,
			StandardIndent:     standardIndent,
			ContinuationIndent: continuationIndent,
		},
	}
}

// Format parses and reformats src. path is used only to annotate diagnostics; pass "" for
// path-less input such as stdin.
func (f *Formatter) Format(path, src string) (string, error) {
	tokens, err := f.Tokens(path, src)
	if err != nil {
		return "", err
	}
	return printer.New(f.opts).Print(tokens), nil
}

// Tokens parses src and returns its preprocessed [ir.Token] stream without printing it, for the
// CLI's -format=tokens debugging mode.
func (f *Formatter) Tokens(path, src string) ([]ir.Token, error) {
	toks := newLexer(src).tokens()
	root, perr := newParser(path, toks).parseFile()
	if perr != nil {
		return nil, perr
	}
	tokens, err := f.registry.Scan(root)
	if err != nil {
		return nil, &PatternNoMatchError{Path: path, Err: err}
	}
	return preprocess.Run(tokens), nil
}

// Reader formats source read from r and writes the result to w.
func (f *Formatter) Reader(r io.Reader, w io.Writer) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("error reading input: %v", err)
	}
	out, err := f.Format("", string(src))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// File formats a single file in place, atomically: the result is written to a temp file in the
// same directory and renamed over the original so a crash mid-write never leaves a truncated or
// partially-written file behind.
func (f *Formatter) File(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	out, ferr := f.Format(path, string(src))
	if ferr != nil {
		return ferr
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for atomic rename: %v", err)
	}
	var success bool
	tmpPath := tmp.Name()
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if perm := fi.Mode().Perm(); perm != 0o600 {
		if err := tmp.Chmod(perm); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to set file mode: %v", err)
		}
	}
	if _, err := tmp.WriteString(out); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %v", err)
	}
	success = true
	return nil
}

// Dir formats every file with the target-language extension in a directory tree, continuing past
// individual file errors and returning them joined.
func (f *Formatter) Dir(root string) error {
	var errs []error
	err := fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, fsErr error) error {
		if fsErr != nil {
			return fsErr
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) != fileExt {
			return nil
		}
		if err := f.File(filepath.Join(root, path)); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return errors.Join(errs...)
}
