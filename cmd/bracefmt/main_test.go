package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
)

func TestRunStdinFormatsAndWritesToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"--stdin"}, strings.NewReader("val   x    =   1\n"), &stdout, &stderr)

	assert.Equals(t, code, 0, "exit code")
	assert.Equals(t, stdout.String(), "val x = 1\n", "formatted stdin output")
	assert.Equals(t, stderr.String(), "", "stderr")
}

func TestRunFormatsFileInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.kt")
	assert.Nilf(t, os.WriteFile(path, []byte("val   x    =   1\n"), 0o644), "setup: WriteFile")
	var stdout, stderr bytes.Buffer

	code := run([]string{path}, nil, &stdout, &stderr)

	assert.Equals(t, code, 0, "exit code")
	got, err := os.ReadFile(path)
	assert.Nilf(t, err, "ReadFile returned unexpected error: %v", err)
	assert.Equals(t, string(got), "val x = 1\n", "file reformatted in place")
}

func TestRunFormatReportsFailureForMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{filepath.Join(t.TempDir(), "missing.kt")}, nil, &stdout, &stderr)

	assert.Equals(t, code, 2, "exit code for a missing path")
	assert.Truef(t, stderr.Len() > 0, "expected an error message on stderr")
}

func TestRunCheckReportsChangedFileWithDiffAndExitOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.kt")
	assert.Nilf(t, os.WriteFile(path, []byte("val   x    =   1\n"), 0o644), "setup: WriteFile")
	var stdout, stderr bytes.Buffer

	code := run([]string{"--check", path}, nil, &stdout, &stderr)

	assert.Equals(t, code, 1, "exit code when a file would change")
	assert.Truef(t, strings.Contains(stderr.String(), "val x = 1"), "expected a unified diff on stderr, got: %q", stderr.String())
	got, err := os.ReadFile(path)
	assert.Nilf(t, err, "ReadFile returned unexpected error: %v", err)
	assert.Equals(t, string(got), "val   x    =   1\n", "--check must not write to disk")
}

func TestRunCheckReportsExitZeroWhenAlreadyFormatted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.kt")
	assert.Nilf(t, os.WriteFile(path, []byte("val x = 1\n"), 0o644), "setup: WriteFile")
	var stdout, stderr bytes.Buffer

	code := run([]string{"--check", path}, nil, &stdout, &stderr)

	assert.Equals(t, code, 0, "exit code for an already-formatted file")
	assert.Equals(t, stderr.String(), "", "no diff expected")
}

func TestRunTokensDumpsTokenStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.kt")
	assert.Nilf(t, os.WriteFile(path, []byte("val x = 1\n"), 0o644), "setup: WriteFile")
	var stdout, stderr bytes.Buffer

	code := run([]string{"--format=tokens", path}, nil, &stdout, &stderr)

	assert.Equals(t, code, 0, "exit code")
	assert.Truef(t, strings.Contains(stdout.String(), "FILE"), "expected a tabwriter header, got: %q", stdout.String())
	assert.Equals(t, stderr.String(), "", "stderr")
}

func TestRunRejectsNegativeMaxLineLength(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"--max-line-length=-1", "whatever.kt"}, nil, &stdout, &stderr)

	assert.Equals(t, code, 2, "exit code for an invalid configuration")
	assert.Truef(t, strings.Contains(stderr.String(), "configuration error"), "expected a configuration error, got: %q", stderr.String())
}

func TestRunFormatUsageWithNoPaths(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(nil, nil, &stdout, &stderr)

	assert.Equals(t, code, 2, "exit code when no paths are given")
	assert.Truef(t, strings.Contains(stderr.String(), "usage:"), "expected a usage message, got: %q", stderr.String())
}
