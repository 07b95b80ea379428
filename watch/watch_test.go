package watch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/teleivo/assertive/assert"

	"github.com/bracefmt/bracefmt/format"
)

func TestNewRejectsMissingPath(t *testing.T) {
	_, err := New(Config{Path: filepath.Join(t.TempDir(), "missing.kt"), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}, format.New(100, 4, 8))

	assert.Truef(t, err != nil, "expected an error for a nonexistent path")
}

func newTestWatcher(t *testing.T, path string, stdout *bytes.Buffer) *Watcher {
	t.Helper()
	wa, err := New(Config{Path: path, Stdout: stdout, Stderr: &bytes.Buffer{}}, format.New(1000, 4, 8))
	assert.Nilf(t, err, "New returned unexpected error: %v", err)
	return wa
}

func TestHandleEventReformatsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.kt")
	assert.Nilf(t, os.WriteFile(path, []byte("val   x    =   1\n"), 0o644), "setup: WriteFile")
	var stdout bytes.Buffer
	wa := newTestWatcher(t, dir, &stdout)

	wa.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	got, err := os.ReadFile(path)
	assert.Nilf(t, err, "ReadFile returned unexpected error: %v", err)
	assert.Equals(t, string(got), "val x = 1\n", "a Write event reformats the file")
	assert.Truef(t, bytes.Contains(stdout.Bytes(), []byte("reformatted")), "expected a status line, got: %q", stdout.String())
}

func TestHandleEventIgnoresNonWriteCreateOps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.kt")
	original := "val   x    =   1\n"
	assert.Nilf(t, os.WriteFile(path, []byte(original), 0o644), "setup: WriteFile")
	var stdout bytes.Buffer
	wa := newTestWatcher(t, dir, &stdout)

	wa.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})

	got, err := os.ReadFile(path)
	assert.Nilf(t, err, "ReadFile returned unexpected error: %v", err)
	assert.Equals(t, string(got), original, "a Chmod event does not trigger reformatting")
}

func TestHandleEventIgnoresNonMatchingExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	original := "val   x    =   1\n"
	assert.Nilf(t, os.WriteFile(path, []byte(original), 0o644), "setup: WriteFile")
	var stdout bytes.Buffer
	wa := newTestWatcher(t, dir, &stdout)

	wa.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	got, err := os.ReadFile(path)
	assert.Nilf(t, err, "ReadFile returned unexpected error: %v", err)
	assert.Equals(t, string(got), original, "a non-.kt file is left untouched")
}

func TestHandleEventIgnoresRemovedFile(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	wa := newTestWatcher(t, dir, &stdout)

	wa.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "gone.kt"), Op: fsnotify.Write})

	assert.Equals(t, stdout.String(), "", "a missing file produces no status output")
}
