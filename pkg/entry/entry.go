// Package entry models one filesystem object under consideration for
// renaming or deletion.
package entry

import (
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrEmptyName is returned when an entry is renamed to the empty string.
	ErrEmptyName = errors.New("renamed to nothing")

	// ErrIllegalName is returned when a requested name contains a character
	// the current platform does not allow in a single path component.
	ErrIllegalName = errors.New("new name contains illegal character(s)")
)

// targetKind tracks what the user asked to do with an entry.
type targetKind int

const (
	targetUnset targetKind = iota
	targetUnchanged
	targetRename
	targetDelete
)

// Entry is one filesystem object in the batch. The original absolute path is
// captured exactly once at construction and never recomputed; every
// downstream containment check relies on it staying fixed, because a
// recorded path may only go stale through the entry's own pending operation.
type Entry struct {
	originalAbsPath string
	displayPath     string
	currentName     string

	kind          targetKind
	requestedName string
	targetAbsPath string
}

// New captures path as an Entry. The display form keeps the caller's
// spelling; the absolute path is resolved here and frozen.
func New(path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving %q: %w", path, err)
	}
	return &Entry{
		originalAbsPath: abs,
		displayPath:     path,
		currentName:     filepath.Base(abs),
	}, nil
}

// SourceAbsPath returns the absolute path captured at construction.
func (e *Entry) SourceAbsPath() string {
	return e.originalAbsPath
}

// DisplayPath returns the path as originally supplied, for messages only.
func (e *Entry) DisplayPath() string {
	return e.displayPath
}

// CurrentName returns the base name derived at capture time.
func (e *Entry) CurrentName() string {
	return e.currentName
}

// RequestedName returns the name supplied to RequestTarget.
func (e *Entry) RequestedName() string {
	return e.requestedName
}

// RequestTarget records the user's new name for the entry. illegal is the
// platform's set of runes forbidden in a name. An empty or illegal name
// leaves the entry without a target and returns the validation error; a name
// equal to the current one marks the entry unchanged (no error, no target).
func (e *Entry) RequestTarget(name string, illegal string) error {
	e.requestedName = name
	switch {
	case name == "":
		return ErrEmptyName
	case strings.ContainsAny(name, illegal):
		return ErrIllegalName
	case name == e.currentName:
		e.kind = targetUnchanged
		return nil
	}
	e.kind = targetRename
	e.targetAbsPath = filepath.Join(filepath.Dir(e.originalAbsPath), name)
	return nil
}

// MarkDelete marks the entry for removal instead of renaming. Deletion and
// renaming are mutually exclusive; any previously derived target is dropped.
func (e *Entry) MarkDelete() {
	e.kind = targetDelete
	e.targetAbsPath = ""
}

// IsDelete reports whether the entry is marked for deletion.
func (e *Entry) IsDelete() bool {
	return e.kind == targetDelete
}

// IsUnchanged reports whether the requested name matched the current one.
func (e *Entry) IsUnchanged() bool {
	return e.kind == targetUnchanged
}

// TargetAbsPath returns the derived destination path. ok is false until a
// valid rename target has been requested.
func (e *Entry) TargetAbsPath() (string, bool) {
	if e.kind != targetRename {
		return "", false
	}
	return e.targetAbsPath, true
}
