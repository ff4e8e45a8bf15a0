// Package operation applies a computed rename/delete plan to the
// filesystem using only single-entry primitives.
package operation

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edmv/pkg/entry"
	"github.com/walteh/edmv/pkg/plan"
	"github.com/walteh/edmv/pkg/report"
)

// ErrInconsistent marks a failed execution-time re-check of something the
// resolver and scheduler are supposed to guarantee. It indicates a defect
// in plan computation, never a user mistake, and is always immediately
// fatal.
var ErrInconsistent = errors.New("internal consistency failure")

// 🎯 Executor applies deletions then rename strategies, in schedule order
type Executor interface {
	// Execute performs the side effects and returns the applied counts
	Execute(ctx context.Context) (Summary, error)
}

// 📊 Summary is the per-run count of applied operations
type Summary struct {
	Renamed int
	Deleted int
}

// 🔧 Options contains everything one execution needs
type Options struct {
	// Deletions are the entries to remove, already in schedule order
	Deletions []*entry.Entry

	// Strategies are the rename strategies, already in schedule order
	Strategies []plan.Strategy

	// FS supplies the filesystem primitives
	FS FS

	// User receives per-entry feedback; optional
	User *report.UserLogger

	// DryRun previews the plan without touching the filesystem
	DryRun bool
}

// 🏭 New creates an executor with the given options
func New(opts Options) (Executor, error) {
	if opts.FS == nil {
		return nil, errors.Errorf("fs is required")
	}
	return &executor{
		deletions:  opts.Deletions,
		strategies: opts.Strategies,
		fs:         opts.FS,
		user:       opts.User,
		dryRun:     opts.DryRun,
	}, nil
}

// 🎮 executor implements the Executor interface
type executor struct {
	deletions  []*entry.Entry
	strategies []plan.Strategy
	fs         FS
	user       *report.UserLogger
	dryRun     bool
}
