// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edmv/pkg/entry"
	"github.com/walteh/edmv/pkg/plan"
	"github.com/walteh/edmv/pkg/report"
)

// scratchPrefix names the temporary holding directories used to break
// rename cycles. A pre-existing one is treated as leftover state from an
// interrupted run and aborts, never silently reused.
const scratchPrefix = ".edmv-scratch"

// scratchName appends the run's pid so a user renaming an entry to the
// bare prefix cannot collide with the holding directory.
func scratchName() string {
	return fmt.Sprintf("%s-%d", scratchPrefix, os.Getpid())
}

// 🏃 Execute runs deletions first, then strategies, in the given order.
// Nothing is retried; the first primitive failure aborts the run with both
// paths named. Entries already moved stay moved: validation up front, not
// rollback, is the correctness strategy.
func (x *executor) Execute(ctx context.Context) (Summary, error) {
	logger := zerolog.Ctx(ctx)
	var summary Summary

	if x.dryRun {
		return x.preview(), nil
	}

	for _, e := range x.deletions {
		logger.Debug().Str("path", e.SourceAbsPath()).Msg("deleting")
		if err := x.fs.RemoveAll(e.SourceAbsPath()); err != nil {
			return summary, errors.Errorf("deleting %q: %w", e.SourceAbsPath(), err)
		}
		x.logChange(report.EntryDeleted, e.DisplayPath(), "")
		summary.Deleted++
	}

	for _, s := range x.strategies {
		switch s.Kind {
		case plan.StrategyDirect:
			if err := x.moveDirect(ctx, s.Entry); err != nil {
				return summary, err
			}
			summary.Renamed++

		case plan.StrategyStaged:
			n, err := x.runStaged(ctx, s)
			summary.Renamed += n
			if err != nil {
				return summary, err
			}
		}
	}

	return summary, nil
}

// moveDirect applies one single-entry rename. The destination is re-checked
// defensively: the plan guarantees it is free, so finding it occupied means
// the resolver mis-ordered something and the run must die, not recover.
func (x *executor) moveDirect(ctx context.Context, e *entry.Entry) error {
	target, _ := e.TargetAbsPath()
	occupied, err := x.fs.Exists(target)
	if err != nil {
		return err
	}
	if occupied {
		return errors.Errorf("%w: destination %q already exists (moving %q)",
			ErrInconsistent, target, e.SourceAbsPath())
	}
	zerolog.Ctx(ctx).Debug().
		Str("from", e.SourceAbsPath()).
		Str("to", target).
		Msg("renaming")
	if err := x.fs.Rename(e.SourceAbsPath(), target); err != nil {
		return errors.Errorf("renaming %q to %q: %w", e.SourceAbsPath(), target, err)
	}
	x.logChange(report.EntryRenamed, e.DisplayPath(), e.RequestedName())
	return nil
}

// createScratch creates the holding directory in the staged group's own
// containing directory, immediately before the group runs. Every park and
// unpark stays on one volume, and the path cannot go stale through an
// ancestor rename scheduled between two cycles: the scheduler runs deeper
// strategies first, so the group's directory is still at its recorded path.
func (x *executor) createScratch(ctx context.Context, s plan.Strategy) (string, error) {
	scratch := filepath.Join(filepath.Dir(s.Last.SourceAbsPath()), scratchName())
	exists, err := x.fs.Exists(scratch)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.Errorf("%w: scratch directory %q already exists, remove it first",
			ErrInconsistent, scratch)
	}
	zerolog.Ctx(ctx).Debug().Str("path", scratch).Msg("creating scratch directory")
	if err := x.fs.Mkdir(scratch); err != nil {
		return "", errors.Errorf("creating scratch directory %q: %w", scratch, err)
	}
	return scratch, nil
}

// runStaged breaks one rename cycle: create the holding directory, park
// every member but the designated last in it under its original base name,
// move the last member into its now-free destination, move the parked
// members out to theirs, then remove the holding directory. Returns how
// many entries were renamed before any failure.
func (x *executor) runStaged(ctx context.Context, s plan.Strategy) (int, error) {
	scratch, err := x.createScratch(ctx, s)
	if err != nil {
		return 0, err
	}

	for _, e := range s.Group {
		if e == s.Last {
			continue
		}
		parked := filepath.Join(scratch, e.CurrentName())
		if err := x.fs.Rename(e.SourceAbsPath(), parked); err != nil {
			return 0, errors.Errorf("staging %q in %q: %w", e.SourceAbsPath(), parked, err)
		}
	}

	renamed := 0
	if err := x.moveDirect(ctx, s.Last); err != nil {
		return renamed, err
	}
	renamed++

	for _, e := range s.Group {
		if e == s.Last {
			continue
		}
		parked := filepath.Join(scratch, e.CurrentName())
		target, _ := e.TargetAbsPath()
		if err := x.fs.Rename(parked, target); err != nil {
			return renamed, errors.Errorf("unstaging %q to %q: %w", parked, target, err)
		}
		x.logChange(report.EntryRenamed, e.DisplayPath(), e.RequestedName())
		renamed++
	}

	zerolog.Ctx(ctx).Debug().Str("path", scratch).Msg("removing scratch directory")
	if err := x.fs.Remove(scratch); err != nil {
		return renamed, errors.Errorf("removing scratch directory %q: %w", scratch, err)
	}
	return renamed, nil
}

// preview logs the plan without touching the filesystem.
func (x *executor) preview() Summary {
	var summary Summary
	for _, e := range x.deletions {
		x.logChange(report.EntryPlanned, e.DisplayPath(), "")
		summary.Deleted++
	}
	for _, s := range x.strategies {
		members := s.Group
		if s.Kind == plan.StrategyDirect {
			members = []*entry.Entry{s.Entry}
		}
		for _, e := range members {
			x.logChange(report.EntryPlanned, e.DisplayPath(), e.RequestedName())
			summary.Renamed++
		}
	}
	return summary
}

func (x *executor) logChange(change report.ChangeType, from string, to string) {
	if x.user != nil {
		x.user.LogChange(change, from, to)
	}
}
