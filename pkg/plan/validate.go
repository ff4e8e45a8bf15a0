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

package plan

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/walteh/edmv/pkg/entry"
	"github.com/walteh/edmv/pkg/report"
)

// 🔌 StatFS is the slice of filesystem access the validator needs
type StatFS interface {
	// Exists reports whether path refers to an existing entry (without
	// following a final symlink)
	Exists(path string) (bool, error)

	// Accessible returns an error unless path is readable and writable by
	// the invoking user
	Accessible(path string) error
}

// 🔍 Validate runs the three validation stages over the rename set and the
// deletion set. Every stage scans the whole batch and accumulates
// diagnostics on rep before the caller decides to abort, so the user sees
// all problems in one pass.
func Validate(ctx context.Context, renames []*entry.Entry, deletions []*entry.Entry, fsys StatFS, rep *report.Reporter) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Int("renames", len(renames)).
		Int("deletions", len(deletions)).
		Msg("validating batch")

	checkDuplicateDestinations(renames, rep)
	if err := checkStrayOverwrites(renames, deletions, fsys, rep); err != nil {
		return err
	}
	checkPermissions(renames, deletions, fsys, rep)
	return nil
}

// checkDuplicateDestinations rejects any destination claimed by more than
// one entry, reporting every offender rather than the first.
func checkDuplicateDestinations(renames []*entry.Entry, rep *report.Reporter) {
	claims := make(map[string][]*entry.Entry, len(renames))
	for _, e := range renames {
		target, _ := e.TargetAbsPath()
		claims[target] = append(claims[target], e)
	}
	for _, e := range renames {
		if rep.Full() {
			return
		}
		target, _ := e.TargetAbsPath()
		if len(claims[target]) > 1 {
			rep.Addf(report.KindCollision, e.DisplayPath(),
				"more than one entry renamed to %q", e.RequestedName())
		}
	}
}

// checkStrayOverwrites rejects renames whose destination already exists on
// disk unless that path is vacated by the batch itself: the source of
// another pending rename, or slated for deletion.
func checkStrayOverwrites(renames []*entry.Entry, deletions []*entry.Entry, fsys StatFS, rep *report.Reporter) error {
	vacated := make(map[string]bool, len(renames)+len(deletions))
	for _, e := range renames {
		vacated[e.SourceAbsPath()] = true
	}
	for _, e := range deletions {
		vacated[e.SourceAbsPath()] = true
	}

	for _, e := range renames {
		if rep.Full() {
			return nil
		}
		target, _ := e.TargetAbsPath()
		if vacated[target] {
			continue
		}
		exists, err := fsys.Exists(target)
		if err != nil {
			return err
		}
		if exists {
			rep.Addf(report.KindCollision, e.DisplayPath(),
				"renaming to %q would replace a file not named in the batch", e.RequestedName())
		}
	}
	return nil
}

// checkPermissions verifies every source and every destination's containing
// directory is readable and writable. Paths already checked once are not
// re-checked. Deletion targets are checked independently: only the entry
// itself, since it has no destination.
func checkPermissions(renames []*entry.Entry, deletions []*entry.Entry, fsys StatFS, rep *report.Reporter) {
	checked := make(map[string]bool)
	check := func(path string, display string) {
		if checked[path] || rep.Full() {
			return
		}
		checked[path] = true
		if err := fsys.Accessible(path); err != nil {
			rep.Add(report.KindPermission, display, "not readable and writable")
		}
	}

	for _, e := range renames {
		check(e.SourceAbsPath(), e.DisplayPath())
		target, _ := e.TargetAbsPath()
		check(filepath.Dir(target), filepath.Dir(target))
	}
	for _, e := range deletions {
		check(e.SourceAbsPath(), e.DisplayPath())
	}
}
