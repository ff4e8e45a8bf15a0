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

// Package listing collects the initial entry set: explicit arguments, a
// piped list on stdin, or everything in the current directory.
package listing

import (
	"bufio"
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edmv/pkg/entry"
	"github.com/walteh/edmv/pkg/report"
)

// 🔧 Options controls how the initial entry set is collected
type Options struct {
	// Args are explicit paths from the command line; highest precedence
	Args []string

	// Stdin is consulted when Args is empty; a piped list is one path per line
	Stdin io.Reader

	// StdinIsPipe reports whether Stdin is not a terminal
	StdinIsPipe bool

	// IncludeHidden includes dot-entries in the current-directory default
	IncludeHidden bool

	// IgnorePatterns are glob patterns matched against base names
	IgnorePatterns []string
}

// 🎯 Collect produces the entry collection in stable order. Missing and
// duplicate paths are recorded on rep; collection continues so the user
// sees every problem at once.
func Collect(ctx context.Context, opts Options, rep *report.Reporter) ([]*entry.Entry, error) {
	logger := zerolog.Ctx(ctx)

	paths, err := gatherPaths(opts)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("count", len(paths)).Msg("collecting entries")

	entries := make([]*entry.Entry, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if rep.Full() {
			break
		}
		if ignored(p, opts.IgnorePatterns) {
			logger.Debug().Str("path", p).Msg("ignored by pattern")
			continue
		}
		e, err := entry.New(p)
		if err != nil {
			return nil, err
		}
		if seen[e.SourceAbsPath()] {
			rep.Add(report.KindInput, p, "listed more than once")
			continue
		}
		seen[e.SourceAbsPath()] = true
		if _, err := os.Lstat(e.SourceAbsPath()); err != nil {
			rep.Add(report.KindInput, p, "does not exist")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// gatherPaths picks the path source: args, piped stdin, or the cwd.
func gatherPaths(opts Options) ([]string, error) {
	if len(opts.Args) > 0 {
		return opts.Args, nil
	}
	if opts.StdinIsPipe && opts.Stdin != nil {
		var paths []string
		scanner := bufio.NewScanner(opts.Stdin)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")
			if line != "" {
				paths = append(paths, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Errorf("reading piped path list: %w", err)
		}
		return paths, nil
	}
	return currentDirPaths(opts.IncludeHidden)
}

// currentDirPaths lists the working directory, sorted, dotfiles only when
// asked for.
func currentDirPaths(includeHidden bool) ([]string, error) {
	dirents, err := os.ReadDir(".")
	if err != nil {
		return nil, errors.Errorf("listing current directory: %w", err)
	}
	paths := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if !includeHidden && strings.HasPrefix(d.Name(), ".") {
			continue
		}
		paths = append(paths, d.Name())
	}
	sort.Strings(paths)
	return paths, nil
}

// ignored reports whether any pattern matches the path's base name.
func ignored(path string, patterns []string) bool {
	base := strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}
	return false
}
