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

// Package editor is the collaborator that gathers the user's desired names:
// it writes the current names to a scratch file, runs the configured editor
// on it synchronously, and maps the edited lines back onto the entries.
package editor

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edmv/pkg/entry"
	"github.com/walteh/edmv/pkg/report"
)

// 🔌 Runner abstracts the synchronous editor invocation
type Runner interface {
	// Run invokes command on path and blocks until the editor exits
	Run(ctx context.Context, command string, path string) error
}

// 🖥️ ExecRunner runs the editor as a subprocess on the user's terminal
type ExecRunner struct{}

// Run implements Runner. The command string is split on whitespace; the
// list file path is appended as the final argument.
func (ExecRunner) Run(ctx context.Context, command string, path string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.Errorf("no editor configured")
	}
	cmd := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Errorf("running editor %q: %w", command, err)
	}
	return nil
}

// 🔧 Session holds one editor round-trip's configuration
type Session struct {
	command      string
	deleteMarker string
	runner       Runner
}

// 🏭 NewSession creates a session; a nil runner defaults to ExecRunner
func NewSession(command string, deleteMarker string, runner Runner) *Session {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Session{command: command, deleteMarker: deleteMarker, runner: runner}
}

// 🎯 Result is the outcome of one editor round-trip
type Result struct {
	// Renames are entries with a validated rename target
	Renames []*entry.Entry

	// Deletions are entries the user marked with the deletion sentinel
	Deletions []*entry.Entry
}

// 📝 Edit runs the full round-trip over the entry collection. Name errors
// accumulate on rep; a changed line count is fatal.
func (s *Session) Edit(ctx context.Context, entries []*entry.Entry, illegal string, rep *report.Reporter) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	lines, err := s.roundTrip(ctx, entries)
	if err != nil {
		return nil, err
	}

	if len(lines) != len(entries) {
		rep.Addf(report.KindCountMismatch, "",
			"the number of files changed: wrote %d lines, read %d back", len(entries), len(lines))
		return nil, errors.Errorf("editor list line count changed from %d to %d", len(entries), len(lines))
	}

	res := &Result{}
	for i, e := range entries {
		name := lines[i]
		if s.deleteMarker != "" && name == s.deleteMarker {
			e.MarkDelete()
			res.Deletions = append(res.Deletions, e)
			continue
		}
		if err := e.RequestTarget(name, illegal); err != nil {
			rep.Add(report.KindName, e.DisplayPath(), err.Error())
			continue
		}
		if _, ok := e.TargetAbsPath(); ok {
			res.Renames = append(res.Renames, e)
		}
	}
	logger.Debug().
		Int("renames", len(res.Renames)).
		Int("deletions", len(res.Deletions)).
		Msg("editor round-trip applied")
	return res, nil
}

// roundTrip writes the list file, invokes the editor, and reads it back.
func (s *Session) roundTrip(ctx context.Context, entries []*entry.Entry) ([]string, error) {
	f, err := os.CreateTemp("", "edmv-*.list")
	if err != nil {
		return nil, errors.Errorf("creating list file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.CurrentName())
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return nil, errors.Errorf("writing list file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.Errorf("closing list file: %w", err)
	}

	if err := s.runner.Run(ctx, s.command, path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("re-reading list file: %w", err)
	}
	return splitLines(string(data)), nil
}

// splitLines splits the edited file into lines, tolerating a missing final
// newline and CRLF endings.
func splitLines(data string) []string {
	if data == "" {
		return nil
	}
	data = strings.TrimSuffix(data, "\n")
	lines := strings.Split(data, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
