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

// Package report accumulates typed diagnostics across a whole batch scan so
// the user sees every problem in one pass instead of aborting at the first.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// 📊 Kind classifies a diagnostic
type Kind int

const (
	KindInput         Kind = iota // duplicate or missing source path
	KindName                      // empty or illegal-character target
	KindCollision                 // duplicate destination or would-overwrite
	KindPermission                // source or destination directory not accessible
	KindCountMismatch             // editor returned a different number of lines
	KindInternal                  // resolver/scheduler defect surfaced at execution time
	KindExec                      // a filesystem primitive failed mid-run
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input error"
	case KindName:
		return "name error"
	case KindCollision:
		return "collision error"
	case KindPermission:
		return "permission error"
	case KindCountMismatch:
		return "count mismatch"
	case KindInternal:
		return "internal error"
	case KindExec:
		return "execution error"
	default:
		return "unknown error"
	}
}

// 📄 Diagnostic is one recorded problem with the batch
type Diagnostic struct {
	Kind Kind   // classification
	Path string // offending path, display form when available
	Msg  string // human-readable detail
}

// String formats the diagnostic as one error line.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("edmv: %s: %s", d.Kind, d.Msg)
	}
	return fmt.Sprintf("edmv: %s: %s: %s", d.Kind, d.Path, d.Msg)
}

// MaxErrors caps how many diagnostics a Reporter records before the run
// gives up early, so a pathological batch cannot produce unbounded output.
const MaxErrors = 20

// 🎯 Reporter accumulates diagnostics for one engine run
type Reporter struct {
	diags     []Diagnostic
	truncated bool
}

// 🏭 NewReporter creates an empty reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// Add records one diagnostic. Past MaxErrors further diagnostics are
// dropped and the reporter marks itself full.
func (r *Reporter) Add(kind Kind, path string, msg string) {
	if len(r.diags) >= MaxErrors {
		r.truncated = true
		return
	}
	r.diags = append(r.diags, Diagnostic{Kind: kind, Path: path, Msg: msg})
}

// Addf records one diagnostic with a formatted message.
func (r *Reporter) Addf(kind Kind, path string, format string, args ...any) {
	r.Add(kind, path, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	return len(r.diags) > 0
}

// Full reports whether the cap was hit; callers should stop scanning.
func (r *Reporter) Full() bool {
	return len(r.diags) >= MaxErrors
}

// Count returns the number of recorded diagnostics.
func (r *Reporter) Count() int {
	return len(r.diags)
}

// Diagnostics returns the recorded diagnostics in order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Flush writes every diagnostic line followed by the final aborted notice.
func (r *Reporter) Flush(w io.Writer) {
	for _, d := range r.diags {
		fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), d)
	}
	if r.truncated {
		fmt.Fprintf(w, "%s edmv: too many errors, remainder not shown\n", color.RedString("✗"))
	}
	fmt.Fprintln(w, "edmv: aborted")
}
