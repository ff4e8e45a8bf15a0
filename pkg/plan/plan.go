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

// Package plan turns a validated batch of rename requests into an ordered
// list of executable strategies, breaking rename cycles that the
// single-entry rename primitive cannot perform on its own.
package plan

import (
	"strings"

	"github.com/walteh/edmv/pkg/entry"
)

// 📊 StrategyKind discriminates the two strategy variants
type StrategyKind int

const (
	// StrategyDirect is a single rename whose destination slot is free
	StrategyDirect StrategyKind = iota

	// StrategyStaged is a closed rename cycle resolved via a temporary
	// holding directory
	StrategyStaged
)

// 🎯 Strategy is one executable unit of the rename plan. It is a closed
// tagged union: Kind selects which fields are meaningful and the executor
// switches over it exhaustively.
type Strategy struct {
	Kind StrategyKind

	// Entry is the single member of a Direct strategy
	Entry *entry.Entry

	// Group holds every member of a Staged cycle, Last included. All
	// members share one containing directory.
	Group []*entry.Entry

	// Last is the designated member whose move into its own destination is
	// the final, slot-freeing step of the cycle
	Last *entry.Entry
}

// Subject returns the path that governs schedule ordering: the strategy's
// source path for Direct, any member's source for Staged (members share a
// parent directory, so their depth is identical).
func (s Strategy) Subject() string {
	if s.Kind == StrategyDirect {
		return s.Entry.SourceAbsPath()
	}
	return s.Last.SourceAbsPath()
}

// pathDepth counts separators; a descendant is always strictly deeper than
// its ancestor, so sorting by depth is a linear extension of the
// is-ancestor-of partial order.
func pathDepth(path string) int {
	return strings.Count(path, "/")
}
