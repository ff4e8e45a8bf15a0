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

	"github.com/rs/zerolog"

	"github.com/walteh/edmv/pkg/entry"
)

// 🧩 Resolve orders the validated rename set into strategies by fixed-point
// peeling. Each pass scans the unresolved entries against a frozen occupancy
// snapshot; entries whose destination slot is free become Direct strategies
// and the occupancy map advances only between passes. A pure chain always
// has a free endpoint, so passes peel chains from the outside in; whatever
// survives the fixed point is exactly the cyclic residue, which becomes
// Staged strategies.
func Resolve(ctx context.Context, renames []*entry.Entry) []Strategy {
	logger := zerolog.Ctx(ctx)

	// Occupancy: which path is currently claimed by which pending entry,
	// seeded with every entry at its source.
	occupied := make(map[string]*entry.Entry, len(renames))
	for _, e := range renames {
		occupied[e.SourceAbsPath()] = e
	}

	var strategies []Strategy
	unresolved := append([]*entry.Entry(nil), renames...)
	for len(unresolved) > 0 {
		var direct, still []*entry.Entry
		for _, e := range unresolved {
			target, _ := e.TargetAbsPath()
			if _, taken := occupied[target]; taken {
				still = append(still, e)
			} else {
				direct = append(direct, e)
			}
		}
		if len(direct) == 0 {
			break
		}
		// Advance occupancy after the scan: each resolved entry vacates its
		// source and claims its destination, matching the filesystem state
		// after its move is applied in emission order.
		for _, e := range direct {
			strategies = append(strategies, Strategy{Kind: StrategyDirect, Entry: e})
			target, _ := e.TargetAbsPath()
			delete(occupied, e.SourceAbsPath())
			occupied[target] = e
		}
		unresolved = still
	}

	cycles := 0
	for _, group := range groupCycles(unresolved, occupied) {
		strategies = append(strategies, Strategy{
			Kind:  StrategyStaged,
			Group: group,
			Last:  designateLast(group),
		})
		cycles++
	}

	logger.Debug().
		Int("strategies", len(strategies)).
		Int("cycles", cycles).
		Msg("rename set resolved")
	return strategies
}

// groupCycles partitions the post-fixed-point residue into closed cycles by
// following the occupancy chain from each entry's destination back around
// to itself.
func groupCycles(unresolved []*entry.Entry, occupied map[string]*entry.Entry) [][]*entry.Entry {
	grouped := make(map[*entry.Entry]bool, len(unresolved))
	var groups [][]*entry.Entry
	for _, start := range unresolved {
		if grouped[start] {
			continue
		}
		var group []*entry.Entry
		for e := start; !grouped[e]; {
			grouped[e] = true
			group = append(group, e)
			target, _ := e.TargetAbsPath()
			e = occupied[target]
		}
		groups = append(groups, group)
	}
	return groups
}

// designateLast picks the cycle member whose move into its own destination
// runs after the others have been parked in the holding directory. The
// choice does not affect correctness, only log and timestamp order; the
// lexicographically greatest source path keeps it deterministic regardless
// of input order.
func designateLast(group []*entry.Entry) *entry.Entry {
	last := group[0]
	for _, e := range group[1:] {
		if e.SourceAbsPath() > last.SourceAbsPath() {
			last = e
		}
	}
	return last
}
