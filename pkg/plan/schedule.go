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
	"sort"

	"github.com/walteh/edmv/pkg/entry"
)

// 📐 ScheduleStrategies orders strategies so that a strategy whose subject
// lives at a deeper path runs strictly before one whose subject is an
// ancestor directory of it. Source paths are captured once at startup; if
// an ancestor directory moved first, a still-pending descendant's recorded
// source would be unreachable. Unrelated strategies keep their resolver
// order (stable sort).
func ScheduleStrategies(strategies []Strategy) []Strategy {
	ordered := append([]Strategy(nil), strategies...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return pathDepth(ordered[i].Subject()) > pathDepth(ordered[j].Subject())
	})
	return ordered
}

// 🗑️ ScheduleDeletions orders the deletion set the same way: deeper
// entries are removed before any ancestor directory.
func ScheduleDeletions(deletions []*entry.Entry) []*entry.Entry {
	ordered := append([]*entry.Entry(nil), deletions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return pathDepth(ordered[i].SourceAbsPath()) > pathDepth(ordered[j].SourceAbsPath())
	})
	return ordered
}
