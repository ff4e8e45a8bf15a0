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

package report

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 ChangeType represents what happened to an entry
type ChangeType int

const (
	EntryRenamed ChangeType = iota
	EntryDeleted
	EntryPlanned // dry-run preview, nothing touched
)

// 📢 UserLogger provides user-friendly feedback about applied changes,
// mirrored into zerolog for debugging
type UserLogger struct {
	log   zerolog.Logger
	quiet bool
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context, quiet bool) *UserLogger {
	return &UserLogger{
		log:   *zerolog.Ctx(ctx),
		quiet: quiet,
	}
}

// 📝 LogChange logs one applied (or planned) change
func (u *UserLogger) LogChange(change ChangeType, from string, to string) {
	var printer *pterm.PrefixPrinter
	var msg string
	switch change {
	case EntryRenamed:
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"})
		msg = fmt.Sprintf("Renamed %s -> %s", from, to)
	case EntryDeleted:
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: "🗑️"})
		msg = fmt.Sprintf("Deleted %s", from)
	case EntryPlanned:
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "💡"})
		if to == "" {
			msg = fmt.Sprintf("Would delete %s", from)
		} else {
			msg = fmt.Sprintf("Would rename %s -> %s", from, to)
		}
	}

	if !u.quiet {
		printer.Println(msg)
	}
	u.log.Info().Msg(msg)
}

// 💡 LogPlannedSummary logs the dry-run summary; nothing was changed
func (u *UserLogger) LogPlannedSummary(renames int, deletions int) {
	msg := fmt.Sprintf("dry run: %d renames, %d deletions planned", renames, deletions)
	if !u.quiet {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "💡"}).Println(msg)
	}
	u.log.Info().Int("renames", renames).Int("deletions", deletions).Msg("dry run complete")
}

// 📊 LogSummary logs the per-run summary of applied counts
func (u *UserLogger) LogSummary(renamed int, deleted int) {
	msg := fmt.Sprintf("%d renamed, %d deleted", renamed, deleted)
	if !u.quiet {
		pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).Println(msg)
	}
	u.log.Info().Int("renamed", renamed).Int("deleted", deleted).Msg("run complete")
}
