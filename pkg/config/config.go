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

// Package config resolves the values the rename engine consumes from
// outside: the editor program, the deletion marker, listing filters, and the
// platform's illegal-character set.
package config

import (
	"os"
	"runtime"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultPath is the config file looked for when none is given.
const DefaultPath = ".edmvrc"

// fallbackEditor is used when neither flags, config, nor environment name
// an editor program.
const fallbackEditor = "vi"

// 📚 Config represents the complete edmv configuration
type Config struct {
	// Editor is the external editor command line (program plus arguments)
	Editor string `json:"editor,omitempty" yaml:"editor,omitempty" hcl:"editor,optional"`

	// DeleteMarker is the line that marks an entry for deletion instead of
	// renaming. Empty disables deletion via the editor.
	DeleteMarker string `json:"delete_marker,omitempty" yaml:"delete_marker,omitempty" hcl:"delete_marker,optional"`

	// IgnorePatterns are glob patterns matched against base names when
	// listing the current directory
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`

	// IncludeHidden includes dot-entries in the current-directory listing
	IncludeHidden bool `json:"include_hidden,omitempty" yaml:"include_hidden,omitempty" hcl:"include_hidden,optional"`
}

// 🔍 Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Editor) == "" && c.Editor != "" {
		return errors.Errorf("editor must not be blank")
	}
	if strings.ContainsAny(c.DeleteMarker, "\n") {
		return errors.Errorf("delete_marker must be a single line")
	}
	return nil
}

// 🔧 Overrides carries flag-level values that win over the config file
type Overrides struct {
	Editor        string
	DeleteMarker  string
	IncludeHidden bool
}

// 🎯 Resolve merges overrides and environment fallbacks into the config.
// Editor precedence: flag > config file > $VISUAL > $EDITOR > vi.
func (c *Config) Resolve(o Overrides) {
	if o.Editor != "" {
		c.Editor = o.Editor
	}
	if c.Editor == "" {
		c.Editor = os.Getenv("VISUAL")
	}
	if c.Editor == "" {
		c.Editor = os.Getenv("EDITOR")
	}
	if c.Editor == "" {
		c.Editor = fallbackEditor
	}
	if o.DeleteMarker != "" {
		c.DeleteMarker = o.DeleteMarker
	}
	if o.IncludeHidden {
		c.IncludeHidden = true
	}
}

// IllegalNameRunes returns the characters forbidden in a single name on the
// current platform: the path separator everywhere, additionally the legacy
// HFS separator on darwin.
func IllegalNameRunes() string {
	if runtime.GOOS == "darwin" {
		return "/:"
	}
	return "/"
}
