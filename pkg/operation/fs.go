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
	"os"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

// 🔌 FS is the set of filesystem primitives the executor consumes. The
// engine never relies on rename overwriting an existing destination.
type FS interface {
	// Rename retargets a single entry; the destination must not exist
	Rename(oldpath string, newpath string) error

	// RemoveAll removes path and, if it is a directory, everything beneath
	// it, recursively and unconditionally
	RemoveAll(path string) error

	// Remove removes a single (empty) entry
	Remove(path string) error

	// Mkdir creates a single directory
	Mkdir(path string) error

	// Exists reports whether path refers to an existing entry, without
	// following a final symlink
	Exists(path string) (bool, error)

	// Accessible returns an error unless path is readable and writable by
	// the invoking user
	Accessible(path string) error
}

// 💾 OSFS implements FS on the real filesystem
type OSFS struct{}

func (OSFS) Rename(oldpath string, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (OSFS) Mkdir(path string) error {
	return os.Mkdir(path, 0o700)
}

func (OSFS) Exists(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Errorf("checking %q: %w", path, err)
	}
	return true, nil
}

func (OSFS) Accessible(path string) error {
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return errors.Errorf("access %q: %w", path, err)
	}
	return nil
}
