// This file is part of cpvc.
//
// cpvc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpvc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpvc.  If not, see <https://www.gnu.org/licenses/>.

package prefs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Disk represents preference values as stored on disk. Values not registered
// with Add() but found in the file are preserved when the file is saved
// again.
type Disk struct {
	path    string
	entries map[string]pref
}

func (dsk *Disk) String() string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s :: %s\n", k, dsk.entries[k]))
	}
	return s.String()
}

// NewDisk is the preferred method of initialisation for the Disk type. An
// empty path means that the values will never be written to or read from
// disk but command line overrides will still be honoured on Load().
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add preference value to list of values to store/load from Disk. The key
// value is used when loading and saving to disk.
func (dsk *Disk) Add(key string, p pref) error {
	if _, ok := dsk.entries[key]; ok {
		return fmt.Errorf("prefs: key already registered (%s)", key)
	}
	dsk.entries[key] = p
	return nil
}

// Save current preference values to disk.
func (dsk *Disk) Save() error {
	if dsk.path == "" {
		return nil
	}

	// load existing file so that values for keys we don't know about are
	// preserved
	data, err := dsk.read()
	if err != nil {
		return err
	}

	for k, v := range dsk.entries {
		data[k] = v.String()
	}

	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	if err := os.WriteFile(dsk.path, b, 0o600); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}

	return nil
}

// Load preference values from disk. The saveOnFail argument causes the
// current values to be written to disk if the file does not exist. Any values
// in the top entry of the command line stack are applied after the file
// values.
func (dsk *Disk) Load(saveOnFail bool) error {
	if dsk.path != "" {
		if _, err := os.Stat(dsk.path); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("prefs: %w", err)
			}
			if saveOnFail {
				if err := dsk.Save(); err != nil {
					return err
				}
			}
		} else {
			data, err := dsk.read()
			if err != nil {
				return err
			}
			for k, v := range data {
				if p, ok := dsk.entries[k]; ok {
					if err := p.Set(v); err != nil {
						return fmt.Errorf("prefs: %s: %w", k, err)
					}
				}
			}
		}
	}

	for k, p := range dsk.entries {
		if ok, v := GetCommandLinePref(k); ok {
			if err := p.Set(v); err != nil {
				return fmt.Errorf("prefs: %s: %w", k, err)
			}
		}
	}

	return nil
}

func (dsk *Disk) read() (map[string]string, error) {
	data := make(map[string]string)

	b, err := os.ReadFile(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("prefs: %w", err)
	}

	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("prefs: %s: %w", dsk.path, err)
	}

	return data, nil
}
