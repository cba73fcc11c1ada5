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

// Package prefs facilitates the storage of preference values. Preference
// values are atomic, which means they can be read by the execution loop while
// being set from another goroutine.
//
// Preference values can be given hooks that are run before and after a new
// value is stored. A pre-hook returning an error prevents the value from
// being stored.
//
// Values are added to a Disk instance under a key. The Disk type saves and
// loads the values to and from a YAML file. Keys are conventionally prefixed
// by the name of the package that owns them, eg. "controller.throttle".
//
// Values can be overridden for the lifetime of the process with a command
// line prefs string. See PushCommandLineStack().
package prefs
