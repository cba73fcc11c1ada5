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


// Package paths contains functions to prepare paths to cpvc resources, such
// as the preferences file.
//
// The ResourcePath() function modifies the supplied resource string such that
// it is prepended with the appropriate config directory. For example:
//
//	pth, err := paths.ResourcePath("", "preferences")
//
// In development builds the base path is ".cpvc" in the current directory.
// Release builds (built with the "release" build tag) use the user's config
// directory as returned by os.UserConfigDir(). On a modern Linux system the
// path in the example above will be:
//
//	/home/user/.config/cpvc/preferences
//
// Directories are created as required.
package paths
