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


// Package controller owns the execution loop of the machine.
//
// The loop runs in its own goroutine. On every iteration (a "slice") it takes
// the controller's lock, applies any requests waiting in the pipeline and
// advances the engine by a fixed number of ticks. Everything else in the
// package is a way for other goroutines to influence the loop: starting and
// stopping it, pausing it temporarily, moving the machine to a different
// point in its history, or replaying history without changing it.
//
// The same lock guards the engine and the history tree. A caller holding the
// lock therefore always sees an engine state that matches the current
// position of the tree.
package controller
