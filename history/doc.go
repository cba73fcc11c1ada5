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

// Package history records everything that has ever happened to a machine as
// a tree of timestamped events. The tree has a single root and any number of
// branches. Each node is either a request that was applied to the machine or
// a bookmark holding a snapshot of the machine's state.
//
// Events live in an arena and refer to each other by EventID. An EventID is
// never reused, even after the event has been deleted.
//
// Exactly one event is the current position. New events are added as
// children of the current position and the current position then moves to
// the new event. If the current position already has children a new branch
// is created. History is never overwritten; it is only extended or explicitly
// pruned with DeleteBookmarks() and DeleteBranches().
//
// The Tree type is not safe for concurrent use. The controller package
// guards the tree with the same lock that guards the machine so that the
// current position always agrees with the state of the machine.
package history
