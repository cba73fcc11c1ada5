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

package curated

// Sentinel patterns for the errors surfaced by the emulator core. The
// placeholder, where there is one, is either the ID of the history event
// concerned or a wrapped error.
const (
	// the operation is not valid for the current state of the machine. for
	// example, submitting a request after the machine has been closed.
	InvalidState = "invalid state: %v"

	// the operation would break an invariant of the history tree. the wrapped
	// error will be one of the more specific patterns below.
	StructuralViolation = "structural violation: %v"

	// sub-patterns of StructuralViolation
	NotABookmark             = "event %d is not a bookmark"
	CurrentPositionProtected = "event %d contains or precedes the current position"
	UnknownEvent             = "event %d does not exist"
	TickOrder                = "tick %d precedes parent tick %d"
	NotOnPath                = "event %d does not descend from event %d"

	NothingToUndo        = "nothing to undo"
	AlreadyReplaying     = "already replaying"
	CompactionInProgress = "compaction already in progress"
	CorruptPersistedData = "corrupt persisted data: %v"

	// the controller has been closed and will not accept any more work.
	Closed = "machine is closed"
)
