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

package notifications

import "fmt"

// Notice describes the kind of change that has happened.
type Notice string

// List of defined notifications.
const (
	// the number of ticks executed by the engine has changed. not sent for
	// every tick but once per execution slice
	TicksChanged Notice = "TicksChanged"

	// the machine has moved between running, paused and replaying
	RunningStateChanged Notice = "RunningStateChanged"

	// the human readable status of the machine has changed
	StatusChanged Notice = "StatusChanged"

	// the machine has been renamed
	NameChanged Notice = "NameChanged"

	// a request has been applied to the engine or undone
	RequestApplied Notice = "RequestApplied"
	RequestUndone  Notice = "RequestUndone"

	// a bookmark has been added to the history
	BookmarkAdded Notice = "BookmarkAdded"

	// the current position in the history has moved other than by adding an
	// event. for example, a jump to an earlier bookmark
	PositionChanged Notice = "PositionChanged"
)

// Event is sent to subscribers. Not all fields are meaningful for all
// notices.
type Event struct {
	Notice Notice

	// tick of the engine at the time of the notification
	Tick uint64

	// the history event concerned. for BookmarkAdded and PositionChanged
	ID uint64

	// free text. the new name or status, or a description of a request
	Detail string
}

func (ev Event) String() string {
	if ev.Detail == "" {
		return fmt.Sprintf("%s @ %d", ev.Notice, ev.Tick)
	}
	return fmt.Sprintf("%s @ %d: %s", ev.Notice, ev.Tick, ev.Detail)
}

// Notify is implemented by anything that can receive notifications. The Hub
// type is the main implementation.
type Notify interface {
	Notify(ev Event)
}
