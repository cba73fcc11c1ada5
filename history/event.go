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

package history

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/alybaek2/cpvc-sub002/request"
)

// EventID identifies an event in the tree.
type EventID uint64

// RootID is the ID of the root event in every tree.
const RootID EventID = 0

// NoParent is the parent of the root event. It is also used to indicate the
// absence of an event more generally.
const NoParent EventID = math.MaxUint64

// EventKind differentiates the variants of Event.
type EventKind uint8

// List of valid EventKind values.
const (
	Root EventKind = iota
	RequestEvent
	BookmarkEvent

	// Marker is what remains of a bookmark with children after it has been
	// deleted. It carries no data and is never a jump target.
	Marker
)

func (k EventKind) String() string {
	switch k {
	case Root:
		return "Root"
	case RequestEvent:
		return "Request"
	case BookmarkEvent:
		return "Bookmark"
	case Marker:
		return "Marker"
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event is a node in the history tree. Event values returned by the Tree are
// copies and changing them has no effect on the tree.
type Event struct {
	ID       EventID
	Parent   EventID
	Children []EventID
	Kind     EventKind
	Tick     uint64
	Created  time.Time

	// valid for RequestEvent only
	Request request.Request

	// valid for BookmarkEvent only
	Snapshot     []byte
	UserBookmark bool

	// distance from the root. maintained by the tree
	depth int
}

func (e Event) String() string {
	switch e.Kind {
	case RequestEvent:
		return fmt.Sprintf("%d: %s @ %d", e.ID, e.Request, e.Tick)
	case BookmarkEvent:
		if e.UserBookmark {
			return fmt.Sprintf("%d: user bookmark @ %d", e.ID, e.Tick)
		}
		return fmt.Sprintf("%d: system bookmark @ %d", e.ID, e.Tick)
	}
	return fmt.Sprintf("%d: %s @ %d", e.ID, e.Kind, e.Tick)
}

// IsBookmark returns true if the event is a bookmark.
func (e Event) IsBookmark() bool {
	return e.Kind == BookmarkEvent
}

// copy makes a copy of the event that does not share the children slice. the
// request and snapshot data are immutable and can be shared.
func (e *Event) copy() Event {
	c := *e
	c.Children = append([]EventID(nil), e.Children...)
	return c
}

// same returns true if the event would be a duplicate of o if added to the
// same parent.
func (e *Event) same(o *Event) bool {
	if e.Kind != o.Kind || e.Tick != o.Tick {
		return false
	}
	switch e.Kind {
	case RequestEvent:
		return e.Request.Equal(o.Request)
	case BookmarkEvent:
		return e.UserBookmark == o.UserBookmark && bytes.Equal(e.Snapshot, o.Snapshot)
	}
	return false
}
