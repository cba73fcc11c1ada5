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

// StartBookmark returns the bookmark nearest to the root. If there is more
// than one candidate, the bookmark on the way to the current position is
// preferred. Returns false if there are no bookmarks in the tree.
func (t *Tree) StartBookmark() (EventID, bool) {
	return t.forward(RootID)
}

// PreviousBookmark returns the nearest bookmark between the current position
// and the root, not including the current position itself. Returns false if
// there is no such bookmark.
func (t *Tree) PreviousBookmark() (EventID, bool) {
	for id := t.events[t.current].Parent; id != NoParent; id = t.events[id].Parent {
		if t.events[id].Kind == BookmarkEvent {
			return id, true
		}
	}
	return NoParent, false
}

// NextBookmark returns the nearest bookmark descending from the current
// position. Returns false if there is no such bookmark.
//
// If the current position was reached by moving backwards, the branch that
// leads to the previously visited position is followed. Otherwise, the
// bookmark with the fewest intervening ticks is chosen, with ties broken in
// favour of the most recently created bookmark.
func (t *Tree) NextBookmark() (EventID, bool) {
	return t.forward(t.current)
}

// forward searches the descendants of the event (not including the event
// itself) for the nearest bookmark.
func (t *Tree) forward(from EventID) (EventID, bool) {
	// guide the search along the path to a known descendant. the visited
	// position takes priority over the current position
	for _, guide := range []EventID{t.visited, t.current} {
		if guide == NoParent || guide == from || t.get(guide) == nil || !t.isAncestor(from, guide) {
			continue
		}

		// first bookmark on the path from "from" to the guide
		var found EventID = NoParent
		for id := guide; id != from; id = t.events[id].Parent {
			if t.events[id].Kind == BookmarkEvent {
				found = id
			}
		}
		if found != NoParent {
			return found, true
		}
	}

	// breadth-first search of all descendants. a bookmark ends the search
	// down its branch because any bookmark beneath it is further away
	best := NoParent
	queue := append([]EventID(nil), t.events[from].Children...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		e := t.events[id]
		if e.Kind == BookmarkEvent {
			if best == NoParent {
				best = id
			} else {
				b := t.events[best]
				if e.Tick < b.Tick || (e.Tick == b.Tick && e.ID > b.ID) {
					best = id
				}
			}
			continue
		}

		queue = append(queue, e.Children...)
	}

	return best, best != NoParent
}
