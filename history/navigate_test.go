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

package history_test

import (
	"testing"

	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/request"
	"github.com/alybaek2/cpvc-sub002/test"
)

func TestNoBookmarks(t *testing.T) {
	tr := history.NewTree()
	_, _ = tr.AddEvent(1, request.Key(1, true))

	_, ok := tr.StartBookmark()
	test.ExpectFailure(t, ok)
	_, ok = tr.PreviousBookmark()
	test.ExpectFailure(t, ok)
	_, ok = tr.NextBookmark()
	test.ExpectFailure(t, ok)
}

func TestPreviousBookmark(t *testing.T) {
	tr := history.NewTree()
	b0, _ := tr.AddBookmark(0, nil, true)
	_, _ = tr.AddEvent(1, request.Key(1, true))
	b1, _ := tr.AddBookmark(2, nil, false)
	r2, _ := tr.AddEvent(3, request.Key(1, false))

	id, ok := tr.PreviousBookmark()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, b1)
	test.ExpectEquality(t, tr.CurrentID(), r2)

	// the current position is not included
	test.DemandSuccess(t, tr.JumpTo(b1))
	id, ok = tr.PreviousBookmark()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, b0)

	test.DemandSuccess(t, tr.JumpTo(b0))
	_, ok = tr.PreviousBookmark()
	test.ExpectFailure(t, ok)
}

// seeking forward after seeking backward returns along the same branch
func TestNextBookmarkFollowsVisited(t *testing.T) {
	tr := history.NewTree()
	b0, _ := tr.AddBookmark(0, nil, true)

	// a short branch that would otherwise be preferred
	_, _ = tr.AddEvent(1, request.Key(2, true))
	_, _ = tr.AddBookmark(1, nil, false)

	test.DemandSuccess(t, tr.JumpTo(b0))
	_, _ = tr.AddEvent(5, request.Key(1, true))
	b1, _ := tr.AddBookmark(10, nil, false)
	_, _ = tr.AddEvent(15, request.Key(1, false))
	b2, _ := tr.AddBookmark(20, nil, false)

	id, ok := tr.PreviousBookmark()
	test.DemandSuccess(t, ok)
	test.DemandEquality(t, id, b1)
	test.DemandSuccess(t, tr.JumpTo(id))

	id, ok = tr.PreviousBookmark()
	test.DemandSuccess(t, ok)
	test.DemandEquality(t, id, b0)
	test.DemandSuccess(t, tr.JumpTo(id))

	id, ok = tr.NextBookmark()
	test.ExpectSuccess(t, ok)
	test.DemandEquality(t, id, b1)
	test.DemandSuccess(t, tr.JumpTo(id))

	id, ok = tr.NextBookmark()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, b2)
}

// without a previously visited position the nearest bookmark is chosen
func TestNextBookmarkNearest(t *testing.T) {
	tr := history.NewTree()
	b0, _ := tr.AddBookmark(0, nil, true)

	_, _ = tr.AddEvent(5, request.Key(1, true))
	_, _ = tr.AddBookmark(50, nil, false)

	test.DemandSuccess(t, tr.JumpTo(b0))
	_, _ = tr.AddEvent(5, request.Key(2, true))
	near, _ := tr.AddBookmark(20, nil, false)

	test.DemandSuccess(t, tr.JumpTo(b0))
	_, _ = tr.AddEvent(5, request.Key(3, true))
	_, _ = tr.AddBookmark(30, nil, false)

	// visited position points down the third branch. deleting it leaves
	// nothing to follow
	test.DemandSuccess(t, tr.JumpTo(b0))
	id, ok := tr.NextBookmark()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, tr.Current().ID, b0)
	test.ExpectInequality(t, id, near)
	test.DemandSuccess(t, tr.DeleteBranches([]history.EventID{tr.Current().Children[2]}))

	id, ok = tr.NextBookmark()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, near)
}

// reload the tree from its events. the rebuilt tree has no memory of
// previously visited positions
func reload(t *testing.T, tr *history.Tree) *history.Tree {
	t.Helper()
	var events []history.Event
	tr.Walk(func(e history.Event) bool {
		events = append(events, e)
		return true
	})
	rb, err := history.Rebuild(events, tr.CurrentID(), tr.Size())
	test.DemandSuccess(t, err)
	return rb
}

// with equal ticks the most recently created bookmark is chosen
func TestNextBookmarkTie(t *testing.T) {
	tr := history.NewTree()
	b0, _ := tr.AddBookmark(0, nil, true)

	_, _ = tr.AddEvent(5, request.Key(1, true))
	older, _ := tr.AddBookmark(20, nil, false)

	test.DemandSuccess(t, tr.JumpTo(b0))
	_, _ = tr.AddEvent(5, request.Key(2, true))
	newer, _ := tr.AddBookmark(20, nil, false)

	test.DemandSuccess(t, tr.JumpTo(older))
	test.DemandSuccess(t, tr.JumpTo(b0))

	// the visited position decides
	id, ok := tr.NextBookmark()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, older)

	// without a visited position the tie is broken
	tr = reload(t, tr)
	id, ok = tr.NextBookmark()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, newer)
}

func TestStartBookmark(t *testing.T) {
	tr := history.NewTree()
	_, _ = tr.AddEvent(1, request.Key(1, true))
	b0, _ := tr.AddBookmark(2, nil, true)
	_, _ = tr.AddEvent(3, request.Key(1, false))
	_, _ = tr.AddBookmark(4, nil, false)

	id, ok := tr.StartBookmark()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, b0)
}
