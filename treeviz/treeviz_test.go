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

package treeviz_test

import (
	"strings"
	"testing"

	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/request"
	"github.com/alybaek2/cpvc-sub002/test"
	"github.com/alybaek2/cpvc-sub002/treeviz"
)

func TestBuild(t *testing.T) {
	tr := history.NewTree()

	b0, err := tr.AddBookmark(0, []byte{1}, true)
	test.DemandSuccess(t, err)
	_, err = tr.AddEvent(10, request.Key(3, true))
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, tr.JumpTo(b0))
	_, err = tr.AddEvent(20, request.MachineReset())
	test.DemandSuccess(t, err)

	root, err := treeviz.Build(tr)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, root.Kind, "Root")
	test.DemandEquality(t, len(root.Children), 1)

	b := root.Children[0]
	test.ExpectEquality(t, b.Detail, "user")
	test.DemandEquality(t, len(b.Children), 2)
	test.ExpectEquality(t, b.Children[0].Tick, uint64(10))
	test.ExpectEquality(t, b.Children[0].Current, false)
	test.ExpectEquality(t, b.Children[1].Tick, uint64(20))
	test.ExpectEquality(t, b.Children[1].Current, true)
}

func TestWrite(t *testing.T) {
	tr := history.NewTree()
	_, err := tr.AddBookmark(0, []byte{1}, false)
	test.DemandSuccess(t, err)

	var s strings.Builder
	test.DemandSuccess(t, treeviz.Write(&s, tr))
	test.ExpectSuccess(t, strings.Contains(s.String(), "digraph"))
	test.ExpectSuccess(t, strings.Contains(s.String(), "Bookmark"))
}
