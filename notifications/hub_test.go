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

package notifications_test

import (
	"testing"

	"github.com/alybaek2/cpvc-sub002/notifications"
	"github.com/alybaek2/cpvc-sub002/test"
)

func TestHub(t *testing.T) {
	h := notifications.NewHub()
	a := h.Subscribe(10)
	b := h.Subscribe(10)
	test.ExpectEquality(t, h.Len(), 2)

	h.Notify(notifications.Event{Notice: notifications.NameChanged, Detail: "foo"})

	ev := <-a.Events()
	test.ExpectEquality(t, ev.Notice, notifications.NameChanged)
	test.ExpectEquality(t, ev.Detail, "foo")
	ev = <-b.Events()
	test.ExpectEquality(t, ev.Notice, notifications.NameChanged)

	b.Close()
	b.Close()
	test.ExpectEquality(t, h.Len(), 1)

	_, ok := <-b.Events()
	test.ExpectFailure(t, ok)

	// notify after a subscriber has closed
	h.Notify(notifications.Event{Notice: notifications.TicksChanged, Tick: 100})
	ev = <-a.Events()
	test.ExpectEquality(t, ev.Tick, uint64(100))
	test.ExpectEquality(t, ev.String(), "TicksChanged @ 100")
}

func TestSlowSubscriber(t *testing.T) {
	h := notifications.NewHub()
	s := h.Subscribe(0)

	// the buffer holds one event. notify never blocks
	for i := 0; i < 5; i++ {
		h.Notify(notifications.Event{Notice: notifications.TicksChanged, Tick: uint64(i)})
	}

	test.ExpectEquality(t, s.Dropped(), 4)
	ev := <-s.Events()
	test.ExpectEquality(t, ev.Tick, uint64(0))
}
