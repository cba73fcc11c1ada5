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

import (
	"sync"
	"sync/atomic"

	"github.com/alybaek2/cpvc-sub002/logger"
)

// Hub distributes events to any number of subscribers.
type Hub struct {
	crit sync.Mutex
	subs map[*Subscription]bool
}

// NewHub is the preferred method of initialisation for the Hub type.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[*Subscription]bool),
	}
}

// Subscription is returned by Hub.Subscribe().
type Subscription struct {
	hub     *Hub
	ch      chan Event
	dropped atomic.Int64
	closed  bool
}

// Subscribe to the Hub. The buffer value is the number of events that can be
// waiting on the channel before events start being dropped. A buffer of
// less than one is treated as one.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}

	s := &Subscription{
		hub: h,
		ch:  make(chan Event, buffer),
	}

	h.crit.Lock()
	defer h.crit.Unlock()
	h.subs[s] = true

	return s
}

// Notify implements the Notify interface. The event is delivered to every
// subscriber with room in its buffer.
func (h *Hub) Notify(ev Event) {
	h.crit.Lock()
	defer h.crit.Unlock()

	for s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			n := s.dropped.Add(1)
			logger.Logf(logger.Allow, "notifications", "subscriber dropped %s (%d dropped in total)", ev.Notice, n)
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.crit.Lock()
	defer h.crit.Unlock()
	return len(h.subs)
}

// Events returns the channel on which events are delivered. The channel is
// closed when the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Dropped returns the number of events that could not be delivered because
// the channel was full.
func (s *Subscription) Dropped() int {
	return int(s.dropped.Load())
}

// Close the subscription. It is safe to call Close more than once.
func (s *Subscription) Close() {
	s.hub.crit.Lock()
	defer s.hub.crit.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	delete(s.hub.subs, s)
	close(s.ch)
}
