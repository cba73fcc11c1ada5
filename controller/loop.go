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

package controller

import (
	"time"

	"github.com/alybaek2/cpvc-sub002/govern"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/notifications"
	"github.com/alybaek2/cpvc-sub002/request"
)

// the pulse of the loop when it is not running. this is also the pulse when
// the throttle is disabled and the loop would otherwise spin
const idlePulse = 50 * time.Millisecond

func (c *Controller) sliceDuration() time.Duration {
	sps := c.Prefs.SlicesPerSecond.Get().(int)
	if sps <= 0 {
		sps = 1
	}
	return time.Second / time.Duration(sps)
}

// the execution loop. exits when the quit channel is closed.
func (c *Controller) loop() {
	defer close(c.done)

	dur := c.sliceDuration()
	lmtr := time.NewTicker(dur)
	defer lmtr.Stop()

	idle := time.NewTicker(idlePulse)
	defer idle.Stop()

	for {
		if d := c.sliceDuration(); d != dur {
			dur = d
			lmtr.Reset(dur)
		}

		if c.busy() {
			if c.Prefs.throttle() {
				select {
				case <-c.quit:
					return
				case <-lmtr.C:
				}
			} else {
				select {
				case <-c.quit:
					return
				default:
				}
			}
		} else {
			select {
			case <-c.quit:
				return
			case <-c.wake:
			case <-idle.C:
			}
		}

		c.lock()
		c.slice()
		c.crit.Unlock()
	}
}

// busy returns true if the loop has work to do. used to decide how long to
// wait before the next slice.
func (c *Controller) busy() bool {
	c.crit.Lock()
	defer c.crit.Unlock()
	if c.pauses > 0 {
		return false
	}
	switch c.state {
	case govern.Running:
		return true
	case govern.Replaying:
		return c.replay != nil && !c.replay.finished
	}
	return false
}

// slice is one iteration of the execution loop. called with the lock held.
func (c *Controller) slice() {
	if c.stopRequest.Swap(false) {
		if c.pauses > 0 {
			if c.pausedFrom == govern.Running {
				c.pausedFrom = govern.Paused
			}
		} else if c.state == govern.Running {
			c.setState(govern.Paused)
		}
	}

	if c.pauses > 0 {
		return
	}

	switch c.state {
	case govern.Running:
		c.run()
	case govern.Replaying:
		c.stepReplay()
	}
}

// run applies queued requests and advances the engine by one slice.
func (c *Controller) run() {
	start := c.engine.CurrentTick()
	budget := c.Prefs.ticksPerSlice()

	for {
		// work towards the target of a RunUntil request. the rest of the
		// queue is held back until the target is reached
		if tick := c.engine.CurrentTick(); c.runUntil > tick {
			n := min(c.runUntil-tick, budget)
			if err := c.advance(n); err != nil {
				c.fail(err)
				return
			}
			budget -= n
			if c.runUntil > c.engine.CurrentTick() {
				break
			}
		}
		c.runUntil = 0

		r, ok, err := c.pipeline.ApplyNext(c.engine, c.tree, false)
		if err != nil {
			c.fail(err)
			return
		}
		if !ok {
			break
		}
		if r.Kind() == request.RunUntil {
			c.runUntil = r.Tick()
		}
	}

	if budget > 0 && c.runUntil == 0 {
		if err := c.advance(budget); err != nil {
			c.fail(err)
			return
		}
	}

	if c.engine.CurrentTick() != start {
		c.publish(notifications.TicksChanged, 0, "")
	}
}

// advance the engine by n ticks. system bookmarks are added at the
// bookmark interval.
func (c *Controller) advance(n uint64) error {
	interval := c.Prefs.bookmarkInterval()

	for n > 0 {
		step := n
		tick := c.engine.CurrentTick()

		due := uint64(0)
		if interval > 0 {
			due = c.lastBookmark + interval
			if due > tick && due-tick < step {
				step = due - tick
			}
		}

		if err := c.engine.AdvanceTicks(step); err != nil {
			return err
		}
		n -= step

		if interval > 0 && c.engine.CurrentTick() >= due {
			if err := c.bookmark(false); err != nil {
				return err
			}
		}
	}

	return nil
}

// bookmark adds a bookmark at the current engine tick. called with the lock
// held.
func (c *Controller) bookmark(user bool) error {
	snapshot, err := c.engine.Serialize()
	if err != nil {
		return err
	}

	id, err := c.tree.AddBookmark(c.engine.CurrentTick(), snapshot, user)
	if err != nil {
		return err
	}
	c.lastBookmark = c.engine.CurrentTick()

	logger.Logf(logger.Allow, "controller", "bookmark %d added @ %d", id, c.lastBookmark)
	c.publish(notifications.BookmarkAdded, uint64(id), "")

	return nil
}

// fail is called when the engine or the tree returns an unexpected error
// during a slice. the machine is paused and the error is reported through the
// status.
func (c *Controller) fail(err error) {
	logger.Log(logger.Allow, "controller", err)
	c.setStatus(err.Error())
	if c.state == govern.Running {
		c.setState(govern.Paused)
	}
}
