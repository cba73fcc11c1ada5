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
	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/govern"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/request"
)

// everything needed to return to the live machine after a replay, and the
// progress of the replay.
type replay struct {
	// live machine
	state    []byte
	position history.EventID
	from     govern.State
	subState govern.SubState

	// requests still to be fed to the engine
	steps []history.Event

	// tick at which the replay ends
	end uint64

	finished bool
}

// StartReplay restores the machine to the begin bookmark and then replays
// every request between the bookmark and the end event. The history tree is
// not changed and requests waiting in the pipeline are not touched.
//
// The replay happens in the execution loop. The controller stays in the
// Replaying state after the end event has been reached, until StopReplay() is
// called.
func (c *Controller) StartReplay(begin history.EventID, end history.EventID) error {
	c.crit.Lock()
	defer c.crit.Unlock()

	switch c.state {
	case govern.Closed:
		return curated.Errorf(curated.Closed)
	case govern.Replaying:
		return curated.Errorf(curated.AlreadyReplaying)
	}

	b, ok := c.tree.Event(begin)
	if !ok {
		return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.UnknownEvent, begin))
	}
	if !b.IsBookmark() {
		return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.NotABookmark, begin))
	}

	path, err := c.tree.Path(begin, end)
	if err != nil {
		return err
	}

	live, err := c.engine.Serialize()
	if err != nil {
		return curated.Errorf(curated.InvalidState, err)
	}

	r := &replay{
		state:    live,
		position: c.tree.CurrentID(),
		from:     c.state,
		subState: c.subState,
		end:      path[len(path)-1].Tick,
	}
	if c.pauses > 0 {
		r.from = c.pausedFrom
	}
	for _, e := range path[1:] {
		if e.Kind == history.RequestEvent {
			r.steps = append(r.steps, e)
		}
	}

	// a RunUntil request at the end of the path is replayed to its target.
	// anywhere else the tick of the next step is the target
	if last := path[len(path)-1]; last.Kind == history.RequestEvent && last.Request.Kind() == request.RunUntil {
		r.end = max(r.end, last.Request.Tick())
	}

	if err := c.engine.Restore(b.Snapshot); err != nil {
		// the engine might be in any state after a failed restore
		if rerr := c.engine.Restore(live); rerr != nil {
			c.setStatus(rerr.Error())
		}
		return curated.Errorf(curated.InvalidState, err)
	}

	c.replay = r
	c.tree.SetReplaying(true)
	c.pipeline.ClearTrail()
	c.subState = govern.Normal
	c.setState(govern.Replaying)
	c.poke()

	logger.Logf(logger.Allow, "controller", "replaying from %d to %d (%d requests)", begin, end, len(r.steps))

	return nil
}

// StopReplay returns the machine to the state it was in before the replay
// started.
func (c *Controller) StopReplay() error {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.state != govern.Replaying || c.replay == nil {
		return curated.Errorf(curated.InvalidState, "controller: not replaying")
	}

	return c.endReplay()
}

// ReplayFinished returns true if a replay has reached its end event.
func (c *Controller) ReplayFinished() bool {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.replay != nil && c.replay.finished
}

// endReplay is called with the lock held.
func (c *Controller) endReplay() error {
	r := c.replay
	c.replay = nil
	c.tree.SetReplaying(false)

	err := c.engine.Restore(r.state)
	if err != nil {
		c.setStatus(err.Error())
	}

	if c.tree.CurrentID() != r.position {
		logger.Logf(logger.Allow, "controller", "position moved during replay (%d to %d)", r.position, c.tree.CurrentID())
	}

	if c.pauses > 0 {
		c.pausedFrom = r.from
		c.setState(govern.Paused)
	} else {
		c.setState(r.from)
	}
	if govern.StateIntegrity(c.state, r.subState) {
		c.subState = r.subState
	}
	c.poke()

	logger.Log(logger.Allow, "controller", "replay stopped")

	if err != nil {
		return curated.Errorf(curated.InvalidState, err)
	}
	return nil
}

// stepReplay advances the replay by up to one slice. called with the lock
// held.
func (c *Controller) stepReplay() {
	r := c.replay
	if r == nil || r.finished {
		return
	}

	budget := c.Prefs.ticksPerSlice()
	for budget > 0 {
		tick := c.engine.CurrentTick()

		if len(r.steps) > 0 && r.steps[0].Tick <= tick {
			if err := c.pipeline.Feed(c.engine, r.steps[0].Request); err != nil {
				c.setStatus(err.Error())
				logger.Log(logger.Allow, "controller", err)
			}
			r.steps = r.steps[1:]
			continue
		}

		target := r.end
		if len(r.steps) > 0 {
			target = r.steps[0].Tick
		}
		if tick >= target {
			r.finished = true
			logger.Logf(logger.Allow, "controller", "replay reached end @ %d", tick)
			break
		}

		n := min(target-tick, budget)
		if err := c.engine.AdvanceTicks(n); err != nil {
			c.setStatus(err.Error())
			logger.Log(logger.Allow, "controller", err)
			r.finished = true
			break
		}
		budget -= n
	}
}
