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
	"github.com/alybaek2/cpvc-sub002/notifications"
)

// Snapshot returns a copy of the history tree and the serialised state of the
// live machine, taken at the same instant. If a replay is in progress the
// state is that of the machine before the replay started.
//
// The copy can be used without holding any lock.
func (c *Controller) Snapshot() (*history.Tree, []byte, error) {
	pause := c.AutoPause()
	defer pause.Release()

	c.crit.Lock()
	defer c.crit.Unlock()

	if c.state == govern.Closed {
		return nil, nil, curated.Errorf(curated.Closed)
	}

	tree := c.tree.Clone()
	tree.SetReplaying(false)

	if c.replay != nil {
		return tree, c.replay.state, nil
	}

	state, err := c.engine.Serialize()
	if err != nil {
		return nil, nil, curated.Errorf(curated.InvalidState, err)
	}

	return tree, state, nil
}

// Install replaces the history tree and restores the machine to the
// serialised state. Nothing is changed if the state cannot be restored.
func (c *Controller) Install(tree *history.Tree, state []byte) error {
	c.crit.Lock()
	defer c.crit.Unlock()

	if err := c.navigable(); err != nil {
		return err
	}

	previous, err := c.engine.Serialize()
	if err != nil {
		return curated.Errorf(curated.InvalidState, err)
	}

	if err := c.engine.Restore(state); err != nil {
		if rerr := c.engine.Restore(previous); rerr != nil {
			c.setStatus(rerr.Error())
		}
		return curated.Errorf(curated.CorruptPersistedData, err)
	}

	c.tree = tree
	c.lastBookmark = lastBookmark(tree)
	c.runUntil = 0
	c.pipeline.ClearTrail()

	logger.Logf(logger.Allow, "controller", "installed history of %d events", tree.Len())
	c.publish(notifications.PositionChanged, uint64(tree.CurrentID()), "")
	c.publish(notifications.TicksChanged, 0, "")

	return nil
}
