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
	"github.com/alybaek2/cpvc-sub002/request"
)

// navigable returns an error if the tree's current position cannot be moved.
// called with the lock held.
func (c *Controller) navigable() error {
	switch c.state {
	case govern.Closed:
		return curated.Errorf(curated.Closed)
	case govern.Replaying:
		return curated.Errorf(curated.AlreadyReplaying)
	}
	return nil
}

// JumpTo restores the machine to the bookmark and makes it the current
// position in the history. The audit trail is cleared.
func (c *Controller) JumpTo(id history.EventID) error {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.jumpTo(id)
}

func (c *Controller) jumpTo(id history.EventID) error {
	if err := c.navigable(); err != nil {
		return err
	}

	e, ok := c.tree.Event(id)
	if !ok {
		return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.UnknownEvent, id))
	}
	if !e.IsBookmark() {
		return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.NotABookmark, id))
	}

	// the engine is restored before the tree is changed. if the restore fails
	// the position does not move
	if err := c.engine.Restore(e.Snapshot); err != nil {
		return curated.Errorf(curated.InvalidState, err)
	}
	if err := c.tree.JumpTo(id); err != nil {
		return err
	}

	c.lastBookmark = e.Tick
	c.runUntil = 0
	c.pipeline.ClearTrail()

	logger.Logf(logger.Allow, "controller", "jumped to %s", e)
	c.publish(notifications.PositionChanged, uint64(id), "")
	c.publish(notifications.TicksChanged, 0, "")

	return nil
}

// seek is the common part of the Seek*() functions.
func (c *Controller) seek(find func() (history.EventID, bool)) (bool, error) {
	c.crit.Lock()
	defer c.crit.Unlock()

	if err := c.navigable(); err != nil {
		return false, err
	}

	id, ok := find()
	if !ok {
		return false, nil
	}

	return true, c.jumpTo(id)
}

// SeekToStart jumps to the first bookmark in the history. Returns false if
// there is no such bookmark, in which case nothing changes.
func (c *Controller) SeekToStart() (bool, error) {
	return c.seek(func() (history.EventID, bool) {
		return c.tree.StartBookmark()
	})
}

// SeekToPreviousBookmark jumps to the nearest bookmark before the current
// position. Returns false if there is no such bookmark, in which case nothing
// changes.
func (c *Controller) SeekToPreviousBookmark() (bool, error) {
	return c.seek(func() (history.EventID, bool) {
		return c.tree.PreviousBookmark()
	})
}

// SeekToNextBookmark jumps to the nearest bookmark after the current
// position. Returns false if there is no such bookmark, in which case nothing
// changes.
func (c *Controller) SeekToNextBookmark() (bool, error) {
	return c.seek(func() (history.EventID, bool) {
		return c.tree.NextBookmark()
	})
}

// AddBookmark adds a user bookmark at the current tick.
func (c *Controller) AddBookmark() (history.EventID, error) {
	c.crit.Lock()
	defer c.crit.Unlock()

	if err := c.navigable(); err != nil {
		return history.NoParent, err
	}
	if err := c.bookmark(true); err != nil {
		return history.NoParent, err
	}
	return c.tree.CurrentID(), nil
}

// DeleteBookmarks removes the bookmarks from the history. See
// history.Tree.DeleteBookmarks() for details.
func (c *Controller) DeleteBookmarks(ids []history.EventID) error {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.state == govern.Closed {
		return curated.Errorf(curated.Closed)
	}
	if err := c.tree.DeleteBookmarks(ids); err != nil {
		return err
	}
	logger.Logf(logger.Allow, "controller", "deleted %d bookmarks", len(ids))
	return nil
}

// DeleteBranches removes the events and their descendants from the history.
func (c *Controller) DeleteBranches(ids []history.EventID) error {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.state == govern.Closed {
		return curated.Errorf(curated.Closed)
	}
	if err := c.tree.DeleteBranches(ids); err != nil {
		return err
	}
	logger.Logf(logger.Allow, "controller", "deleted %d branches", len(ids))
	return nil
}

// Reverse starts recording the audit trail so that requests can be undone.
func (c *Controller) Reverse() error {
	return c.setReversing(true)
}

// ReverseStop stops recording the audit trail. The existing trail is lost.
func (c *Controller) ReverseStop() error {
	return c.setReversing(false)
}

// ToggleReversibilityEnabled calls Reverse() or ReverseStop() as
// appropriate.
func (c *Controller) ToggleReversibilityEnabled() error {
	c.crit.Lock()
	reversing := c.subState == govern.Reversing
	c.crit.Unlock()
	return c.setReversing(!reversing)
}

func (c *Controller) setReversing(enabled bool) error {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.state == govern.Closed {
		return curated.Errorf(curated.Closed)
	}

	sub := govern.Normal
	if enabled {
		sub = govern.Reversing
	}
	if !govern.StateIntegrity(c.state, sub) {
		return curated.Errorf(curated.InvalidState, "controller: reversibility cannot be changed while "+c.state.String())
	}

	c.pipeline.SetReversibilityEnabled(enabled)
	if c.subState != sub {
		c.subState = sub
		c.publish(notifications.RunningStateChanged, 0, c.mode().String())
	}

	return nil
}

// Undo the most recent request in the audit trail. The history tree is not
// changed.
//
// Requests undone by reverting the machine to an earlier state cannot be
// undone once history has been recorded after them, as that would leave the
// machine behind the current position in the history.
func (c *Controller) Undo() error {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.state == govern.Closed {
		return curated.Errorf(curated.Closed)
	}

	if a, ok := c.pipeline.Peek(); ok && a.Reverse != nil && a.Reverse.Kind() == request.Revert {
		if cur := c.tree.Current(); a.Tick < cur.Tick {
			return curated.Errorf(curated.StructuralViolation, curated.Errorf(curated.TickOrder, a.Tick, cur.Tick))
		}
	}

	if err := c.pipeline.Undo(c.engine); err != nil {
		return err
	}
	c.runUntil = 0
	c.publish(notifications.TicksChanged, 0, "")

	return nil
}
