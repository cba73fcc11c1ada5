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
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/govern"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/notifications"
	"github.com/alybaek2/cpvc-sub002/pipeline"
	"github.com/alybaek2/cpvc-sub002/request"
	"github.com/cenkalti/backoff/v5"
)

// the number of attempts the execution loop makes at acquiring the lock with
// TryLock() before blocking.
const lockTries = 5

var errContended = errors.New("lock contended")

// Controller runs the execution loop.
type Controller struct {
	// crit guards every field below it and the engine and tree
	crit sync.Mutex

	engine   emulation.Engine
	tree     *history.Tree
	pipeline *pipeline.Pipeline
	notify   notifications.Notify

	state    govern.State
	subState govern.SubState
	status   string

	// number of outstanding AutoPause() calls and the state to return to
	// when the last one is released
	pauses     int
	pausedFrom govern.State

	// non-nil while replaying
	replay *replay

	// tick of the most recent bookmark on the current branch
	lastBookmark uint64

	// target of a RunUntil request that the loop is still working towards.
	// requests behind it in the queue wait until it is reached. zero when
	// there is no target
	runUntil uint64

	Prefs *Preferences

	// cooperative stop. checked by the execution loop once per slice
	stopRequest atomic.Bool

	// wake the execution loop early
	wake chan bool

	quit      chan bool
	done      chan bool
	closeOnce sync.Once

	// used only by the execution loop
	lockBackoff *backoff.ExponentialBackOff
}

// NewController is the preferred method of initialisation for the Controller
// type. The execution loop is started immediately but the controller begins
// in the Paused state. The notify argument may be nil.
func NewController(engine emulation.Engine, tree *history.Tree, pl *pipeline.Pipeline, notify notifications.Notify, prefs *Preferences) *Controller {
	c := &Controller{
		engine:   engine,
		tree:     tree,
		pipeline: pl,
		notify:   notify,
		state:    govern.Paused,
		Prefs:    prefs,
		wake:     make(chan bool, 1),
		quit:     make(chan bool),
		done:     make(chan bool),
	}

	c.lockBackoff = backoff.NewExponentialBackOff()
	c.lockBackoff.InitialInterval = 50 * time.Microsecond
	c.lockBackoff.MaxInterval = time.Millisecond

	c.lastBookmark = lastBookmark(tree)

	go c.loop()

	return c
}

// lock is used by the execution loop to acquire the controller's lock.
// Callers from outside the loop are waited for briefly before the lock is
// taken unconditionally.
func (c *Controller) lock() {
	_, err := backoff.Retry(context.Background(), func() (bool, error) {
		if c.crit.TryLock() {
			return true, nil
		}
		return false, errContended
	}, backoff.WithBackOff(c.lockBackoff), backoff.WithMaxTries(lockTries))

	if err != nil {
		c.crit.Lock()
	}
}

// poke the execution loop so that it doesn't wait for the next pulse.
func (c *Controller) poke() {
	select {
	case c.wake <- true:
	default:
	}
}

func (c *Controller) publish(notice notifications.Notice, id uint64, detail string) {
	if c.notify == nil {
		return
	}
	c.notify.Notify(notifications.Event{
		Notice: notice,
		Tick:   c.engine.CurrentTick(),
		ID:     id,
		Detail: detail,
	})
}

// setState changes the state and sends a notification if it has changed.
// must be called with the lock held.
func (c *Controller) setState(state govern.State) {
	if c.state == state {
		return
	}
	c.state = state
	if !govern.StateIntegrity(c.state, c.subState) {
		c.subState = govern.Normal
	}
	logger.Logf(logger.Allow, "controller", "state is now %s", c.mode())
	c.publish(notifications.RunningStateChanged, 0, c.mode().String())
}

// setStatus must be called with the lock held.
func (c *Controller) setStatus(status string) {
	if c.status == status {
		return
	}
	c.status = status
	c.publish(notifications.StatusChanged, 0, status)
}

// mode must be called with the lock held.
func (c *Controller) mode() govern.Mode {
	return govern.Mode{State: c.state, SubState: c.subState}
}

// State returns the current state of the controller.
func (c *Controller) State() govern.Mode {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.mode()
}

// Status returns a human readable description of the most recent problem or
// the empty string.
func (c *Controller) Status() string {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.status
}

// Ticks returns the tick count of the engine.
func (c *Controller) Ticks() uint64 {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.engine.CurrentTick()
}

// Submit a request to the pipeline. It will be applied by the execution loop
// the next time it runs.
func (c *Controller) Submit(r request.Request) error {
	if err := c.pipeline.Submit(r); err != nil {
		return err
	}
	c.poke()
	return nil
}

// With calls the function with the lock held. The function must not keep a
// reference to the engine or the tree.
func (c *Controller) With(f func(engine emulation.Engine, tree *history.Tree) error) error {
	c.crit.Lock()
	defer c.crit.Unlock()
	if c.state == govern.Closed {
		return curated.Errorf(curated.Closed)
	}
	return f(c.engine, c.tree)
}

// Start the execution loop running.
func (c *Controller) Start() error {
	c.crit.Lock()
	defer c.crit.Unlock()

	switch c.state {
	case govern.Closed:
		return curated.Errorf(curated.Closed)
	case govern.Replaying:
		return curated.Errorf(curated.InvalidState, "controller: cannot start while replaying")
	}

	c.stopRequest.Store(false)

	// a failure reported by an earlier run is cleared
	c.setStatus("")

	if c.pauses > 0 {
		c.pausedFrom = govern.Running
		return nil
	}

	c.setState(govern.Running)
	c.poke()

	return nil
}

// Stop the execution loop. When Stop() returns the loop is guaranteed not to
// be in the middle of a slice.
func (c *Controller) Stop() error {
	c.crit.Lock()
	defer c.crit.Unlock()

	switch c.state {
	case govern.Closed:
		return curated.Errorf(curated.Closed)
	case govern.Replaying:
		return curated.Errorf(curated.InvalidState, "controller: cannot stop while replaying")
	}

	if c.pauses > 0 {
		c.pausedFrom = govern.Paused
		return nil
	}

	c.setState(govern.Paused)

	return nil
}

// RequestStop asks the execution loop to stop at the end of the current
// slice. It does not wait for that to happen.
func (c *Controller) RequestStop() {
	c.stopRequest.Store(true)
	c.poke()
}

// ToggleRunning starts a paused controller and stops a running one.
func (c *Controller) ToggleRunning() error {
	c.crit.Lock()
	state := c.state
	if c.pauses > 0 {
		state = c.pausedFrom
	}
	c.crit.Unlock()

	if state == govern.Running {
		return c.Stop()
	}
	return c.Start()
}

// Close the controller. The execution loop is stopped and the pipeline is
// closed. Close can be called more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.crit.Lock()
		if c.replay != nil {
			c.endReplay()
		}
		c.setState(govern.Closed)
		c.pipeline.Close()
		c.crit.Unlock()

		close(c.quit)
		<-c.done
	})
}

// lastBookmark returns the tick of the bookmark at or before the current
// position of the tree.
func lastBookmark(tree *history.Tree) uint64 {
	if cur := tree.Current(); cur.IsBookmark() {
		return cur.Tick
	}
	if b, ok := tree.PreviousBookmark(); ok {
		e, _ := tree.Event(b)
		return e.Tick
	}
	return 0
}
