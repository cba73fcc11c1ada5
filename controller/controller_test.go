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

package controller_test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alybaek2/cpvc-sub002/assert"
	"github.com/alybaek2/cpvc-sub002/controller"
	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/govern"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/pipeline"
	"github.com/alybaek2/cpvc-sub002/refcore"
	"github.com/alybaek2/cpvc-sub002/request"
	"github.com/alybaek2/cpvc-sub002/test"
)

// key records a call to SetKey().
type key struct {
	key  byte
	down bool
}

// recorder is an engine that records the keys it has been given and the
// goroutines that have advanced it.
type recorder struct {
	*refcore.Core

	crit sync.Mutex
	keys []key

	advancing assert.Goroutines

	// AdvanceTicks() fails once the tick count reaches this value
	failAt uint64
}

func newRecorder() *recorder {
	return &recorder{Core: refcore.NewCore()}
}

func (r *recorder) SetKey(k byte, down bool) error {
	r.crit.Lock()
	r.keys = append(r.keys, key{key: k, down: down})
	r.crit.Unlock()
	return r.Core.SetKey(k, down)
}

func (r *recorder) AdvanceTicks(n uint64) error {
	r.advancing.Record()
	if r.failAt > 0 && r.CurrentTick()+n >= r.failAt {
		return fmt.Errorf("recorder: failed at tick %d", r.CurrentTick())
	}
	return r.Core.AdvanceTicks(n)
}

func (r *recorder) recorded() []key {
	r.crit.Lock()
	defer r.crit.Unlock()
	return append([]key(nil), r.keys...)
}

func (r *recorder) reset() {
	r.crit.Lock()
	defer r.crit.Unlock()
	r.keys = nil
}

func preferences(t *testing.T) *controller.Preferences {
	t.Helper()
	p, err := controller.NewPreferences("")
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.Throttle.Set(false))
	test.DemandSuccess(t, p.TicksPerSlice.Set(1000))
	test.DemandSuccess(t, p.SystemBookmarkInterval.Set(0))
	return p
}

func newController(t *testing.T, engine emulation.Engine, tree *history.Tree) *controller.Controller {
	t.Helper()
	if tree == nil {
		tree = history.NewTree()
	}
	c := controller.NewController(engine, tree, pipeline.NewPipeline(nil), nil, preferences(t))
	t.Cleanup(c.Close)
	return c
}

func waitFor(t *testing.T, f func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func serialize(t *testing.T, e emulation.Engine) []byte {
	t.Helper()
	b, err := e.Serialize()
	test.DemandSuccess(t, err)
	return b
}

// keyDown reads the key state of the engine with the controller's lock held.
func keyDown(t *testing.T, c *controller.Controller, k byte) bool {
	t.Helper()
	var down bool
	test.DemandSuccess(t, c.With(func(e emulation.Engine, _ *history.Tree) error {
		down = e.KeyDown(k)
		return nil
	}))
	return down
}

func TestStartStop(t *testing.T) {
	rec := newRecorder()
	c := newController(t, rec, nil)
	test.ExpectEquality(t, c.State().State, govern.Paused)

	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return c.Ticks() > 5000 })

	test.DemandSuccess(t, c.Stop())
	test.ExpectEquality(t, c.State().State, govern.Paused)

	// nothing moves while paused
	ticks := c.Ticks()
	time.Sleep(10 * time.Millisecond)
	test.ExpectEquality(t, c.Ticks(), ticks)

	// only the execution loop advances the engine
	test.ExpectEquality(t, rec.advancing.Len(), 1)
	test.ExpectFailure(t, rec.advancing.Seen(assert.GetGoRoutineID()))

	test.DemandSuccess(t, c.ToggleRunning())
	test.ExpectEquality(t, c.State().State, govern.Running)
	test.DemandSuccess(t, c.ToggleRunning())
	test.ExpectEquality(t, c.State().State, govern.Paused)

	c.Close()
	c.Close()
	test.ExpectEquality(t, c.State().State, govern.Closed)
	test.ExpectSuccess(t, curated.Is(c.Start(), curated.Closed))
	test.ExpectSuccess(t, curated.Is(c.JumpTo(0), curated.Closed))

	err := c.Submit(request.Key(1, true))
	test.ExpectSuccess(t, curated.Is(err, curated.InvalidState))
	test.ExpectSuccess(t, curated.Has(err, curated.Closed))
}

func TestRequestStop(t *testing.T) {
	c := newController(t, refcore.NewCore(), nil)
	test.DemandSuccess(t, c.Start())
	c.RequestStop()
	waitFor(t, func() bool { return c.State().State == govern.Paused })
}

func TestSubmit(t *testing.T) {
	rec := newRecorder()
	c := newController(t, rec, nil)

	test.DemandSuccess(t, c.Submit(request.Key('A', true)))
	test.DemandSuccess(t, c.Submit(request.Key('A', false)))

	// requests are not applied while paused
	time.Sleep(10 * time.Millisecond)
	test.ExpectEquality(t, len(rec.recorded()), 0)

	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return len(rec.recorded()) == 2 })
	test.DemandSuccess(t, c.Stop())

	keys := rec.recorded()
	test.ExpectEquality(t, keys[0], key{'A', true})
	test.ExpectEquality(t, keys[1], key{'A', false})

	// both requests are in the history
	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		test.ExpectEquality(t, tree.Len(), 3)
		e := tree.Current()
		test.ExpectSuccess(t, e.Request.Equal(request.Key('A', false)))
		return nil
	}))
}

func TestAutoPause(t *testing.T) {
	c := newController(t, refcore.NewCore(), nil)
	test.DemandSuccess(t, c.Start())

	p1 := c.AutoPause()
	test.ExpectEquality(t, c.State().State, govern.Paused)
	ticks := c.Ticks()

	p2 := c.AutoPause()
	p2.Release()
	p2.Release()
	test.ExpectEquality(t, c.State().State, govern.Paused)

	time.Sleep(10 * time.Millisecond)
	test.ExpectEquality(t, c.Ticks(), ticks)

	p1.Release()
	test.ExpectEquality(t, c.State().State, govern.Running)
	waitFor(t, func() bool { return c.Ticks() > ticks })

	// stopping while auto-paused takes effect on release
	p3 := c.AutoPause()
	test.DemandSuccess(t, c.Stop())
	p3.Release()
	test.ExpectEquality(t, c.State().State, govern.Paused)
}

// build a history by driving an engine directly. returns the tree and the
// ids of the bookmarks at tick 0 and tick 1000, and of the request between
// them.
func buildHistory(t *testing.T) (*history.Tree, history.EventID, history.EventID, history.EventID) {
	t.Helper()

	core := refcore.NewCore()
	tr := history.NewTree()

	b0, err := tr.AddBookmark(0, serialize(t, core), true)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, core.AdvanceTicks(500))
	r1, err := tr.AddEvent(500, request.Key('A', true))
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, core.SetKey('A', true))

	test.DemandSuccess(t, core.AdvanceTicks(500))
	b1, err := tr.AddBookmark(1000, serialize(t, core), true)
	test.DemandSuccess(t, err)

	return tr, b0, r1, b1
}

func TestJumpTo(t *testing.T) {
	tr, b0, r1, b1 := buildHistory(t)
	rec := newRecorder()
	c := newController(t, rec, tr)

	test.DemandSuccess(t, c.JumpTo(b0))
	test.ExpectEquality(t, c.Ticks(), uint64(0))

	err := c.JumpTo(r1)
	test.ExpectSuccess(t, curated.Is(err, curated.StructuralViolation))
	test.ExpectSuccess(t, curated.Has(err, curated.NotABookmark))

	err = c.JumpTo(999)
	test.ExpectSuccess(t, curated.Has(err, curated.UnknownEvent))

	ok, err := c.SeekToNextBookmark()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, c.Ticks(), uint64(1000))
	test.ExpectSuccess(t, keyDown(t, c, 'A'))

	// nothing after b1
	ok, err = c.SeekToNextBookmark()
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, c.Ticks(), uint64(1000))

	ok, err = c.SeekToPreviousBookmark()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, c.Ticks(), uint64(0))
	test.ExpectFailure(t, keyDown(t, c, 'A'))

	ok, err = c.SeekToStart()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ok)

	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		test.ExpectEquality(t, tree.CurrentID(), b0)
		_, ok := tree.Event(b1)
		test.ExpectSuccess(t, ok)
		return nil
	}))
}

// a request applied after jumping back creates a new branch
func TestBranch(t *testing.T) {
	tr, b0, r1, _ := buildHistory(t)
	rec := newRecorder()
	c := newController(t, rec, tr)

	test.DemandSuccess(t, c.JumpTo(b0))
	test.DemandSuccess(t, c.Submit(request.Key('B', true)))
	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return len(rec.recorded()) == 1 })
	test.DemandSuccess(t, c.Stop())

	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		e, _ := tree.Event(b0)
		test.DemandEquality(t, len(e.Children), 2)
		test.ExpectEquality(t, e.Children[0], r1)

		n, _ := tree.Event(e.Children[1])
		test.ExpectSuccess(t, n.Request.Equal(request.Key('B', true)))
		test.ExpectEquality(t, n.Tick, uint64(0))
		return tree.Verify()
	}))
}

func TestReplay(t *testing.T) {
	tr, b0, _, b1 := buildHistory(t)
	rec := newRecorder()
	c := newController(t, rec, tr)

	// the live machine is somewhere else entirely
	test.DemandSuccess(t, c.JumpTo(b1))
	test.DemandSuccess(t, c.Submit(request.Key(7, true)))
	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return c.Ticks() > 3000 })
	test.DemandSuccess(t, c.Stop())

	var live []byte
	var position history.EventID
	var events int
	test.DemandSuccess(t, c.With(func(e emulation.Engine, tree *history.Tree) error {
		live = serialize(t, e)
		position = tree.CurrentID()
		events = tree.Len()
		return nil
	}))

	rec.reset()
	test.DemandSuccess(t, c.StartReplay(b0, b1))
	test.ExpectEquality(t, c.State().State, govern.Replaying)

	err := c.StartReplay(b0, b1)
	test.ExpectSuccess(t, curated.Is(err, curated.AlreadyReplaying))
	err = c.JumpTo(b0)
	test.ExpectSuccess(t, curated.Is(err, curated.AlreadyReplaying))
	_, err = c.SeekToStart()
	test.ExpectSuccess(t, curated.Is(err, curated.AlreadyReplaying))

	waitFor(t, c.ReplayFinished)

	// exactly the requests on the path were replayed
	keys := rec.recorded()
	test.DemandEquality(t, len(keys), 1)
	test.ExpectEquality(t, keys[0], key{'A', true})

	// the replayed machine matches the end bookmark
	test.DemandSuccess(t, c.With(func(e emulation.Engine, tree *history.Tree) error {
		test.ExpectEquality(t, e.CurrentTick(), uint64(1000))
		b, _ := tree.Event(b1)
		test.ExpectSuccess(t, bytes.Equal(serialize(t, e), b.Snapshot))
		test.ExpectEquality(t, tree.Len(), events)
		return nil
	}))

	test.DemandSuccess(t, c.StopReplay())
	test.ExpectEquality(t, c.State().State, govern.Paused)

	test.DemandSuccess(t, c.With(func(e emulation.Engine, tree *history.Tree) error {
		test.ExpectSuccess(t, bytes.Equal(serialize(t, e), live))
		test.ExpectEquality(t, tree.CurrentID(), position)
		test.ExpectEquality(t, tree.Len(), events)
		return nil
	}))

	err = c.StopReplay()
	test.ExpectSuccess(t, curated.Is(err, curated.InvalidState))
}

func TestReplayErrors(t *testing.T) {
	tr, b0, r1, b1 := buildHistory(t)
	c := newController(t, refcore.NewCore(), tr)

	err := c.StartReplay(r1, b1)
	test.ExpectSuccess(t, curated.Has(err, curated.NotABookmark))

	err = c.StartReplay(b1, b0)
	test.ExpectSuccess(t, curated.Has(err, curated.NotOnPath))

	test.ExpectEquality(t, c.State().State, govern.Paused)
}

func TestUndo(t *testing.T) {
	rec := newRecorder()
	c := newController(t, rec, nil)

	err := c.Undo()
	test.ExpectSuccess(t, curated.Is(err, curated.NothingToUndo))

	test.DemandSuccess(t, c.Reverse())
	test.ExpectEquality(t, c.State().SubState, govern.Reversing)

	test.DemandSuccess(t, c.Submit(request.Key(9, true)))
	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return keyDown(t, c, 9) })
	test.DemandSuccess(t, c.Stop())

	test.DemandSuccess(t, c.Undo())
	test.ExpectFailure(t, keyDown(t, c, 9))

	// the history still records the request
	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		test.ExpectEquality(t, tree.Len(), 2)
		return nil
	}))

	err = c.Undo()
	test.ExpectSuccess(t, curated.Is(err, curated.NothingToUndo))

	test.DemandSuccess(t, c.ToggleReversibilityEnabled())
	test.ExpectEquality(t, c.State().SubState, govern.Normal)
}

// navigating clears the audit trail
func TestUndoAfterJump(t *testing.T) {
	tr, b0, _, _ := buildHistory(t)
	rec := newRecorder()
	c := newController(t, rec, tr)

	test.DemandSuccess(t, c.Reverse())
	test.DemandSuccess(t, c.Submit(request.Key(9, true)))
	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return keyDown(t, c, 9) })
	test.DemandSuccess(t, c.Stop())

	test.DemandSuccess(t, c.JumpTo(b0))
	err := c.Undo()
	test.ExpectSuccess(t, curated.Is(err, curated.NothingToUndo))
}

func TestSystemBookmarks(t *testing.T) {
	c := newController(t, refcore.NewCore(), nil)
	test.DemandSuccess(t, c.Prefs.SystemBookmarkInterval.Set(1000))
	test.DemandSuccess(t, c.Prefs.TicksPerSlice.Set(2500))

	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return c.Ticks() >= 10000 })
	test.DemandSuccess(t, c.Stop())

	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		b := tree.Bookmarks()
		test.ExpectSuccess(t, len(b) >= 10)
		for i, e := range b {
			test.ExpectEquality(t, e.Tick, uint64(i+1)*1000)
			test.ExpectFailure(t, e.UserBookmark)
		}
		return tree.Verify()
	}))

	id, err := c.AddBookmark()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		e, _ := tree.Event(id)
		test.ExpectSuccess(t, e.UserBookmark)
		return nil
	}))
}

func TestRunUntil(t *testing.T) {
	c := newController(t, refcore.NewCore(), nil)
	test.DemandSuccess(t, c.Prefs.SystemBookmarkInterval.Set(1000))

	test.DemandSuccess(t, c.Submit(request.Until(100000)))
	test.DemandSuccess(t, c.Submit(request.Key('A', true)))
	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return keyDown(t, c, 'A') })
	test.DemandSuccess(t, c.Stop())

	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		// system bookmarks are added while the machine runs to the target
		b := tree.Bookmarks()
		test.DemandSuccess(t, len(b) >= 100)
		for i, e := range b[:100] {
			test.ExpectEquality(t, e.Tick, uint64(i+1)*1000)
		}

		// the request queued behind the target waits for it
		var until, key uint64
		tree.Walk(func(e history.Event) bool {
			if e.Kind == history.RequestEvent {
				switch e.Request.Kind() {
				case request.RunUntil:
					until = e.Tick
				case request.KeyDown:
					key = e.Tick
				}
			}
			return true
		})
		test.ExpectEquality(t, until, uint64(0))
		test.ExpectSuccess(t, key >= 100000)

		return tree.Verify()
	}))
}

// a machine running to a distant target stops as quickly as any other
func TestRunUntilStop(t *testing.T) {
	c := newController(t, refcore.NewCore(), nil)

	test.DemandSuccess(t, c.Submit(request.Until(1<<36)))
	test.DemandSuccess(t, c.Submit(request.Key('A', true)))
	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return c.Ticks() > 0 })

	start := time.Now()
	test.DemandSuccess(t, c.Stop())
	test.ExpectSuccess(t, time.Since(start) < time.Second)
	test.ExpectEquality(t, c.State().State, govern.Paused)
	test.ExpectSuccess(t, c.Ticks() < 1<<36)
	test.ExpectFailure(t, keyDown(t, c, 'A'))

	// jumping abandons the target and the held request is applied
	id, err := c.AddBookmark()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, c.JumpTo(id))
	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return keyDown(t, c, 'A') })
	test.DemandSuccess(t, c.Stop())
}

func TestReplayRunUntil(t *testing.T) {
	tr, b0, _, _ := buildHistory(t)
	u, err := tr.AddEvent(1000, request.Until(7000))
	test.DemandSuccess(t, err)

	c := newController(t, refcore.NewCore(), tr)
	test.DemandSuccess(t, c.StartReplay(b0, u))
	waitFor(t, c.ReplayFinished)

	test.DemandSuccess(t, c.With(func(e emulation.Engine, _ *history.Tree) error {
		test.ExpectEquality(t, e.CurrentTick(), uint64(7000))
		test.ExpectSuccess(t, e.KeyDown('A'))
		return nil
	}))
	test.DemandSuccess(t, c.StopReplay())
}

// an engine error pauses the machine but the loop carries on
func TestEngineFailure(t *testing.T) {
	rec := newRecorder()
	rec.failAt = 5000
	c := newController(t, rec, nil)

	test.DemandSuccess(t, c.Start())
	waitFor(t, func() bool { return c.State().State == govern.Paused })
	test.ExpectInequality(t, c.Status(), "")

	// the failure is no longer reported once the machine is running again
	rec.failAt = 0
	test.DemandSuccess(t, c.Submit(request.Key(1, true)))
	test.DemandSuccess(t, c.Start())
	test.ExpectEquality(t, c.Status(), "")
	waitFor(t, func() bool { return len(rec.recorded()) == 1 })
	test.ExpectEquality(t, c.Status(), "")
}

func TestDelete(t *testing.T) {
	tr, b0, r1, b1 := buildHistory(t)
	c := newController(t, refcore.NewCore(), tr)

	test.DemandSuccess(t, c.JumpTo(b1))
	err := c.DeleteBranches([]history.EventID{r1})
	test.ExpectSuccess(t, curated.Has(err, curated.CurrentPositionProtected))

	test.DemandSuccess(t, c.JumpTo(b0))
	test.DemandSuccess(t, c.DeleteBookmarks([]history.EventID{b1}))
	test.DemandSuccess(t, c.DeleteBranches([]history.EventID{r1}))

	test.DemandSuccess(t, c.With(func(_ emulation.Engine, tree *history.Tree) error {
		test.ExpectEquality(t, tree.Len(), 2)
		return nil
	}))
}

func TestSnapshotInstall(t *testing.T) {
	tr, _, _, b1 := buildHistory(t)
	c := newController(t, refcore.NewCore(), tr)
	test.DemandSuccess(t, c.JumpTo(b1))

	tree, state, err := c.Snapshot()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tree.Len(), tr.Len())
	test.ExpectEquality(t, tree.CurrentID(), b1)

	d := newController(t, refcore.NewCore(), nil)
	err = d.Install(history.NewTree(), []byte("garbage"))
	test.ExpectSuccess(t, curated.Is(err, curated.CorruptPersistedData))
	test.ExpectEquality(t, d.Ticks(), uint64(0))

	test.DemandSuccess(t, d.Install(tree, state))
	test.ExpectEquality(t, d.Ticks(), uint64(1000))
}
