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

package pipeline_test

import (
	"bytes"
	"testing"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/notifications"
	"github.com/alybaek2/cpvc-sub002/pipeline"
	"github.com/alybaek2/cpvc-sub002/refcore"
	"github.com/alybaek2/cpvc-sub002/request"
	"github.com/alybaek2/cpvc-sub002/test"
)

func serialize(t *testing.T, e emulation.Engine) []byte {
	t.Helper()
	b, err := e.Serialize()
	test.DemandSuccess(t, err)
	return b
}

func TestApplyNext(t *testing.T) {
	hub := notifications.NewHub()
	sub := hub.Subscribe(10)
	p := pipeline.NewPipeline(hub)
	core := refcore.NewCore()
	tr := history.NewTree()

	_, ok, err := p.ApplyNext(core, tr, false)
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, ok)

	test.DemandSuccess(t, p.Submit(request.Key(3, true)))
	test.DemandSuccess(t, p.Submit(request.Key(4, true)))
	test.ExpectEquality(t, p.Pending(), 2)

	test.DemandSuccess(t, core.AdvanceTicks(50))

	// requests are applied in the order they were submitted
	r, ok, err := p.ApplyNext(core, tr, false)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, r.Equal(request.Key(3, true)))
	test.ExpectSuccess(t, core.KeyDown(3))
	test.ExpectFailure(t, core.KeyDown(4))

	e := tr.Current()
	test.ExpectEquality(t, e.Kind, history.RequestEvent)
	test.ExpectEquality(t, e.Tick, uint64(50))
	test.ExpectSuccess(t, e.Request.Equal(request.Key(3, true)))

	ev := <-sub.Events()
	test.ExpectEquality(t, ev.Notice, notifications.RequestApplied)
	test.ExpectEquality(t, ev.Tick, uint64(50))

	// replaying leaves the tree alone
	_, ok, err = p.ApplyNext(core, tr, true)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, core.KeyDown(4))
	test.ExpectEquality(t, tr.Len(), 2)
	test.ExpectEquality(t, p.Pending(), 0)
}

func TestSubmitClosed(t *testing.T) {
	p := pipeline.NewPipeline(nil)
	test.DemandSuccess(t, p.Submit(request.MachineReset()))

	err := p.Submit(request.Request{})
	test.ExpectSuccess(t, curated.Is(err, curated.InvalidState))

	p.Close()
	test.ExpectEquality(t, p.Pending(), 0)

	err = p.Submit(request.MachineReset())
	test.ExpectSuccess(t, curated.Is(err, curated.InvalidState))
	test.ExpectSuccess(t, curated.Has(err, curated.Closed))
}

func TestAuditTrail(t *testing.T) {
	p := pipeline.NewPipeline(nil)
	core := refcore.NewCore()
	tr := history.NewTree()

	// reversibility is off by default
	test.DemandSuccess(t, p.Submit(request.Key(1, true)))
	_, _, err := p.ApplyNext(core, tr, false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(p.Trail()), 0)
	test.ExpectSuccess(t, curated.Is(p.Undo(core), curated.NothingToUndo))

	p.SetReversibilityEnabled(true)
	test.ExpectSuccess(t, p.ReversibilityEnabled())

	test.DemandSuccess(t, p.Submit(request.Key(2, true)))
	test.DemandSuccess(t, p.Submit(request.Key(3, true).WithReversible(false)))
	test.DemandSuccess(t, p.Submit(request.Key(4, true)))
	for p.Pending() > 0 {
		_, _, err := p.ApplyNext(core, tr, false)
		test.DemandSuccess(t, err)
	}

	trail := p.Trail()
	test.DemandEquality(t, len(trail), 3)
	test.ExpectSuccess(t, trail[0].Reverse != nil)
	test.ExpectSuccess(t, trail[1].Reverse == nil)
	test.ExpectSuccess(t, trail[2].Reverse != nil)

	// undo as far as the irreversible request
	test.DemandSuccess(t, p.Undo(core))
	test.ExpectFailure(t, core.KeyDown(4))
	test.ExpectSuccess(t, core.KeyDown(3))
	test.ExpectSuccess(t, curated.Is(p.Undo(core), curated.NothingToUndo))
	test.ExpectSuccess(t, core.KeyDown(3))

	// undo never changes the tree
	test.ExpectEquality(t, tr.Len(), 5)

	p.SetReversibilityEnabled(false)
	test.ExpectEquality(t, len(p.Trail()), 0)
}

// applying a request and then undoing it leaves the engine exactly as it was
func TestUndoIsInverse(t *testing.T) {
	requests := []request.Request{
		request.Key(10, true),
		request.Key(10, false),
		request.Key(79, true),
		request.Disc(emulation.DriveA, []byte{1, 2, 3}),
		request.Disc(emulation.DriveB, nil),
		request.Tape([]byte("tape")),
		request.MachineReset(),
		request.Until(1000),
		request.Until(10),
	}

	for i, r := range requests {
		p := pipeline.NewPipeline(nil)
		p.SetReversibilityEnabled(true)
		core := refcore.NewCore()
		tr := history.NewTree()

		// make the state interesting
		test.DemandSuccess(t, core.SetKey(10, true), i)
		test.DemandSuccess(t, core.LoadDisc(emulation.DriveB, []byte{9, 9}), i)
		test.DemandSuccess(t, core.AdvanceTicks(333), i)

		before := serialize(t, core)

		test.DemandSuccess(t, p.Submit(r), i)
		_, _, err := p.ApplyNext(core, tr, false)
		test.DemandSuccess(t, err, i)

		test.DemandSuccess(t, p.Undo(core), i)
		after := serialize(t, core)

		test.ExpectSuccess(t, bytes.Equal(before, after), i, r)
	}
}

func TestFeed(t *testing.T) {
	p := pipeline.NewPipeline(nil)
	p.SetReversibilityEnabled(true)
	core := refcore.NewCore()

	test.DemandSuccess(t, p.Feed(core, request.Key(5, true)))
	test.ExpectSuccess(t, core.KeyDown(5))
	test.ExpectEquality(t, len(p.Trail()), 0)
	test.ExpectEquality(t, p.Pending(), 0)
}
