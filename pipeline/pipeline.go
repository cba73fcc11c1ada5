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

package pipeline

import (
	"sync"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/history"
	"github.com/alybaek2/cpvc-sub002/logger"
	"github.com/alybaek2/cpvc-sub002/notifications"
	"github.com/alybaek2/cpvc-sub002/request"
)

// Pipeline queues requests and applies them to the engine.
type Pipeline struct {
	// the queue can be added to from any goroutine
	crit   sync.Mutex
	queue  []request.Request
	closed bool

	// the audit trail is changed by the execution loop and by Undo(). both of
	// these happen under the controller's lock but the trail can be inspected
	// from anywhere
	trailCrit  sync.Mutex
	reversible bool
	trail      []AuditEntry

	notify notifications.Notify
}

// NewPipeline is the preferred method of initialisation for the Pipeline
// type. The notify argument can be nil.
func NewPipeline(notify notifications.Notify) *Pipeline {
	return &Pipeline{
		notify: notify,
	}
}

// Submit adds the request to the end of the queue. It does not wait for the
// request to be applied.
func (p *Pipeline) Submit(r request.Request) error {
	if r.IsZero() {
		return curated.Errorf(curated.InvalidState, "pipeline: cannot submit an empty request")
	}

	p.crit.Lock()
	defer p.crit.Unlock()

	if p.closed {
		return curated.Errorf(curated.InvalidState, curated.Errorf(curated.Closed))
	}

	p.queue = append(p.queue, r)

	return nil
}

// Pending returns the number of requests waiting in the queue.
func (p *Pipeline) Pending() int {
	p.crit.Lock()
	defer p.crit.Unlock()
	return len(p.queue)
}

// Close the pipeline. Requests still in the queue are discarded and any
// future call to Submit() will fail.
func (p *Pipeline) Close() {
	p.crit.Lock()
	defer p.crit.Unlock()

	if len(p.queue) > 0 {
		logger.Logf(logger.Allow, "pipeline", "discarding %d queued requests", len(p.queue))
	}
	p.queue = nil
	p.closed = true
}

// next removes and returns the request at the head of the queue.
func (p *Pipeline) next() (request.Request, bool) {
	p.crit.Lock()
	defer p.crit.Unlock()

	if len(p.queue) == 0 {
		return request.Request{}, false
	}
	r := p.queue[0]
	p.queue[0] = request.Request{}
	p.queue = p.queue[1:]
	return r, true
}

// ApplyNext takes the next request from the queue and applies it to the
// engine. The request is returned so that the caller can act on requests,
// such as RunUntil, that are carried out over time. Returns false if the
// queue was empty.
//
// Should only be called by the execution loop, with the controller's lock
// held. If replaying is true, the request is not added to the history tree.
//
// An error means the request has been consumed but has not been committed to
// the tree or the audit trail.
func (p *Pipeline) ApplyNext(e emulation.Engine, t *history.Tree, replaying bool) (request.Request, bool, error) {
	r, ok := p.next()
	if !ok {
		return request.Request{}, false, nil
	}
	return r, true, p.apply(e, t, r, replaying)
}

func (p *Pipeline) apply(e emulation.Engine, t *history.Tree, r request.Request, replaying bool) error {
	p.trailCrit.Lock()
	defer p.trailCrit.Unlock()

	tick := e.CurrentTick()

	// the reverse must be created from the state of the engine before the
	// request is applied
	var reverse *request.Request
	if p.reversible && r.Reversible() {
		rev, err := r.Inverse(e)
		if err != nil {
			return err
		}
		reverse = &rev
	}

	if err := r.Apply(e); err != nil {
		return err
	}

	if !replaying {
		if _, err := t.AddEvent(tick, r); err != nil {
			return err
		}
	}

	if p.reversible {
		p.trail = append(p.trail, AuditEntry{
			Request: r,
			Tick:    tick,
			Reverse: reverse,
		})
	}

	logger.Logf(logger.Allow, "pipeline", "applied %s @ %d", r, tick)
	p.publish(notifications.RequestApplied, tick, r)

	return nil
}

// Feed applies a request directly to the engine, bypassing the queue, the
// history tree and the audit trail. It is used when replaying history.
func (p *Pipeline) Feed(e emulation.Engine, r request.Request) error {
	tick := e.CurrentTick()
	if err := r.Apply(e); err != nil {
		return err
	}
	logger.Logf(logger.Allow, "pipeline", "replayed %s @ %d", r, tick)
	p.publish(notifications.RequestApplied, tick, r)
	return nil
}

// Undo reverses the most recently applied request. An irreversible request
// in the audit trail cannot be undone and nor can anything applied before it.
func (p *Pipeline) Undo(e emulation.Engine) error {
	p.trailCrit.Lock()
	defer p.trailCrit.Unlock()

	if len(p.trail) == 0 {
		return curated.Errorf(curated.NothingToUndo)
	}

	a := p.trail[len(p.trail)-1]
	if a.Reverse == nil {
		return curated.Errorf(curated.NothingToUndo)
	}

	if err := a.Reverse.Apply(e); err != nil {
		return err
	}
	p.trail = p.trail[:len(p.trail)-1]

	logger.Logf(logger.Allow, "pipeline", "undone %s @ %d", a.Request, a.Tick)
	p.publish(notifications.RequestUndone, e.CurrentTick(), a.Request)

	return nil
}

// Peek returns the audit entry that will be undone by the next call to
// Undo().
func (p *Pipeline) Peek() (AuditEntry, bool) {
	p.trailCrit.Lock()
	defer p.trailCrit.Unlock()
	if len(p.trail) == 0 {
		return AuditEntry{}, false
	}
	return p.trail[len(p.trail)-1], true
}

// SetReversibilityEnabled starts or stops the recording of the audit trail.
// In both cases the existing trail is discarded.
func (p *Pipeline) SetReversibilityEnabled(enabled bool) {
	p.trailCrit.Lock()
	defer p.trailCrit.Unlock()
	p.reversible = enabled
	p.trail = nil
}

// ReversibilityEnabled returns the value set by SetReversibilityEnabled().
func (p *Pipeline) ReversibilityEnabled() bool {
	p.trailCrit.Lock()
	defer p.trailCrit.Unlock()
	return p.reversible
}

// ClearTrail discards the audit trail without changing whether reversibility
// is enabled.
func (p *Pipeline) ClearTrail() {
	p.trailCrit.Lock()
	defer p.trailCrit.Unlock()
	p.trail = nil
}

// Trail returns a copy of the audit trail, oldest entry first.
func (p *Pipeline) Trail() []AuditEntry {
	p.trailCrit.Lock()
	defer p.trailCrit.Unlock()
	return append([]AuditEntry(nil), p.trail...)
}

func (p *Pipeline) publish(notice notifications.Notice, tick uint64, r request.Request) {
	if p.notify == nil {
		return
	}
	p.notify.Notify(notifications.Event{
		Notice: notice,
		Tick:   tick,
		Detail: r.String(),
	})
}
