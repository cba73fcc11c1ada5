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

package request

import (
	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
)

// Apply the request to the engine. A RunUntil request is a target for the
// execution loop rather than a change to the engine and Apply() does nothing
// with it beyond validation.
func (r Request) Apply(e emulation.Engine) error {
	if err := r.validate(); err != nil {
		return err
	}

	var err error

	switch r.kind {
	case KeyDown:
		err = e.SetKey(r.payload[0], true)
	case KeyUp:
		err = e.SetKey(r.payload[0], false)
	case LoadDisc:
		err = e.LoadDisc(emulation.Drive(r.payload[0]), r.payload[1:])
	case LoadTape:
		err = e.LoadTape(r.payload)
	case Reset:
		err = e.Reset()
	case RunUntil:
		// the request has no immediate effect on the engine. the execution
		// loop advances the engine to the target one slice at a time, so that
		// the machine can be stopped and bookmarked along the way
	case Revert:
		err = e.Restore(r.payload)
	}

	if err != nil {
		return curated.Errorf("request: %s: %v", r.kind, err)
	}

	return nil
}

// Inverse returns the request that undoes the effect of r. It must be called
// before r is applied, with the engine in the state that r will be applied
// to.
//
// Where an exact inverse exists it is used (a key returns to its previous
// state, a drive gets its previous disc back). Requests with effects that are
// not otherwise reversible are inverted by reverting to a serialised copy of
// the machine.
func (r Request) Inverse(e emulation.Engine) (Request, error) {
	if err := r.validate(); err != nil {
		return Request{}, err
	}

	switch r.kind {
	case KeyDown, KeyUp:
		return Key(r.payload[0], e.KeyDown(r.payload[0])), nil
	case LoadDisc:
		d := emulation.Drive(r.payload[0])
		return Disc(d, e.DiscImage(d)), nil
	case LoadTape:
		return Tape(e.TapeImage()), nil
	}

	state, err := e.Serialize()
	if err != nil {
		return Request{}, curated.Errorf("request: inverse of %s: %v", r.kind, err)
	}

	return RevertTo(state), nil
}
