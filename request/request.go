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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
)

// Kind of request.
type Kind uint8

// List of valid Kind values. The zero value is deliberately invalid.
const (
	KeyDown Kind = iota + 1
	KeyUp
	LoadDisc
	LoadTape
	Reset
	RunUntil

	// Revert restores a serialised machine state. It is the inverse of
	// requests that cannot be undone in any other way.
	Revert
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	case LoadDisc:
		return "LoadDisc"
	case LoadTape:
		return "LoadTape"
	case Reset:
		return "Reset"
	case RunUntil:
		return "RunUntil"
	case Revert:
		return "Revert"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

func (k Kind) valid() bool {
	return k >= KeyDown && k <= Revert
}

// Request is an intent to mutate the machine. The zero value is not a valid
// request.
type Request struct {
	kind       Kind
	payload    []byte
	reversible bool
}

func newRequest(kind Kind, payload []byte) Request {
	return Request{
		kind:       kind,
		payload:    append([]byte{}, payload...),
		reversible: true,
	}
}

// Key creates a KeyDown or KeyUp request.
func Key(key byte, down bool) Request {
	if down {
		return newRequest(KeyDown, []byte{key})
	}
	return newRequest(KeyUp, []byte{key})
}

// Disc creates a LoadDisc request. An empty image ejects the disc.
func Disc(drive emulation.Drive, image []byte) Request {
	return newRequest(LoadDisc, append([]byte{byte(drive)}, image...))
}

// Tape creates a LoadTape request. An empty image ejects the tape.
func Tape(image []byte) Request {
	return newRequest(LoadTape, image)
}

// MachineReset creates a Reset request.
func MachineReset() Request {
	return newRequest(Reset, nil)
}

// Until creates a RunUntil request. The machine is advanced until the
// specified tick.
func Until(tick uint64) Request {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, tick)
	return newRequest(RunUntil, b)
}

// RevertTo creates a Revert request for the serialised machine state.
func RevertTo(state []byte) Request {
	return newRequest(Revert, state)
}

// WithReversible returns a copy of the request with the reversible flag set
// as specified.
func (r Request) WithReversible(reversible bool) Request {
	c := newRequest(r.kind, r.payload)
	c.reversible = reversible
	return c
}

// Kind of request.
func (r Request) Kind() Kind {
	return r.kind
}

// Payload returns a copy of the request payload.
func (r Request) Payload() []byte {
	return append([]byte{}, r.payload...)
}

// Reversible returns true if the request should be tracked for undo.
func (r Request) Reversible() bool {
	return r.reversible
}

// IsZero returns true for the zero value Request.
func (r Request) IsZero() bool {
	return r.kind == 0
}

// Equal returns true if both requests are of the same kind with the same
// payload. The reversible flag is not considered.
func (r Request) Equal(o Request) bool {
	return r.kind == o.kind && bytes.Equal(r.payload, o.payload)
}

func (r Request) String() string {
	switch r.kind {
	case KeyDown, KeyUp:
		return fmt.Sprintf("%s %d", r.kind, r.payload[0])
	case LoadDisc:
		return fmt.Sprintf("%s %s (%d bytes)", r.kind, emulation.Drive(r.payload[0]), len(r.payload)-1)
	case LoadTape, Revert:
		return fmt.Sprintf("%s (%d bytes)", r.kind, len(r.payload))
	case RunUntil:
		return fmt.Sprintf("%s %d", r.kind, binary.BigEndian.Uint64(r.payload))
	}
	return r.kind.String()
}

// Tick returns the target tick of a RunUntil request.
func (r Request) Tick() uint64 {
	if r.kind != RunUntil || len(r.payload) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(r.payload)
}

// validate checks that the payload is the correct shape for the kind.
func (r Request) validate() error {
	switch r.kind {
	case KeyDown, KeyUp:
		if len(r.payload) != 1 {
			return curated.Errorf("request: %s: payload must be one byte", r.kind)
		}
	case LoadDisc:
		if len(r.payload) < 1 || emulation.Drive(r.payload[0]) >= emulation.NumDrives {
			return curated.Errorf("request: %s: invalid drive", r.kind)
		}
	case Reset:
		if len(r.payload) != 0 {
			return curated.Errorf("request: %s: unexpected payload", r.kind)
		}
	case RunUntil:
		if len(r.payload) != 8 {
			return curated.Errorf("request: %s: payload must be eight bytes", r.kind)
		}
	case LoadTape, Revert:
	default:
		return curated.Errorf("request: invalid kind (%d)", r.kind)
	}
	return nil
}
