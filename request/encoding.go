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
)

// the reversible flag in the encoded flags byte.
const flagReversible = 0x01

// MarshalBinary encodes the request as: kind byte, flags byte, payload.
func (r Request) MarshalBinary() ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	var flags byte
	if r.reversible {
		flags |= flagReversible
	}

	b := make([]byte, 0, len(r.payload)+2)
	b = append(b, byte(r.kind), flags)
	b = append(b, r.payload...)
	return b, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (r *Request) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return curated.Errorf("request: encoded request too short (%d bytes)", len(data))
	}

	n := newRequest(Kind(data[0]), data[2:])
	n.reversible = data[1]&flagReversible == flagReversible

	if !n.kind.valid() {
		return curated.Errorf("request: invalid kind (%d)", data[0])
	}
	if err := n.validate(); err != nil {
		return err
	}

	*r = n
	return nil
}
